// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

// ConfigSource is the configuration the operator picked for one session.
// The set of implementations is closed.
type ConfigSource interface {
	isConfigSource()
}

// TemplateSource selects the bundled example genesis.
type TemplateSource struct{}

// StructuredFormSource carries a draft edited field by field.
type StructuredFormSource struct {
	Draft LaunchSpec
}

// RawDocumentSource carries generator input written by hand.
type RawDocumentSource struct {
	Document string
}

// ExistingSnapshotSource reuses a previously generated chain folder.
type ExistingSnapshotSource struct {
	Folder string
}

func (TemplateSource) isConfigSource()         {}
func (StructuredFormSource) isConfigSource()   {}
func (RawDocumentSource) isConfigSource()      {}
func (ExistingSnapshotSource) isConfigSource() {}
