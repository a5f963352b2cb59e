// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Resolver produces the ConfigSource of one configuration strategy.
type Resolver interface {
	Resolve() (ConfigSource, error)
}

// TemplateResolver needs no input.
type TemplateResolver struct{}

func (TemplateResolver) Resolve() (ConfigSource, error) {
	return TemplateSource{}, nil
}

// FormResolver accumulates edits against the default spec.
type FormResolver struct {
	draft LaunchSpec
}

func NewFormResolver() *FormResolver {
	return &FormResolver{draft: DefaultSpec()}
}

// Edit applies fn to the draft in place.
func (r *FormResolver) Edit(fn func(*LaunchSpec)) {
	fn(&r.draft)
}

// Merge overlays a partial YAML or JSON document on the draft. Keys absent
// from the document keep their current value; lists are replaced whole. An
// unknown key fails the merge and leaves the draft untouched.
func (r *FormResolver) Merge(document []byte) error {
	merged := r.draft.Clone()
	dec := yaml.NewDecoder(bytes.NewReader(document))
	dec.KnownFields(true)
	if err := dec.Decode(&merged); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed merging genesis overrides: %w", err)
	}
	r.draft = merged
	return nil
}

// Draft returns a copy of the current draft.
func (r *FormResolver) Draft() LaunchSpec {
	return r.draft.Clone()
}

func (r *FormResolver) Resolve() (ConfigSource, error) {
	return StructuredFormSource{Draft: r.draft.Clone()}, nil
}

// DocumentResolver holds operator supplied generator input. Checks happen
// in the assembler and the generator.
type DocumentResolver struct {
	document string
}

func NewDocumentResolver(document string) *DocumentResolver {
	return &DocumentResolver{document: document}
}

func (r *DocumentResolver) SetDocument(document string) {
	r.document = document
}

func (r *DocumentResolver) Resolve() (ConfigSource, error) {
	return RawDocumentSource{Document: r.document}, nil
}

// FolderLister enumerates generated chain folders.
type FolderLister interface {
	ListChainFolders(ctx context.Context) ([]string, error)
}

// SnapshotResolver picks one of the chain folders listed when it was built.
type SnapshotResolver struct {
	folders  []string
	selected string
}

// NewSnapshotResolver lists the available folders once.
func NewSnapshotResolver(ctx context.Context, lister FolderLister) (*SnapshotResolver, error) {
	folders, err := lister.ListChainFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed listing chain folders: %w", err)
	}
	return &SnapshotResolver{folders: folders}, nil
}

func (r *SnapshotResolver) Folders() []string {
	return slices.Clone(r.folders)
}

// Select marks folder as the one to launch. It must be one of Folders.
func (r *SnapshotResolver) Select(folder string) error {
	if !slices.Contains(r.folders, folder) {
		return fmt.Errorf("%w: unknown chain folder %q", ErrNoSelection, folder)
	}
	r.selected = folder
	return nil
}

func (r *SnapshotResolver) Resolve() (ConfigSource, error) {
	if r.selected == "" {
		return nil, ErrNoSelection
	}
	return ExistingSnapshotSource{Folder: r.selected}, nil
}
