// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	luxlog "github.com/luxfi/log"
)

// Assembler turns a ConfigSource into the payload handed to the launcher.
type Assembler struct {
	log luxlog.Logger
}

func NewAssembler(log luxlog.Logger) *Assembler {
	if log == nil {
		log = luxlog.NewNoOpLogger()
	}
	return &Assembler{log: log}
}

// Assemble never modifies the source. A structured draft that fails
// validation yields an *InvalidSpecError and no payload.
func (a *Assembler) Assemble(src ConfigSource) (LaunchPayload, error) {
	switch s := src.(type) {
	case TemplateSource:
		return EasyPayload{}, nil
	case StructuredFormSource:
		return a.assembleForm(s.Draft)
	case RawDocumentSource:
		if strings.TrimSpace(s.Document) == "" || !utf8.ValidString(s.Document) {
			return nil, ErrMalformedDocument
		}
		return ExpertPayload{Document: s.Document}, nil
	case ExistingSnapshotSource:
		if s.Folder == "" {
			return nil, ErrNoSelection
		}
		return FromExistingPayload{Folder: s.Folder}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported config source %T", ErrAssembly, src)
	}
}

func (a *Assembler) assembleForm(draft LaunchSpec) (LaunchPayload, error) {
	if err := draft.Validate(); err != nil {
		if invalid, ok := err.(*InvalidSpecError); ok {
			a.log.Debug("genesis draft rejected", "field", invalid.Field, "reason", invalid.Reason, "violations", len(invalid.Violations()))
		}
		return nil, err
	}
	spec, err := CanonicalJSON(draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}
	return AdvancedPayload{Spec: spec}, nil
}

// CanonicalJSON encodes the spec in struct field order, so equal specs give
// identical bytes.
func CanonicalJSON(spec LaunchSpec) ([]byte, error) {
	return json.Marshal(spec)
}
