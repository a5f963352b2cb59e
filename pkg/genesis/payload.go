// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package genesis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// LaunchPayload is what the launcher receives. The set of implementations
// is closed; exactly one shape is produced per assembly.
type LaunchPayload interface {
	// Mode is the wire tag of the payload.
	Mode() string
	isLaunchPayload()
}

const (
	ModeEasy         = "Easy"
	ModeAdvanced     = "Advanced"
	ModeExpert       = "Expert"
	ModeFromExisting = "FromExisting"
)

// EasyPayload launches the bundled example genesis.
type EasyPayload struct{}

// AdvancedPayload holds the canonical JSON encoding of a validated spec.
type AdvancedPayload struct {
	Spec []byte
}

// ExpertPayload holds generator input passed through untouched.
type ExpertPayload struct {
	Document string
}

// FromExistingPayload restarts a chain folder that already holds a genesis.
type FromExistingPayload struct {
	Folder string
}

func (EasyPayload) Mode() string         { return ModeEasy }
func (AdvancedPayload) Mode() string     { return ModeAdvanced }
func (ExpertPayload) Mode() string       { return ModeExpert }
func (FromExistingPayload) Mode() string { return ModeFromExisting }

func (EasyPayload) isLaunchPayload()         {}
func (AdvancedPayload) isLaunchPayload()     {}
func (ExpertPayload) isLaunchPayload()       {}
func (FromExistingPayload) isLaunchPayload() {}

var ErrUnknownLaunchMode = errors.New("unknown launch mode")

// LaunchMode is the wire form of a payload: an object with exactly one key
// naming the mode, e.g. {"Easy":null} or {"FromExisting":"chain-3"}.
type LaunchMode struct {
	Payload LaunchPayload
}

func (m LaunchMode) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch p := m.Payload.(type) {
	case EasyPayload:
		value = nil
	case AdvancedPayload:
		value = string(p.Spec)
	case ExpertPayload:
		value = p.Document
	case FromExistingPayload:
		value = p.Folder
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownLaunchMode, m.Payload)
	}
	return json.Marshal(map[string]interface{}{m.Payload.Mode(): value})
}

func (m *LaunchMode) UnmarshalJSON(bs []byte) error {
	// a bare "Easy" string is accepted as well
	var tag string
	if err := json.Unmarshal(bs, &tag); err == nil {
		if tag != ModeEasy {
			return fmt.Errorf("%w: %q", ErrUnknownLaunchMode, tag)
		}
		m.Payload = EasyPayload{}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(bs, &obj); err != nil {
		return fmt.Errorf("invalid launch mode: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("invalid launch mode: expected exactly one mode, got %d", len(obj))
	}
	for key, raw := range obj {
		if key == ModeEasy {
			m.Payload = EasyPayload{}
			return nil
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("invalid %s launch mode: %w", key, err)
		}
		switch key {
		case ModeAdvanced:
			m.Payload = AdvancedPayload{Spec: []byte(value)}
		case ModeExpert:
			m.Payload = ExpertPayload{Document: value}
		case ModeFromExisting:
			m.Payload = FromExistingPayload{Folder: value}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownLaunchMode, key)
		}
	}
	return nil
}

// EncodeLaunchMode returns the wire form of a payload.
func EncodeLaunchMode(p LaunchPayload) ([]byte, error) {
	return json.Marshal(LaunchMode{Payload: p})
}

// DecodeLaunchMode parses the wire form of a payload.
func DecodeLaunchMode(bs []byte) (LaunchPayload, error) {
	var m LaunchMode
	if err := json.Unmarshal(bytes.TrimSpace(bs), &m); err != nil {
		return nil, err
	}
	return m.Payload, nil
}
