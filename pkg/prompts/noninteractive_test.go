// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNonInteractivePrompterFailsFast(t *testing.T) {
	p := NewNonInteractivePrompter()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"CaptureExistingFilepath", func() error { _, err := p.CaptureExistingFilepath(""); return err }},
		{"CaptureYesNo", func() error { _, err := p.CaptureYesNo(""); return err }},
		{"CaptureNoYes", func() error { _, err := p.CaptureNoYes(""); return err }},
		{"CaptureList", func() error { _, err := p.CaptureList("", nil); return err }},
		{"CaptureString", func() error { _, err := p.CaptureString(""); return err }},
		{"CaptureStringAllowEmpty", func() error { _, err := p.CaptureStringAllowEmpty(""); return err }},
		{"CaptureIndex", func() error { _, err := p.CaptureIndex("", nil); return err }},
		{"CaptureUint64", func() error { _, err := p.CaptureUint64(""); return err }},
		{"CaptureUint32", func() error { _, err := p.CaptureUint32(""); return err }},
		{"CaptureFloat", func() error { _, err := p.CaptureFloat("", nil); return err }},
		{"CaptureValidatedString", func() error { _, err := p.CaptureValidatedString("", nil); return err }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrNonInteractive), "expected ErrNonInteractive for %s", tc.name)
		})
	}
}

func TestNonInteractivePrompterMessage(t *testing.T) {
	p := &NonInteractivePrompter{FailMessage: "pass --mode"}
	_, err := p.CaptureList("Launch mode", nil)
	require.ErrorContains(t, err, "Launch mode - pass --mode")
}
