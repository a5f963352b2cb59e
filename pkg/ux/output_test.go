// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ux

import (
	"bytes"
	"strings"
	"testing"

	luxlog "github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

func TestUserLogPrints(t *testing.T) {
	var buf bytes.Buffer
	ul := &UserLog{log: luxlog.NewNoOpLogger(), writer: &buf}

	ul.PrintToUser("chain %d", 3)
	ul.GreenCheckmarkToUser("installed")
	ul.RedXToUser("failed")
	ul.PrintLineSeparator()

	out := buf.String()
	require.Contains(t, out, "chain 3\n")
	require.Contains(t, out, "✓ installed")
	require.Contains(t, out, "✗ failed")
	require.Contains(t, out, "=====")
}

func TestStepTracker(t *testing.T) {
	var buf bytes.Buffer
	ul := &UserLog{log: luxlog.NewNoOpLogger(), writer: &buf}
	st := NewStepTracker(ul)
	st.Start("Verifying installation")
	st.Complete("6.3.0")
	require.Contains(t, buf.String(), "Verifying installation...")
	require.Contains(t, buf.String(), "- 6.3.0")
}

func TestPrintBalancesSorted(t *testing.T) {
	var buf bytes.Buffer
	err := PrintBalances(&buf, 7, "ab12", map[string]string{
		"4zb": "20",
		"3aa": "10",
	})
	require.NoError(t, err)
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Block 7  ab12\n"))
	require.Less(t, strings.Index(out, "3aa"), strings.Index(out, "4zb"))
}

func TestDownloadBarNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.False(t, IsTerminal(&buf))
	require.Nil(t, NewDownloadBar(&buf, "node", 100))
}
