// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shell scripts standing in for the node and the genesis creator.
const (
	// SleepingNode reports a version and otherwise runs until killed.
	SleepingNode = `#!/bin/sh
if [ "$1" = "--version" ]; then echo "concordium-node 6.0.4"; exit 0; fi
echo "finalized block" >&2
exec sleep 30
`
	// ExitingNode reports a version and otherwise dies right away.
	ExitingNode = `#!/bin/sh
if [ "$1" = "--version" ]; then echo "concordium-node 6.0.4"; exit 0; fi
exit 3
`
	// OKCreator touches "generated" in the working dir when given an existing
	// config file.
	OKCreator = `#!/bin/sh
if [ "$1" = "generate" ] && [ -f "$3" ]; then touch generated; exit 0; fi
exit 1
`
	FailingCreator = `#!/bin/sh
echo "invalid protocol version" >&2
exit 1
`
)

// RequireShell skips tests that need /bin/sh.
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell fakes need a unix shell")
	}
}

// WriteScript writes an executable script named name into dir.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755)) //nolint:gosec // G306: test executable
	return path
}
