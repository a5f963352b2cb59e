// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package testutils

import (
	"io"
	"path/filepath"
	"testing"

	luxlog "github.com/luxfi/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/config"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/ux"
)

func SetupTest(t *testing.T) *require.Assertions {
	// use io.Discard to not print anything
	ux.NewUserLog(luxlog.NewNoOpLogger(), io.Discard)
	return require.New(t)
}

// SetupTestInTempDir returns an app rooted in a fresh temp dir. Chain folders
// go under the same dir. A nil v gets a private viper instance.
func SetupTestInTempDir(t *testing.T, v *viper.Viper) *application.Lux {
	base := t.TempDir()
	if v == nil {
		v = viper.New()
	}
	if !v.IsSet(constants.ConfigChainsDir) {
		v.Set(constants.ConfigChainsDir, filepath.Join(base, "chains"))
	}

	app := application.New()
	app.Setup(filepath.Join(base, constants.BaseDirName), luxlog.NewNoOpLogger(), config.NewWithViper(v), nil)
	ux.NewUserLog(luxlog.NewNoOpLogger(), io.Discard)
	return app
}
