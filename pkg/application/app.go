// Copyright (C) 2022, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/luxfi/lc1c/pkg/config"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/prompts"
	luxlog "github.com/luxfi/log"
)

const (
	WriteReadReadPerms = 0o644
)

type Lux struct {
	Log     luxlog.Logger
	baseDir string
	homeDir string
	Conf    *config.Config
	Prompt  prompts.Prompter
}

func New() *Lux {
	return &Lux{}
}

func (app *Lux) Setup(baseDir string, log luxlog.Logger, conf *config.Config, prompt prompts.Prompter) {
	app.baseDir = baseDir
	app.homeDir = filepath.Dir(baseDir)
	app.Log = log
	app.Conf = conf
	app.Prompt = prompt
}

func (app *Lux) GetBaseDir() string {
	return app.baseDir
}

func (app *Lux) GetLogDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

func (app *Lux) GetScratchDir() string {
	return filepath.Join(app.baseDir, constants.ScratchDir)
}

func (app *Lux) GetDownloadsDir() string {
	return filepath.Join(app.baseDir, constants.DownloadDir)
}

// GetChainsDir returns the folder holding every chain-N folder. It lives next to
// the base dir in the user's home unless overridden in the config.
func (app *Lux) GetChainsDir() string {
	if app.Conf != nil {
		if dir := app.Conf.ChainsDir(); dir != "" {
			return dir
		}
	}
	return filepath.Join(app.homeDir, constants.ChainsDirName)
}

func (app *Lux) GetChainDir(folder string) string {
	return filepath.Join(app.GetChainsDir(), folder)
}

func (app *Lux) GetGenesisConfigPath(folder string) string {
	return filepath.Join(app.GetChainDir(folder), constants.GenesisConfigFileName)
}

func (app *Lux) ConfigFileExists() bool {
	return app.Conf != nil && app.Conf.ConfigFileExists()
}

// ChainFolderNumber parses the N out of chain-N. Unparsable suffixes sort as 0.
func ChainFolderNumber(folder string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(folder, constants.ChainFolderPrefix))
	if err != nil {
		return 0
	}
	return n
}

// ListChainFolders returns the chain-N folders ordered by N. A missing chains dir
// is not an error: nothing was launched yet.
func (app *Lux) ListChainFolders() ([]string, error) {
	entries, err := os.ReadDir(app.GetChainsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed reading chains dir %s: %w", app.GetChainsDir(), err)
	}
	folders := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), constants.ChainFolderPrefix) {
			folders = append(folders, entry.Name())
		}
	}
	sort.SliceStable(folders, func(i, j int) bool {
		return ChainFolderNumber(folders[i]) < ChainFolderNumber(folders[j])
	})
	return folders, nil
}

// CreateNextChainFolder creates the first chain-N folder that does not exist yet.
func (app *Lux) CreateNextChainFolder() (string, error) {
	if err := os.MkdirAll(app.GetChainsDir(), constants.ReadWriteExecute); err != nil {
		return "", fmt.Errorf("failed creating chains dir %s: %w", app.GetChainsDir(), err)
	}
	for counter := 1; ; counter++ {
		folder := fmt.Sprintf("%s%d", constants.ChainFolderPrefix, counter)
		err := os.Mkdir(app.GetChainDir(folder), constants.ReadWriteExecute)
		if err == nil {
			return folder, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed creating chain folder %s: %w", folder, err)
		}
	}
}

// ChainFolderExists only accepts a bare chain-N name directly under the
// chains dir.
func (app *Lux) ChainFolderExists(folder string) bool {
	if filepath.Base(folder) != folder || !strings.HasPrefix(folder, constants.ChainFolderPrefix) {
		return false
	}
	info, err := os.Stat(app.GetChainDir(folder))
	return err == nil && info.IsDir()
}

func (app *Lux) WriteGenesisConfig(folder string, bs []byte) error {
	return os.WriteFile(app.GetGenesisConfigPath(folder), bs, WriteReadReadPerms)
}
