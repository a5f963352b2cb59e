// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/luxfi/lc1c/pkg/constants"
)

const (
	linux   = "linux"
	darwin  = "darwin"
	windows = "windows"
)

// Installer provides system architecture information.
type Installer interface {
	GetArch() (string, string)
}

type installerImpl struct{}

// NewInstaller creates a new installer.
func NewInstaller() Installer {
	return &installerImpl{}
}

func (installerImpl) GetArch() (string, string) {
	return runtime.GOARCH, runtime.GOOS
}

// NodePackage returns the download URL and local file name of the node
// package for the installer's OS.
func NodePackage(installer Installer) (string, string, error) {
	_, goos := installer.GetArch()
	switch goos {
	case linux:
		return constants.NodeInstallerLinuxURL, constants.NodeInstallerLinuxFile, nil
	case darwin:
		return constants.NodeInstallerMacOSURL, constants.NodeInstallerMacOSFile, nil
	case windows:
		return constants.NodeInstallerWindowsURL, constants.NodeInstallerWindowsFile, nil
	default:
		return "", "", fmt.Errorf("unsupported OS: %s", goos)
	}
}

// nodeCandidates lists where the node package puts its executable.
func nodeCandidates(goos string) []string {
	if goos != windows {
		return []string{
			"/usr/bin/" + constants.NodeBinaryName,
			"/usr/local/bin/" + constants.NodeBinaryName,
		}
	}
	pattern := regexp.MustCompile(constants.NodeWindowsDirPattern)
	entries, err := os.ReadDir(constants.NodeWindowsInstallDir)
	if err != nil {
		return nil
	}
	candidates := []string{}
	for _, entry := range entries {
		if entry.IsDir() && pattern.MatchString(entry.Name()) {
			candidates = append(candidates, filepath.Join(constants.NodeWindowsInstallDir, entry.Name(), constants.NodeWindowsBinaryName))
		}
	}
	return candidates
}

// FindNodeExecutable returns the node executable. An explicit override wins
// over the package install locations.
func FindNodeExecutable(installer Installer, override string) (string, error) {
	if override != "" {
		if isFile(override) {
			return override, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, override)
	}
	_, goos := installer.GetArch()
	for _, candidate := range nodeCandidates(goos) {
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", ErrNodeNotFound
}

// genesisCreatorPath is where cargo installs the generator. Windows relies on
// PATH.
func genesisCreatorPath(installer Installer, override string) string {
	if override != "" {
		return override
	}
	_, goos := installer.GetArch()
	if goos == windows {
		return constants.GenesisCreatorBinaryName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return constants.GenesisCreatorBinaryName
	}
	return filepath.Join(home, ".cargo", "bin", constants.GenesisCreatorBinaryName)
}

func cargoPath(installer Installer, override string) string {
	if override != "" {
		return override
	}
	_, goos := installer.GetArch()
	if goos == windows {
		return "cargo"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cargo"
	}
	return filepath.Join(home, ".cargo", "bin", "cargo")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
