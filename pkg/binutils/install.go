// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/luxfi/lc1c/pkg/config"
	"github.com/luxfi/lc1c/pkg/constants"
)

//go:embed assets/install_concordium_debian.sh
var debianInstallScript []byte

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// NodeVersion pulls the semantic version out of `--version` output, e.g.
// "concordium-node 6.0.4" gives "v6.0.4".
func NodeVersion(output string) (string, bool) {
	v := "v" + versionPattern.FindString(output)
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

// Install downloads and installs the node package unless a node executable
// is already present.
func (m *Manager) Install(ctx context.Context) error {
	if bin, err := FindNodeExecutable(m.installer, m.setting((*config.Config).NodePath)); err == nil {
		m.log.Info("node already installed, skipping", zap.String("path", bin))
		return nil
	}
	url, fileName, err := NodePackage(m.installer)
	if err != nil {
		return err
	}
	destination := filepath.Join(m.app.GetDownloadsDir(), fileName)
	if err := DownloadFile(ctx, url, destination, m.progress); err != nil {
		return err
	}
	m.log.Info("downloaded node package", zap.String("path", destination))

	_, goos := m.installer.GetArch()
	var cmd *exec.Cmd
	switch goos {
	case linux:
		script, err := m.installScript()
		if err != nil {
			return err
		}
		cmd = exec.CommandContext(ctx, "pkexec", "bash", script, destination)
	case windows:
		cmd = exec.CommandContext(ctx, "msiexec", "/i", destination, "/passive", "/norestart")
	case darwin:
		cmd = exec.CommandContext(ctx, "sudo", "installer", "-pkg", destination, "-target", "/")
	default:
		return fmt.Errorf("unsupported OS: %s", goos)
	}
	// installers may ask for a password
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if goos == windows {
			return fmt.Errorf("installation failed. Ensure you are running with administrative privileges: %w", err)
		}
		return fmt.Errorf("installation failed: %w", err)
	}
	return nil
}

// installScript returns the configured install script, or writes the bundled
// one next to the downloads.
func (m *Manager) installScript() (string, error) {
	if script := m.setting((*config.Config).InstallScript); script != "" {
		return script, nil
	}
	path := filepath.Join(m.app.GetDownloadsDir(), constants.DebianInstallScript)
	if err := os.WriteFile(path, debianInstallScript, constants.ReadWriteExecute); err != nil {
		return "", fmt.Errorf("failed writing install script: %w", err)
	}
	return path, nil
}

// VerifyInstallation runs the node with --version and returns what it
// printed.
func (m *Manager) VerifyInstallation(ctx context.Context) (string, error) {
	bin, err := FindNodeExecutable(m.installer, m.setting((*config.Config).NodePath))
	if err != nil {
		return "", err
	}
	stdout, stderr, err := m.runCmd(ctx, "", nil, bin, "--version")
	if strings.Contains(stderr, "command not found") || strings.Contains(stderr, "No such file or directory") {
		return "", ErrNodeNotInstalled
	}
	if err != nil {
		return "", commandFailure(stderr, err)
	}
	out := strings.TrimSpace(stdout)
	if v, ok := NodeVersion(out); ok {
		m.log.Info("node verified", zap.String("version", v))
	}
	return out, nil
}

// InstallGenesisCreator builds the generator with cargo. Windows clones the
// tools repository first and installs from the local path.
func (m *Manager) InstallGenesisCreator(ctx context.Context) (string, error) {
	creator := genesisCreatorPath(m.installer, m.setting((*config.Config).GenesisCreatorPath))
	if out, _, err := m.runCmd(ctx, "", nil, creator, "--version"); err == nil {
		m.log.Info("genesis-creator already installed", zap.String("version", strings.TrimSpace(out)))
		return "genesis-creator is already installed", nil
	}

	cargo := cargoPath(m.installer, m.setting((*config.Config).CargoPath))
	env := []string{"CARGO_NET_GIT_FETCH_WITH_CLI=true"}

	_, goos := m.installer.GetArch()
	if goos != windows {
		stdout, stderr, err := m.runCmd(ctx, "", env, cargo,
			"install", "--git", constants.GenesisCreatorRepoURL, constants.GenesisCreatorBinaryName, "--locked")
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return "", errors.New(stderr)
			}
			return "", fmt.Errorf("cargo install command failed: %w", err)
		}
		if out := strings.TrimSpace(stdout); out != "" {
			return out, nil
		}
		return "Successfully installed genesis-creator", nil
	}

	if _, _, err := m.runCmd(ctx, "", nil, cargo, "--version"); err != nil {
		return "", ErrCargoNotFound
	}
	workDir, err := os.MkdirTemp("", "lc1c-genesis-creator")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			m.log.Warn("failed deleting cloned repository", zap.Error(err))
		}
	}()
	repoDir := filepath.Join(workDir, constants.GenesisCreatorRepoDir)
	if _, err := git.PlainCloneContext(ctx, repoDir, false, &git.CloneOptions{
		URL:               constants.GenesisCreatorRepoURL,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}); err != nil {
		return "", fmt.Errorf("failed to clone the repository: %w", err)
	}
	if _, stderr, err := m.runCmd(ctx, workDir, env, cargo,
		"install", "--path", constants.GenesisCreatorCratePath, "--locked"); err != nil {
		return "", fmt.Errorf("failed to install with cargo: %w", commandFailure(stderr, err))
	}
	return "Successfully installed genesis-creator", nil
}
