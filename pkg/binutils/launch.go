// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package binutils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/blockwatch"
	"github.com/luxfi/lc1c/pkg/config"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/genesis"
)

const nodeLogFileName = "node.log"

// NodeArgs are the fixed flags of a single-baker local node started inside
// its chain folder.
func NodeArgs() []string {
	return []string{
		"--no-bootstrap=true",
		"--listen-port", constants.NodeListenPort,
		"--grpc2-listen-addr", constants.NodeGRPCListenAddr,
		"--grpc2-listen-port", constants.NodeGRPCListenPort,
		"--data-dir", ".",
		"--config-dir", ".",
		"--baker-credentials-file", constants.NodeBakerCredentials,
	}
}

// LaunchTemplate prepares a chain folder for payload and starts the node in
// it. Fresh launches get a new chain-N folder with the generator input and
// run the generator first; FromExisting restarts the named folder as is.
func (m *Manager) LaunchTemplate(ctx context.Context, payload genesis.LaunchPayload) error {
	if m.Running() {
		return ErrChainRunning
	}

	var (
		folder string
		err    error
	)
	switch p := payload.(type) {
	case genesis.EasyPayload:
		folder, err = m.prepareFolder(func(folder string) error {
			url := m.setting((*config.Config).TemplateURL)
			if url == "" {
				url = constants.TemplateGenesisURL
			}
			return DownloadFile(ctx, url, m.app.GetGenesisConfigPath(folder), nil)
		})
	case genesis.AdvancedPayload:
		folder, err = m.prepareFolder(func(folder string) error {
			bs, err := genesis.SpecToTOML(p.Spec)
			if err != nil {
				return err
			}
			return m.app.WriteGenesisConfig(folder, bs)
		})
	case genesis.ExpertPayload:
		folder, err = m.prepareFolder(func(folder string) error {
			return m.app.WriteGenesisConfig(folder, []byte(p.Document))
		})
	case genesis.FromExistingPayload:
		if !m.app.ChainFolderExists(p.Folder) {
			return fmt.Errorf("%w: %s", ErrUnknownFolder, p.Folder)
		}
		folder = p.Folder
	default:
		return fmt.Errorf("%w: %T", genesis.ErrUnknownLaunchMode, payload)
	}
	if err != nil {
		return err
	}

	if payload.Mode() != genesis.ModeFromExisting {
		if err := m.generate(ctx, folder); err != nil {
			return err
		}
	}
	return m.startNode(folder)
}

// prepareFolder creates the next chain folder and lets write fill in its
// generator input.
func (m *Manager) prepareFolder(write func(folder string) error) (string, error) {
	folder, err := m.app.CreateNextChainFolder()
	if err != nil {
		return "", err
	}
	if err := write(folder); err != nil {
		return "", fmt.Errorf("failed writing genesis config for %s: %w", folder, err)
	}
	m.log.Info("prepared chain folder", zap.String("folder", folder))
	return folder, nil
}

func (m *Manager) generate(ctx context.Context, folder string) error {
	creator := genesisCreatorPath(m.installer, m.setting((*config.Config).GenesisCreatorPath))
	stdout, stderr, err := m.runCmd(ctx, m.app.GetChainDir(folder), nil,
		creator, "generate", "--config", m.app.GetGenesisConfigPath(folder))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &GeneratorError{Stderr: stderr}
		}
		return fmt.Errorf("failed running genesis-creator: %w", err)
	}
	m.log.Debug("genesis-creator done", zap.String("output", strings.TrimSpace(stdout)))
	return nil
}

// startNode spawns the node detached from any request context and watches
// its stderr for block activity until it exits.
func (m *Manager) startNode(folder string) error {
	bin, err := FindNodeExecutable(m.installer, m.setting((*config.Config).NodePath))
	if err != nil {
		return err
	}
	dir := m.app.GetChainDir(folder)
	logFile, err := os.Create(filepath.Join(dir, nodeLogFileName))
	if err != nil {
		return err
	}

	cmd := exec.Command(bin, NodeArgs()...)
	cmd.Dir = dir
	cmd.Stdout = logFile
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = logFile.Close()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.node != nil {
		_ = logFile.Close()
		return ErrChainRunning
	}
	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return fmt.Errorf("failed to start the node: %w", err)
	}
	m.log.Info("node started", zap.String("folder", folder), zap.Int("pid", cmd.Process.Pid))

	watchCtx, stop := context.WithCancel(context.Background())
	exited := make(chan struct{})
	m.node = cmd
	m.killing = false
	m.stop = stop
	m.exited = exited

	watcher := blockwatch.New(m.source, m.feed, blockwatch.WithLogger(m.log))
	go func() {
		defer close(exited)
		if err := watcher.Watch(watchCtx, stderr); err != nil && !errors.Is(err, context.Canceled) {
			m.log.Warn("block watcher stopped", zap.Error(err))
		}
		waitErr := cmd.Wait()
		_ = logFile.Close()
		stop()

		m.mu.Lock()
		expected := m.killing
		onExit := m.onExit
		if m.node == cmd {
			m.node = nil
			m.killing = false
			m.stop = nil
		}
		m.mu.Unlock()

		m.log.Info("node exited", zap.String("folder", folder), zap.Bool("killed", expected), zap.Error(waitErr))
		if !expected && onExit != nil {
			onExit(waitErr)
		}
	}()
	return nil
}
