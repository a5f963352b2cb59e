// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package binutils drives the external node and genesis-creator programs on
// behalf of the orchestrator.
package binutils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/blockwatch"
	"github.com/luxfi/lc1c/pkg/config"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/orchestrator"
)

var (
	ErrNodeNotFound     = errors.New("concordium node executable not found")
	ErrNodeNotInstalled = errors.New("concordium node is not installed")
	ErrCargoNotFound    = errors.New("cargo is not found in your PATH. Please install Rust and Cargo, and ensure they are in your PATH")
	ErrChainRunning     = errors.New("a chain is already running")
	ErrUnknownFolder    = errors.New("chain folder does not exist")
)

// GeneratorError carries the generator's stderr unchanged so the operator
// sees exactly what it complained about.
type GeneratorError struct {
	Stderr string
}

func (e *GeneratorError) Error() string {
	return e.Stderr
}

var _ orchestrator.ProcessManager = (*Manager)(nil)

// Manager implements orchestrator.ProcessManager on the local machine. It
// tracks at most one node child process.
type Manager struct {
	app       *application.Lux
	log       luxlog.Logger
	feed      *events.Feed
	installer Installer
	source    blockwatch.Source
	progress  io.Writer
	onExit    func(error)

	mu      sync.Mutex
	node    *exec.Cmd
	killing bool
	stop    context.CancelFunc
	exited  chan struct{}
}

type Option func(*Manager)

func WithLogger(log luxlog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func WithInstaller(installer Installer) Option {
	return func(m *Manager) { m.installer = installer }
}

// WithSource replaces the node gRPC client.
func WithSource(source blockwatch.Source) Option {
	return func(m *Manager) { m.source = source }
}

// WithProgress sets where download progress is drawn.
func WithProgress(w io.Writer) Option {
	return func(m *Manager) { m.progress = w }
}

// WithOnExit registers fn for a node that exits without KillChain.
func WithOnExit(fn func(error)) Option {
	return func(m *Manager) { m.onExit = fn }
}

func NewManager(app *application.Lux, feed *events.Feed, opts ...Option) *Manager {
	m := &Manager{
		app:       app,
		log:       app.Log,
		feed:      feed,
		installer: NewInstaller(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = luxlog.NewNoOpLogger()
	}
	if m.source == nil {
		m.source = blockwatch.NewGRPCSource(m.setting((*config.Config).NodeGRPCAddr))
	}
	return m
}

// SetOnExit replaces the unexpected exit callback. Callers that build the
// manager before the orchestrator wire it here.
func (m *Manager) SetOnExit(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExit = fn
}

// Running reports whether a node child is tracked.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.node != nil
}

// Close releases the block source connection. A running node is left alone.
func (m *Manager) Close() error {
	if c, ok := m.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (m *Manager) ListChainFolders(context.Context) ([]string, error) {
	return m.app.ListChainFolders()
}

func (m *Manager) setting(get func(*config.Config) string) string {
	if m.app.Conf == nil {
		return ""
	}
	return get(m.app.Conf)
}

// runCmd runs name to completion and returns what it wrote to stdout and stderr.
func (m *Manager) runCmd(ctx context.Context, dir string, env []string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	m.log.Debug("running command", zap.String("cmd", name), zap.Strings("args", args), zap.String("dir", dir))
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// commandFailure prefers the program's own stderr over the exit status.
func commandFailure(stderr string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return errors.New(msg)
		}
	}
	return err
}

// NodeInstalled reports whether the node executable can be found.
func (m *Manager) NodeInstalled() bool {
	_, err := FindNodeExecutable(m.installer, m.setting((*config.Config).NodePath))
	return err == nil
}
