// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package session wires one operator session: the lifecycle orchestrator, the
// live state reconciler and the scratch buffer they share.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/orchestrator"
	"github.com/luxfi/lc1c/pkg/reconciler"
	"github.com/luxfi/lc1c/pkg/scratch"
	"github.com/luxfi/lc1c/pkg/statemachine"
)

// exitNotifier is implemented by process managers that can report a node
// dying on its own.
type exitNotifier interface {
	SetOnExit(fn func(error))
}

type Session struct {
	log       luxlog.Logger
	feed      *events.Feed
	pm        orchestrator.ProcessManager
	store     *scratch.Store
	orch      *orchestrator.Orchestrator
	rec       *reconciler.Reconciler
	assembler *genesis.Assembler

	mu     sync.Mutex
	handle *reconciler.Handle
	closed bool
}

type options struct {
	log       luxlog.Logger
	store     *scratch.Store
	initial   statemachine.StateType
	observers []func(orchestrator.Transition)
	onChange  []func(reconciler.Snapshot)
}

type Option func(*options)

func WithLogger(log luxlog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithStore uses store as the scratch buffer instead of opening one.
func WithStore(store *scratch.Store) Option {
	return func(o *options) { o.store = store }
}

func WithInitialState(state statemachine.StateType) Option {
	return func(o *options) { o.initial = state }
}

func WithObserver(fn func(orchestrator.Transition)) Option {
	return func(o *options) { o.observers = append(o.observers, fn) }
}

// WithOnChange is called with every snapshot the reconciler accepts.
func WithOnChange(fn func(reconciler.Snapshot)) Option {
	return func(o *options) { o.onChange = append(o.onChange, fn) }
}

// New builds a session for pm publishing on feed. The scratch buffer is
// cleared before anything else runs.
func New(app *application.Lux, pm orchestrator.ProcessManager, feed *events.Feed, opts ...Option) (*Session, error) {
	o := options{log: app.Log, initial: statemachine.StateUninstalled}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = luxlog.NewNoOpLogger()
	}

	store := o.store
	if store == nil {
		var err error
		store, err = openStore(app)
		if err != nil {
			return nil, err
		}
	}
	if err := store.Clear(); err != nil {
		return nil, fmt.Errorf("failed clearing scratch: %w", err)
	}

	s := &Session{
		log:       o.log,
		feed:      feed,
		pm:        pm,
		store:     store,
		assembler: genesis.NewAssembler(o.log),
	}
	recOpts := []reconciler.Option{reconciler.WithLogger(o.log)}
	for _, fn := range o.onChange {
		recOpts = append(recOpts, reconciler.WithOnChange(fn))
	}
	s.rec = reconciler.New(store, recOpts...)

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(o.log),
		orchestrator.WithInitialState(o.initial),
		orchestrator.WithObserver(s.onTransition),
	}
	for _, fn := range o.observers {
		orchOpts = append(orchOpts, orchestrator.WithObserver(fn))
	}
	s.orch = orchestrator.New(pm, orchOpts...)

	if n, ok := pm.(exitNotifier); ok {
		n.SetOnExit(s.onNodeExit)
	}
	return s, nil
}

func openStore(app *application.Lux) (*scratch.Store, error) {
	if app.Conf == nil || app.Conf.ScratchInMemory() {
		return scratch.OpenInMemory()
	}
	return scratch.Open(app.GetScratchDir())
}

func (s *Session) Orchestrator() *orchestrator.Orchestrator {
	return s.orch
}

func (s *Session) Reconciler() *reconciler.Reconciler {
	return s.rec
}

func (s *Session) Feed() *events.Feed {
	return s.feed
}

// Assemble turns a config source into a launch payload without touching the
// lifecycle.
func (s *Session) Assemble(src genesis.ConfigSource) (genesis.LaunchPayload, error) {
	return s.assembler.Assemble(src)
}

// Submit assembles src and hands the payload to the orchestrator. An
// assembly failure causes no transition.
func (s *Session) Submit(src genesis.ConfigSource) error {
	payload, err := s.Assemble(src)
	if err != nil {
		return err
	}
	return s.orch.SubmitConfig(payload)
}

// Resolve runs r and submits what it produced.
func (s *Session) Resolve(r genesis.Resolver) error {
	src, err := r.Resolve()
	if err != nil {
		return err
	}
	return s.Submit(src)
}

// SnapshotResolver lists the existing chain folders through the process
// manager.
func (s *Session) SnapshotResolver(ctx context.Context) (*genesis.SnapshotResolver, error) {
	return genesis.NewSnapshotResolver(ctx, s.pm)
}

// Monitoring reports whether a reconciler handle is live.
func (s *Session) Monitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

func (s *Session) onTransition(t orchestrator.Transition) {
	switch t.Effect {
	case statemachine.EffectEnterMonitor:
		s.startMonitor()
	case statemachine.EffectExitMonitor:
		s.stopMonitor()
	}
}

func (s *Session) startMonitor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.handle != nil {
		return
	}
	h, err := s.rec.Monitor(context.Background(), s.feed)
	if err != nil {
		s.log.Error("failed starting monitor", zap.Error(err))
		return
	}
	s.handle = h
}

func (s *Session) stopMonitor() {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()
	h.Release()
}

// onNodeExit fails a running session whose node died without a kill.
func (s *Session) onNodeExit(err error) {
	reason := "node exited"
	if err != nil {
		reason = fmt.Sprintf("node exited: %v", err)
	}
	if s.orch.State() != statemachine.StateRunning {
		s.log.Debug("ignoring node exit", zap.String("state", s.orch.State().String()))
		return
	}
	if ferr := s.orch.Fault(reason); ferr != nil {
		var rejected *statemachine.RejectedError
		if !errors.As(ferr, &rejected) {
			s.log.Warn("failed recording fault", zap.Error(ferr))
		}
	}
}

// Close releases the monitor, the scratch buffer and the process manager's
// node connection. The node is left alone; kill it through the orchestrator
// first when it should stop.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	h := s.handle
	s.handle = nil
	s.mu.Unlock()

	h.Release()
	clearErr := s.store.Clear()
	closeErr := s.store.Close()
	var pmErr error
	if c, ok := s.pm.(io.Closer); ok {
		pmErr = c.Close()
	}
	return errors.Join(clearErr, closeErr, pmErr)
}
