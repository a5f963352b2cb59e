// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	luxlog "github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/orchestrator/mocks"
	"github.com/luxfi/lc1c/pkg/scratch"
	"github.com/luxfi/lc1c/pkg/statemachine"
)

// exitingPM is a process manager that can report an unexpected node exit.
type exitingPM struct {
	mocks.ProcessManager
	mu     sync.Mutex
	onExit func(error)
	closed int
}

func (p *exitingPM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *exitingPM) SetOnExit(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onExit = fn
}

func (p *exitingPM) exit(err error) {
	p.mu.Lock()
	fn := p.onExit
	p.mu.Unlock()
	fn(err)
}

func newTestApp(t *testing.T) *application.Lux {
	app := application.New()
	app.Setup(t.TempDir(), luxlog.NewNoOpLogger(), nil, nil)
	return app
}

func newRunningSession(t *testing.T, pm *exitingPM) (*Session, *events.Feed, *scratch.Store) {
	t.Helper()
	ctx := context.Background()
	pm.On("VerifyInstallation", ctx).Return("concordium-node 6.0.4", nil)
	pm.On("LaunchTemplate", ctx, genesis.EasyPayload{}).Return(nil)

	store, err := scratch.OpenInMemory()
	require.NoError(t, err)
	feed := events.NewFeed()
	s, err := New(newTestApp(t), pm, feed,
		WithStore(store),
		WithInitialState(statemachine.StateInstalled),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Orchestrator().Verify(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Submit(genesis.TemplateSource{}))
	require.NoError(t, s.Orchestrator().Launch(ctx))
	require.Equal(t, statemachine.StateRunning, s.Orchestrator().State())
	return s, feed, store
}

func TestSessionMonitorsWhileRunning(t *testing.T) {
	ctx := context.Background()
	pm := &exitingPM{}
	pm.On("KillChain", ctx).Return(nil).Once()
	s, feed, store := newRunningSession(t, pm)

	require.True(t, s.Monitoring())
	require.Equal(t, 1, feed.Subscribers(constants.NewBlockTopic))

	feed.Publish(events.NewBlockEvent(events.NewBlock{
		Number:  5,
		Hash:    "h5",
		Amounts: map[string]string{"3aa": "1", "4zb": "2"},
	}))
	require.Eventually(t, func() bool {
		return s.Reconciler().Snapshot().Number == 5
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Reconciler().SetFilter("4z"))
	require.Equal(t, map[string]string{"4zb": "2"}, map[string]string(s.Reconciler().View()))
	_, err := store.Get(constants.ScratchKey)
	require.NoError(t, err)

	require.NoError(t, s.Orchestrator().Kill(ctx))
	require.Equal(t, statemachine.StateTerminated, s.Orchestrator().State())
	require.False(t, s.Monitoring())
	require.Zero(t, feed.Subscribers(constants.NewBlockTopic))
	_, err = store.Get(constants.ScratchKey)
	require.ErrorIs(t, err, scratch.ErrNotFound)
	require.Empty(t, s.Reconciler().Snapshot().Amounts)
	pm.AssertExpectations(t)
}

func TestSessionSubmitInvalidKeepsState(t *testing.T) {
	ctx := context.Background()
	pm := &exitingPM{}
	pm.On("VerifyInstallation", ctx).Return("concordium-node 6.0.4", nil)

	s, err := New(newTestApp(t), pm, events.NewFeed(), WithInitialState(statemachine.StateInstalled))
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Orchestrator().Verify(ctx)
	require.NoError(t, err)

	draft := genesis.DefaultSpec()
	draft.ProtocolVersion = "9"
	err = s.Submit(genesis.StructuredFormSource{Draft: draft})
	require.ErrorIs(t, err, genesis.ErrAssembly)
	require.Equal(t, statemachine.StateVerified, s.Orchestrator().State())
	require.Nil(t, s.Orchestrator().Payload())
}

func TestSessionNodeExitFails(t *testing.T) {
	pm := &exitingPM{}
	s, feed, _ := newRunningSession(t, pm)

	pm.exit(errors.New("signal: segmentation fault"))
	require.Equal(t, statemachine.StateFailed, s.Orchestrator().State())
	require.Contains(t, s.Orchestrator().Reason(), "segmentation fault")
	require.False(t, s.Monitoring())
	require.Zero(t, feed.Subscribers(constants.NewBlockTopic))

	// a second report after the session ended is ignored
	pm.exit(nil)
	require.Equal(t, statemachine.StateFailed, s.Orchestrator().State())
}

func TestSessionCloseReleases(t *testing.T) {
	pm := &exitingPM{}
	s, feed, _ := newRunningSession(t, pm)

	require.NoError(t, s.Close())
	require.False(t, s.Monitoring())
	require.Zero(t, feed.Subscribers(constants.NewBlockTopic))
	require.NoError(t, s.Close())
	// the node connection is released once
	require.Equal(t, 1, pm.closed)
}

func TestNewClearsScratch(t *testing.T) {
	store, err := scratch.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, store.Put(constants.ScratchKey, []byte(`{"3aa":"1"}`)))

	s, err := New(newTestApp(t), &exitingPM{}, events.NewFeed(), WithStore(store))
	require.NoError(t, err)
	defer s.Close()

	_, err = store.Get(constants.ScratchKey)
	require.ErrorIs(t, err, scratch.ErrNotFound)
	require.Equal(t, statemachine.StateUninstalled, s.Orchestrator().State())
}

func TestSessionResolveExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	pm := &exitingPM{}
	pm.On("VerifyInstallation", ctx).Return("concordium-node 6.0.4", nil)
	pm.On("ListChainFolders", ctx).Return([]string{"chain-1", "chain-2"}, nil)

	s, err := New(newTestApp(t), pm, events.NewFeed(), WithInitialState(statemachine.StateInstalled))
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Orchestrator().Verify(ctx)
	require.NoError(t, err)

	r, err := s.SnapshotResolver(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"chain-1", "chain-2"}, r.Folders())
	require.ErrorIs(t, s.Resolve(r), genesis.ErrNoSelection)

	require.NoError(t, r.Select("chain-2"))
	require.NoError(t, s.Resolve(r))
	require.Equal(t, genesis.FromExistingPayload{Folder: "chain-2"}, s.Orchestrator().Payload())
	require.Equal(t, statemachine.StateConfiguringReady, s.Orchestrator().State())
}
