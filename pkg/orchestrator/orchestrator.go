// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package orchestrator drives the lifecycle of one local chain session:
// install, verify, configure, launch, monitor and terminate.
package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/luxfi/lc1c/pkg/genesis"
	"github.com/luxfi/lc1c/pkg/statemachine"
	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"
)

// ProcessManager runs the installers, the generator and the node.
type ProcessManager interface {
	Install(ctx context.Context) error
	VerifyInstallation(ctx context.Context) (string, error)
	InstallGenesisCreator(ctx context.Context) (string, error)
	ListChainFolders(ctx context.Context) ([]string, error)
	LaunchTemplate(ctx context.Context, payload genesis.LaunchPayload) error
	KillChain(ctx context.Context) error
}

// Transition is a state change seen by observers.
type Transition struct {
	From   statemachine.StateType
	To     statemachine.StateType
	Event  statemachine.EventType
	Effect statemachine.EffectType
	Reason string
}

type Option func(*Orchestrator)

// WithObserver registers fn for every state change and every reported
// failure. fn runs on the calling goroutine after the state lock is released.
func WithObserver(fn func(Transition)) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, fn)
	}
}

// WithInitialState starts the session somewhere other than Uninstalled,
// typically Installed when the node binary is already present.
func WithInitialState(state statemachine.StateType) Option {
	return func(o *Orchestrator) {
		o.state = state
	}
}

func WithLogger(log luxlog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// Orchestrator owns the lifecycle state. External calls run outside the lock
// with the in-flight flag set; a second call meanwhile gets ErrInFlight.
type Orchestrator struct {
	mu        sync.Mutex
	pm        ProcessManager
	log       luxlog.Logger
	state     statemachine.StateType
	reason    string
	payload   genesis.LaunchPayload
	version   string
	pending   bool
	observers []func(Transition)
}

func New(pm ProcessManager, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pm:    pm,
		log:   luxlog.NewNoOpLogger(),
		state: statemachine.StateUninstalled,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() statemachine.StateType {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Reason is the fault reason once the session failed.
func (o *Orchestrator) Reason() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reason
}

// Payload is the last submitted launch payload, nil before submission.
func (o *Orchestrator) Payload() genesis.LaunchPayload {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.payload
}

// Version is the node version reported by the last successful verification.
func (o *Orchestrator) Version() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.version
}

// InFlight reports whether an external call is outstanding.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

func (o *Orchestrator) Install(ctx context.Context) error {
	if _, err := o.begin(statemachine.EventInstallRequested); err != nil {
		return err
	}
	err := o.pm.Install(ctx)
	if err != nil {
		o.finish(statemachine.EventInstallFailed, err.Error(), false)
		return &InstallError{Err: err}
	}
	o.finish(statemachine.EventInstallSucceeded, "", false)
	return nil
}

// Verify runs the version check. Running it again from Verified re-checks
// the installation; a success then reports no state change and a failure
// drops back to Installed.
func (o *Orchestrator) Verify(ctx context.Context) (string, error) {
	from, err := o.begin(statemachine.EventVerifyRequested)
	if err != nil {
		return "", err
	}
	reverify := from == statemachine.StateVerified
	version, err := o.pm.VerifyInstallation(ctx)
	if err != nil {
		o.finish(statemachine.EventVerifyFailed, err.Error(), reverify)
		return "", &VerificationError{Err: err}
	}
	o.mu.Lock()
	o.version = version
	o.mu.Unlock()
	o.finish(statemachine.EventVerifySucceeded, "", reverify)
	return version, nil
}

// SubmitConfig stores the payload for the next launch. No external call is
// made; a later submission replaces an earlier one.
func (o *Orchestrator) SubmitConfig(payload genesis.LaunchPayload) error {
	if payload == nil {
		return ErrNilPayload
	}
	o.mu.Lock()
	t, err := o.apply(statemachine.EventConfigSubmitted)
	if err == nil {
		o.payload = payload
	}
	o.mu.Unlock()
	if err != nil {
		return err
	}
	o.notify(t)
	return nil
}

func (o *Orchestrator) Launch(ctx context.Context) error {
	if _, err := o.begin(statemachine.EventLaunchRequested); err != nil {
		return err
	}
	payload := o.Payload()
	if payload == nil {
		o.finish(statemachine.EventLaunchFailed, ErrNilPayload.Error(), false)
		return &LaunchError{Err: ErrNilPayload}
	}
	err := o.pm.LaunchTemplate(ctx, payload)
	if err != nil {
		o.finish(statemachine.EventLaunchFailed, err.Error(), false)
		return &LaunchError{Mode: payload.Mode(), Err: err}
	}
	o.finish(statemachine.EventLaunchAcked, "", false)
	return nil
}

// Kill stops the chain. A chain that is already gone counts as killed.
func (o *Orchestrator) Kill(ctx context.Context) error {
	if _, err := o.begin(statemachine.EventKillRequested); err != nil {
		return err
	}
	err := o.pm.KillChain(ctx)
	if err != nil && !errors.Is(err, ErrNoChainRunning) {
		o.finish(statemachine.EventKillFailed, err.Error(), false)
		return &KillError{Err: err}
	}
	if err != nil {
		o.log.Warn("chain was not running", zap.Error(err))
	}
	o.finish(statemachine.EventKillSucceeded, "", false)
	return nil
}

// InstallGenesisCreator installs the generator binary. It shares the
// in-flight guard but leaves the lifecycle state alone.
func (o *Orchestrator) InstallGenesisCreator(ctx context.Context) (string, error) {
	o.mu.Lock()
	switch {
	case o.pending:
		o.mu.Unlock()
		return "", ErrInFlight
	case o.state.Terminal():
		o.mu.Unlock()
		return "", ErrSessionEnded
	}
	o.pending = true
	o.mu.Unlock()

	out, err := o.pm.InstallGenesisCreator(ctx)

	o.mu.Lock()
	o.pending = false
	o.mu.Unlock()
	if err != nil {
		return "", &GenesisCreatorError{Err: err}
	}
	return out, nil
}

// Fault moves a live session to Failed, e.g. when the node dies on its own.
func (o *Orchestrator) Fault(reason string) error {
	o.mu.Lock()
	t, err := o.apply(statemachine.EventFault)
	if err == nil {
		o.reason = reason
		t.Reason = reason
	}
	o.mu.Unlock()
	if err != nil {
		return err
	}
	o.log.Error("session failed", "reason", reason)
	o.notify(t)
	return nil
}

// begin checks the guard, applies a request event and marks the call in flight.
func (o *Orchestrator) begin(event statemachine.EventType) (statemachine.StateType, error) {
	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		o.log.Debug("rejecting call while another is in flight", "event", event.String())
		return 0, ErrInFlight
	}
	from := o.state
	t, err := o.apply(event)
	if err != nil {
		o.mu.Unlock()
		return from, err
	}
	o.pending = true
	o.mu.Unlock()

	// re-verification stays quiet unless it ends somewhere else
	if from != statemachine.StateVerified || event != statemachine.EventVerifyRequested {
		o.notify(t)
	}
	return from, nil
}

// finish clears the in-flight flag and applies the completion event. With
// quiet set, observers only hear about a net change from Verified.
func (o *Orchestrator) finish(event statemachine.EventType, reason string, quiet bool) {
	o.mu.Lock()
	o.pending = false
	t, err := o.apply(event)
	o.mu.Unlock()
	if err != nil {
		// a fault arrived while the call was outstanding
		o.log.Debug("dropping completion", "event", event.String(), "error", err)
		return
	}
	t.Reason = reason
	if reason != "" {
		o.log.Warn("operation failed", "event", event.String(), "reason", reason)
	}
	if quiet {
		if t.To == statemachine.StateVerified {
			return
		}
		t.From = statemachine.StateVerified
	}
	o.notify(t)
}

// apply runs the transition table. The caller holds the lock.
func (o *Orchestrator) apply(event statemachine.EventType) (Transition, error) {
	next, effect := statemachine.Transition(o.state, event)
	if effect == statemachine.EffectReject {
		return Transition{}, &statemachine.RejectedError{State: o.state, Event: event}
	}
	t := Transition{From: o.state, To: next, Event: event, Effect: effect}
	o.state = next
	return t, nil
}

func (o *Orchestrator) notify(t Transition) {
	if t.From == t.To && t.Effect != statemachine.EffectReport {
		return
	}
	for _, fn := range o.observers {
		fn(t)
	}
}
