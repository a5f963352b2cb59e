// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statemachine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionIsTotal(t *testing.T) {
	for _, s := range States() {
		for _, e := range Events() {
			next, effect := Transition(s, e)
			require.Contains(t, States(), next, "%s/%s", s, e)
			if effect == EffectReject {
				require.Equal(t, s, next, "rejected %s/%s must not move", s, e)
			}
		}
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	for _, s := range []StateType{StateTerminated, StateFailed} {
		for _, e := range Events() {
			next, effect := Transition(s, e)
			require.Equal(t, s, next)
			require.Equal(t, EffectReject, effect)
		}
	}
}

func TestHappyPath(t *testing.T) {
	steps := []struct {
		event  EventType
		state  StateType
		effect EffectType
	}{
		{EventInstallRequested, StateInstalling, EffectCallInstall},
		{EventInstallSucceeded, StateInstalled, EffectNone},
		{EventVerifyRequested, StateVerificationPending, EffectCallVerify},
		{EventVerifySucceeded, StateVerified, EffectNone},
		{EventConfigSubmitted, StateConfiguringReady, EffectStorePayload},
		{EventLaunchRequested, StateLaunching, EffectCallLaunch},
		{EventLaunchAcked, StateRunning, EffectEnterMonitor},
		{EventKillRequested, StateRunning, EffectCallKill},
		{EventKillSucceeded, StateTerminated, EffectExitMonitor},
	}
	state := StateUninstalled
	for _, step := range steps {
		var effect EffectType
		state, effect = Transition(state, step.event)
		require.Equal(t, step.state, state, step.event.String())
		require.Equal(t, step.effect, effect, step.event.String())
	}
}

func TestFailuresReturnToPreCallState(t *testing.T) {
	tests := []struct {
		from  StateType
		event EventType
		to    StateType
	}{
		{StateInstalling, EventInstallFailed, StateUninstalled},
		{StateVerificationPending, EventVerifyFailed, StateInstalled},
		{StateLaunching, EventLaunchFailed, StateConfiguringReady},
		{StateRunning, EventKillFailed, StateRunning},
	}
	for _, tt := range tests {
		next, effect := Transition(tt.from, tt.event)
		require.Equal(t, tt.to, next)
		require.Equal(t, EffectReport, effect)
	}
}

func TestFaultFromAnyLiveState(t *testing.T) {
	for _, s := range States() {
		if s.Terminal() {
			continue
		}
		next, effect := Transition(s, EventFault)
		require.Equal(t, StateFailed, next)
		require.Equal(t, EffectExitMonitor, effect)
	}
}

func TestLaunchWhileLaunchingIsRejected(t *testing.T) {
	next, effect := Transition(StateLaunching, EventLaunchRequested)
	require.Equal(t, StateLaunching, next)
	require.Equal(t, EffectReject, effect)
}

func TestNames(t *testing.T) {
	require.Equal(t, "ConfiguringReady", StateConfiguringReady.String())
	require.Equal(t, "KillFailed", EventKillFailed.String())
	require.Equal(t, "EnterMonitor", EffectEnterMonitor.String())
	require.Equal(t, "StateType(42)", StateType(42).String())
	err := &RejectedError{State: StateLaunching, Event: EventLaunchRequested}
	require.Equal(t, "LaunchRequested is not allowed while Launching", err.Error())
}
