// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statemachine

type key struct {
	state StateType
	event EventType
}

type outcome struct {
	next   StateType
	effect EffectType
}

var table = map[key]outcome{
	{StateUninstalled, EventInstallRequested}: {StateInstalling, EffectCallInstall},
	{StateInstalling, EventInstallSucceeded}:  {StateInstalled, EffectNone},
	{StateInstalling, EventInstallFailed}:     {StateUninstalled, EffectReport},

	{StateInstalled, EventVerifyRequested}:          {StateVerificationPending, EffectCallVerify},
	{StateVerified, EventVerifyRequested}:           {StateVerificationPending, EffectCallVerify},
	{StateVerificationPending, EventVerifySucceeded}: {StateVerified, EffectNone},
	{StateVerificationPending, EventVerifyFailed}:    {StateInstalled, EffectReport},

	{StateVerified, EventConfigSubmitted}:         {StateConfiguringReady, EffectStorePayload},
	{StateConfiguringReady, EventConfigSubmitted}: {StateConfiguringReady, EffectStorePayload},

	{StateConfiguringReady, EventLaunchRequested}: {StateLaunching, EffectCallLaunch},
	{StateLaunching, EventLaunchAcked}:            {StateRunning, EffectEnterMonitor},
	{StateLaunching, EventLaunchFailed}:           {StateConfiguringReady, EffectReport},

	{StateRunning, EventKillRequested}: {StateRunning, EffectCallKill},
	{StateRunning, EventKillSucceeded}: {StateTerminated, EffectExitMonitor},
	{StateRunning, EventKillFailed}:    {StateRunning, EffectReport},
}

// Transition is total: every (state, event) pair yields a state and an
// effect. Pairs outside the table keep the state and yield EffectReject.
// A fault moves any non terminal state to StateFailed.
func Transition(state StateType, event EventType) (StateType, EffectType) {
	if state.Terminal() {
		return state, EffectReject
	}
	if event == EventFault {
		return StateFailed, EffectExitMonitor
	}
	if out, ok := table[key{state, event}]; ok {
		return out.next, out.effect
	}
	return state, EffectReject
}
