// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statemachine

import "fmt"

// StateType is a lifecycle step of a local chain session
type StateType int

const (
	// StateUninstalled is when no node software was found
	StateUninstalled StateType = iota
	// StateInstalling is when the installer is running
	StateInstalling
	// StateInstalled is when the node software is present but not verified
	StateInstalled
	// StateVerificationPending is when the version check is running
	StateVerificationPending
	// StateVerified is when the node software answered the version check
	StateVerified
	// StateConfiguringReady is when a launch payload was submitted
	StateConfiguringReady
	// StateLaunching is when the generator and node are being started
	StateLaunching
	// StateRunning is when the chain produces blocks
	StateRunning
	// StateTerminated is when the chain was killed
	StateTerminated
	// StateFailed is when the session hit a fault
	StateFailed
)

var stateNames = map[StateType]string{
	StateUninstalled:         "Uninstalled",
	StateInstalling:          "Installing",
	StateInstalled:           "Installed",
	StateVerificationPending: "VerificationPending",
	StateVerified:            "Verified",
	StateConfiguringReady:    "ConfiguringReady",
	StateLaunching:           "Launching",
	StateRunning:             "Running",
	StateTerminated:          "Terminated",
	StateFailed:              "Failed",
}

func (s StateType) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StateType(%d)", int(s))
}

// Terminal reports whether no transition leaves the state.
func (s StateType) Terminal() bool {
	return s == StateTerminated || s == StateFailed
}

// States lists every state in declaration order.
func States() []StateType {
	return []StateType{
		StateUninstalled, StateInstalling, StateInstalled, StateVerificationPending,
		StateVerified, StateConfiguringReady, StateLaunching, StateRunning,
		StateTerminated, StateFailed,
	}
}

// EventType is a request or a completion signal fed to the machine
type EventType int

const (
	EventInstallRequested EventType = iota
	EventInstallSucceeded
	EventInstallFailed
	EventVerifyRequested
	EventVerifySucceeded
	EventVerifyFailed
	EventConfigSubmitted
	EventLaunchRequested
	EventLaunchAcked
	EventLaunchFailed
	EventKillRequested
	EventKillSucceeded
	EventKillFailed
	EventFault
)

var eventNames = map[EventType]string{
	EventInstallRequested: "InstallRequested",
	EventInstallSucceeded: "InstallSucceeded",
	EventInstallFailed:    "InstallFailed",
	EventVerifyRequested:  "VerifyRequested",
	EventVerifySucceeded:  "VerifySucceeded",
	EventVerifyFailed:     "VerifyFailed",
	EventConfigSubmitted:  "ConfigSubmitted",
	EventLaunchRequested:  "LaunchRequested",
	EventLaunchAcked:      "LaunchAcked",
	EventLaunchFailed:     "LaunchFailed",
	EventKillRequested:    "KillRequested",
	EventKillSucceeded:    "KillSucceeded",
	EventKillFailed:       "KillFailed",
	EventFault:            "Fault",
}

func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(e))
}

// Events lists every event in declaration order.
func Events() []EventType {
	events := make([]EventType, 0, len(eventNames))
	for e := EventInstallRequested; e <= EventFault; e++ {
		events = append(events, e)
	}
	return events
}

// EffectType is what the driver must do after a transition
type EffectType int

const (
	EffectNone EffectType = iota
	EffectReject
	EffectCallInstall
	EffectCallVerify
	EffectStorePayload
	EffectCallLaunch
	EffectEnterMonitor
	EffectCallKill
	EffectExitMonitor
	EffectReport
)

var effectNames = map[EffectType]string{
	EffectNone:         "None",
	EffectReject:       "Reject",
	EffectCallInstall:  "CallInstall",
	EffectCallVerify:   "CallVerify",
	EffectStorePayload: "StorePayload",
	EffectCallLaunch:   "CallLaunch",
	EffectEnterMonitor: "EnterMonitor",
	EffectCallKill:     "CallKill",
	EffectExitMonitor:  "ExitMonitor",
	EffectReport:       "Report",
}

func (e EffectType) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EffectType(%d)", int(e))
}

// RejectedError is returned when an event is not valid in the current state.
type RejectedError struct {
	State StateType
	Event EventType
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s is not allowed while %s", e.Event, e.State)
}
