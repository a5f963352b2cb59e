// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrInFlight rejects a call while another external call is outstanding.
	ErrInFlight = errors.New("another operation is still in progress")
	// ErrNoChainRunning is returned by a process manager asked to kill a chain
	// that is already gone. The orchestrator treats it as a successful kill.
	ErrNoChainRunning = errors.New("no chain process is running")
	// ErrSessionEnded rejects calls after the session reached a terminal state.
	ErrSessionEnded = errors.New("session has ended")
	ErrNilPayload   = errors.New("launch payload is nil")
)

type InstallError struct {
	Err error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("node install failed: %v", e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("node verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

type GenesisCreatorError struct {
	Err error
}

func (e *GenesisCreatorError) Error() string {
	return fmt.Sprintf("genesis creator install failed: %v", e.Err)
}

func (e *GenesisCreatorError) Unwrap() error {
	return e.Err
}

// LaunchError carries generator or node output verbatim in Err.
type LaunchError struct {
	Mode string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s launch failed: %v", e.Mode, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

type KillError struct {
	Err error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("failed killing chain: %v", e.Err)
}

func (e *KillError) Unwrap() error {
	return e.Err
}
