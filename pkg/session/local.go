// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package session

import (
	"io"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/binutils"
	"github.com/luxfi/lc1c/pkg/events"
	"github.com/luxfi/lc1c/pkg/statemachine"
)

// NewLocal builds a session driving the node on this machine. The session
// starts Installed when the node executable is already present. Download
// progress is drawn on progress.
func NewLocal(app *application.Lux, progress io.Writer, opts ...Option) (*Session, *binutils.Manager, error) {
	feed := events.NewFeed()
	manager := binutils.NewManager(app, feed, binutils.WithProgress(progress))

	initial := statemachine.StateUninstalled
	if manager.NodeInstalled() {
		initial = statemachine.StateInstalled
	}
	opts = append([]Option{WithInitialState(initial)}, opts...)
	s, err := New(app, manager, feed, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, manager, nil
}
