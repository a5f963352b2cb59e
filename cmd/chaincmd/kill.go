// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package chaincmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
	"github.com/luxfi/lc1c/pkg/ux"
)

func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Stop every running Concordium node",
		Long: `Stop the Concordium node processes on this machine, including ones left
behind by an earlier lc1c run.`,
		Args: cobra.NoArgs,
		RunE: killChain,
	}
}

func killChain(cmd *cobra.Command, _ []string) error {
	// start Running so Kill reaches node processes from earlier runs
	sess, _, err := session.NewLocal(app, os.Stdout,
		session.WithLogger(app.Log),
		session.WithInitialState(statemachine.StateRunning),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Orchestrator().Kill(cmd.Context()); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("Chain stopped")
	return nil
}
