// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package installcmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
	"github.com/luxfi/lc1c/pkg/ux"
)

var (
	app *application.Lux

	withGenesisCreator bool
)

// NewCmd creates the install command suite
func NewCmd(injectedApp *application.Lux) *cobra.Command {
	app = injectedApp
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install and verify the Concordium node",
		Long: `Install the Concordium node for this operating system and check that it runs.

An installation that is already present is left alone. Pass
--genesis-creator to also install the genesis creator tool.`,
		Args: cobra.NoArgs,
		RunE: install,
	}
	cmd.Flags().BoolVar(&withGenesisCreator, "genesis-creator", false, "also install the genesis creator")
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newGenesisCreatorCmd())
	return cmd
}

func install(cmd *cobra.Command, _ []string) error {
	sess, _, err := session.NewLocal(app, os.Stdout, session.WithLogger(app.Log))
	if err != nil {
		return err
	}
	defer sess.Close()

	orch := sess.Orchestrator()
	steps := ux.NewStepTracker(ux.Logger)
	if orch.State() == statemachine.StateUninstalled {
		steps.Start("Installing the Concordium node")
		if err := orch.Install(cmd.Context()); err != nil {
			steps.Failed(err.Error())
			return err
		}
		steps.Complete("")
	} else {
		ux.Logger.GreenCheckmarkToUser("Concordium node already installed")
	}

	if err := verify(cmd, sess); err != nil {
		return err
	}
	if withGenesisCreator {
		return installGenesisCreator(cmd, sess)
	}
	return nil
}

func verify(cmd *cobra.Command, sess *session.Session) error {
	steps := ux.NewStepTracker(ux.Logger)
	steps.Start("Verifying the installation")
	version, err := sess.Orchestrator().Verify(cmd.Context())
	if err != nil {
		steps.Failed(err.Error())
		return err
	}
	steps.Complete(version)
	return nil
}
