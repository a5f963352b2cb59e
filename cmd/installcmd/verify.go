// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package installcmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/lc1c/pkg/session"
	"github.com/luxfi/lc1c/pkg/statemachine"
	"github.com/luxfi/lc1c/pkg/ux"
)

var errNotInstalled = errors.New("the Concordium node is not installed, run 'lc1c install' first")

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the installed node runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, _, err := session.NewLocal(app, os.Stdout, session.WithLogger(app.Log))
			if err != nil {
				return err
			}
			defer sess.Close()
			if sess.Orchestrator().State() == statemachine.StateUninstalled {
				return errNotInstalled
			}
			return verify(cmd, sess)
		},
	}
}

func newGenesisCreatorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genesis-creator",
		Short: "Install the genesis creator tool",
		Long: `Install the genesis creator with cargo. On Windows the sources are
cloned first and installed from the checkout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, _, err := session.NewLocal(app, os.Stdout, session.WithLogger(app.Log))
			if err != nil {
				return err
			}
			defer sess.Close()
			return installGenesisCreator(cmd, sess)
		},
	}
}

func installGenesisCreator(cmd *cobra.Command, sess *session.Session) error {
	steps := ux.NewStepTracker(ux.Logger)
	steps.Start("Installing the genesis creator")
	out, err := sess.Orchestrator().InstallGenesisCreator(cmd.Context())
	if err != nil {
		steps.Failed(err.Error())
		return err
	}
	steps.Complete("")
	if out != "" {
		ux.Logger.PrintToUser("%s", out)
	}
	return nil
}
