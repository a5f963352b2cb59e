// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package chaincmd

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/lc1c/pkg/application"
)

var app *application.Lux

// NewCmd creates the chain command suite
func NewCmd(injectedApp *application.Lux) *cobra.Command {
	app = injectedApp
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Launch and manage local chains",
		Long: `Launch a local chain from a genesis configuration, list the chain folders
generated so far, or stop a running node.

Every launch that generates a genesis gets a new chain-N folder next to the
previous ones. Launching --from an existing folder reuses its genesis.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newLaunchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newKillCmd())
	return cmd
}
