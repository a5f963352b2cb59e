// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package chaincmd

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/lc1c/pkg/ux"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the generated chain folders",
		Long:  "Display the chain folders that can be relaunched with 'lc1c chain launch --from'.",
		Args:  cobra.NoArgs,
		RunE:  listChains,
	}
}

func listChains(_ *cobra.Command, _ []string) error {
	folders, err := app.ListChainFolders()
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		ux.Logger.PrintToUser("No chains generated yet in %s", app.GetChainsDir())
		return nil
	}
	return ux.PrintList(ux.Logger.Writer(), "Chain folder", folders)
}
