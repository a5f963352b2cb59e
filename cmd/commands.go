// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

// Command names exported for testing
const (
	// InstallCmd is the install command name
	InstallCmd = "install"

	// ChainCmd is the chain command name
	ChainCmd = "chain"

	// WizardCmd is the wizard command name
	WizardCmd = "wizard"

	// BridgeCmd is the bridge command name
	BridgeCmd = "bridge"
)
