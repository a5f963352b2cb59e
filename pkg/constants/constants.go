// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import (
	"time"
)

const (
	DefaultPerms755    = 0o755
	WriteReadReadPerms = 0o644
	ReadWriteExecute   = 0o750

	BaseDirName = ".lc1c"
	LogDir      = "logs"
	ScratchDir  = "scratch"
	DownloadDir = "downloads"

	// ChainsDirName holds one chain-N folder per launched chain
	ChainsDirName     = ".concordium-lc1c"
	ChainFolderPrefix = "chain-"

	// GenesisConfigFileName is the generator input written into each chain folder
	GenesisConfigFileName = "desired_toml_file_name.toml"

	DefaultConfigFileName = "cli"
	DefaultConfigFileType = "json"

	MaxLogFileSize   = 4
	MaxNumOfLogFiles = 5
	RetainOldFiles   = 0 // retain all old log files

	RequestTimeout    = 3 * time.Minute
	APIRequestTimeout = 30 * time.Second

	// NewBlockTopic is the event name carrying full chain snapshots
	NewBlockTopic = "new-block"
	// TransactionsTopic carries the block items of each finalized block
	TransactionsTopic = "transactions"

	// ScratchKey is the single ephemeral key used while filtering balances
	ScratchKey = "dictionary"

	SkipUpdateFlag = "skip-update-check"
)

// Node process settings
const (
	NodeBinaryName           = "concordium-node"
	NodeWindowsBinaryName    = "concordium-node.exe"
	NodeWindowsInstallDir    = `C:\Program Files\Concordium`
	NodeWindowsDirPattern    = `Node \d+\.\d+\.\d+`
	GenesisCreatorBinaryName = "genesis-creator"
	GenesisCreatorRepoURL    = "https://github.com/Concordium/concordium-misc-tools.git"
	GenesisCreatorRepoDir    = "concordium-misc-tools"
	GenesisCreatorCratePath  = "concordium-misc-tools/genesis-creator/"

	NodeListenPort       = "8169"
	NodeGRPCListenAddr   = "127.0.0.1"
	NodeGRPCListenPort   = "20100"
	NodeBakerCredentials = "bakers/baker-0-credentials.json"

	DefaultNodeGRPCAddr = NodeGRPCListenAddr + ":" + NodeGRPCListenPort
	BlockInfoRetryDelay = 5 * time.Second
	// MaxTransactionBackfill bounds how many earlier blocks get their
	// transactions published when the watcher falls behind
	MaxTransactionBackfill = 64

	DefaultBridgeAddr = "127.0.0.1:8710"
)

// Download locations
const (
	NodeInstallerWindowsURL = "https://distribution.concordium.software/windows/Signed/Node-6.0.4-0.msi"
	NodeInstallerMacOSURL   = "https://distribution.concordium.software/macos/signed/concordium-node-6.0.4-0.pkg"
	NodeInstallerLinuxURL   = "https://distribution.mainnet.concordium.software/deb/concordium-mainnet-node_6.0.4-0_amd64.deb"

	NodeInstallerWindowsFile = "concordium-node-lc1c.msi"
	NodeInstallerMacOSFile   = "concordium-node-lc1c.pkg"
	NodeInstallerLinuxFile   = "concordium-node-lc1c.deb"

	DebianInstallScript = "install_concordium_debian.sh"

	// TemplateGenesisURL is the bundled single-baker example used by easy launches
	TemplateGenesisURL = "https://raw.githubusercontent.com/Concordium/concordium-misc-tools/9d347761aadd432cbb6211a7d7ba38cdc07f1d11/genesis-creator/examples/single-baker-example-p5.toml"
)

// Config keys and their environment bindings
const (
	ConfigNodePath           = "node-path"
	ConfigGenesisCreatorPath = "genesis-creator-path"
	ConfigCargoPath          = "cargo-path"
	ConfigNodeGRPCAddr       = "node-grpc-addr"
	ConfigTemplateURL        = "template-url"
	ConfigInstallScript      = "install-script"
	ConfigChainsDir          = "chains-dir"
	ConfigScratchInMemory    = "scratch-in-memory"
	ConfigBridgeAddr         = "bridge-addr"

	EnvNodePath           = "LC1C_NODE_PATH"
	EnvGenesisCreatorPath = "LC1C_GENESIS_CREATOR_PATH"
	EnvCargoPath          = "LC1C_CARGO_PATH"
	EnvNodeGRPCAddr       = "LC1C_NODE_GRPC_ADDR"
	EnvTemplateURL        = "LC1C_TEMPLATE_URL"
	EnvInstallScript      = "LC1C_INSTALL_SCRIPT"
	EnvChainsDir          = "LC1C_CHAINS_DIR"
)
