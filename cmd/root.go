// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	luxlog "github.com/luxfi/log"
	"github.com/luxfi/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luxfi/lc1c/cmd/bridgecmd"
	"github.com/luxfi/lc1c/cmd/chaincmd"
	"github.com/luxfi/lc1c/cmd/installcmd"
	"github.com/luxfi/lc1c/cmd/wizardcmd"
	"github.com/luxfi/lc1c/pkg/application"
	"github.com/luxfi/lc1c/pkg/config"
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/luxfi/lc1c/pkg/prompts"
	"github.com/luxfi/lc1c/pkg/ux"
)

var (
	app        *application.Lux
	logFactory luxlog.Factory

	logLevel       string
	Version        = "0.3.0"
	cfgFile        string
	nonInteractive bool
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "lc1c",
		Long: `lc1c - run a local Concordium chain for development.

lc1c installs the Concordium node and the genesis creator, assembles a
genesis configuration, launches a single baker node on it and follows
account balances block by block.

COMMAND OVERVIEW:

  install     Install the node, verify it, install the genesis creator
  chain       Launch, list and kill local chains
  wizard      Interactive launch
  bridge      Serve a session over local HTTP for a UI

QUICK START:

  # Install and verify the node
  lc1c install

  # Launch the bundled single baker template
  lc1c chain launch

  # Relaunch a chain generated earlier
  lc1c chain launch --from chain-1

For detailed command help, use: lc1c <command> --help`,
		PersistentPreRunE: createApp,
		Version:           Version,
		SilenceUsage:      true,
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lc1c/cli.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "ERROR", "log level for the application")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false,
		"Disable prompts; fail if required values are missing (also enabled when stdin is not a TTY or CI=1)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Show verbose output (info level logs)")
	rootCmd.PersistentFlags().Bool("debug", false, "Show debug output (debug level logs)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Show only errors (quiet mode)")

	rootCmd.AddCommand(installcmd.NewCmd(app))
	rootCmd.AddCommand(chaincmd.NewCmd(app))
	rootCmd.AddCommand(wizardcmd.NewCmd(app))
	rootCmd.AddCommand(bridgecmd.NewCmd(app))

	return rootCmd
}

func createApp(cmd *cobra.Command, _ []string) error {
	baseDir, err := setupEnv()
	if err != nil {
		return err
	}
	prompts.SetNonInteractive(nonInteractive)
	app.Setup(baseDir, luxlog.NewNoOpLogger(), config.New(), prompts.NewPrompterForMode())
	log, err := setupLogging(app.GetLogDir())
	if err != nil {
		return err
	}
	app.Log = log

	switch {
	case cmd.Flags().Changed("debug"):
		setLevel(luxlog.Level(level.Debug))
	case cmd.Flags().Changed("verbose"):
		setLevel(luxlog.Level(level.Info))
	case cmd.Flags().Changed("quiet"):
		setLevel(luxlog.Level(level.Error))
	case logLevel != "":
		if lvl, err := luxlog.ToLevel(logLevel); err == nil {
			setLevel(lvl)
		}
	}

	initConfig()
	return nil
}

func setLevel(lvl luxlog.Level) {
	logFactory.SetLogLevel("lc1c", lvl)
	logFactory.SetDisplayLevel("lc1c", lvl)
}

func setupEnv() (string, error) {
	usr, err := user.Current()
	if err != nil {
		// no logger here yet
		fmt.Printf("unable to get system user %s\n", err)
		return "", err
	}
	baseDir := filepath.Join(usr.HomeDir, constants.BaseDirName)

	for _, dir := range []string{
		baseDir,
		filepath.Join(baseDir, constants.DownloadDir),
		filepath.Join(baseDir, constants.ScratchDir),
	} {
		if err := os.MkdirAll(dir, constants.ReadWriteExecute); err != nil {
			fmt.Printf("failed creating %s: %s\n", dir, err)
			return "", err
		}
	}
	return baseDir, nil
}

func setupLogging(logDir string) (luxlog.Logger, error) {
	config := luxlog.Config{}
	config.LogLevel = luxlog.Level(level.Info)
	// quiet by default, flags raise it in createApp
	config.DisplayLevel, _ = luxlog.ToLevel("WARN")

	config.Directory = logDir
	if err := os.MkdirAll(config.Directory, constants.ReadWriteExecute); err != nil {
		return nil, fmt.Errorf("failed creating log directory: %w", err)
	}

	config.LogFormat = luxlog.Colors
	config.MaxSize = constants.MaxLogFileSize
	config.MaxFiles = constants.MaxNumOfLogFiles
	config.MaxAge = constants.RetainOldFiles

	luxlog.RegisterInternalPackages("github.com/luxfi/lc1c/pkg/ux")

	factory := luxlog.NewFactoryWithConfig(config)
	log, err := factory.Make("lc1c")
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	logFactory = factory
	ux.NewUserLog(log, os.Stdout)
	return log, nil
}

// initConfig reads in config file and ENV variables if set.
// Priority: flags > env vars > config file > defaults
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(app.GetBaseDir())
		viper.SetConfigType(constants.DefaultConfigFileType)
		viper.SetConfigName(constants.DefaultConfigFileName)
	}

	_ = viper.BindEnv(constants.ConfigNodePath, constants.EnvNodePath)
	_ = viper.BindEnv(constants.ConfigGenesisCreatorPath, constants.EnvGenesisCreatorPath)
	_ = viper.BindEnv(constants.ConfigCargoPath, constants.EnvCargoPath)
	_ = viper.BindEnv(constants.ConfigNodeGRPCAddr, constants.EnvNodeGRPCAddr)
	_ = viper.BindEnv(constants.ConfigTemplateURL, constants.EnvTemplateURL)
	_ = viper.BindEnv(constants.ConfigInstallScript, constants.EnvInstallScript)
	_ = viper.BindEnv(constants.ConfigChainsDir, constants.EnvChainsDir)

	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
	if app.ConfigFileExists() {
		app.Log.Debug("using config file", "config-file", app.Conf.GetConfigPath())
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	app = application.New()
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %s\n", err)
		os.Exit(1)
	}
}
