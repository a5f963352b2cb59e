// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"github.com/luxfi/lc1c/pkg/constants"
	"github.com/spf13/viper"
)

type Config struct {
	v *viper.Viper
}

// New wraps the global viper instance.
func New() *Config {
	return NewWithViper(viper.GetViper())
}

// NewWithViper wraps a caller provided viper instance, mostly for tests.
func NewWithViper(v *viper.Viper) *Config {
	v.SetDefault(constants.ConfigNodeGRPCAddr, constants.DefaultNodeGRPCAddr)
	v.SetDefault(constants.ConfigTemplateURL, constants.TemplateGenesisURL)
	v.SetDefault(constants.ConfigScratchInMemory, true)
	v.SetDefault(constants.ConfigBridgeAddr, constants.DefaultBridgeAddr)
	return &Config{v: v}
}

func (c *Config) ConfigFileExists() bool {
	return c.v.ConfigFileUsed() != ""
}

// GetConfigPath returns the path to the configuration file
func (c *Config) GetConfigPath() string {
	return c.v.ConfigFileUsed()
}

// NodePath is the operator override for the node executable, empty when unset.
func (c *Config) NodePath() string {
	return c.v.GetString(constants.ConfigNodePath)
}

func (c *Config) GenesisCreatorPath() string {
	return c.v.GetString(constants.ConfigGenesisCreatorPath)
}

func (c *Config) CargoPath() string {
	return c.v.GetString(constants.ConfigCargoPath)
}

// NodeGRPCAddr is the host:port of the node's gRPC v2 API.
func (c *Config) NodeGRPCAddr() string {
	return c.v.GetString(constants.ConfigNodeGRPCAddr)
}

func (c *Config) TemplateURL() string {
	return c.v.GetString(constants.ConfigTemplateURL)
}

func (c *Config) InstallScript() string {
	return c.v.GetString(constants.ConfigInstallScript)
}

func (c *Config) ChainsDir() string {
	return c.v.GetString(constants.ConfigChainsDir)
}

func (c *Config) ScratchInMemory() bool {
	return c.v.GetBool(constants.ConfigScratchInMemory)
}

func (c *Config) BridgeAddr() string {
	return c.v.GetString(constants.ConfigBridgeAddr)
}
