// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Genesis rules: the token's identity, owner, supply and storage
//     pricing. Immutable after the ledger is bootstrapped.
//   - Node settings: runtime configuration, can vary per node.
package config

import "path/filepath"

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds node-specific runtime configuration.
type Config struct {
	// Core
	Network NetworkType
	DataDir string

	// GenesisFile optionally overrides the built-in genesis for the
	// selected network.
	GenesisFile string

	// RPC server
	RPC RPCConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool
	Addr        string
	Port        int
	AllowedIPs  []string
	CORSOrigins []string // Allowed CORS origins ("*" = all).
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
	File  string
}

// NetworkDir returns the per-network data directory.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// LedgerDataDir returns the directory holding the ledger database.
func (c *Config) LedgerDataDir() string {
	return filepath.Join(c.NetworkDir(), "ledger")
}

// LogsDir returns the directory holding log files.
func (c *Config) LogsDir() string {
	return filepath.Join(c.NetworkDir(), "logs")
}
