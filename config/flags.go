package config

import (
	"flag"
	"fmt"
	"strings"
)

// Load parses command-line flags into a Config, starting from the selected
// network's defaults.
func Load() (*Config, error) {
	return LoadArgs(flag.CommandLine, nil)
}

// LoadArgs parses the given argument list into a Config. When args is nil,
// fs must already be the process flag set (flag.CommandLine) and os.Args
// is parsed.
func LoadArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	network := fs.String("network", string(Mainnet), "Network to join: mainnet or testnet")
	dataDir := fs.String("datadir", "", "Data directory (default: platform-specific)")
	genesisFile := fs.String("genesis", "", "Genesis file overriding the built-in genesis")

	rpcEnabled := fs.Bool("rpc", true, "Enable the JSON-RPC server")
	rpcAddr := fs.String("rpc.addr", "", "RPC listen address")
	rpcPort := fs.Int("rpc.port", 0, "RPC listen port")
	rpcAllowed := fs.String("rpc.allowed", "", "Comma-separated IPs/CIDRs allowed to call RPC (empty = default)")
	rpcCORS := fs.String("rpc.cors", "", "Comma-separated CORS origins (\"*\" = all)")

	logLevel := fs.String("log.level", "", "Log level: debug, info, warn, error")
	logJSON := fs.Bool("log.json", false, "Log JSON to stdout instead of colored console output")
	logFile := fs.String("log.file", "", "Also write JSON logs to this file")

	if args != nil {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	} else {
		flag.Parse()
	}

	var net NetworkType
	switch *network {
	case string(Mainnet):
		net = Mainnet
	case string(Testnet):
		net = Testnet
	default:
		return nil, fmt.Errorf("unknown network %q (want mainnet or testnet)", *network)
	}

	cfg := Default(net)
	cfg.RPC.Enabled = *rpcEnabled

	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *genesisFile != "" {
		cfg.GenesisFile = *genesisFile
	}
	if *rpcAddr != "" {
		cfg.RPC.Addr = *rpcAddr
	}
	if *rpcPort != 0 {
		cfg.RPC.Port = *rpcPort
	}
	if *rpcAllowed != "" {
		cfg.RPC.AllowedIPs = splitList(*rpcAllowed)
	}
	if *rpcCORS != "" {
		cfg.RPC.CORSOrigins = splitList(*rpcCORS)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logJSON {
		cfg.Log.JSON = true
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	return cfg, nil
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
