package config

import "github.com/spf13/pflag"

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	ChainID  uint64
	PGDSN    string
	BoltPath string
	RPCURL   string
	LogLevel string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"bolt-path": "./data/snapshot.db",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	return SnapshotConfig{
		ChainID:  v.GetUint64("chain-id"),
		PGDSN:    v.GetString("pg-dsn"),
		BoltPath: v.GetString("bolt-path"),
		RPCURL:   v.GetString("rpc"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
