package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
chain-id: 321
native-token: "0x4446FC4EB47F2F6586F9FAAB68B3498F86C07521"
stable-pools:
  - "0x26d94a2e3bd703847c3be3c30ead42b926b427c2"
  - "0x1116b80fd0ff9a980dcfbfa3ed477bfa6bbd6a85"
whitelist:
  - "0x4446fc4eb47f2f6586f9faab68b3498f86c07521"
  - "0x0039f574ee5cc39bdd162e9a88e3eb1f111baf48"
  - "0x4446fc4eb47f2f6586f9faab68b3498f86c07521"
min-liquidity-native: "10"
pg-dsn: "postgres://localhost/pricer"
redis-addr: "127.0.0.1:6379"
window: "5m"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadQuote(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("PRICER_REDIS_PREFIX", "kcs")

	flags := pflag.NewFlagSet("quote", pflag.ContinueOnError)
	flags.Uint64("block", 0, "")
	require.NoError(t, flags.Parse([]string{"--block", "1200"}))

	cfg, err := LoadQuote(path, flags)
	require.NoError(t, err)
	require.Equal(t, uint64(321), cfg.Pricing.ChainID)
	require.Equal(t, "postgres://localhost/pricer", cfg.PGDSN)
	require.Equal(t, "kcs", cfg.RedisPrefix)
	require.Equal(t, uint64(1200), cfg.Block)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.Equal(t, "info", cfg.LogLevel)

	oracle, err := cfg.Pricing.Oracle()
	require.NoError(t, err)
	require.Equal(t, "0x4446fc4eb47f2f6586f9faab68b3498f86c07521", oracle.NativeToken)
	require.Len(t, oracle.StablePools, 2)
	require.Equal(t, 2, oracle.Whitelist.Len())
	require.Equal(t, "10", oracle.MinLiquidityNative.String())
}

func TestLoadAggregateEnvList(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("PRICER_WHITELIST", "0x0039f574ee5cc39bdd162e9a88e3eb1f111baf48, ,0xe3f5a90f9cb311505cd691a46596599aa1a0ad7d")

	cfg, err := LoadAggregate(path, nil)
	require.NoError(t, err)
	require.Equal(t, "5m", cfg.Window)
	require.Equal(t, 1000, cfg.BatchSize)
	require.Equal(t, "tracked-aggregate", cfg.StateName)
	require.Equal(t, []string{
		"0x0039f574ee5cc39bdd162e9a88e3eb1f111baf48",
		"0xe3f5a90f9cb311505cd691a46596599aa1a0ad7d",
	}, cfg.Pricing.Whitelist)
}

func TestLoadSnapshotDefaults(t *testing.T) {
	cfg, err := LoadSnapshot(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)
	require.Equal(t, "./data/snapshot.db", cfg.BoltPath)
	require.Equal(t, uint64(321), cfg.ChainID)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := LoadQuote(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestPricingOracleValidation(t *testing.T) {
	base := PricingConfig{
		NativeToken:        "0x4446fc4eb47f2f6586f9faab68b3498f86c07521",
		StablePools:        []string{"0x1116b80fd0ff9a980dcfbfa3ed477bfa6bbd6a85"},
		MinLiquidityNative: "10",
	}
	_, err := base.Oracle()
	require.NoError(t, err)

	missing := base
	missing.MinLiquidityNative = ""
	_, err = missing.Oracle()
	require.Error(t, err)

	bad := base
	bad.MinLiquidityNative = "ten"
	_, err = bad.Oracle()
	require.Error(t, err)

	noPools := base
	noPools.StablePools = nil
	_, err = noPools.Oracle()
	require.Error(t, err)

	badNative := base
	badNative.NativeToken = "wkcs"
	_, err = badNative.Oracle()
	require.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1700000000")
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), ts)

	ts, err = ParseTimestamp("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), ts)

	ts, err = ParseTimestamp("")
	require.NoError(t, err)
	require.Zero(t, ts)

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}
