package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dexPricing/internal/storage"
	"dexPricing/internal/storage/boltdb"
	"dexPricing/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "pricer",
		Short:        "DEX pair pricing oracle",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Recompute the native USD price and every token's derived price",
		RunE:  runQuote,
	}

	addPricingFlags(quoteCmd.Flags())
	quoteCmd.Flags().String("pg-dsn", "", "Postgres DSN (snapshot source and price sink)")
	quoteCmd.Flags().String("bolt-path", "", "bbolt snapshot file, used when pg-dsn is empty")
	quoteCmd.Flags().String("rpc", "", "RPC URL for factory pair lookups")
	quoteCmd.Flags().String("factory", "", "V2 factory address; enables on-chain pair lookups with --rpc")
	quoteCmd.Flags().Uint64("block", 0, "block for factory calls, 0 pins the latest block")
	quoteCmd.Flags().Int("max-retries", 3, "maximum retry attempts for RPC calls")
	quoteCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	quoteCmd.Flags().String("out", "", "optional JSONL output path")
	quoteCmd.Flags().String("redis-addr", "", "optional Redis address to publish prices")
	quoteCmd.Flags().Int("redis-db", 0, "Redis database")
	quoteCmd.Flags().String("redis-password", "", "Redis password")
	quoteCmd.Flags().String("redis-prefix", "pricer", "Redis key prefix")
	quoteCmd.Flags().Duration("redis-ttl", 0, "expiry for published token prices, 0 keeps them")
	quoteCmd.Flags().Int("batch-size", 500, "token prices per sink write")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate typed pair events into tracked window metrics",
		RunE:  runAggregate,
	}

	addPricingFlags(aggregateCmd.Flags())
	aggregateCmd.Flags().String("in", "", "input typed events JSONL")
	aggregateCmd.Flags().String("window", "1h", "aggregation window (e.g. 5m, 1h, 24h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN (snapshot source, metrics sink and state)")
	aggregateCmd.Flags().String("bolt-path", "", "bbolt snapshot file, used when pg-dsn is empty")
	aggregateCmd.Flags().String("out", "", "JSONL metrics output, used when pg-dsn is empty")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for metric writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("state-name", "tracked-aggregate", "state record name")
	aggregateCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy the Postgres pair/token snapshot into a bbolt file",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().Uint64("chain-id", 0, "chain id")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	snapshotCmd.Flags().String("bolt-path", "./data/snapshot.db", "bbolt output file")
	snapshotCmd.Flags().String("rpc", "", "optional RPC URL to fill missing token metadata")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPricingFlags(flags *pflag.FlagSet) {
	flags.Uint64("chain-id", 0, "chain id")
	flags.String("native-token", "", "wrapped native token address")
	flags.StringSlice("stable-pools", nil, "native/stablecoin pair addresses (comma-separated)")
	flags.StringSlice("whitelist", nil, "anchor token addresses in priority order (comma-separated)")
	flags.String("min-liquidity-native", "", "minimum native reserve for an anchor pair to be trusted")
}

// snapshotStore is a snapshot source that also accepts price writes.
type snapshotStore interface {
	storage.Source
	storage.PriceSink
}

// openSnapshotStore prefers Postgres and falls back to a bbolt file.
func openSnapshotStore(ctx context.Context, pgDSN, boltPath string, chainID uint64) (snapshotStore, *postgres.Store, func(), error) {
	switch {
	case pgDSN != "":
		store, err := postgres.NewStore(ctx, pgDSN, chainID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, store, store.Close, nil
	case boltPath != "":
		store, err := boltdb.Open(boltPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open bolt: %w", err)
		}
		return store, nil, func() { _ = store.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("pg-dsn or bolt-path is required")
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
