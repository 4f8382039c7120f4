package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexPricing/internal/aggregate"
	"dexPricing/internal/config"
	"dexPricing/internal/pricing"
	"dexPricing/internal/storage"
)

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadAggregate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.PGDSN == "" && cfg.Out == "" {
		return fmt.Errorf("pg-dsn or out is required")
	}

	oracleCfg, err := cfg.Pricing.Oracle()
	if err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}

	windowDuration, err := time.ParseDuration(cfg.Window)
	if err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}
	if windowDuration <= 0 {
		return fmt.Errorf("window must be positive")
	}
	windowSeconds := uint64(windowDuration.Seconds())
	if windowSeconds == 0 {
		return fmt.Errorf("window must be at least 1s")
	}

	recomputeFrom, err := config.ParseTimestamp(cfg.RecomputeFrom)
	if err != nil {
		return fmt.Errorf("parse recompute-from: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, pgStore, closeStore, err := openSnapshotStore(ctx, cfg.PGDSN, cfg.BoltPath, cfg.Pricing.ChainID)
	if err != nil {
		return err
	}
	defer closeStore()

	snapshot, err := storage.LoadSnapshot(ctx, store)
	if err != nil {
		return err
	}

	oracle, err := pricing.NewOracle(oracleCfg, snapshot, snapshot, snapshot, logger)
	if err != nil {
		return err
	}

	var sink aggregate.MetricsSink
	if pgStore != nil {
		sink = pgStore
	} else {
		sink = storage.NewJsonlSink(cfg.Out)
	}

	stateName := fmt.Sprintf("%s:%d", cfg.StateName, windowSeconds)
	var stateStore aggregate.StateStore
	switch {
	case cfg.StateFile != "":
		stateStore = &aggregate.FileStateStore{Path: cfg.StateFile, Name: stateName}
	case pgStore != nil:
		stateStore = &aggregate.DBStateStore{Store: pgStore, ChainID: cfg.Pricing.ChainID, Name: stateName}
	}

	agg := aggregate.NewAggregator(aggregate.Config{
		WindowSeconds: windowSeconds,
		BatchSize:     cfg.BatchSize,
		RecomputeFrom: recomputeFrom,
		StateStore:    stateStore,
	}, snapshot, oracle, sink, logger)

	logger.Info("aggregate start",
		zap.String("input", cfg.Input),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("native_usd", snapshot.Bundle().NativeUSDPrice.String()),
		zap.Uint64("window_seconds", windowSeconds),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Uint64("recompute_from", recomputeFrom),
	)

	_, err = agg.Run(ctx, cfg.Input)
	return err
}
