package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexPricing/internal/chain"
	"dexPricing/internal/config"
	"dexPricing/internal/dex"
	"dexPricing/internal/pricefeed"
	"dexPricing/internal/pricing"
	"dexPricing/internal/quote"
	"dexPricing/internal/storage"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	oracleCfg, err := cfg.Pricing.Oracle()
	if err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, _, closeStore, err := openSnapshotStore(ctx, cfg.PGDSN, cfg.BoltPath, cfg.Pricing.ChainID)
	if err != nil {
		return err
	}
	defer closeStore()

	snapshot, err := storage.LoadSnapshot(ctx, store)
	if err != nil {
		return err
	}

	var lookup pricing.PairLookup = snapshot
	if cfg.RPCURL != "" && cfg.Factory != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		if cfg.Pricing.ChainID != 0 {
			chainID, err := chainClient.GetChainID(ctx)
			if err != nil {
				return fmt.Errorf("chain id: %w", err)
			}
			if chainID.Uint64() != cfg.Pricing.ChainID {
				return fmt.Errorf("rpc chain id %s does not match configured %d", chainID, cfg.Pricing.ChainID)
			}
		}

		block := cfg.Block
		if block == 0 {
			block, err = chainClient.LatestBlockNumber(ctx)
			if err != nil {
				return fmt.Errorf("latest block: %w", err)
			}
		}

		lookup, err = dex.NewFactoryLookup(ctx, chainClient, dex.FactoryConfig{
			Factory:    cfg.Factory,
			Block:      block,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryBackoff,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("factory lookup enabled", zap.String("factory", cfg.Factory), zap.Uint64("block", block))
	}

	oracle, err := pricing.NewOracle(oracleCfg, snapshot, snapshot, lookup, logger)
	if err != nil {
		return err
	}

	sinks := []storage.PriceSink{store}
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlSink(cfg.Out))
	}
	if cfg.RedisAddr != "" {
		publisher := pricefeed.NewPublisher(pricefeed.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.RedisTTL,
		})
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	repricer, err := quote.NewRepricer(quote.Config{
		ChainID:   cfg.Pricing.ChainID,
		BatchSize: cfg.BatchSize,
	}, oracle, snapshot, sinks, logger)
	if err != nil {
		return err
	}

	logger.Info("quote start",
		zap.Uint64("chain_id", cfg.Pricing.ChainID),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("bolt_path", cfg.BoltPath),
		zap.Int("pairs", len(snapshot.Pairs())),
		zap.Int("tokens", len(snapshot.Tokens())),
		zap.Int("whitelist", oracleCfg.Whitelist.Len()),
		zap.Int("sinks", len(sinks)),
	)

	_, err = repricer.Run(ctx)
	return err
}
