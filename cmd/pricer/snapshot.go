package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dexPricing/internal/chain"
	"dexPricing/internal/config"
	"dexPricing/internal/dex"
	"dexPricing/internal/model"
	"dexPricing/internal/storage/boltdb"
	"dexPricing/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if cfg.BoltPath == "" {
		return fmt.Errorf("bolt path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.ChainID)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer source.Close()

	pairs, err := source.LoadPairs(ctx)
	if err != nil {
		return fmt.Errorf("load pairs: %w", err)
	}
	tokens, err := source.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	bundle, hasBundle, err := source.LoadBundle(ctx)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}

	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		fillTokenMeta(ctx, chainClient, tokens, logger)
	}

	target, err := boltdb.Open(cfg.BoltPath)
	if err != nil {
		return fmt.Errorf("open bolt: %w", err)
	}
	defer target.Close()

	if err := target.PutPairs(ctx, pairs); err != nil {
		return fmt.Errorf("write pairs: %w", err)
	}
	if err := target.PutTokens(ctx, tokens); err != nil {
		return fmt.Errorf("write tokens: %w", err)
	}
	if hasBundle {
		if err := target.SaveBundle(ctx, bundle); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}
	}

	logger.Info("snapshot written",
		zap.String("bolt_path", cfg.BoltPath),
		zap.Int("pairs", len(pairs)),
		zap.Int("tokens", len(tokens)),
		zap.Bool("bundle", hasBundle),
	)
	return nil
}

// fillTokenMeta fetches symbol, name and decimals for tokens stored without a symbol.
func fillTokenMeta(ctx context.Context, caller dex.ContractCaller, tokens []model.Token, logger *zap.Logger) {
	for i := range tokens {
		if tokens[i].Symbol != "" || !common.IsHexAddress(tokens[i].Address) {
			continue
		}
		meta, err := dex.FetchTokenMeta(ctx, caller, common.HexToAddress(tokens[i].Address), logger)
		if err != nil {
			logger.Warn("token metadata fetch failed", zap.String("token", tokens[i].Address), zap.Error(err))
			continue
		}
		tokens[i].Symbol = meta.Symbol
		tokens[i].Name = meta.Name
		tokens[i].Decimals = meta.Decimals
	}
}
