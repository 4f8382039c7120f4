package dex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// FactoryConfig points a FactoryLookup at a V2 factory.
type FactoryConfig struct {
	Factory    string
	Block      uint64
	MaxRetries int
	RetryDelay time.Duration
}

// FactoryLookup resolves pair addresses with factory.getPair. The context is
// bound at construction because pricing lookups are synchronous.
type FactoryLookup struct {
	ctx        context.Context
	caller     ContractCaller
	factory    common.Address
	block      uint64
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewFactoryLookup(ctx context.Context, caller ContractCaller, cfg FactoryConfig, logger *zap.Logger) (*FactoryLookup, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	if !common.IsHexAddress(cfg.Factory) {
		return nil, fmt.Errorf("invalid factory address %q", cfg.Factory)
	}
	if _, err := FactoryABI(); err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FactoryLookup{
		ctx:        ctx,
		caller:     caller,
		factory:    common.HexToAddress(cfg.Factory),
		block:      cfg.Block,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}, nil
}

// LookupPair returns the lower-case pair address for the unordered token pair.
// RPC failures are reported as not found; callers that must tell them apart
// use TryLookupPair.
func (f *FactoryLookup) LookupPair(tokenA, tokenB string) (string, bool) {
	pair, ok, _ := f.TryLookupPair(tokenA, tokenB)
	return pair, ok
}

// TryLookupPair is LookupPair with RPC failures returned as errors. The zero
// address and malformed token addresses are plain misses.
func (f *FactoryLookup) TryLookupPair(tokenA, tokenB string) (string, bool, error) {
	if !common.IsHexAddress(tokenA) || !common.IsHexAddress(tokenB) {
		return "", false, nil
	}
	pair, err := f.GetPair(f.ctx, common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	if err != nil {
		f.logger.Warn("getPair failed",
			zap.String("tokenA", tokenA),
			zap.String("tokenB", tokenB),
			zap.Error(err),
		)
		return "", false, fmt.Errorf("getPair %s %s: %w", tokenA, tokenB, err)
	}
	if pair == (common.Address{}) {
		return "", false, nil
	}
	return strings.ToLower(pair.Hex()), true, nil
}

// GetPair calls factory.getPair with retry.
func (f *FactoryLookup) GetPair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, err
	}
	var pair common.Address
	err = withRetry(ctx, f.maxRetries, f.retryDelay, func(ctx context.Context) error {
		values, err := callMethod(ctx, f.caller, f.factory, parsed, "getPair", blockArg(f.block), tokenA, tokenB)
		if err != nil {
			return err
		}
		pair, err = asAddress(values[0])
		return err
	})
	return pair, err
}
