package pricing

import (
	"fmt"

	"go.uber.org/zap"
)

// Oracle derives native-asset and USD prices from pair snapshots.
//
// It holds no mutable state; every call reads the supplied stores. Callers must
// serialize calls with the writes that update those stores.
type Oracle struct {
	cfg    Config
	pairs  PairStore
	tokens TokenStore
	lookup PairLookup
	logger *zap.Logger
}

// NewOracle validates cfg and wires the oracle's collaborators.
func NewOracle(cfg Config, pairs PairStore, tokens TokenStore, lookup PairLookup, logger *zap.Logger) (*Oracle, error) {
	if pairs == nil {
		return nil, fmt.Errorf("pair store is nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is nil")
	}
	if lookup == nil {
		return nil, fmt.Errorf("pair lookup is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Oracle{
		cfg:    cfg,
		pairs:  pairs,
		tokens: tokens,
		lookup: lookup,
		logger: logger,
	}, nil
}

// Config returns the validated configuration.
func (o *Oracle) Config() Config {
	return o.cfg
}
