package quote

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dexPricing/internal/model"
	"dexPricing/internal/pricing"
	"dexPricing/internal/storage"
)

// Snapshot is the mutable token view the repricer prices against.
type Snapshot interface {
	pricing.TokenStore
	PutToken(token model.Token)
	SetBundle(bundle model.Bundle)
	Tokens() []model.Token
}

// Config controls a repricing pass.
type Config struct {
	ChainID   uint64
	BatchSize int
}

// Result summarizes a repricing pass.
type Result struct {
	Bundle   model.Bundle
	Prices   []model.TokenPrice
	Priced   int
	Unpriced int
	// Failed lists tokens whose anchor search stopped on a lookup error.
	Failed []string
	Err    error
}

// Repricer recomputes the bundle and every token's derived price, then
// publishes them to the configured sinks.
type Repricer struct {
	cfg      Config
	oracle   *pricing.Oracle
	snapshot Snapshot
	sinks    []storage.PriceSink
	logger   *zap.Logger
}

func NewRepricer(cfg Config, oracle *pricing.Oracle, snapshot Snapshot, sinks []storage.PriceSink, logger *zap.Logger) (*Repricer, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is nil")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repricer{
		cfg:      cfg,
		oracle:   oracle,
		snapshot: snapshot,
		sinks:    sinks,
		logger:   logger,
	}, nil
}

// Reprice computes the bundle first, then derives tokens with whitelisted
// anchors ahead of everything else. Each derived price is written back to the
// snapshot before the next token is priced.
func (r *Repricer) Reprice() Result {
	bundle := model.Bundle{NativeUSDPrice: r.oracle.NativeUSDPrice()}
	r.snapshot.SetBundle(bundle)

	result := Result{Bundle: bundle}
	for _, address := range r.order() {
		token, ok := r.snapshot.Token(address)
		if !ok {
			continue
		}
		q := r.oracle.Quote(address)
		token.DerivedNative = q.Price
		r.snapshot.PutToken(token)

		if q.Err != nil {
			result.Failed = append(result.Failed, q.Token)
			if result.Err == nil {
				result.Err = q.Err
			}
		}
		if q.Status == pricing.StatusUnpriced {
			result.Unpriced++
		} else {
			result.Priced++
		}
		result.Prices = append(result.Prices, model.TokenPrice{
			ChainID:       r.cfg.ChainID,
			Token:         q.Token,
			Symbol:        token.Symbol,
			DerivedNative: q.Price,
			USD:           q.Price.Mul(bundle.NativeUSDPrice),
			Status:        string(q.Status),
			Anchor:        q.Anchor,
			Pair:          q.Pair,
		})
	}
	return result
}

// Run reprices and writes the results to every sink. A pass with lookup
// failures writes nothing and returns the first failure.
func (r *Repricer) Run(ctx context.Context) (Result, error) {
	result := r.Reprice()
	r.logger.Info("repriced",
		zap.String("native_usd", result.Bundle.NativeUSDPrice.String()),
		zap.Int("priced", result.Priced),
		zap.Int("unpriced", result.Unpriced),
		zap.Int("failed", len(result.Failed)),
	)
	if result.Err != nil {
		return result, fmt.Errorf("reprice %d tokens: %w", len(result.Failed), result.Err)
	}

	for _, sink := range r.sinks {
		if err := sink.SaveBundle(ctx, result.Bundle); err != nil {
			return result, fmt.Errorf("save bundle: %w", err)
		}
		for start := 0; start < len(result.Prices); start += r.cfg.BatchSize {
			end := start + r.cfg.BatchSize
			if end > len(result.Prices) {
				end = len(result.Prices)
			}
			if err := sink.PutTokenPrices(ctx, result.Prices[start:end]); err != nil {
				return result, fmt.Errorf("put token prices: %w", err)
			}
		}
	}
	return result, nil
}

func (r *Repricer) order() []string {
	whitelist := r.oracle.Config().Whitelist
	out := whitelist.Tokens()
	for _, token := range r.snapshot.Tokens() {
		address := pricing.NormalizeAddress(token.Address)
		if whitelist.Contains(address) {
			continue
		}
		out = append(out, address)
	}
	return out
}
