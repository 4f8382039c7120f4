package storage

import (
	"context"
	"fmt"

	"dexPricing/internal/model"
	"dexPricing/internal/storage/memory"
)

// Source provides the pair/token/bundle snapshot the oracle reads.
type Source interface {
	LoadPairs(ctx context.Context) ([]model.Pair, error)
	LoadTokens(ctx context.Context) ([]model.Token, error)
	LoadBundle(ctx context.Context) (model.Bundle, bool, error)
}

// PriceSink receives the results of a repricing pass.
type PriceSink interface {
	SaveBundle(ctx context.Context, bundle model.Bundle) error
	PutTokenPrices(ctx context.Context, prices []model.TokenPrice) error
}

// LoadSnapshot reads every entity from src into a new in-memory snapshot.
func LoadSnapshot(ctx context.Context, src Source) (*memory.Snapshot, error) {
	if src == nil {
		return nil, fmt.Errorf("snapshot source is nil")
	}

	pairs, err := src.LoadPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pairs: %w", err)
	}
	tokens, err := src.LoadTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	bundle, _, err := src.LoadBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	snapshot := memory.NewSnapshot()
	for _, pair := range pairs {
		snapshot.PutPair(pair)
	}
	for _, token := range tokens {
		snapshot.PutToken(token)
	}
	snapshot.SetBundle(bundle)
	return snapshot, nil
}
