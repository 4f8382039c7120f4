package pricing

import "dexPricing/internal/model"

// PairStore loads pairs by address.
type PairStore interface {
	Pair(address string) (model.Pair, bool)
}

// TokenStore loads tokens by address.
type TokenStore interface {
	Token(address string) (model.Token, bool)
}

// PairLookup resolves the pair address for an unordered token pair.
type PairLookup interface {
	LookupPair(tokenA, tokenB string) (string, bool)
}

// FallibleLookup is a PairLookup backed by a remote source whose failures
// must not be mistaken for a missing pair.
type FallibleLookup interface {
	PairLookup
	TryLookupPair(tokenA, tokenB string) (string, bool, error)
}
