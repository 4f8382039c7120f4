package memory

import (
	"sort"
	"strings"
	"sync"

	"dexPricing/internal/model"
)

// Snapshot is an in-memory view of pairs, tokens and the bundle. It serves
// pair, token and pair-address lookups to the oracle.
type Snapshot struct {
	mu     sync.RWMutex
	pairs  map[string]model.Pair
	tokens map[string]model.Token
	index  map[pairKey]string
	bundle model.Bundle
}

type pairKey struct {
	low  string
	high string
}

func newPairKey(a, b string) pairKey {
	a = normalize(a)
	b = normalize(b)
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		pairs:  make(map[string]model.Pair),
		tokens: make(map[string]model.Token),
		index:  make(map[pairKey]string),
	}
}

// PutPair stores a pair and indexes it by its token pair.
func (s *Snapshot) PutPair(pair model.Pair) {
	pair.Address = normalize(pair.Address)
	pair.Token0 = normalize(pair.Token0)
	pair.Token1 = normalize(pair.Token1)

	s.mu.Lock()
	s.pairs[pair.Address] = pair
	s.index[newPairKey(pair.Token0, pair.Token1)] = pair.Address
	s.mu.Unlock()
}

// PutToken replaces a token record.
func (s *Snapshot) PutToken(token model.Token) {
	token.Address = normalize(token.Address)

	s.mu.Lock()
	s.tokens[token.Address] = token
	s.mu.Unlock()
}

func (s *Snapshot) SetBundle(bundle model.Bundle) {
	s.mu.Lock()
	s.bundle = bundle
	s.mu.Unlock()
}

func (s *Snapshot) Bundle() model.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

func (s *Snapshot) Pair(address string) (model.Pair, bool) {
	s.mu.RLock()
	pair, ok := s.pairs[normalize(address)]
	s.mu.RUnlock()
	return pair, ok
}

func (s *Snapshot) Token(address string) (model.Token, bool) {
	s.mu.RLock()
	token, ok := s.tokens[normalize(address)]
	s.mu.RUnlock()
	return token, ok
}

// LookupPair returns the pair address for the unordered token pair.
func (s *Snapshot) LookupPair(tokenA, tokenB string) (string, bool) {
	s.mu.RLock()
	address, ok := s.index[newPairKey(tokenA, tokenB)]
	s.mu.RUnlock()
	return address, ok
}

// Tokens returns all tokens sorted by address.
func (s *Snapshot) Tokens() []model.Token {
	s.mu.RLock()
	out := make([]model.Token, 0, len(s.tokens))
	for _, token := range s.tokens {
		out = append(out, token)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Pairs returns all pairs sorted by address.
func (s *Snapshot) Pairs() []model.Pair {
	s.mu.RLock()
	out := make([]model.Pair, 0, len(s.pairs))
	for _, pair := range s.pairs {
		out = append(out, pair)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
