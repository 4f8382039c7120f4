package pricing

import (
	"github.com/shopspring/decimal"

	"dexPricing/internal/model"
)

const (
	nativeAddr   = "0x4446fc4eb47f2f6586f9faab68b3498f86c07521"
	usdtAddr     = "0x0039f574ee5cc39bdd162e9a88e3eb1f111baf48"
	busdAddr     = "0xe3f5a90f9cb311505cd691a46596599aa1a0ad7d"
	usdtPoolAddr = "0x1116b80fd0ff9a980dcfbfa3ed477bfa6bbd6a85"
	busdPoolAddr = "0x26d94a2e3bd703847c3be3c30ead42b926b427c2"
	tokenXAddr   = "0x1111111111111111111111111111111111111111"
	tokenYAddr   = "0x2222222222222222222222222222222222222222"
	pairXUsdt    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	pairXBusd    = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	pairXNative  = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type fakeStore struct {
	pairs  map[string]model.Pair
	tokens map[string]model.Token
	index  map[[2]string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pairs:  make(map[string]model.Pair),
		tokens: make(map[string]model.Token),
		index:  make(map[[2]string]string),
	}
}

func (s *fakeStore) addPair(p model.Pair) {
	s.pairs[p.Address] = p
	s.index[pairKey(p.Token0, p.Token1)] = p.Address
}

func (s *fakeStore) addToken(address string, derived string) {
	s.tokens[address] = model.Token{Address: address, DerivedNative: dec(derived)}
}

func (s *fakeStore) Pair(address string) (model.Pair, bool) {
	p, ok := s.pairs[address]
	return p, ok
}

func (s *fakeStore) Token(address string) (model.Token, bool) {
	t, ok := s.tokens[address]
	return t, ok
}

func (s *fakeStore) LookupPair(tokenA, tokenB string) (string, bool) {
	addr, ok := s.index[pairKey(tokenA, tokenB)]
	return addr, ok
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testConfig() Config {
	return Config{
		NativeToken:        nativeAddr,
		StablePools:        []string{usdtPoolAddr, busdPoolAddr},
		Whitelist:          NewWhitelist(nativeAddr, usdtAddr, busdAddr),
		MinLiquidityNative: dec("10"),
	}
}
