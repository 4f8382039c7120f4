package pricing

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Config holds the deployment constants used by the oracle.
type Config struct {
	NativeToken        string
	StablePools        []string
	Whitelist          Whitelist
	MinLiquidityNative decimal.Decimal
}

// Validate checks addresses and normalizes them to lower case.
func (c *Config) Validate() error {
	native, err := normalizeHex(c.NativeToken)
	if err != nil {
		return fmt.Errorf("native token: %w", err)
	}
	c.NativeToken = native

	if len(c.StablePools) == 0 {
		return fmt.Errorf("at least one stable pool is required")
	}
	pools := make([]string, 0, len(c.StablePools))
	for _, pool := range c.StablePools {
		addr, err := normalizeHex(pool)
		if err != nil {
			return fmt.Errorf("stable pool: %w", err)
		}
		pools = append(pools, addr)
	}
	c.StablePools = pools

	for _, token := range c.Whitelist.Tokens() {
		if !common.IsHexAddress(token) {
			return fmt.Errorf("whitelist: invalid address: %s", token)
		}
	}

	if c.MinLiquidityNative.IsNegative() {
		return fmt.Errorf("min liquidity must not be negative")
	}
	return nil
}

// Whitelist is an immutable ordered set of anchor token addresses.
type Whitelist struct {
	order []string
	set   map[string]struct{}
}

// NewWhitelist builds a Whitelist keeping the first occurrence of each address.
func NewWhitelist(tokens ...string) Whitelist {
	w := Whitelist{
		order: make([]string, 0, len(tokens)),
		set:   make(map[string]struct{}, len(tokens)),
	}
	for _, token := range tokens {
		token = NormalizeAddress(token)
		if token == "" {
			continue
		}
		if _, ok := w.set[token]; ok {
			continue
		}
		w.set[token] = struct{}{}
		w.order = append(w.order, token)
	}
	return w
}

// Contains reports whether token is whitelisted.
func (w Whitelist) Contains(token string) bool {
	_, ok := w.set[NormalizeAddress(token)]
	return ok
}

// Tokens returns the whitelist in declaration order.
func (w Whitelist) Tokens() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

func (w Whitelist) Len() int {
	return len(w.order)
}

// NormalizeAddress lower-cases and trims an address used as an entity id.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func normalizeHex(address string) (string, error) {
	address = NormalizeAddress(address)
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid address: %q", address)
	}
	return address, nil
}
