package model

import "github.com/shopspring/decimal"

// Pair is a V2 liquidity pair snapshot.
//
// Price0In1 is the price of token0 denominated in token1 (reserve1/reserve0),
// Price1In0 the inverse. Both are zero while the divisor reserve is zero.
type Pair struct {
	Address       string          `json:"address"`
	Token0        string          `json:"token0"`
	Token1        string          `json:"token1"`
	Reserve0      decimal.Decimal `json:"reserve0"`
	Reserve1      decimal.Decimal `json:"reserve1"`
	ReserveNative decimal.Decimal `json:"reserve_native"`
	Price0In1     decimal.Decimal `json:"price0_in_1"`
	Price1In0     decimal.Decimal `json:"price1_in_0"`
}

// NewPair builds a Pair and derives both spot prices from the reserves.
func NewPair(address, token0, token1 string, reserve0, reserve1, reserveNative decimal.Decimal) Pair {
	price0In1, price1In0 := SpotPrices(reserve0, reserve1)
	return Pair{
		Address:       address,
		Token0:        token0,
		Token1:        token1,
		Reserve0:      reserve0,
		Reserve1:      reserve1,
		ReserveNative: reserveNative,
		Price0In1:     price0In1,
		Price1In0:     price1In0,
	}
}

// SpotPrices returns reserve1/reserve0 and reserve0/reserve1, each kept to
// QuoSignificantDigits significant digits.
func SpotPrices(reserve0, reserve1 decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	price0In1 := decimal.Zero
	price1In0 := decimal.Zero
	if !reserve0.IsZero() {
		price0In1 = Quo(reserve1, reserve0)
	}
	if !reserve1.IsZero() {
		price1In0 = Quo(reserve0, reserve1)
	}
	return price0In1, price1In0
}

// Has reports whether token is one of the pair's sides.
func (p Pair) Has(token string) bool {
	return p.Token0 == token || p.Token1 == token
}

// PriceOf returns the price of token denominated in the other side, along with
// the counterpart address. ok is false when token is not in the pair.
func (p Pair) PriceOf(token string) (price decimal.Decimal, counterpart string, ok bool) {
	switch token {
	case p.Token0:
		return p.Price0In1, p.Token1, true
	case p.Token1:
		return p.Price1In0, p.Token0, true
	default:
		return decimal.Zero, "", false
	}
}

// ReserveOf returns the reserve held on token's side.
func (p Pair) ReserveOf(token string) (decimal.Decimal, bool) {
	switch token {
	case p.Token0:
		return p.Reserve0, true
	case p.Token1:
		return p.Reserve1, true
	default:
		return decimal.Zero, false
	}
}
