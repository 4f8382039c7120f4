package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSpotPricesInverse(t *testing.T) {
	cases := []struct {
		reserve0 string
		reserve1 string
	}{
		{"1000", "1000"},
		{"500", "505"},
		{"3", "7"},
		{"0.000123", "98765.4321"},
	}

	tolerance := decimal.RequireFromString("0.000000000001")
	for _, tc := range cases {
		p := NewPair("0xpair", "0xa", "0xb",
			decimal.RequireFromString(tc.reserve0),
			decimal.RequireFromString(tc.reserve1),
			decimal.Zero,
		)
		product := p.Price0In1.Mul(p.Price1In0)
		if product.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(tolerance) {
			t.Fatalf("reserves %s/%s: price product %s not ~1", tc.reserve0, tc.reserve1, product)
		}
	}
}

func TestSpotPricesZeroReserve(t *testing.T) {
	p := NewPair("0xpair", "0xa", "0xb", decimal.Zero, decimal.NewFromInt(10), decimal.Zero)
	if !p.Price0In1.IsZero() {
		t.Fatalf("price0In1 should be zero, got %s", p.Price0In1)
	}
	if !p.Price1In0.IsZero() {
		t.Fatalf("price1In0 should be zero, got %s", p.Price1In0)
	}
}

func TestPairPriceOf(t *testing.T) {
	p := NewPair("0xpair", "0xa", "0xb", decimal.NewFromInt(10), decimal.NewFromInt(20), decimal.Zero)

	price, counterpart, ok := p.PriceOf("0xa")
	if !ok || counterpart != "0xb" || !price.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("token0 price mismatch: %s %s %v", price, counterpart, ok)
	}

	price, counterpart, ok = p.PriceOf("0xb")
	if !ok || counterpart != "0xa" || !price.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("token1 price mismatch: %s %s %v", price, counterpart, ok)
	}

	if _, _, ok := p.PriceOf("0xc"); ok {
		t.Fatalf("expected miss for foreign token")
	}
	if p.Has("0xc") {
		t.Fatalf("pair should not contain 0xc")
	}
}
