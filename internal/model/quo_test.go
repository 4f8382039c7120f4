package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuoKeepsSignificantDigits(t *testing.T) {
	cases := []struct {
		a, b string
	}{
		{"1", "1000000000000000000"},
		{"1", "3"},
		{"0.0000000001", "7"},
		{"98765.4321", "0.000123"},
		{"123456789012345678901234567890", "0.000000000000000000017"},
	}

	tolerance := decimal.New(1, -QuoSignificantDigits+1)
	for _, tc := range cases {
		a := decimal.RequireFromString(tc.a)
		b := decimal.RequireFromString(tc.b)
		q := Quo(a, b)
		if q.IsZero() {
			t.Fatalf("%s/%s rounded to zero", tc.a, tc.b)
		}
		relErr := Quo(q.Mul(b).Sub(a).Abs(), a.Abs())
		if relErr.GreaterThan(tolerance) {
			t.Fatalf("%s/%s = %s: relative error %s", tc.a, tc.b, q, relErr)
		}
	}
}

func TestQuoExact(t *testing.T) {
	got := Quo(decimal.NewFromInt(1), decimal.RequireFromString("1000000000000000000"))
	if !got.Equal(decimal.RequireFromString("0.000000000000000001")) {
		t.Fatalf("got %s", got)
	}
	if !Quo(decimal.NewFromInt(5), decimal.Zero).IsZero() {
		t.Fatalf("division by zero should yield zero")
	}
	if !Quo(decimal.Zero, decimal.NewFromInt(5)).IsZero() {
		t.Fatalf("zero numerator should yield zero")
	}
}
