package model

import "github.com/shopspring/decimal"

// QuoSignificantDigits is the number of significant digits Quo keeps.
const QuoSignificantDigits = 34

// Quo returns a/b rounded to at least QuoSignificantDigits significant digits,
// however small or large the ratio. Division by zero returns zero.
func Quo(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() || a.IsZero() {
		return decimal.Zero
	}
	// The quotient's leading digit sits at most one place above lead(a)-lead(b).
	places := int64(QuoSignificantDigits) - (leadingExponent(a) - leadingExponent(b)) + 1
	if places < int64(decimal.DivisionPrecision) {
		places = int64(decimal.DivisionPrecision)
	}
	return a.DivRound(b, int32(places))
}

func leadingExponent(d decimal.Decimal) int64 {
	return int64(d.Abs().NumDigits()) - 1 + int64(d.Exponent())
}
