package model

import "github.com/shopspring/decimal"

// TokenPrice is a derived price record emitted after a repricing pass.
type TokenPrice struct {
	ChainID       uint64          `json:"chain_id"`
	Token         string          `json:"token"`
	Symbol        string          `json:"symbol,omitempty"`
	DerivedNative decimal.Decimal `json:"derived_native"`
	USD           decimal.Decimal `json:"usd"`
	Status        string          `json:"status"`
	Anchor        string          `json:"anchor,omitempty"`
	Pair          string          `json:"pair,omitempty"`
}
