package model

import "github.com/shopspring/decimal"

// Token is an ERC20 token record with its last derived native price.
type Token struct {
	Address       string          `json:"address"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Decimals      uint8           `json:"decimals"`
	DerivedNative decimal.Decimal `json:"derived_native"`
}
