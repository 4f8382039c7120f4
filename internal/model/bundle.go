package model

import "github.com/shopspring/decimal"

// Bundle holds the current USD price of the chain's native asset.
type Bundle struct {
	NativeUSDPrice decimal.Decimal `json:"native_usd_price"`
}
