package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PairWindowMetrics stores tracked aggregates for a pair window.
type PairWindowMetrics struct {
	ChainID                    uint64           `json:"chain_id"`
	PairAddress                string           `json:"pair_address"`
	WindowSizeSecs             int64            `json:"window_size_seconds"`
	WindowStart                time.Time        `json:"window_start"`
	WindowEnd                  time.Time        `json:"window_end"`
	SwapCount                  uint64           `json:"swap_count"`
	MintCount                  uint64           `json:"mint_count"`
	BurnCount                  uint64           `json:"burn_count"`
	Volume0                    decimal.Decimal  `json:"volume0"`
	Volume1                    decimal.Decimal  `json:"volume1"`
	TrackedVolumeUSD           decimal.Decimal  `json:"tracked_volume_usd"`
	TrackedLiquidityAddedUSD   decimal.Decimal  `json:"tracked_liquidity_added_usd"`
	TrackedLiquidityRemovedUSD decimal.Decimal  `json:"tracked_liquidity_removed_usd"`
	TrackedReserveUSD          *decimal.Decimal `json:"tracked_reserve_usd,omitempty"`
	NativeUSDPrice             decimal.Decimal  `json:"native_usd_price"`
}
