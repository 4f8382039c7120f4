package aggregate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dexPricing/internal/model"
)

// Pricer computes tracked USD values for a pair's two legs.
type Pricer interface {
	TrackedVolumeUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal
	TrackedLiquidityUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal
}

// Accumulator holds tracked aggregates for a pair window.
type Accumulator struct {
	ChainID          uint64
	PairAddress      string
	Token0           model.Token
	Token1           model.Token
	WindowStart      uint64
	WindowEnd        uint64
	SwapCount        uint64
	MintCount        uint64
	BurnCount        uint64
	Volume0          decimal.Decimal
	Volume1          decimal.Decimal
	TrackedVolume    decimal.Decimal
	LiquidityAdded   decimal.Decimal
	LiquidityRemoved decimal.Decimal
	LastBlock        uint64
	LastTS           uint64
}

func NewAccumulator(record model.TypedEventRecord, token0, token1 model.Token, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		ChainID:          record.ChainID,
		PairAddress:      pairKey(record.Address),
		Token0:           token0,
		Token1:           token1,
		WindowStart:      windowStart,
		WindowEnd:        windowEnd,
		Volume0:          decimal.Zero,
		Volume1:          decimal.Zero,
		TrackedVolume:    decimal.Zero,
		LiquidityAdded:   decimal.Zero,
		LiquidityRemoved: decimal.Zero,
		LastBlock:        record.BlockNumber,
		LastTS:           record.Timestamp,
	}
}

// AddEvent folds one swap, mint or burn into the window. Other events are ignored.
func (a *Accumulator) AddEvent(record model.TypedEventRecord, pricer Pricer, bundle model.Bundle) error {
	switch strings.ToLower(record.EventName) {
	case "swap":
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		if err := a.applySwap(swap, pricer, bundle); err != nil {
			return err
		}
	case "mint":
		var mint model.MintEventData
		if err := json.Unmarshal(record.Decoded, &mint); err != nil {
			return fmt.Errorf("decode mint: %w", err)
		}
		amount0, amount1, err := parseAmounts(mint.Amount0, mint.Amount1)
		if err != nil {
			return err
		}
		a.LiquidityAdded = a.LiquidityAdded.Add(pricer.TrackedLiquidityUSD(bundle, amount0, a.Token0, amount1, a.Token1))
		a.MintCount++
	case "burn":
		var burn model.BurnEventData
		if err := json.Unmarshal(record.Decoded, &burn); err != nil {
			return fmt.Errorf("decode burn: %w", err)
		}
		amount0, amount1, err := parseAmounts(burn.Amount0, burn.Amount1)
		if err != nil {
			return err
		}
		a.LiquidityRemoved = a.LiquidityRemoved.Add(pricer.TrackedLiquidityUSD(bundle, amount0, a.Token0, amount1, a.Token1))
		a.BurnCount++
	default:
		return nil
	}

	if record.Timestamp >= a.LastTS {
		a.LastTS = record.Timestamp
		a.LastBlock = record.BlockNumber
	}
	return nil
}

func (a *Accumulator) applySwap(swap model.SwapEventData, pricer Pricer, bundle model.Bundle) error {
	in0, in1, err := parseAmounts(swap.Amount0In, swap.Amount1In)
	if err != nil {
		return err
	}
	out0, out1, err := parseAmounts(swap.Amount0Out, swap.Amount1Out)
	if err != nil {
		return err
	}

	amount0 := in0.Add(out0)
	amount1 := in1.Add(out1)
	a.Volume0 = a.Volume0.Add(amount0)
	a.Volume1 = a.Volume1.Add(amount1)
	a.TrackedVolume = a.TrackedVolume.Add(pricer.TrackedVolumeUSD(bundle, amount0, a.Token0, amount1, a.Token1))
	a.SwapCount++
	return nil
}

func parseAmounts(value0, value1 string) (decimal.Decimal, decimal.Decimal, error) {
	amount0, err := parseAmount(value0)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	amount1, err := parseAmount(value1)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return amount0, amount1, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if parsed.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %q", value)
	}
	return parsed, nil
}
