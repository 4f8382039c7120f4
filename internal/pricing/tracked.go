package pricing

import (
	"github.com/shopspring/decimal"

	"dexPricing/internal/model"
)

var two = decimal.NewFromInt(2)

// TrackedVolumeUSD returns the USD volume of a trade that counts toward tracked
// statistics. Both legs whitelisted: the average of both legs. One leg: that
// leg's full value. Neither: zero.
func (o *Oracle) TrackedVolumeUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal {
	return TrackedVolumeUSD(o.cfg.Whitelist, bundle, amount0, token0, amount1, token1)
}

// TrackedLiquidityUSD returns the USD liquidity that counts toward tracked
// statistics. Both legs whitelisted: the sum. One leg: twice that leg's value.
// Neither: zero.
func (o *Oracle) TrackedLiquidityUSD(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal {
	return TrackedLiquidityUSD(o.cfg.Whitelist, bundle, amount0, token0, amount1, token1)
}

func TrackedVolumeUSD(whitelist Whitelist, bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal {
	value0, value1 := legValues(bundle, amount0, token0, amount1, token1)
	listed0 := whitelist.Contains(token0.Address)
	listed1 := whitelist.Contains(token1.Address)

	switch {
	case listed0 && listed1:
		return model.Quo(value0.Add(value1), two)
	case listed0:
		return value0
	case listed1:
		return value1
	default:
		return decimal.Zero
	}
}

func TrackedLiquidityUSD(whitelist Whitelist, bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) decimal.Decimal {
	value0, value1 := legValues(bundle, amount0, token0, amount1, token1)
	listed0 := whitelist.Contains(token0.Address)
	listed1 := whitelist.Contains(token1.Address)

	switch {
	case listed0 && listed1:
		return value0.Add(value1)
	case listed0:
		return value0.Mul(two)
	case listed1:
		return value1.Mul(two)
	default:
		return decimal.Zero
	}
}

func legValues(bundle model.Bundle, amount0 decimal.Decimal, token0 model.Token, amount1 decimal.Decimal, token1 model.Token) (decimal.Decimal, decimal.Decimal) {
	price0 := token0.DerivedNative.Mul(bundle.NativeUSDPrice)
	price1 := token1.DerivedNative.Mul(bundle.NativeUSDPrice)
	return amount0.Mul(price0), amount1.Mul(price1)
}
