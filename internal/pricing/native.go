package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexPricing/internal/model"
)

type stableQuote struct {
	price     decimal.Decimal
	liquidity decimal.Decimal
}

// NativeUSDPrice returns the liquidity-weighted USD price of the native asset
// implied by the configured stablecoin pools.
//
// With several pools present, each pool's price is weighted by its native
// reserve; zero total liquidity yields zero. A single present pool contributes
// its price directly and no pools yield zero.
func (o *Oracle) NativeUSDPrice() decimal.Decimal {
	quotes := make([]stableQuote, 0, len(o.cfg.StablePools))
	for _, address := range o.cfg.StablePools {
		quote, ok := o.stableQuote(address)
		if !ok {
			continue
		}
		quotes = append(quotes, quote)
	}

	switch len(quotes) {
	case 0:
		return decimal.Zero
	case 1:
		return quotes[0].price
	}

	liquidity := decimal.Zero
	for _, quote := range quotes {
		liquidity = liquidity.Add(quote.liquidity)
	}
	if liquidity.IsZero() {
		return decimal.Zero
	}

	price := decimal.Zero
	for _, quote := range quotes {
		weight := model.Quo(quote.liquidity, liquidity)
		price = price.Add(quote.price.Mul(weight))
	}
	return price
}

func (o *Oracle) stableQuote(address string) (stableQuote, bool) {
	pair, ok := o.pairs.Pair(address)
	if !ok {
		o.logger.Debug("stable pool not found", zap.String("pool", address))
		return stableQuote{}, false
	}

	price, _, ok := pair.PriceOf(o.cfg.NativeToken)
	if !ok {
		o.logger.Warn("stable pool does not hold native token",
			zap.String("pool", address),
			zap.String("token0", pair.Token0),
			zap.String("token1", pair.Token1),
		)
		return stableQuote{}, false
	}
	liquidity, _ := pair.ReserveOf(o.cfg.NativeToken)

	return stableQuote{price: price, liquidity: liquidity}, true
}
