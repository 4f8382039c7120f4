package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Status tags how a derived price was obtained.
type Status string

const (
	StatusNative   Status = "native"
	StatusAnchored Status = "anchored"
	StatusUnpriced Status = "unpriced"
)

// Quote is a derived native price together with its provenance. An unpriced
// quote carries a zero price, matching DerivedNativePrice. Err is set when the
// anchor search stopped on a lookup failure rather than running out of anchors.
type Quote struct {
	Token  string
	Price  decimal.Decimal
	Status Status
	Anchor string
	Pair   string
	Err    error
}

// DerivedNativePrice returns the token's price in native-asset units, or zero
// when no whitelisted anchor yields a trusted pair.
func (o *Oracle) DerivedNativePrice(token string) decimal.Decimal {
	return o.Quote(token).Price
}

// Quote searches the whitelist in order for the first anchor directly paired
// with token whose pair holds more than the minimum native liquidity, and
// composes price(token in anchor) with the anchor's derived native price.
func (o *Oracle) Quote(token string) Quote {
	token = NormalizeAddress(token)
	if token == o.cfg.NativeToken {
		return Quote{Token: token, Price: decimal.NewFromInt(1), Status: StatusNative}
	}

	for _, anchor := range o.cfg.Whitelist.order {
		if anchor == token {
			continue
		}
		quote, ok, err := o.quoteThrough(token, anchor)
		if err != nil {
			// A failed lookup ends the search; later anchors are not tried.
			o.logger.Warn("pair lookup failed", zap.String("token", token), zap.String("anchor", anchor), zap.Error(err))
			return Quote{Token: token, Price: decimal.Zero, Status: StatusUnpriced, Err: err}
		}
		if ok {
			return quote
		}
	}

	return Quote{Token: token, Price: decimal.Zero, Status: StatusUnpriced}
}

func (o *Oracle) quoteThrough(token, anchor string) (Quote, bool, error) {
	pairAddress, ok, err := o.lookupPair(token, anchor)
	if err != nil || !ok {
		return Quote{}, false, err
	}
	pairAddress = NormalizeAddress(pairAddress)

	pair, ok := o.pairs.Pair(pairAddress)
	if !ok {
		o.logger.Debug("anchor pair not loaded", zap.String("token", token), zap.String("pair", pairAddress))
		return Quote{}, false, nil
	}

	price, counterpart, ok := pair.PriceOf(token)
	if !ok {
		o.logger.Warn("lookup returned pair without token", zap.String("token", token), zap.String("pair", pairAddress))
		return Quote{}, false, nil
	}

	if !pair.ReserveNative.GreaterThan(o.cfg.MinLiquidityNative) {
		o.logger.Debug("anchor pair below liquidity threshold",
			zap.String("token", token),
			zap.String("pair", pairAddress),
			zap.String("reserve_native", pair.ReserveNative.String()),
		)
		return Quote{}, false, nil
	}

	counterToken, ok := o.tokens.Token(counterpart)
	if !ok {
		o.logger.Debug("anchor token missing", zap.String("token", token), zap.String("anchor", counterpart))
		return Quote{}, false, nil
	}

	return Quote{
		Token:  token,
		Price:  price.Mul(counterToken.DerivedNative),
		Status: StatusAnchored,
		Anchor: counterpart,
		Pair:   pairAddress,
	}, true, nil
}

func (o *Oracle) lookupPair(token, anchor string) (string, bool, error) {
	if fallible, ok := o.lookup.(FallibleLookup); ok {
		return fallible.TryLookupPair(token, anchor)
	}
	address, ok := o.lookup.LookupPair(token, anchor)
	return address, ok, nil
}
