package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"dexPricing/internal/model"
)

func TestDerivedNativePriceNativeIsOne(t *testing.T) {
	oracle, err := NewOracle(testConfig(), newFakeStore(), newFakeStore(), newFakeStore(), nil)
	require.NoError(t, err)

	require.True(t, oracle.DerivedNativePrice(nativeAddr).Equal(dec("1")))
	require.True(t, oracle.DerivedNativePrice("0x4446FC4EB47F2F6586F9FAAB68B3498F86C07521").Equal(dec("1")))
	require.Equal(t, StatusNative, oracle.Quote(nativeAddr).Status)
}

func TestDerivedNativePriceNoPair(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.True(t, quote.Price.IsZero())
	require.Equal(t, StatusUnpriced, quote.Status)
}

func TestDerivedNativePriceBelowThreshold(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("5")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)
	require.True(t, oracle.DerivedNativePrice(tokenXAddr).IsZero())
}

func TestDerivedNativePriceThresholdIsStrict(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("10")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)
	require.True(t, oracle.DerivedNativePrice(tokenXAddr).IsZero())
}

func TestDerivedNativePriceOneHop(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("20")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.True(t, quote.Price.Equal(dec("1")), "got %s", quote.Price)
	require.Equal(t, StatusAnchored, quote.Status)
	require.Equal(t, usdtAddr, quote.Anchor)
	require.Equal(t, pairXUsdt, quote.Pair)
}

func TestDerivedNativePriceTokenOnEitherSide(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	// X is token1 here: price of X in usdt = reserve0/reserve1 = 20/10
	store.addPair(model.NewPair(pairXUsdt, usdtAddr, tokenXAddr, dec("20"), dec("10"), dec("20")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)
	require.True(t, oracle.DerivedNativePrice(tokenXAddr).Equal(dec("1")))
}

func TestDerivedNativePriceFirstAnchorWins(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	store.addToken(busdAddr, "0.4")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("20")))
	store.addPair(model.NewPair(pairXBusd, tokenXAddr, busdAddr, dec("10"), dec("100"), dec("500")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.Equal(t, usdtAddr, quote.Anchor)
	require.True(t, quote.Price.Equal(dec("1")))
}

func TestDerivedNativePriceFallsThroughThinAnchor(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	store.addToken(busdAddr, "0.4")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("5")))
	store.addPair(model.NewPair(pairXBusd, tokenXAddr, busdAddr, dec("10"), dec("100"), dec("500")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.Equal(t, busdAddr, quote.Anchor)
	require.True(t, quote.Price.Equal(dec("4")), "got %s", quote.Price)
}

func TestDerivedNativePriceSkipsMissingAnchorToken(t *testing.T) {
	store := newFakeStore()
	store.addToken(busdAddr, "0.4")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("20")))
	store.addPair(model.NewPair(pairXBusd, tokenXAddr, busdAddr, dec("10"), dec("100"), dec("500")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.Equal(t, busdAddr, quote.Anchor)
	require.True(t, quote.Price.Equal(dec("4")))
}

func TestDerivedNativePriceSkipsUnloadedPair(t *testing.T) {
	store := newFakeStore()
	store.addToken(busdAddr, "0.4")
	store.index[pairKey(tokenXAddr, usdtAddr)] = pairXUsdt
	store.addPair(model.NewPair(pairXBusd, tokenXAddr, busdAddr, dec("10"), dec("100"), dec("500")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)
	require.True(t, oracle.DerivedNativePrice(tokenXAddr).Equal(dec("4")))
}

func TestDerivedNativePriceThroughNative(t *testing.T) {
	store := newFakeStore()
	store.addToken(nativeAddr, "1")
	store.addPair(model.NewPair(pairXNative, nativeAddr, tokenXAddr, dec("50"), dec("200"), dec("100")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)
	require.True(t, oracle.DerivedNativePrice(tokenXAddr).Equal(dec("0.25")))
}

func TestNewOracleValidation(t *testing.T) {
	store := newFakeStore()

	cfg := testConfig()
	cfg.NativeToken = "not-an-address"
	_, err := NewOracle(cfg, store, store, store, nil)
	require.Error(t, err)

	cfg = testConfig()
	cfg.StablePools = nil
	_, err = NewOracle(cfg, store, store, store, nil)
	require.Error(t, err)

	cfg = testConfig()
	cfg.MinLiquidityNative = dec("-1")
	_, err = NewOracle(cfg, store, store, store, nil)
	require.Error(t, err)

	_, err = NewOracle(testConfig(), nil, store, store, nil)
	require.Error(t, err)
}

func TestWhitelistKeepsOrderAndDeduplicates(t *testing.T) {
	w := NewWhitelist(" 0xB ", "0xa", "0xb", "")
	require.Equal(t, []string{"0xb", "0xa"}, w.Tokens())
	require.True(t, w.Contains("0XA"))
	require.False(t, w.Contains("0xc"))
	require.Equal(t, 2, w.Len())
}

func TestDerivedNativePriceKeepsTinyPrices(t *testing.T) {
	store := newFakeStore()
	store.addToken(nativeAddr, "1")
	store.addPair(model.NewPair(pairXNative, tokenXAddr, nativeAddr, dec("1000000000000000000"), dec("1"), dec("100")))
	store.addPair(model.NewPair("0xdddddddddddddddddddddddddddddddddddddddd", tokenYAddr, nativeAddr, dec("3"), dec("0.0000000001"), dec("100")))

	oracle, err := NewOracle(testConfig(), store, store, store, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.Equal(t, StatusAnchored, quote.Status)
	require.True(t, quote.Price.Equal(dec("0.000000000000000001")), "got %s", quote.Price)

	// 1e-10 / 3 must keep its repeating digits instead of rounding to a few.
	third := oracle.DerivedNativePrice(tokenYAddr)
	require.True(t, third.Mul(dec("3")).Sub(dec("0.0000000001")).Abs().LessThan(dec("1e-40")), "got %s", third)
}

type failingLookup struct {
	*fakeStore
	failures map[[2]string]error
}

func (l failingLookup) TryLookupPair(tokenA, tokenB string) (string, bool, error) {
	if err, ok := l.failures[pairKey(tokenA, tokenB)]; ok {
		return "", false, err
	}
	address, ok := l.LookupPair(tokenA, tokenB)
	return address, ok, nil
}

func TestDerivedNativePriceStopsOnLookupFailure(t *testing.T) {
	store := newFakeStore()
	store.addToken(usdtAddr, "0.5")
	store.addToken(busdAddr, "0.4")
	store.addPair(model.NewPair(pairXUsdt, tokenXAddr, usdtAddr, dec("10"), dec("20"), dec("20")))
	store.addPair(model.NewPair(pairXBusd, tokenXAddr, busdAddr, dec("10"), dec("100"), dec("500")))

	lookup := failingLookup{
		fakeStore: store,
		failures:  map[[2]string]error{pairKey(tokenXAddr, usdtAddr): errors.New("rpc unavailable")},
	}
	oracle, err := NewOracle(testConfig(), store, store, lookup, nil)
	require.NoError(t, err)

	quote := oracle.Quote(tokenXAddr)
	require.Error(t, quote.Err)
	require.Equal(t, StatusUnpriced, quote.Status)
	require.True(t, quote.Price.IsZero())
	require.Empty(t, quote.Anchor)

	// A plain miss on the same anchor still falls through to the next one.
	delete(lookup.failures, pairKey(tokenXAddr, usdtAddr))
	store.index = map[[2]string]string{pairKey(tokenXAddr, busdAddr): pairXBusd}
	quote = oracle.Quote(tokenXAddr)
	require.NoError(t, quote.Err)
	require.Equal(t, busdAddr, quote.Anchor)
}
