package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"dexPricing/internal/model"
)

// Store provides Postgres persistence for snapshots, prices and metrics.
type Store struct {
	pool    *pgxpool.Pool
	chainID uint64
}

func NewStore(ctx context.Context, dsn string, chainID uint64) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, chainID: chainID}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadPairs returns every pair of the store's chain.
func (s *Store) LoadPairs(ctx context.Context) ([]model.Pair, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pair_address, token0, token1, reserve0::text, reserve1::text, reserve_native::text
		FROM pairs
		WHERE chain_id = $1
		ORDER BY pair_address
	`, int64(s.chainID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []model.Pair
	for rows.Next() {
		var address, token0, token1, reserve0, reserve1, reserveNative string
		if err := rows.Scan(&address, &token0, &token1, &reserve0, &reserve1, &reserveNative); err != nil {
			return nil, err
		}
		r0, err := parseDecimal(reserve0)
		if err != nil {
			return nil, fmt.Errorf("pair %s reserve0: %w", address, err)
		}
		r1, err := parseDecimal(reserve1)
		if err != nil {
			return nil, fmt.Errorf("pair %s reserve1: %w", address, err)
		}
		rn, err := parseDecimal(reserveNative)
		if err != nil {
			return nil, fmt.Errorf("pair %s reserve_native: %w", address, err)
		}
		pairs = append(pairs, model.NewPair(address, token0, token1, r0, r1, rn))
	}
	return pairs, rows.Err()
}

// LoadTokens returns every token of the store's chain.
func (s *Store) LoadTokens(ctx context.Context) ([]model.Token, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT token_address, symbol, name, decimals, derived_native::text
		FROM tokens
		WHERE chain_id = $1
		ORDER BY token_address
	`, int64(s.chainID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.Token
	for rows.Next() {
		var token model.Token
		var decimals int16
		var derived string
		if err := rows.Scan(&token.Address, &token.Symbol, &token.Name, &decimals, &derived); err != nil {
			return nil, err
		}
		token.Decimals = uint8(decimals)
		token.DerivedNative, err = parseDecimal(derived)
		if err != nil {
			return nil, fmt.Errorf("token %s derived_native: %w", token.Address, err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// LoadBundle returns the stored bundle; ok is false when none was saved yet.
func (s *Store) LoadBundle(ctx context.Context) (model.Bundle, bool, error) {
	var price string
	row := s.pool.QueryRow(ctx, `SELECT native_usd_price::text FROM bundle WHERE chain_id=$1`, int64(s.chainID))
	if err := row.Scan(&price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bundle{}, false, nil
		}
		return model.Bundle{}, false, err
	}
	parsed, err := parseDecimal(price)
	if err != nil {
		return model.Bundle{}, false, fmt.Errorf("native_usd_price: %w", err)
	}
	return model.Bundle{NativeUSDPrice: parsed}, true, nil
}

// SaveBundle upserts the chain's bundle.
func (s *Store) SaveBundle(ctx context.Context, bundle model.Bundle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bundle (chain_id, native_usd_price, updated_at)
		VALUES ($1, $2::numeric, now())
		ON CONFLICT (chain_id) DO UPDATE
		SET native_usd_price = EXCLUDED.native_usd_price, updated_at = now()
	`, int64(s.chainID), bundle.NativeUSDPrice.String())
	return err
}

// PutTokenPrices upserts derived prices and mirrors them onto the tokens table.
func (s *Store) PutTokenPrices(ctx context.Context, prices []model.TokenPrice) error {
	if len(prices) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(`
			INSERT INTO token_prices (
				chain_id, token_address, derived_native, usd, status, anchor, pair_address, created_at, updated_at
			) VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, now(), now())
			ON CONFLICT (chain_id, token_address)
			DO UPDATE SET
				derived_native = EXCLUDED.derived_native,
				usd = EXCLUDED.usd,
				status = EXCLUDED.status,
				anchor = EXCLUDED.anchor,
				pair_address = EXCLUDED.pair_address,
				updated_at = now()
		`,
			int64(s.chainID),
			p.Token,
			p.DerivedNative.String(),
			p.USD.String(),
			p.Status,
			nullableString(p.Anchor),
			nullableString(p.Pair),
		)
		batch.Queue(`UPDATE tokens SET derived_native = $3::numeric WHERE chain_id = $1 AND token_address = $2`,
			int64(s.chainID), p.Token, p.DerivedNative.String())
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWindowMetrics inserts or updates tracked pair window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PairWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		var trackedReserve *string
		if m.TrackedReserveUSD != nil {
			val := m.TrackedReserveUSD.String()
			trackedReserve = &val
		}
		batch.Queue(`
			INSERT INTO pair_window_metrics (
				chain_id, pair_address, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, mint_count, burn_count, volume0, volume1, tracked_volume_usd,
				tracked_liquidity_added_usd, tracked_liquidity_removed_usd, tracked_reserve_usd,
				native_usd_price, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::numeric,$10::numeric,$11::numeric,$12::numeric,$13::numeric,$14::numeric,$15::numeric,now(),now())
			ON CONFLICT (chain_id, pair_address, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				mint_count = EXCLUDED.mint_count,
				burn_count = EXCLUDED.burn_count,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				tracked_volume_usd = EXCLUDED.tracked_volume_usd,
				tracked_liquidity_added_usd = EXCLUDED.tracked_liquidity_added_usd,
				tracked_liquidity_removed_usd = EXCLUDED.tracked_liquidity_removed_usd,
				tracked_reserve_usd = EXCLUDED.tracked_reserve_usd,
				native_usd_price = EXCLUDED.native_usd_price,
				updated_at = now()
		`,
			int64(m.ChainID),
			m.PairAddress,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			int64(m.MintCount),
			int64(m.BurnCount),
			m.Volume0.String(),
			m.Volume1.String(),
			m.TrackedVolumeUSD.String(),
			m.TrackedLiquidityAddedUSD.String(),
			m.TrackedLiquidityRemovedUSD.String(),
			trackedReserve,
			m.NativeUSDPrice.String(),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM pricer_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(ts), true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pricer_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, int64(ts))
	return err
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
