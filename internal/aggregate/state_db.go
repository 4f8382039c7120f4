package aggregate

import (
	"context"
	"fmt"

	"dexPricing/internal/storage/postgres"
)

const defaultStateName = "aggregate"

// DBStateStore keeps the aggregation checkpoint in the pricer_state table,
// one row per chain and state name.
type DBStateStore struct {
	Store   *postgres.Store
	ChainID uint64
	Name    string
}

// Key is the pricer_state row name, e.g. "321:aggregate".
func (s *DBStateStore) Key() string {
	name := s.Name
	if name == "" {
		name = defaultStateName
	}
	if s.ChainID == 0 {
		return name
	}
	return fmt.Sprintf("%d:%s", s.ChainID, name)
}

func (s *DBStateStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Store == nil {
		return 0, false, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	ts, ok, err := s.Store.LoadState(ctx, s.Key())
	if err != nil {
		return 0, false, fmt.Errorf("load state %s: %w", s.Key(), err)
	}
	return ts, ok, nil
}

func (s *DBStateStore) Save(ctx context.Context, ts uint64) error {
	if s == nil || s.Store == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Store.SaveState(ctx, s.Key(), ts); err != nil {
		return fmt.Errorf("save state %s: %w", s.Key(), err)
	}
	return nil
}
