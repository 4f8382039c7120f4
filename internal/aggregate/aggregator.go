package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dexPricing/internal/model"
	"dexPricing/internal/pricing"
)

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
}

// Snapshot supplies the pairs, tokens and bundle events are priced against.
type Snapshot interface {
	pricing.PairStore
	pricing.TokenStore
	Bundle() model.Bundle
}

// MetricsSink receives flushed pair windows.
type MetricsSink interface {
	UpsertWindowMetrics(ctx context.Context, metrics []model.PairWindowMetrics) error
}

// Stats counts what a run did with its input.
type Stats struct {
	Total   int
	Windows int
	Skipped int
	Failed  int
}

// Aggregator turns typed pair events into tracked pair window metrics.
type Aggregator struct {
	cfg          Config
	snapshot     Snapshot
	pricer       Pricer
	sink         MetricsSink
	logger       *zap.Logger
	accumulators map[string]*Accumulator
}

func NewAggregator(cfg Config, snapshot Snapshot, pricer Pricer, sink MetricsSink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Aggregator{
		cfg:          cfg,
		snapshot:     snapshot,
		pricer:       pricer,
		sink:         sink,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Run executes aggregation over a typed events JSONL file.
func (a *Aggregator) Run(ctx context.Context, inputPath string) (Stats, error) {
	var stats Stats
	if a.snapshot == nil {
		return stats, fmt.Errorf("snapshot is nil")
	}
	if a.pricer == nil {
		return stats, fmt.Errorf("pricer is nil")
	}
	if a.sink == nil {
		return stats, fmt.Errorf("metrics sink is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return stats, fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return stats, err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return stats, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	bundle := a.snapshot.Bundle()
	batch := make([]model.PairWindowMetrics, 0, a.cfg.BatchSize)
	maxTs := startTs

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			a.logger.Warn("decode typed event", zap.Error(err))
			continue
		}

		if record.Timestamp <= startTs {
			stats.Skipped++
			continue
		}

		windowStart := windowStart(record.Timestamp, a.cfg.WindowSeconds)
		windowEnd := windowStart + a.cfg.WindowSeconds

		key := pairKey(record.Address)
		acc := a.accumulators[key]
		if acc != nil && acc.WindowStart != windowStart {
			batch = append(batch, a.flushAccumulator(acc, bundle))
			delete(a.accumulators, key)
			acc = nil
		}
		if acc == nil {
			acc, err = a.newAccumulator(record, windowStart, windowEnd)
			if err != nil {
				stats.Failed++
				a.logger.Warn("aggregate event", zap.Error(err), zap.String("pair", record.Address))
				continue
			}
			a.accumulators[key] = acc
		}

		if err := acc.AddEvent(record, a.pricer, bundle); err != nil {
			stats.Failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pair", record.Address), zap.String("event", record.EventName))
			continue
		}

		if record.Timestamp > maxTs {
			maxTs = record.Timestamp
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
				return stats, err
			}
			stats.Windows += len(batch)
			batch = batch[:0]

			if err := a.saveState(ctx); err != nil {
				return stats, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}

	keys := make([]string, 0, len(a.accumulators))
	for key := range a.accumulators {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		batch = append(batch, a.flushAccumulator(a.accumulators[key], bundle))
	}
	a.accumulators = make(map[string]*Accumulator)

	if len(batch) > 0 {
		if err := a.sink.UpsertWindowMetrics(ctx, batch); err != nil {
			return stats, err
		}
		stats.Windows += len(batch)
	}

	a.cfg.RecomputeFrom = maxTs
	if err := a.saveState(ctx); err != nil {
		return stats, err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", stats.Total),
		zap.Int("windows", stats.Windows),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

func (a *Aggregator) newAccumulator(record model.TypedEventRecord, windowStart, windowEnd uint64) (*Accumulator, error) {
	pair, ok := a.snapshot.Pair(pairKey(record.Address))
	if !ok {
		return nil, fmt.Errorf("pair %s not in snapshot", record.Address)
	}
	return NewAccumulator(record, a.token(pair.Token0), a.token(pair.Token1), windowStart, windowEnd), nil
}

// token returns the snapshot record, or an unpriced placeholder.
func (a *Aggregator) token(address string) model.Token {
	if token, ok := a.snapshot.Token(address); ok {
		return token
	}
	return model.Token{Address: address, DerivedNative: decimal.Zero}
}

func (a *Aggregator) flushAccumulator(acc *Accumulator, bundle model.Bundle) model.PairWindowMetrics {
	metrics := model.PairWindowMetrics{
		ChainID:                    acc.ChainID,
		PairAddress:                acc.PairAddress,
		WindowSizeSecs:             int64(a.cfg.WindowSeconds),
		WindowStart:                time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:                  time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:                  acc.SwapCount,
		MintCount:                  acc.MintCount,
		BurnCount:                  acc.BurnCount,
		Volume0:                    acc.Volume0,
		Volume1:                    acc.Volume1,
		TrackedVolumeUSD:           acc.TrackedVolume,
		TrackedLiquidityAddedUSD:   acc.LiquidityAdded,
		TrackedLiquidityRemovedUSD: acc.LiquidityRemoved,
		NativeUSDPrice:             bundle.NativeUSDPrice,
	}

	if pair, ok := a.snapshot.Pair(acc.PairAddress); ok {
		reserve := a.pricer.TrackedLiquidityUSD(bundle, pair.Reserve0, acc.Token0, pair.Reserve1, acc.Token1)
		metrics.TrackedReserveUSD = &reserve
	}
	return metrics
}

func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

// saveState persists a timestamp no later than the oldest open window, so a
// restart recomputes any window that was not flushed.
func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}

	if len(a.accumulators) == 0 {
		return a.cfg.StateStore.Save(ctx, a.cfg.RecomputeFrom)
	}

	safeTs := minOpenWindowStart(a.accumulators)
	if safeTs > 0 {
		safeTs = safeTs - 1
	}
	if safeTs == 0 {
		safeTs = a.cfg.RecomputeFrom
	}
	return a.cfg.StateStore.Save(ctx, safeTs)
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

func pairKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func minOpenWindowStart(acc map[string]*Accumulator) uint64 {
	var min uint64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
