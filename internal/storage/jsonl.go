package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dexPricing/internal/model"
)

type bundleLine struct {
	Kind   string       `json:"kind"`
	Bundle model.Bundle `json:"bundle"`
}

type priceLine struct {
	Kind  string           `json:"kind"`
	Price model.TokenPrice `json:"price"`
}

type windowLine struct {
	Kind    string                  `json:"kind"`
	Metrics model.PairWindowMetrics `json:"metrics"`
}

// JsonlSink appends pricing results to a JSONL file.
type JsonlSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSink(path string) *JsonlSink {
	return &JsonlSink{path: path}
}

// SaveBundle appends the bundle as a single JSON line.
func (s *JsonlSink) SaveBundle(_ context.Context, bundle model.Bundle) error {
	return s.appendLines([]interface{}{bundleLine{Kind: "bundle", Bundle: bundle}})
}

// PutTokenPrices appends one JSON line per token price.
func (s *JsonlSink) PutTokenPrices(_ context.Context, prices []model.TokenPrice) error {
	if len(prices) == 0 {
		return nil
	}
	lines := make([]interface{}, 0, len(prices))
	for _, price := range prices {
		lines = append(lines, priceLine{Kind: "token_price", Price: price})
	}
	return s.appendLines(lines)
}

// UpsertWindowMetrics appends one JSON line per pair window. Re-aggregated
// windows are appended again; readers keep the last line per window.
func (s *JsonlSink) UpsertWindowMetrics(_ context.Context, metrics []model.PairWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	lines := make([]interface{}, 0, len(metrics))
	for _, m := range metrics {
		lines = append(lines, windowLine{Kind: "pair_window", Metrics: m})
	}
	return s.appendLines(lines)
}

func (s *JsonlSink) appendLines(lines []interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range lines {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
