package memory

import (
	"testing"

	"github.com/shopspring/decimal"

	"dexPricing/internal/model"
)

func TestSnapshotLookupIsUnordered(t *testing.T) {
	s := NewSnapshot()
	s.PutPair(model.NewPair("0xPAIR", "0xAAA", "0xbbb", decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.Zero))

	addr, ok := s.LookupPair("0xbbb", "0xaaa")
	if !ok || addr != "0xpair" {
		t.Fatalf("lookup mismatch: %q %v", addr, ok)
	}
	addr, ok = s.LookupPair("0xAAA", "0xBBB")
	if !ok || addr != "0xpair" {
		t.Fatalf("lookup mismatch: %q %v", addr, ok)
	}
	if _, ok := s.LookupPair("0xaaa", "0xccc"); ok {
		t.Fatalf("expected miss")
	}

	pair, ok := s.Pair("0xPair")
	if !ok || pair.Token0 != "0xaaa" {
		t.Fatalf("pair mismatch: %+v", pair)
	}
}

func TestSnapshotPutTokenReplaces(t *testing.T) {
	s := NewSnapshot()
	s.PutToken(model.Token{Address: "0xB", Symbol: "B"})
	s.PutToken(model.Token{Address: "0xa", Symbol: "A"})
	s.PutToken(model.Token{Address: "0xb", Symbol: "B", DerivedNative: decimal.NewFromInt(3)})

	tokens := s.Tokens()
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Address != "0xa" || tokens[1].Address != "0xb" {
		t.Fatalf("tokens not sorted: %+v", tokens)
	}
	if !tokens[1].DerivedNative.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("token not replaced: %+v", tokens[1])
	}
	if _, ok := s.Token("0xc"); ok {
		t.Fatalf("expected miss")
	}
}
