package marketdata

import (
	"testing"

	"tradecore/internal/schema"
)

func TestSyntheticSourceStopsAtTickCount(t *testing.T) {
	src, err := NewSyntheticSource(Config{Symbols: []schema.SymbolID{0, 1}, StartPrice: 100, TickCount: 5})
	if err != nil {
		t.Fatalf("NewSyntheticSource: %v", err)
	}
	var count int
	for {
		if _, ok := src.Next(); !ok {
			break
		}
		count++
	}
	if count != 5 {
		t.Fatalf("expected 5 ticks, got %d", count)
	}
}

func TestSyntheticSourceRoundRobinsSymbols(t *testing.T) {
	src, err := NewSyntheticSource(Config{Symbols: []schema.SymbolID{7, 9}, StartPrice: 50, TickCount: 4})
	if err != nil {
		t.Fatalf("NewSyntheticSource: %v", err)
	}
	var seen []uint32
	for {
		ev, ok := src.Next()
		if !ok {
			break
		}
		seen = append(seen, uint32(ev.SymbolID))
	}
	want := []uint32{7, 9, 7, 9}
	for i, w := range want {
		if seen[i] != w {
			t.Fatalf("tick %d: expected symbol %d, got %d", i, w, seen[i])
		}
	}
}

func TestNewSyntheticSourceRejectsEmptySymbols(t *testing.T) {
	if _, err := NewSyntheticSource(Config{}); err == nil {
		t.Fatalf("expected error for empty symbol list")
	}
}
