package state

import (
	"testing"

	"tradecore/internal/schema"
)

func TestApplyFillAccumulatesSignedPosition(t *testing.T) {
	r := NewPositionReducer()
	r.ApplyFill(schema.FillEvent{SymbolID: 1, Side: schema.OrderSideBuy, FilledQty: 10})
	r.ApplyFill(schema.FillEvent{SymbolID: 1, Side: schema.OrderSideSell, FilledQty: 4})

	if got := r.Position(1); got != 6 {
		t.Fatalf("expected position 6, got %d", got)
	}
}

func TestApplySnapshotReplacesState(t *testing.T) {
	r := NewPositionReducer()
	r.ApplyFill(schema.FillEvent{SymbolID: 1, Side: schema.OrderSideBuy, FilledQty: 10})

	snap := Snapshot{Positions: []PositionEntry{{SymbolID: 2, Qty: 7}}}
	r.ApplySnapshot(snap)

	if r.Position(1) != 0 {
		t.Fatalf("expected symbol 1 cleared after snapshot, got %d", r.Position(1))
	}
	if r.Position(2) != 7 {
		t.Fatalf("expected symbol 2 at 7, got %d", r.Position(2))
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 tracked symbol, got %d", r.Count())
	}
}
