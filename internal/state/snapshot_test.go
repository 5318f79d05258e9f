package state

import (
	"path/filepath"
	"testing"

	"tradecore/internal/schema"
)

func TestSnapshotWriteReadRoundTrip(t *testing.T) {
	r := NewPositionReducer()
	r.ApplyFill(schema.FillEvent{SymbolID: 3, Side: schema.OrderSideBuy, FilledQty: 5})
	snap := r.SnapshotWithMeta(10, 99)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if err := CompareSnapshots(snap, got); err != nil {
		t.Fatalf("CompareSnapshots: %v", err)
	}
	if got.LastSeq != 10 || got.LastEventTs != 99 {
		t.Fatalf("expected metadata preserved, got %+v", got)
	}
}

func TestCompareSnapshotsDetectsMismatch(t *testing.T) {
	expected := Snapshot{Positions: []PositionEntry{{SymbolID: 1, Qty: 5}}}
	actual := Snapshot{Positions: []PositionEntry{{SymbolID: 1, Qty: 6}}}
	if err := CompareSnapshots(expected, actual); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
