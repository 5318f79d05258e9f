package queue

import (
	"errors"
	"testing"

	tcerrors "tradecore/internal/errors"
	"tradecore/internal/schema"
)

func TestPopEmptyReturnsSentinel(t *testing.T) {
	q := New(4)
	if !q.Empty() {
		t.Fatalf("expected empty queue")
	}
	if _, err := q.Pop(); !errors.Is(err, tcerrors.ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestPushPopFIFOOrder(t *testing.T) {
	q := New(2)
	for i := int64(0); i < 5; i++ {
		q.Push(schema.NewMarketEvent(schema.MarketEvent{TimestampNanos: i}))
	}
	if q.Size() != 5 {
		t.Fatalf("expected size 5, got %d", q.Size())
	}
	for i := int64(0); i < 5; i++ {
		ev, err := q.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if ev.Market.TimestampNanos != i {
			t.Fatalf("expected FIFO order, wanted %d got %d", i, ev.Market.TimestampNanos)
		}
	}
	if !q.Empty() {
		t.Fatalf("expected queue drained")
	}
}

func TestGrowPreservesOrderAcrossWrap(t *testing.T) {
	q := New(4)
	q.Push(schema.NewCancelEvent(schema.CancelEvent{OrderID: 1}))
	q.Push(schema.NewCancelEvent(schema.CancelEvent{OrderID: 2}))
	if _, err := q.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	// head is now 1; pushing past capacity forces a wraparound grow.
	for i := schema.OrderID(3); i < 10; i++ {
		q.Push(schema.NewCancelEvent(schema.CancelEvent{OrderID: i}))
	}
	var got []schema.OrderID
	for !q.Empty() {
		ev, err := q.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		got = append(got, ev.Cancel.OrderID)
	}
	want := []schema.OrderID{2, 3, 4, 5, 6, 7, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}
