// Package book implements the dual-sided, price-time-priority order store
// used by the execution engine to track resting orders. Bids are ordered by
// descending price then ascending arrival time; asks by ascending price
// then ascending arrival time. Both sides carry an id-indexed side table for
// O(1) lookup/removal alongside the O(log n) ordered containers.
package book

import (
	"github.com/tidwall/btree"

	"tradecore/internal/schema"
)

// OrderState tracks a resting order plus its accumulated fill progress,
// mirroring the fields the execution engine needs to compute weighted
// average fill price without re-reading the original order event.
type OrderState struct {
	Order        schema.OrderEvent
	FilledQty    schema.Quantity
	AvgFillPrice schema.Price
	Active       bool
	// seq is a monotonic insertion sequence used to break ties when price
	// and timestamp are identical, so iteration order is deterministic
	// across runs regardless of map/tree internals.
	seq uint64
}

// OrderID returns the id of the underlying order, for container comparators
// and lookups.
func (s *OrderState) OrderID() schema.OrderID { return s.Order.OrderID }

const defaultLedgerCapacity = 4096

// Store holds the live bid/ask books plus a bounded, oldest-evicted-first
// ledger of orders that have left the book (filled or cancelled).
type Store struct {
	bids *btree.BTreeG[*OrderState]
	asks *btree.BTreeG[*OrderState]

	bidIndex map[schema.OrderID]*OrderState
	askIndex map[schema.OrderID]*OrderState

	ledger     []OrderState
	ledgerHead int
	ledgerLen  int
	ledgerCap  int

	nextSeq uint64
}

// NewStore allocates an empty order store. ledgerCapacity bounds the
// historical ledger; when it is exhausted, the oldest entry is evicted to
// make room for the newest.
func NewStore(ledgerCapacity int) *Store {
	if ledgerCapacity <= 0 {
		ledgerCapacity = defaultLedgerCapacity
	}
	s := &Store{
		bidIndex:  make(map[schema.OrderID]*OrderState),
		askIndex:  make(map[schema.OrderID]*OrderState),
		ledger:    make([]OrderState, ledgerCapacity),
		ledgerCap: ledgerCapacity,
	}
	s.bids = btree.NewBTreeG(func(a, b *OrderState) bool {
		return lessBid(a, b)
	})
	s.asks = btree.NewBTreeG(func(a, b *OrderState) bool {
		return lessAsk(a, b)
	})
	return s
}

// lessBid orders bids by descending price, then ascending timestamp, then
// ascending insertion sequence.
func lessBid(a, b *OrderState) bool {
	if a.Order.Price != b.Order.Price {
		return a.Order.Price > b.Order.Price
	}
	if a.Order.TimestampNanos != b.Order.TimestampNanos {
		return a.Order.TimestampNanos < b.Order.TimestampNanos
	}
	return a.seq < b.seq
}

// lessAsk orders asks by ascending price, then ascending timestamp, then
// ascending insertion sequence.
func lessAsk(a, b *OrderState) bool {
	if a.Order.Price != b.Order.Price {
		return a.Order.Price < b.Order.Price
	}
	if a.Order.TimestampNanos != b.Order.TimestampNanos {
		return a.Order.TimestampNanos < b.Order.TimestampNanos
	}
	return a.seq < b.seq
}

// Emplace inserts or replaces order state, keyed by order id. If an order
// with the same id already rests in the book it is removed first
// (defensive re-insert, matching a strategy resubmitting the same id).
func (s *Store) Emplace(state OrderState) *OrderState {
	id := state.Order.OrderID
	state.seq = s.nextSeq
	s.nextSeq++

	if state.Order.Side == schema.OrderSideBuy {
		if old, ok := s.bidIndex[id]; ok {
			s.bids.Delete(old)
			delete(s.bidIndex, id)
		}
		st := &state
		s.bids.Set(st)
		s.bidIndex[id] = st
		return st
	}

	if old, ok := s.askIndex[id]; ok {
		s.asks.Delete(old)
		delete(s.askIndex, id)
	}
	st := &state
	s.asks.Set(st)
	s.askIndex[id] = st
	return st
}

// Get returns the resting order state for id, if any.
func (s *Store) Get(id schema.OrderID) (*OrderState, bool) {
	if st, ok := s.bidIndex[id]; ok {
		return st, true
	}
	if st, ok := s.askIndex[id]; ok {
		return st, true
	}
	return nil, false
}

// Inactive removes an order from the live book and appends it to the
// historical ledger. An unknown id is a no-op: cancels can race a fill that
// already retired the order, and the caller has no state to reconcile.
func (s *Store) Inactive(id schema.OrderID) error {
	if st, ok := s.bidIndex[id]; ok {
		s.appendLedger(*st)
		s.bids.Delete(st)
		delete(s.bidIndex, id)
		return nil
	}
	if st, ok := s.askIndex[id]; ok {
		s.appendLedger(*st)
		s.asks.Delete(st)
		delete(s.askIndex, id)
		return nil
	}
	return nil
}

func (s *Store) appendLedger(st OrderState) {
	idx := (s.ledgerHead + s.ledgerLen) % s.ledgerCap
	s.ledger[idx] = st
	if s.ledgerLen < s.ledgerCap {
		s.ledgerLen++
	} else {
		s.ledgerHead = (s.ledgerHead + 1) % s.ledgerCap
	}
}

// Ledger returns the historical (inactivated) orders, oldest first.
func (s *Store) Ledger() []OrderState {
	out := make([]OrderState, s.ledgerLen)
	for i := 0; i < s.ledgerLen; i++ {
		out[i] = s.ledger[(s.ledgerHead+i)%s.ledgerCap]
	}
	return out
}

// BestBid returns the highest-priority resting bid.
func (s *Store) BestBid() (*OrderState, bool) {
	return s.bids.Min()
}

// BestAsk returns the highest-priority resting ask.
func (s *Store) BestAsk() (*OrderState, bool) {
	return s.asks.Min()
}

// BidCount returns the number of resting bids.
func (s *Store) BidCount() int { return s.bids.Len() }

// AskCount returns the number of resting asks.
func (s *Store) AskCount() int { return s.asks.Len() }

// Size returns the total number of resting orders on both sides.
func (s *Store) Size() int { return s.bids.Len() + s.asks.Len() }

// Empty reports whether the book has no resting orders on either side.
func (s *Store) Empty() bool { return s.Size() == 0 }

// ForEachPruned walks bids then asks in priority order, calling fn on each.
// Iteration on a side stops as soon as fn returns false, matching the
// pruned early-exit walk used for top-of-book sweeps.
func (s *Store) ForEachPruned(fn func(*OrderState) bool) {
	s.bids.Scan(func(item *OrderState) bool {
		return fn(item)
	})
	s.asks.Scan(func(item *OrderState) bool {
		return fn(item)
	})
}

// ScanSide walks one side of the book in priority order, calling fn on
// each resting order until fn returns false or the side is exhausted.
func (s *Store) ScanSide(side schema.OrderSide, fn func(*OrderState) bool) {
	if side == schema.OrderSideBuy {
		s.bids.Scan(fn)
		return
	}
	s.asks.Scan(fn)
}

// DeleteBest removes the current best resting order on the given side
// without recording it in the historical ledger (Inactive does record it).
func (s *Store) DeleteBest(side schema.OrderSide) {
	if side == schema.OrderSideBuy {
		if st, ok := s.bids.Min(); ok {
			s.bids.Delete(st)
			delete(s.bidIndex, st.Order.OrderID)
		}
		return
	}
	if st, ok := s.asks.Min(); ok {
		s.asks.Delete(st)
		delete(s.askIndex, st.Order.OrderID)
	}
}
