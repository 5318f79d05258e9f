// Package execution implements the execution engine base shared by every
// matching strategy: order-state bookkeeping, weighted-average fill price
// tracking, and fill/cancel event emission. Concrete matching algorithms
// (SimMatcher, or a venue-specific one) implement the Matcher interface and
// call into Base's EmitFill/EmitCancel to report outcomes.
package execution

import (
	"github.com/rs/zerolog"

	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

// OrderState tracks an order's cumulative fill progress across its
// lifetime, independent of whether it currently rests in an order book.
type OrderState struct {
	Order        schema.OrderEvent
	FilledQty    schema.Quantity
	AvgFillPrice schema.Price
	Active       bool
}

const defaultHistoryCapacity = 4096

// Base is embedded (or held) by concrete matchers to provide order-state
// tracking and event emission. It is not itself a Matcher.
//
// orders holds only live (Active) state. An order that reaches full fill or
// is cancelled is moved into a bounded ring-buffer history, the same
// eviction scheme book.Store uses for its own ledger: without this move a
// taker order that fills immediately (and so never rests in the book, and
// so never passes through book.Store.Inactive) would sit in orders forever.
type Base struct {
	orders      map[schema.OrderID]*OrderState
	history     []OrderState
	historyHead int
	historyLen  int
	historyCap  int
	logger      zerolog.Logger
}

// NewBase allocates an empty execution base. Logging is a no-op until
// SetLogger installs a real sink.
func NewBase() *Base {
	return &Base{
		orders:     make(map[schema.OrderID]*OrderState),
		history:    make([]OrderState, defaultHistoryCapacity),
		historyCap: defaultHistoryCapacity,
		logger:     zerolog.Nop(),
	}
}

// SetLogger installs the logger used for over-fill warnings.
func (b *Base) SetLogger(logger zerolog.Logger) {
	b.logger = logger
}

// GetOrder looks up an order's tracked state by id, live or retired. The
// dispatcher relies on seeing a just-cancelled order here: EmitCancel
// retires the order before the Cancel event it pushed is drained, and the
// dispatcher's cancel handler still needs that order's final quantity to
// release the right amount of pending exposure.
func (b *Base) GetOrder(id schema.OrderID) (*OrderState, bool) {
	if st, ok := b.orders[id]; ok {
		return st, true
	}
	for i := 0; i < b.historyLen; i++ {
		st := &b.history[(b.historyHead+i)%b.historyCap]
		if st.Order.OrderID == id {
			return st, true
		}
	}
	return nil, false
}

// History returns the terminal (fully filled or cancelled) orders this base
// has retired, oldest first, bounded by the ring buffer's capacity.
func (b *Base) History() []OrderState {
	out := make([]OrderState, b.historyLen)
	for i := 0; i < b.historyLen; i++ {
		out[i] = b.history[(b.historyHead+i)%b.historyCap]
	}
	return out
}

func (b *Base) retire(id schema.OrderID, st *OrderState) {
	delete(b.orders, id)
	idx := (b.historyHead + b.historyLen) % b.historyCap
	b.history[idx] = *st
	if b.historyLen < b.historyCap {
		b.historyLen++
	} else {
		b.historyHead = (b.historyHead + 1) % b.historyCap
	}
}

// EmitFill records a (possibly partial) fill against order and pushes the
// corresponding Fill event onto q. Filling more than the order's original
// quantity is accepted and logged rather than rejected, per the engine's
// tolerant over-fill policy; the reported RemainingQty floors at zero.
func (b *Base) EmitFill(order schema.OrderEvent, filledQty schema.Quantity, execPrice schema.Price, timestampNanos int64, q *queue.Queue) {
	st, ok := b.orders[order.OrderID]
	if !ok {
		st = &OrderState{Order: order, Active: true}
		b.orders[order.OrderID] = st
	}

	prevFilled := st.FilledQty
	st.FilledQty += filledQty

	if st.FilledQty > 0 {
		st.AvgFillPrice = schema.Price(
			(int64(st.AvgFillPrice)*int64(prevFilled) + int64(execPrice)*int64(filledQty)) / int64(st.FilledQty),
		)
	} else {
		st.AvgFillPrice = 0
	}

	remaining := order.Quantity - st.FilledQty
	if st.FilledQty >= order.Quantity {
		st.Active = false
		remaining = 0
	}
	if st.FilledQty > order.Quantity {
		b.logger.Warn().
			Uint64("order_id", uint64(order.OrderID)).
			Int64("filled_qty", int64(st.FilledQty)).
			Int64("order_qty", int64(order.Quantity)).
			Msg("execution: order over-filled")
	}

	if !st.Active {
		b.retire(order.OrderID, st)
	}

	q.Push(schema.NewFillEvent(schema.FillEvent{
		OrderID:        order.OrderID,
		SymbolID:       order.SymbolID,
		Side:           order.Side,
		Price:          execPrice,
		FilledQty:      filledQty,
		RemainingQty:   remaining,
		TimestampNanos: timestampNanos,
	}))
}

// EmitCancel marks order inactive and pushes a Cancel event onto q.
func (b *Base) EmitCancel(order schema.OrderEvent, reason string, timestampNanos int64, q *queue.Queue) {
	st, ok := b.orders[order.OrderID]
	if !ok {
		st = &OrderState{Order: order}
		b.orders[order.OrderID] = st
	}
	st.Active = false
	b.retire(order.OrderID, st)

	q.Push(schema.NewCancelEvent(schema.CancelEvent{
		OrderID:        order.OrderID,
		SymbolID:       order.SymbolID,
		Reason:         reason,
		TimestampNanos: timestampNanos,
	}))
}
