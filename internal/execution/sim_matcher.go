package execution

import (
	"tradecore/internal/book"
	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

// SimMatcher is the engine's reference Matcher implementation: a
// price-time-priority simulator good enough to drive backtests without a
// real venue connection. It resolves Market, Limit, StopMarket and
// StopLimit orders, honoring IOC, FOK and PostOnly flags.
//
// ReduceOnly is carried on the order but not enforced: the matcher has no
// view of positions, and portfolio.Manager's pre-trade gate does not check
// the flag either.
type SimMatcher struct {
	*Base

	books map[schema.SymbolID]*book.Store
	stops map[schema.SymbolID][]schema.OrderEvent

	ledgerCapacity int
}

// NewSimMatcher allocates a matcher with per-symbol books created lazily on
// first use. ledgerCapacity bounds each symbol's inactive-order ledger.
func NewSimMatcher(ledgerCapacity int) *SimMatcher {
	return &SimMatcher{
		Base:           NewBase(),
		books:          make(map[schema.SymbolID]*book.Store),
		stops:          make(map[schema.SymbolID][]schema.OrderEvent),
		ledgerCapacity: ledgerCapacity,
	}
}

// Book returns the resting-order book for a symbol, creating it if needed.
func (m *SimMatcher) Book(symbol schema.SymbolID) *book.Store {
	bk, ok := m.books[symbol]
	if !ok {
		bk = book.NewStore(m.ledgerCapacity)
		m.books[symbol] = bk
	}
	return bk
}

// OnOrder implements Matcher.
func (m *SimMatcher) OnOrder(order schema.OrderEvent, q *queue.Queue) {
	switch order.Type {
	case schema.OrderTypeMarket:
		m.matchMarket(order, q)
	case schema.OrderTypeLimit:
		m.matchLimit(order, q)
	case schema.OrderTypeStopMarket, schema.OrderTypeStopLimit:
		m.stops[order.SymbolID] = append(m.stops[order.SymbolID], order)
	default:
		m.Base.EmitCancel(order, "unknown_order_type", order.TimestampNanos, q)
	}
}

// OnMarket implements Matcher: it triggers resting stop orders the new tick
// has crossed, then re-evaluates the resting limit book against the same
// tick, so a price move that crosses a previously-resting limit order fills
// it before the strategy's own OnMarket callback runs.
func (m *SimMatcher) OnMarket(tick schema.MarketEvent, q *queue.Queue) {
	m.triggerStops(tick, q)
	m.crossRestingLimits(tick, q)
}

func (m *SimMatcher) triggerStops(tick schema.MarketEvent, q *queue.Queue) {
	pending := m.stops[tick.SymbolID]
	if len(pending) == 0 {
		return
	}
	remaining := pending[:0]
	for _, stop := range pending {
		if !stopTriggered(stop, tick.Price) {
			remaining = append(remaining, stop)
			continue
		}
		switch stop.Type {
		case schema.OrderTypeStopMarket:
			triggered := stop
			triggered.Type = schema.OrderTypeMarket
			m.matchMarket(triggered, q)
		case schema.OrderTypeStopLimit:
			triggered := stop
			triggered.Type = schema.OrderTypeLimit
			m.matchLimit(triggered, q)
		}
	}
	m.stops[tick.SymbolID] = remaining
}

// crossRestingLimits fills, in full, any resting limit order the tick price
// has crossed: a resting buy at or above the tick price, or a resting sell
// at or below it, is treated as marketable against the tick and filled at
// the tick price. Both sides are walked in priority order (best first) so
// ties resolve the same way a live sweep against an incoming taker would.
func (m *SimMatcher) crossRestingLimits(tick schema.MarketEvent, q *queue.Queue) {
	bk := m.Book(tick.SymbolID)

	var crossed []*book.OrderState
	bk.ScanSide(schema.OrderSideBuy, func(st *book.OrderState) bool {
		if st.Order.Price < tick.Price {
			return false
		}
		crossed = append(crossed, st)
		return true
	})
	bk.ScanSide(schema.OrderSideSell, func(st *book.OrderState) bool {
		if st.Order.Price > tick.Price {
			return false
		}
		crossed = append(crossed, st)
		return true
	})

	for _, st := range crossed {
		remaining := st.Order.Quantity - st.FilledQty
		if remaining <= 0 {
			continue
		}
		m.Base.EmitFill(st.Order, remaining, tick.Price, tick.TimestampNanos, q)
		st.FilledQty = st.Order.Quantity
		bk.Inactive(st.Order.OrderID)
	}
}

func stopTriggered(stop schema.OrderEvent, marketPrice schema.Price) bool {
	if stop.Side == schema.OrderSideBuy {
		return marketPrice >= stop.StopPrice
	}
	return marketPrice <= stop.StopPrice
}

func oppositeSide(side schema.OrderSide) schema.OrderSide {
	if side == schema.OrderSideBuy {
		return schema.OrderSideSell
	}
	return schema.OrderSideBuy
}

// crosses reports whether a taker order at takerPrice would cross a
// resting order on the opposite side at makerPrice.
func crosses(taker schema.OrderEvent, maker schema.OrderEvent) bool {
	if taker.Side == schema.OrderSideBuy {
		return taker.Price >= maker.Price
	}
	return taker.Price <= maker.Price
}

func bestOpposite(bk *book.Store, side schema.OrderSide) (*book.OrderState, bool) {
	if side == schema.OrderSideBuy {
		return bk.BestAsk()
	}
	return bk.BestBid()
}

func availableLiquidity(bk *book.Store, order schema.OrderEvent, need schema.Quantity) schema.Quantity {
	var total schema.Quantity
	bk.ScanSide(oppositeSide(order.Side), func(st *book.OrderState) bool {
		if !crosses(order, st.Order) {
			return false
		}
		total += st.Order.Quantity - st.FilledQty
		return total < need
	})
	return total
}

// matchLimit resolves a limit order against the resting book, per
// price-time priority, honoring PostOnly/FOK/IOC.
func (m *SimMatcher) matchLimit(order schema.OrderEvent, q *queue.Queue) {
	bk := m.Book(order.SymbolID)

	if order.Flags.Has(schema.FlagPostOnly) {
		if best, ok := bestOpposite(bk, order.Side); ok && crosses(order, best.Order) {
			m.Base.EmitCancel(order, "post_only_would_cross", order.TimestampNanos, q)
			return
		}
	}

	if order.Flags.Has(schema.FlagFOK) {
		if availableLiquidity(bk, order, order.Quantity) < order.Quantity {
			m.Base.EmitCancel(order, "fok_insufficient_liquidity", order.TimestampNanos, q)
			return
		}
	}

	remaining := order.Quantity
	var filledSoFar schema.Quantity
	for remaining > 0 {
		best, ok := bestOpposite(bk, order.Side)
		if !ok || !crosses(order, best.Order) {
			break
		}
		available := best.Order.Quantity - best.FilledQty
		matchQty := min(remaining, available)
		execPrice := best.Order.Price

		// Only the taker's own fill is surfaced as a Fill event: this is
		// a single-portfolio simulation, and the resting counterparty is
		// synthetic book liquidity, not a tracked position of its own.
		m.Base.EmitFill(order, matchQty, execPrice, order.TimestampNanos, q)

		remaining -= matchQty
		filledSoFar += matchQty
		best.FilledQty += matchQty
		if best.FilledQty >= best.Order.Quantity {
			bk.Inactive(best.Order.OrderID)
		}
	}

	if remaining == 0 {
		return
	}
	if order.Flags.Has(schema.FlagIOC) || order.Flags.Has(schema.FlagFOK) {
		m.Base.EmitCancel(order, "ioc_unfilled_remainder", order.TimestampNanos, q)
		return
	}
	bk.Emplace(book.OrderState{Order: order, FilledQty: filledSoFar, Active: true})
}

// matchMarket sweeps the opposite side of the book until order.Quantity is
// exhausted or liquidity runs out. Market orders never rest; an unfilled
// remainder is cancelled.
func (m *SimMatcher) matchMarket(order schema.OrderEvent, q *queue.Queue) {
	bk := m.Book(order.SymbolID)

	if order.Flags.Has(schema.FlagFOK) {
		if availableLiquidity(bk, order, order.Quantity) < order.Quantity {
			m.Base.EmitCancel(order, "fok_insufficient_liquidity", order.TimestampNanos, q)
			return
		}
	}

	remaining := order.Quantity
	for remaining > 0 {
		best, ok := bestOpposite(bk, order.Side)
		if !ok {
			break
		}
		available := best.Order.Quantity - best.FilledQty
		matchQty := min(remaining, available)
		execPrice := best.Order.Price

		m.Base.EmitFill(order, matchQty, execPrice, order.TimestampNanos, q)

		remaining -= matchQty
		best.FilledQty += matchQty
		if best.FilledQty >= best.Order.Quantity {
			bk.Inactive(best.Order.OrderID)
		}
	}

	if remaining > 0 {
		m.Base.EmitCancel(order, "insufficient_liquidity", order.TimestampNanos, q)
	}
}
