package execution

import (
	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

// Matcher is implemented by concrete matching strategies. The dispatcher
// calls OnOrder for every incoming order intent and OnMarket for every
// market tick, giving the matcher a chance to trigger stop orders or
// cross resting limit orders against the tick.
//
// Implementations are expected to embed or hold a *Base and call its
// EmitFill/EmitCancel to report outcomes onto q.
type Matcher interface {
	// OnOrder processes a new order intent: resting it, crossing it
	// immediately against the book, or rejecting it outright.
	OnOrder(order schema.OrderEvent, q *queue.Queue)

	// OnMarket processes a market data tick, giving the matcher a chance
	// to trigger resting stop orders or re-evaluate the book.
	OnMarket(tick schema.MarketEvent, q *queue.Queue)

	// GetOrder exposes order-state lookup for callers that need to know
	// whether an order is still active without going through the queue.
	GetOrder(id schema.OrderID) (*OrderState, bool)
}
