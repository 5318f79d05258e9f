package engine

import (
	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

// QueueOrderSink adapts the dispatcher's event queue to satisfy
// portfolio.OrderSink, so the portfolio manager's risk-gated OnSignal can
// push accepted orders back onto the same queue the dispatcher drains.
type QueueOrderSink struct {
	Queue *queue.Queue
}

// EmitOrder implements portfolio.OrderSink.
func (s QueueOrderSink) EmitOrder(order schema.OrderEvent) {
	s.Queue.Push(schema.NewOrderEvent(order))
}
