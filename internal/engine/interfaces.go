package engine

import (
	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

// MarketSource feeds the dispatcher's main loop with market ticks. Next
// returns false once the source is exhausted (end of a backtest replay, or
// a live feed disconnecting), which ends Dispatcher.Run.
type MarketSource interface {
	Next() (schema.MarketEvent, bool)
}

// Strategy reacts to market ticks and strategy-internal signals. It is
// given the dispatcher's queue directly so it may push new events (most
// commonly Order events, or its own Signal events for later re-evaluation)
// without a return-value protocol.
type Strategy interface {
	OnMarket(tick schema.MarketEvent, q *queue.Queue)
	OnSignal(sig schema.SignalEvent, q *queue.Queue)
}
