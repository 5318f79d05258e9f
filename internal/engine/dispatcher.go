// Package engine implements the dispatcher: the single-threaded run loop
// that polls a market source, routes every resulting event through
// strategy/execution/portfolio in tagged-union dispatch order, and drains
// the events those handlers push back onto the internal queue before
// polling again.
//
// This is the Go rendering of the original engine's CRTP base — composition
// over interface values takes the place of compile-time derived-class
// dispatch, per the engine's own escape hatch: virtual dispatch is
// acceptable here because the hot path is the matcher/portfolio math, not
// the dispatch switch itself.
package engine

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradecore/internal/execution"
	"tradecore/internal/portfolio"
	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

// Dispatcher owns the event queue and wires together a market source,
// strategy, matcher and portfolio manager into the engine's run loop.
type Dispatcher struct {
	source   MarketSource
	strategy Strategy
	matcher  execution.Matcher
	book     *portfolio.Manager
	queue    *queue.Queue

	onError  func(error)
	recorder func(schema.Event)
	logger   zerolog.Logger

	paused atomic.Bool
	stopped atomic.Bool

	eventsHandled atomic.Uint64
}

// New allocates a dispatcher. matcher may be nil for portfolio-only
// simulations that never generate resting orders (e.g. mark-to-market-only
// signal replay).
func New(source MarketSource, strategy Strategy, matcher execution.Matcher, book *portfolio.Manager) *Dispatcher {
	return &Dispatcher{
		source:   source,
		strategy: strategy,
		matcher:  matcher,
		book:     book,
		queue:    queue.New(64),
		onError:  func(err error) { panic(err) },
		logger:   log.Logger,
	}
}

// SetOnError overrides the default error hook invoked whenever a handler
// returns an error the dispatcher cannot itself recover from. The default
// hook panics, mirroring an uncaught exception aborting the run; callers
// that want the run loop to survive a bad event (e.g. an out-of-range
// symbol on WAL replay) should install a logging-only hook instead.
func (d *Dispatcher) SetOnError(fn func(error)) {
	if fn != nil {
		d.onError = fn
	}
}

// SetLogger installs the logger used for dispatch-loop diagnostics such as
// unknown event kinds.
func (d *Dispatcher) SetLogger(logger zerolog.Logger) {
	d.logger = logger
}

// SetRecorder installs a hook called with every event immediately before
// it is dispatched, e.g. to append it to a write-ahead log.
func (d *Dispatcher) SetRecorder(fn func(schema.Event)) {
	d.recorder = fn
}

// Queue exposes the dispatcher's internal queue, primarily so a Strategy
// implementation constructed outside this package can be handed the exact
// queue instance it should push onto.
func (d *Dispatcher) Queue() *queue.Queue {
	return d.queue
}

// Portfolio returns the dispatcher's portfolio manager.
func (d *Dispatcher) Portfolio() *portfolio.Manager {
	return d.book
}

// SetBook installs the portfolio manager after construction. This exists
// because a manager's OrderSink typically wraps the dispatcher's own
// queue (see QueueOrderSink), which is only available once the dispatcher
// itself has been constructed — callers build the dispatcher with a nil
// book, construct the manager against Queue(), then call SetBook.
func (d *Dispatcher) SetBook(book *portfolio.Manager) {
	d.book = book
}

// SetPaused(true) suspends polling of the market source; events already
// queued continue to drain. Resume with SetPaused(false).
func (d *Dispatcher) SetPaused(paused bool) {
	d.paused.Store(paused)
}

// Paused reports whether the dispatcher is currently paused.
func (d *Dispatcher) Paused() bool {
	return d.paused.Load()
}

// Stop requests the run loop exit at the next opportunity.
func (d *Dispatcher) Stop() {
	d.stopped.Store(true)
}

// EventsHandled returns the number of events routed since Run started.
func (d *Dispatcher) EventsHandled() uint64 {
	return d.eventsHandled.Load()
}

// Run polls the market source until it is exhausted, ctx is cancelled, or
// Stop is called, draining the internal queue after every polled tick.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.stopped.Load() {
			return nil
		}
		if d.paused.Load() {
			// Pause is a suspension point, not a spin-wait: yield the
			// thread so a paused dispatcher doesn't peg a core while
			// waiting for SetPaused(false).
			runtime.Gosched()
			continue
		}

		tick, ok := d.source.Next()
		if !ok {
			return nil
		}
		d.dispatch(schema.NewMarketEvent(tick))

		for !d.queue.Empty() {
			ev, err := d.queue.Pop()
			if err != nil {
				break
			}
			d.dispatch(ev)
		}
	}
}

// dispatch routes a single event to its handlers by tagged kind.
func (d *Dispatcher) dispatch(ev schema.Event) {
	d.eventsHandled.Add(1)
	if d.recorder != nil {
		d.recorder(ev)
	}

	switch ev.Kind {
	case schema.EventKindMarket:
		if err := d.book.OnMarketData(ev.Market.SymbolID, ev.Market.Price); err != nil {
			d.onError(err)
		}
		if d.matcher != nil {
			d.matcher.OnMarket(ev.Market, d.queue)
		}
		if d.strategy != nil {
			d.strategy.OnMarket(ev.Market, d.queue)
		}

	case schema.EventKindSignal:
		if d.strategy != nil {
			d.strategy.OnSignal(ev.Signal, d.queue)
		}

	case schema.EventKindOrder:
		if d.matcher != nil {
			d.matcher.OnOrder(ev.Order, d.queue)
		}

	case schema.EventKindFill:
		if err := d.book.OnFill(ev.Fill); err != nil {
			d.onError(err)
		}

	case schema.EventKindCancel:
		unfilled := d.unfilledSignedQty(ev.Cancel)
		if err := d.book.OnCancel(ev.Cancel, unfilled); err != nil {
			d.onError(err)
		}

	default:
		d.logger.Warn().Uint8("kind", uint8(ev.Kind)).Msg("engine: unknown event kind")
	}
}

// unfilledSignedQty asks the matcher for the order's remaining quantity so
// the portfolio manager can release the correct amount of pending
// exposure. Returns 0 if the matcher can't resolve the order (already
// fully consumed, or no matcher wired up).
func (d *Dispatcher) unfilledSignedQty(cancel schema.CancelEvent) schema.Quantity {
	if d.matcher == nil {
		return 0
	}
	st, ok := d.matcher.GetOrder(cancel.OrderID)
	if !ok {
		return 0
	}
	remaining := st.Order.Quantity - st.FilledQty
	if st.Order.Side == schema.OrderSideSell {
		return -remaining
	}
	return remaining
}
