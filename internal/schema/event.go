package schema

// EventKind discriminates the tagged union carried by Event. Every event
// flowing through the dispatcher's queue is exactly one of these kinds.
type EventKind uint8

const (
	EventKindUnknown EventKind = iota
	EventKindMarket
	EventKindSignal
	EventKindOrder
	EventKindFill
	EventKindCancel
)

func (k EventKind) String() string {
	switch k {
	case EventKindMarket:
		return "market"
	case EventKindSignal:
		return "signal"
	case EventKindOrder:
		return "order"
	case EventKindFill:
		return "fill"
	case EventKindCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// MarketEvent carries a single trade/quote tick for a symbol.
type MarketEvent struct {
	Symbol         string
	SymbolID       SymbolID
	Price          Price
	Quantity       Quantity
	TimestampNanos int64
	BuyerInitiated bool
}

// SignalEvent is an opaque carrier: the dispatcher never interprets its
// payload, it only routes the event to the strategy's signal handler. Kind
// is a strategy-defined tag (e.g. "momentum", "mean_revert").
type SignalEvent struct {
	SymbolID       SymbolID
	Kind           string
	Payload        float64
	TimestampNanos int64
}

// OrderEvent describes an order intent or acknowledgement travelling
// through the queue. Price is meaningful for Limit/StopLimit orders and
// ignored (zero) for Market orders.
type OrderEvent struct {
	OrderID        OrderID
	SymbolID       SymbolID
	Side           OrderSide
	Type           OrderType
	Flags          OrderFlag
	Price          Price
	StopPrice      Price
	Quantity       Quantity
	TimestampNanos int64
}

// FillEvent reports a (possibly partial) execution against an order.
type FillEvent struct {
	OrderID        OrderID
	SymbolID       SymbolID
	Side           OrderSide
	Price          Price
	FilledQty      Quantity
	RemainingQty   Quantity
	TimestampNanos int64
}

// CancelEvent reports an order leaving the book without a fill, or the
// unfilled remainder of a partially filled order.
type CancelEvent struct {
	OrderID        OrderID
	SymbolID       SymbolID
	Reason         string
	TimestampNanos int64
}

// Event is the tagged union dispatched by the engine's event queue. Exactly
// one of the payload fields is meaningful, selected by Kind. It is stored
// by value (not boxed behind an interface) so the queue never allocates
// per push.
type Event struct {
	Kind   EventKind
	Market MarketEvent
	Signal SignalEvent
	Order  OrderEvent
	Fill   FillEvent
	Cancel CancelEvent
}

// NewMarketEvent builds a Market-kind Event.
func NewMarketEvent(m MarketEvent) Event {
	return Event{Kind: EventKindMarket, Market: m}
}

// NewSignalEvent builds a Signal-kind Event.
func NewSignalEvent(s SignalEvent) Event {
	return Event{Kind: EventKindSignal, Signal: s}
}

// NewOrderEvent builds an Order-kind Event.
func NewOrderEvent(o OrderEvent) Event {
	return Event{Kind: EventKindOrder, Order: o}
}

// NewFillEvent builds a Fill-kind Event.
func NewFillEvent(f FillEvent) Event {
	return Event{Kind: EventKindFill, Fill: f}
}

// NewCancelEvent builds a Cancel-kind Event.
func NewCancelEvent(c CancelEvent) Event {
	return Event{Kind: EventKindCancel, Cancel: c}
}

// Timestamp returns the event's timestamp regardless of kind.
func (e Event) Timestamp() int64 {
	switch e.Kind {
	case EventKindMarket:
		return e.Market.TimestampNanos
	case EventKindSignal:
		return e.Signal.TimestampNanos
	case EventKindOrder:
		return e.Order.TimestampNanos
	case EventKindFill:
		return e.Fill.TimestampNanos
	case EventKindCancel:
		return e.Cancel.TimestampNanos
	default:
		return 0
	}
}
