// Package schema defines the event and domain data model shared by every
// component of the engine: the tagged-union event that flows through the
// dispatcher's queue, order/fill/cancel payloads, and the scaled-integer
// numeric types used throughout (quantities are integral; there are no
// fractional shares).
package schema

// Price is a scaled integer. Fractional cents/ticks are represented by
// scaling up before storing, matching the convention of every numeric type
// below.
type Price int64

// Quantity is a scaled integer. Quantities are always integral per the
// engine's non-goals; there is no fractional-share support.
type Quantity int64

// Notional is price*quantity, kept as its own type so call sites cannot
// accidentally compare it against a bare Price or Quantity.
type Notional int64

// Fee is a scaled integer fee/commission amount.
type Fee int64

// SymbolID is a dense index in [0, N) into the portfolio manager's fixed
// symbol universe.
type SymbolID uint32

// OrderID uniquely identifies an order for the lifetime of the engine.
type OrderID uint64

// OrderSide describes order direction.
type OrderSide uint8

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "buy"
	case OrderSideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Sign returns +1 for buy, -1 for sell, 0 otherwise.
func (s OrderSide) Sign() int64 {
	switch s {
	case OrderSideBuy:
		return 1
	case OrderSideSell:
		return -1
	default:
		return 0
	}
}

// OrderType selects the matching semantics applied to an order.
type OrderType uint8

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStopMarket
	OrderTypeStopLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "market"
	case OrderTypeLimit:
		return "limit"
	case OrderTypeStopMarket:
		return "stop_market"
	case OrderTypeStopLimit:
		return "stop_limit"
	default:
		return "unknown"
	}
}

// OrderFlag is a bitmask of order-time-in-force/behavior modifiers.
type OrderFlag uint8

const (
	FlagIOC OrderFlag = 1 << iota
	FlagFOK
	FlagPostOnly
	FlagReduceOnly
)

// Has reports whether the flag set contains flag.
func (f OrderFlag) Has(flag OrderFlag) bool {
	return f&flag != 0
}
