package portfolio

import "tradecore/internal/schema"

// Position is the portfolio's view of a single symbol's holding: signed
// net quantity, VWAP cost basis, and realized P&L accumulated from closed
// or flipped trades.
type Position struct {
	SymbolID    schema.SymbolID
	Quantity    schema.Quantity // positive long, negative short, zero flat
	AvgPrice    schema.Price    // VWAP cost basis of the open position
	RealizedPnL schema.Notional
	PendingQty  schema.Quantity // quantity committed to working orders
}

// RiskLimits bounds the size and notional of orders the portfolio manager
// will admit through its pre-trade gate. Defaults mirror a conservative,
// single-desk simulation profile.
type RiskLimits struct {
	MaxPositions int32
	MaxOrderSize schema.Quantity
	MaxNotional  schema.Notional
}

// DefaultRiskLimits returns the engine's baseline risk profile.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{
		MaxPositions: 1000,
		MaxOrderSize: 100,
		MaxNotional:  1_000_000,
	}
}

// EquityPoint is a single mark-to-market sample of portfolio performance,
// suitable for plotting an equity curve.
type EquityPoint struct {
	TimestampNanos int64
	Equity         schema.Notional
	Drawdown       schema.Notional
	Exposure       float64 // gross notional exposure / equity
}

// OrderSink receives orders the portfolio manager's risk-gated signal
// handler has accepted, to be pushed onto the dispatcher's event queue.
// Declared here (rather than in package engine) so the manager has no
// import-time dependency on the dispatcher; engine's queue adapter
// satisfies this interface structurally.
type OrderSink interface {
	EmitOrder(order schema.OrderEvent)
}
