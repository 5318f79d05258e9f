// Package portfolio implements the engine's portfolio manager: dense,
// symbol-id-indexed position tracking, a pre-trade risk gate, VWAP cost
// basis and realized P&L accounting, and mark-to-market equity metrics.
package portfolio

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"tradecore/internal/errors"
	"tradecore/internal/schema"
)

// Manager owns the fixed-size symbol universe's positions and risk limits,
// indexed by SymbolID for O(1) access. It is not safe for concurrent
// mutation; the dispatcher is its sole caller.
type Manager struct {
	positions []Position
	limits    []RiskLimits
	lastPrice []schema.Price
	active    []uint64 // bitmap, one bit per SymbolID

	cash        schema.Notional
	realizedPnL schema.Notional
	peakEquity  schema.Notional

	fees   FeeModel
	sink   OrderSink
	logger zerolog.Logger

	tradeLog   []schema.FillEvent
	cancelLog  []schema.CancelEvent
	equityCurve []EquityPoint

	nextOrderID atomic.Uint64
	killSwitch  atomic.Bool
}

// NewManager allocates a manager sized for symbolCount symbols, all sharing
// defaultLimits initially (per-symbol limits can be overridden with
// SetLimits). startingCash seeds the cash balance.
func NewManager(symbolCount int, startingCash schema.Notional, defaultLimits RiskLimits, fees FeeModel, sink OrderSink) *Manager {
	if fees == nil {
		fees = NoFees{}
	}
	limits := make([]RiskLimits, symbolCount)
	for i := range limits {
		limits[i] = defaultLimits
	}
	m := &Manager{
		positions: make([]Position, symbolCount),
		limits:    limits,
		lastPrice: make([]schema.Price, symbolCount),
		active:    make([]uint64, (symbolCount+63)/64),
		cash:       startingCash,
		peakEquity: startingCash,
		fees:       fees,
		sink:       sink,
		logger:     zerolog.Nop(),
	}
	for i := range m.positions {
		m.positions[i].SymbolID = schema.SymbolID(i)
	}
	return m
}

// SetLimits overrides the risk limits for a single symbol.
func (m *Manager) SetLimits(symbol schema.SymbolID, limits RiskLimits) error {
	if !m.inRange(symbol) {
		return errors.Wrap(errors.ErrOutOfRange, "portfolio: SetLimits symbol out of range")
	}
	m.limits[symbol] = limits
	return nil
}

// SetLogger installs the logger used for signal-rejection diagnostics.
func (m *Manager) SetLogger(logger zerolog.Logger) {
	m.logger = logger
}

// SetKillSwitch enables or disables the global trading halt. When engaged,
// CanExecute rejects every order with RiskReasonKillSwitch.
func (m *Manager) SetKillSwitch(engaged bool) {
	m.killSwitch.Store(engaged)
}

func (m *Manager) inRange(symbol schema.SymbolID) bool {
	return int(symbol) >= 0 && int(symbol) < len(m.positions)
}

func (m *Manager) setActive(symbol schema.SymbolID, active bool) {
	word, bit := symbol/64, symbol%64
	if active {
		m.active[word] |= 1 << bit
	} else {
		m.active[word] &^= 1 << bit
	}
}

// IsActive reports whether the symbol currently has a non-zero position.
func (m *Manager) IsActive(symbol schema.SymbolID) bool {
	if !m.inRange(symbol) {
		return false
	}
	word, bit := symbol/64, symbol%64
	return m.active[word]&(1<<bit) != 0
}

// Position returns a copy of the current position for symbol.
func (m *Manager) Position(symbol schema.SymbolID) (Position, error) {
	if !m.inRange(symbol) {
		return Position{}, errors.Wrap(errors.ErrOutOfRange, "portfolio: Position symbol out of range")
	}
	return m.positions[symbol], nil
}

// CanExecute is the pre-trade risk gate: it evaluates whether an order of
// signedQty (positive buy, negative sell) at price would be admitted,
// without mutating any state. Position and notional limits are checked
// against the resulting exposure (current quantity plus already-pending
// quantity plus this order), not the order in isolation; buys additionally
// require enough cash to cover the trade.
func (m *Manager) CanExecute(symbol schema.SymbolID, signedQty schema.Quantity, price schema.Price) (bool, schema.RiskReason) {
	if m.killSwitch.Load() {
		return false, schema.RiskReasonKillSwitch
	}
	if !m.inRange(symbol) {
		return false, schema.RiskReasonUnknownSymbol
	}

	absQty := signedQty
	if absQty < 0 {
		absQty = -absQty
	}
	limits := m.limits[symbol]
	if absQty > limits.MaxOrderSize {
		return false, schema.RiskReasonMaxOrderSize
	}

	resulting := m.positions[symbol].Quantity + m.positions[symbol].PendingQty + signedQty
	absResulting := resulting
	if absResulting < 0 {
		absResulting = -absResulting
	}
	if int32(absResulting) > limits.MaxPositions {
		return false, schema.RiskReasonPositionLimit
	}

	notional := schema.Notional(int64(price) * int64(absResulting))
	if notional < 0 {
		notional = -notional
	}
	if notional > limits.MaxNotional {
		return false, schema.RiskReasonMaxNotional
	}

	if signedQty > 0 && int64(signedQty)*int64(price) > int64(m.cash) {
		return false, schema.RiskReasonInsufficientCash
	}

	return true, schema.RiskReasonNone
}

// OnSignal is the portfolio's risk-gated order submission entry point.
// Strategies call this (rather than pushing an Order event directly) when
// they want to trade; on acceptance the manager allocates an order id,
// marks the requested quantity pending, and emits the order onto sink.
//
// An out-of-range symbol, non-positive price or zero quantity is a
// programming error rather than a risk decision, so OnSignal panics on
// those inputs instead of returning a RiskReason; since strategies call
// this from within the dispatcher's run loop, the panic propagates up to
// wherever the loop is recovered (see cmd/trader's runDispatcher).
// Anything CanExecute rejects (limits, cash, kill switch) comes back as a
// RiskReason instead.
func (m *Manager) OnSignal(symbol schema.SymbolID, signedQty schema.Quantity, price schema.Price, timestampNanos int64) (schema.OrderID, schema.RiskReason) {
	if !m.inRange(symbol) {
		panic(errors.Wrap(errors.ErrOutOfRange, "portfolio: OnSignal symbol out of range"))
	}
	if price <= 0 {
		panic(errors.Wrap(errors.ErrInvalidInput, "portfolio: OnSignal non-positive price"))
	}
	if signedQty == 0 {
		panic(errors.Wrap(errors.ErrInvalidInput, "portfolio: OnSignal zero quantity"))
	}

	ok, reason := m.CanExecute(symbol, signedQty, price)
	if !ok {
		m.logger.Debug().
			Uint32("symbol_id", uint32(symbol)).
			Int64("signed_qty", int64(signedQty)).
			Str("reason", reason.String()).
			Msg("portfolio: signal rejected")
		return 0, reason
	}

	side := schema.OrderSideBuy
	qty := signedQty
	if signedQty < 0 {
		side = schema.OrderSideSell
		qty = -signedQty
	}

	id := schema.OrderID(m.nextOrderID.Add(1))
	m.positions[symbol].PendingQty += signedQty

	order := schema.OrderEvent{
		OrderID:        id,
		SymbolID:       symbol,
		Side:           side,
		Type:           schema.OrderTypeLimit,
		Price:          price,
		Quantity:       qty,
		TimestampNanos: timestampNanos,
	}
	if m.sink != nil {
		m.sink.EmitOrder(order)
	}
	return id, schema.RiskReasonNone
}

// OnFill applies a fill to cash and position state: VWAP averaging on
// same-side adds, realized P&L on closes, and cost-basis reset on flips.
func (m *Manager) OnFill(fill schema.FillEvent) error {
	if !m.inRange(fill.SymbolID) {
		return errors.Wrap(errors.ErrOutOfRange, "portfolio: OnFill symbol out of range")
	}
	if fill.Price <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "portfolio: OnFill non-positive price")
	}
	if fill.FilledQty == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "portfolio: OnFill zero quantity")
	}
	pos := &m.positions[fill.SymbolID]

	effectivePrice, commission := m.fees.Apply(fill.Side, fill.Price, fill.FilledQty)

	signedQty := schema.Quantity(fill.FilledQty)
	if fill.Side == schema.OrderSideSell {
		signedQty = -signedQty
	}
	pos.PendingQty -= signedQty

	tradeValue := int64(effectivePrice) * int64(fill.FilledQty)
	m.cash -= schema.Notional(commission)
	if fill.Side == schema.OrderSideBuy {
		m.cash -= schema.Notional(tradeValue)
	} else {
		m.cash += schema.Notional(tradeValue)
	}

	sameSide := (pos.Quantity >= 0 && signedQty > 0) || (pos.Quantity <= 0 && signedQty < 0)
	if sameSide {
		oldCost := int64(pos.AvgPrice) * absQty(pos.Quantity)
		newCost := int64(effectivePrice) * absQty(signedQty)
		pos.Quantity += signedQty
		if pos.Quantity != 0 {
			pos.AvgPrice = schema.Price((oldCost + newCost) / absQty(pos.Quantity))
		}
	} else {
		closingQty := absQty(pos.Quantity)
		if absQty(signedQty) < closingQty {
			closingQty = absQty(signedQty)
		}
		sign := int64(1)
		if pos.Quantity < 0 {
			sign = -1
		}
		pnl := closingQty * (int64(effectivePrice) - int64(pos.AvgPrice)) * sign
		pos.RealizedPnL += schema.Notional(pnl)
		m.realizedPnL += schema.Notional(pnl)

		oldQty := pos.Quantity
		pos.Quantity += signedQty
		switch {
		case pos.Quantity == 0:
			pos.AvgPrice = 0
		case (oldQty > 0 && pos.Quantity < 0) || (oldQty < 0 && pos.Quantity > 0):
			pos.AvgPrice = effectivePrice
		}
	}

	m.setActive(fill.SymbolID, pos.Quantity != 0)
	m.tradeLog = append(m.tradeLog, fill)
	return nil
}

// OnCancel records a cancellation and releases its pending quantity back
// from the position's committed total.
func (m *Manager) OnCancel(cancel schema.CancelEvent, unfilledSignedQty schema.Quantity) error {
	if !m.inRange(cancel.SymbolID) {
		return errors.Wrap(errors.ErrOutOfRange, "portfolio: OnCancel symbol out of range")
	}
	m.positions[cancel.SymbolID].PendingQty -= unfilledSignedQty
	m.cancelLog = append(m.cancelLog, cancel)
	return nil
}

// OnMarketData updates the last observed price for mark-to-market
// valuation. It does not itself compute equity; call ComputeMetrics for
// that.
func (m *Manager) OnMarketData(symbol schema.SymbolID, price schema.Price) error {
	if !m.inRange(symbol) {
		return errors.Wrap(errors.ErrOutOfRange, "portfolio: OnMarketData symbol out of range")
	}
	if price <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "portfolio: OnMarketData non-positive price")
	}
	m.lastPrice[symbol] = price
	return nil
}

// GetTotalValue returns cash plus the mark-to-market value of every active
// position.
func (m *Manager) GetTotalValue() schema.Notional {
	value := m.cash
	for i := range m.positions {
		symbol := schema.SymbolID(i)
		if !m.IsActive(symbol) {
			continue
		}
		value += schema.Notional(int64(m.positions[i].Quantity) * int64(m.lastPrice[i]))
	}
	return value
}

// ComputeMetrics produces a mark-to-market equity sample, tracking
// drawdown from the running peak and gross exposure relative to equity.
func (m *Manager) ComputeMetrics(timestampNanos int64) EquityPoint {
	equity := m.GetTotalValue()
	if equity > m.peakEquity {
		m.peakEquity = equity
	}
	drawdown := m.peakEquity - equity

	var gross int64
	for i := range m.positions {
		symbol := schema.SymbolID(i)
		if !m.IsActive(symbol) {
			continue
		}
		notional := int64(m.positions[i].Quantity) * int64(m.lastPrice[i])
		if notional < 0 {
			notional = -notional
		}
		gross += notional
	}
	exposure := 0.0
	if equity != 0 {
		exposure = float64(gross) / float64(equity)
	}

	point := EquityPoint{
		TimestampNanos: timestampNanos,
		Equity:         equity,
		Drawdown:       drawdown,
		Exposure:       exposure,
	}
	m.equityCurve = append(m.equityCurve, point)
	return point
}

// EquityCurve returns every equity sample recorded by ComputeMetrics.
func (m *Manager) EquityCurve() []EquityPoint {
	return m.equityCurve
}

// TradeLog returns every fill applied to the portfolio.
func (m *Manager) TradeLog() []schema.FillEvent {
	return m.tradeLog
}

// CashBalance returns the current cash balance.
func (m *Manager) CashBalance() schema.Notional {
	return m.cash
}

// RealizedPnL returns cumulative realized profit and loss.
func (m *Manager) RealizedPnL() schema.Notional {
	return m.realizedPnL
}

func absQty(q schema.Quantity) int64 {
	v := int64(q)
	if v < 0 {
		return -v
	}
	return v
}
