package portfolio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tradecore/internal/schema"
)

type fakeSink struct {
	orders []schema.OrderEvent
}

func (s *fakeSink) EmitOrder(order schema.OrderEvent) {
	s.orders = append(s.orders, order)
}

func fill(symbol schema.SymbolID, side schema.OrderSide, price schema.Price, qty schema.Quantity) schema.FillEvent {
	return schema.FillEvent{SymbolID: symbol, Side: side, Price: price, FilledQty: qty}
}

func TestOnFillVWAPAveragesSameSideAdds(t *testing.T) {
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, nil)

	require.NoError(t, m.OnFill(fill(0, schema.OrderSideBuy, 100, 10)))
	require.NoError(t, m.OnFill(fill(0, schema.OrderSideBuy, 110, 10)))

	pos, err := m.Position(0)
	require.NoError(t, err)
	require.Equal(t, schema.Quantity(20), pos.Quantity)
	require.Equal(t, schema.Price(105), pos.AvgPrice, "expected VWAP 105")
}

func TestOnFillRealizesPnLOnPartialClose(t *testing.T) {
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, nil)
	_ = m.OnFill(fill(0, schema.OrderSideBuy, 100, 10))

	require.NoError(t, m.OnFill(fill(0, schema.OrderSideSell, 120, 4)))

	pos, _ := m.Position(0)
	require.Equal(t, schema.Quantity(6), pos.Quantity)
	require.Equal(t, schema.Price(100), pos.AvgPrice, "expected cost basis unchanged at 100")
	require.Equal(t, schema.Notional(4*(120-100)), pos.RealizedPnL)
}

func TestOnFillFlipResetsToTradePrice(t *testing.T) {
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, nil)
	_ = m.OnFill(fill(0, schema.OrderSideBuy, 100, 10))

	require.NoError(t, m.OnFill(fill(0, schema.OrderSideSell, 90, 15)))

	pos, _ := m.Position(0)
	require.Equal(t, schema.Quantity(-5), pos.Quantity, "expected flipped short quantity")
	require.Equal(t, schema.Price(90), pos.AvgPrice, "expected flip cost basis reset to trade price")
	require.Equal(t, schema.Notional(10*(90-100)), pos.RealizedPnL)
}

func TestOnFillFullCloseGoesFlat(t *testing.T) {
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, nil)
	_ = m.OnFill(fill(0, schema.OrderSideBuy, 100, 10))
	_ = m.OnFill(fill(0, schema.OrderSideSell, 105, 10))

	pos, _ := m.Position(0)
	require.Equal(t, schema.Quantity(0), pos.Quantity, "expected flat position")
	require.Equal(t, schema.Price(0), pos.AvgPrice, "expected cost basis reset to 0")
	require.False(t, m.IsActive(0), "expected symbol inactive once flat")
}

func TestCanExecuteRejectsOversizeOrder(t *testing.T) {
	limits := RiskLimits{MaxPositions: 1000, MaxOrderSize: 5, MaxNotional: 1_000_000}
	m := NewManager(1, 100_000, limits, NoFees{}, nil)

	ok, reason := m.CanExecute(0, 10, 100)
	require.False(t, ok)
	require.Equal(t, schema.RiskReasonMaxOrderSize, reason)
}

func TestCanExecuteRejectsExcessiveNotional(t *testing.T) {
	limits := RiskLimits{MaxPositions: 1000, MaxOrderSize: 1000, MaxNotional: 500}
	m := NewManager(1, 100_000, limits, NoFees{}, nil)

	ok, reason := m.CanExecute(0, 10, 100)
	require.False(t, ok)
	require.Equal(t, schema.RiskReasonMaxNotional, reason)
}

func TestCanExecuteRejectsUnknownSymbol(t *testing.T) {
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, nil)
	ok, reason := m.CanExecute(5, 1, 100)
	require.False(t, ok)
	require.Equal(t, schema.RiskReasonUnknownSymbol, reason)
}

func TestKillSwitchBlocksEverything(t *testing.T) {
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, nil)
	m.SetKillSwitch(true)
	ok, reason := m.CanExecute(0, 1, 100)
	require.False(t, ok)
	require.Equal(t, schema.RiskReasonKillSwitch, reason)
}

func TestOnSignalAcceptedEmitsOrderAndTracksPending(t *testing.T) {
	sink := &fakeSink{}
	m := NewManager(1, 100_000, DefaultRiskLimits(), NoFees{}, sink)

	id, reason := m.OnSignal(0, 10, 100, 1)
	require.Equal(t, schema.RiskReasonNone, reason)
	require.NotZero(t, id, "expected non-zero order id")
	require.Len(t, sink.orders, 1)

	pos, _ := m.Position(0)
	require.Equal(t, schema.Quantity(10), pos.PendingQty)
}

func TestOnSignalRejectedEmitsNothing(t *testing.T) {
	limits := RiskLimits{MaxPositions: 1000, MaxOrderSize: 1, MaxNotional: 1_000_000}
	sink := &fakeSink{}
	m := NewManager(1, 100_000, limits, NoFees{}, sink)

	_, reason := m.OnSignal(0, 10, 100, 1)
	require.NotEqual(t, schema.RiskReasonNone, reason, "expected rejection")
	require.Empty(t, sink.orders, "expected no emitted orders")
}

func TestComputeMetricsTracksDrawdown(t *testing.T) {
	m := NewManager(1, 10_000, DefaultRiskLimits(), NoFees{}, nil)
	_ = m.OnFill(fill(0, schema.OrderSideBuy, 100, 10))
	_ = m.OnMarketData(0, 150)

	peak := m.ComputeMetrics(1)
	require.Zero(t, peak.Drawdown, "expected zero drawdown at new peak")

	_ = m.OnMarketData(0, 120)
	dip := m.ComputeMetrics(2)
	require.Greater(t, int64(dip.Drawdown), int64(0), "expected positive drawdown after price drop")
	require.Len(t, m.EquityCurve(), 2)
}
