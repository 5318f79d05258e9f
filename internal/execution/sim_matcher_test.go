package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tradecore/internal/book"
	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

func seedAsk(m *SimMatcher, id schema.OrderID, symbol schema.SymbolID, price schema.Price, qty schema.Quantity) {
	m.Book(symbol).Emplace(book.OrderState{
		Order: schema.OrderEvent{
			OrderID:  id,
			SymbolID: symbol,
			Side:     schema.OrderSideSell,
			Type:     schema.OrderTypeLimit,
			Price:    price,
			Quantity: qty,
		},
		Active: true,
	})
}

func seedBid(m *SimMatcher, id schema.OrderID, symbol schema.SymbolID, price schema.Price, qty schema.Quantity) {
	m.Book(symbol).Emplace(book.OrderState{
		Order: schema.OrderEvent{
			OrderID:  id,
			SymbolID: symbol,
			Side:     schema.OrderSideBuy,
			Type:     schema.OrderTypeLimit,
			Price:    price,
			Quantity: qty,
		},
		Active: true,
	})
}

func drainFills(q *queue.Queue) []schema.FillEvent {
	var out []schema.FillEvent
	for !q.Empty() {
		ev, err := q.Pop()
		if err != nil {
			break
		}
		if ev.Kind == schema.EventKindFill {
			out = append(out, ev.Fill)
		}
	}
	return out
}

func TestLimitOrderCrossesRestingAsk(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 10)

	m.OnOrder(schema.OrderEvent{OrderID: 2, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeLimit, Price: 100, Quantity: 10}, q)

	fills := drainFills(q)
	require.Len(t, fills, 1)
	require.Equal(t, schema.Quantity(10), fills[0].FilledQty)
	require.Equal(t, schema.Price(100), fills[0].Price)
}

func TestLimitOrderRestsWhenNoCross(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)

	m.OnOrder(schema.OrderEvent{OrderID: 1, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeLimit, Price: 90, Quantity: 10}, q)

	require.Nil(t, drainFills(q), "expected no fills")

	best, ok := m.Book(0).BestBid()
	require.True(t, ok)
	require.Equal(t, schema.OrderID(1), best.Order.OrderID, "expected order 1 resting as best bid")
}

func TestIOCOrderCancelsUnfilledRemainder(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 4)

	m.OnOrder(schema.OrderEvent{OrderID: 2, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeLimit, Price: 100, Quantity: 10, Flags: schema.FlagIOC}, q)

	var sawCancel bool
	var fills []schema.FillEvent
	for !q.Empty() {
		ev, _ := q.Pop()
		if ev.Kind == schema.EventKindCancel {
			sawCancel = true
		}
		if ev.Kind == schema.EventKindFill {
			fills = append(fills, ev.Fill)
		}
	}
	require.True(t, sawCancel, "expected IOC remainder to be cancelled")
	require.Len(t, fills, 1)
	require.Equal(t, schema.Quantity(4), fills[0].FilledQty, "expected partial fill of 4 before cancel")

	_, ok := m.Book(0).BestBid()
	require.False(t, ok, "expected nothing resting after IOC order")
}

func TestFOKOrderRejectedWhenInsufficientLiquidity(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 4)

	m.OnOrder(schema.OrderEvent{OrderID: 2, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeLimit, Price: 100, Quantity: 10, Flags: schema.FlagFOK}, q)

	fills := drainFills(q)
	require.Empty(t, fills, "expected FOK order to be entirely rejected")

	best, ok := m.Book(0).BestAsk()
	require.True(t, ok)
	require.Equal(t, schema.Quantity(0), best.FilledQty, "expected resting ask untouched by rejected FOK order")
}

func TestPostOnlyRejectedWhenWouldCross(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 10)

	m.OnOrder(schema.OrderEvent{OrderID: 2, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeLimit, Price: 105, Quantity: 5, Flags: schema.FlagPostOnly}, q)

	ev, err := q.Pop()
	require.NoError(t, err, "expected a cancel event")
	require.Equal(t, schema.EventKindCancel, ev.Kind)
}

func TestMarketOrderSweepsMultipleLevels(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 5)
	seedAsk(m, 2, 0, 101, 5)

	m.OnOrder(schema.OrderEvent{OrderID: 3, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeMarket, Quantity: 10}, q)

	fills := drainFills(q)
	require.Len(t, fills, 2, "expected 2 fills sweeping both levels")
	require.Equal(t, schema.Price(100), fills[0].Price)
	require.Equal(t, schema.Price(101), fills[1].Price)
}

func TestMarketOrderCancelsRemainderWhenLiquidityExhausted(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 3)

	m.OnOrder(schema.OrderEvent{OrderID: 2, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeMarket, Quantity: 10}, q)

	var sawCancel bool
	for !q.Empty() {
		ev, _ := q.Pop()
		if ev.Kind == schema.EventKindCancel {
			sawCancel = true
		}
	}
	require.True(t, sawCancel, "expected cancel of unfillable remainder")
}

func TestStopMarketTriggersOnCrossingTick(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedAsk(m, 1, 0, 100, 10)

	m.OnOrder(schema.OrderEvent{OrderID: 2, SymbolID: 0, Side: schema.OrderSideBuy, Type: schema.OrderTypeStopMarket, StopPrice: 100, Quantity: 10}, q)
	require.Nil(t, drainFills(q), "expected stop order to not trigger before market crosses")

	m.OnMarket(schema.MarketEvent{SymbolID: 0, Price: 100}, q)
	fills := drainFills(q)
	require.Len(t, fills, 1, "expected stop order to trigger and fill")
	require.Equal(t, schema.Quantity(10), fills[0].FilledQty)
}

func TestOnMarketCrossesRestingLimitOrders(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedBid(m, 1, 0, 105, 8) // resting buy at 105, tick trades at 100 -> crosses
	seedAsk(m, 2, 0, 95, 6)  // resting sell at 95, tick trades at 100 -> crosses

	m.OnMarket(schema.MarketEvent{SymbolID: 0, Price: 100, TimestampNanos: 7}, q)

	fills := drainFills(q)
	require.Len(t, fills, 2, "expected both resting orders to fill against the crossing tick")

	byOrder := make(map[schema.OrderID]schema.FillEvent)
	for _, f := range fills {
		byOrder[f.OrderID] = f
	}
	require.Equal(t, schema.Price(100), byOrder[1].Price)
	require.Equal(t, schema.Quantity(8), byOrder[1].FilledQty)
	require.Equal(t, schema.Price(100), byOrder[2].Price)
	require.Equal(t, schema.Quantity(6), byOrder[2].FilledQty)

	_, restingBid := m.Book(0).BestBid()
	require.False(t, restingBid, "expected crossed bid removed from book")
	_, restingAsk := m.Book(0).BestAsk()
	require.False(t, restingAsk, "expected crossed ask removed from book")
}

func TestOnMarketLeavesNonCrossingLimitsResting(t *testing.T) {
	m := NewSimMatcher(0)
	q := queue.New(4)
	seedBid(m, 1, 0, 90, 8)
	seedAsk(m, 2, 0, 110, 6)

	m.OnMarket(schema.MarketEvent{SymbolID: 0, Price: 100}, q)

	require.Nil(t, drainFills(q), "expected no fills when tick doesn't cross either side")

	best, ok := m.Book(0).BestBid()
	require.True(t, ok)
	require.Equal(t, schema.OrderID(1), best.Order.OrderID)
}
