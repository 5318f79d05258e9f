package book

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tradecore/internal/schema"
)

func newOrder(id schema.OrderID, side schema.OrderSide, price schema.Price, ts int64) OrderState {
	return OrderState{
		Order: schema.OrderEvent{
			OrderID:        id,
			Side:           side,
			Type:           schema.OrderTypeLimit,
			Price:          price,
			Quantity:       10,
			TimestampNanos: ts,
		},
		Active: true,
	}
}

func TestBestBidOrdersByPriceThenTime(t *testing.T) {
	s := NewStore(0)
	s.Emplace(newOrder(1, schema.OrderSideBuy, 100, 1))
	s.Emplace(newOrder(2, schema.OrderSideBuy, 105, 2))
	s.Emplace(newOrder(3, schema.OrderSideBuy, 105, 1))

	best, ok := s.BestBid()
	require.True(t, ok, "expected a best bid")
	require.Equal(t, schema.OrderID(3), best.Order.OrderID, "expected order 3 (highest price, earliest time)")
}

func TestBestAskOrdersAscending(t *testing.T) {
	s := NewStore(0)
	s.Emplace(newOrder(1, schema.OrderSideSell, 110, 1))
	s.Emplace(newOrder(2, schema.OrderSideSell, 100, 2))

	best, ok := s.BestAsk()
	require.True(t, ok, "expected a best ask")
	require.Equal(t, schema.OrderID(2), best.Order.OrderID, "expected order 2 (lowest ask)")
}

func TestGetAndInactiveMovesToLedger(t *testing.T) {
	s := NewStore(4)
	s.Emplace(newOrder(1, schema.OrderSideBuy, 100, 1))

	_, ok := s.Get(1)
	require.True(t, ok, "expected order 1 to be found")

	require.NoError(t, s.Inactive(1))

	_, ok = s.Get(1)
	require.False(t, ok, "expected order 1 to be removed from live book")

	ledger := s.Ledger()
	require.Len(t, ledger, 1)
	require.Equal(t, schema.OrderID(1), ledger[0].Order.OrderID)
}

func TestInactiveUnknownOrderIsNoOp(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Inactive(99))
}

func TestEmplaceReplacesExistingOrder(t *testing.T) {
	s := NewStore(0)
	s.Emplace(newOrder(1, schema.OrderSideBuy, 100, 1))
	s.Emplace(newOrder(1, schema.OrderSideBuy, 200, 2))

	require.Equal(t, 1, s.BidCount(), "expected re-emplace to replace, not duplicate")

	best, _ := s.BestBid()
	require.Equal(t, schema.Price(200), best.Order.Price, "expected replaced order price 200")
}

func TestLedgerEvictsOldestWhenFull(t *testing.T) {
	s := NewStore(2)
	for i := schema.OrderID(1); i <= 3; i++ {
		s.Emplace(newOrder(i, schema.OrderSideBuy, 100, int64(i)))
		require.NoError(t, s.Inactive(i))
	}
	ledger := s.Ledger()
	require.Len(t, ledger, 2, "expected ledger capped at 2")
	require.Equal(t, schema.OrderID(2), ledger[0].Order.OrderID, "expected oldest entry evicted")
	require.Equal(t, schema.OrderID(3), ledger[1].Order.OrderID, "expected oldest entry evicted")
}
