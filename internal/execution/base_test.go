package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tradecore/internal/queue"
	"tradecore/internal/schema"
)

func TestEmitFillComputesWeightedAveragePrice(t *testing.T) {
	b := NewBase()
	q := queue.New(4)
	order := schema.OrderEvent{OrderID: 1, Quantity: 20}

	b.EmitFill(order, 10, 100, 1, q)
	b.EmitFill(order, 10, 110, 2, q)

	st, ok := b.GetOrder(1)
	require.True(t, ok, "expected retired order still reachable via GetOrder")
	require.Equal(t, schema.Price(105), st.AvgFillPrice)
	require.False(t, st.Active, "expected order fully filled and inactive")

	hist := b.History()
	require.Len(t, hist, 1)
	require.Equal(t, schema.Price(105), hist[0].AvgFillPrice)
}

func TestEmitFillPartialLeavesOrderActive(t *testing.T) {
	b := NewBase()
	q := queue.New(4)
	order := schema.OrderEvent{OrderID: 1, Quantity: 20}

	b.EmitFill(order, 5, 100, 1, q)

	st, _ := b.GetOrder(1)
	require.True(t, st.Active, "expected order still active after partial fill")

	ev, err := q.Pop()
	require.NoError(t, err)
	require.Equal(t, schema.EventKindFill, ev.Kind)
	require.Equal(t, schema.Quantity(15), ev.Fill.RemainingQty)
}

func TestEmitCancelMarksOrderInactive(t *testing.T) {
	b := NewBase()
	q := queue.New(4)
	order := schema.OrderEvent{OrderID: 1, Quantity: 20}

	b.EmitCancel(order, "test", 1, q)

	st, ok := b.GetOrder(1)
	require.True(t, ok, "expected retired order still reachable via GetOrder")
	require.False(t, st.Active, "expected order inactive after cancel")

	hist := b.History()
	require.Len(t, hist, 1)

	ev, err := q.Pop()
	require.NoError(t, err)
	require.Equal(t, schema.EventKindCancel, ev.Kind)
}
