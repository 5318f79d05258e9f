package state

import "tradecore/internal/schema"

// PositionReducer updates positions based on fill events.
type PositionReducer struct {
	positions map[uint32]schema.Quantity
}

// NewPositionReducer creates an empty reducer.
func NewPositionReducer() *PositionReducer {
	return &PositionReducer{positions: make(map[uint32]schema.Quantity)}
}

// ApplyFill updates the position and returns the new quantity.
// execution.SimMatcher emits one fill per execution of an order it tracks
// and no counterparty fill, so each fill maps directly to a signed
// position delta.
func (r *PositionReducer) ApplyFill(fill schema.FillEvent) schema.Quantity {
	current := r.positions[uint32(fill.SymbolID)]
	var next schema.Quantity
	switch fill.Side {
	case schema.OrderSideBuy:
		next = schema.Quantity(int64(current) + int64(fill.FilledQty))
	case schema.OrderSideSell:
		next = schema.Quantity(int64(current) - int64(fill.FilledQty))
	default:
		next = current
	}
	r.positions[uint32(fill.SymbolID)] = next
	return next
}

// ApplySnapshot replaces positions with a snapshot.
func (r *PositionReducer) ApplySnapshot(snapshot Snapshot) {
	if r.positions == nil {
		r.positions = make(map[uint32]schema.Quantity, len(snapshot.Positions))
	} else {
		for key := range r.positions {
			delete(r.positions, key)
		}
	}
	for _, entry := range snapshot.Positions {
		r.positions[entry.SymbolID] = entry.Qty
	}
}

// Position returns the current position quantity for a symbol.
func (r *PositionReducer) Position(symbolID uint32) schema.Quantity {
	return r.positions[symbolID]
}

// Count returns the number of tracked symbols.
func (r *PositionReducer) Count() int {
	return len(r.positions)
}
