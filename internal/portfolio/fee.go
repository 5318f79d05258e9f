package portfolio

import "tradecore/internal/schema"

// FeeModel computes the commission and effective (slippage-adjusted) fill
// price applied before a fill is folded into the portfolio's cash and
// position accounting. It is an optional enrichment hook: NoFees applies
// neither.
type FeeModel interface {
	// Apply returns the effective execution price (after slippage) and
	// the commission owed for a fill of qty shares at price.
	Apply(side schema.OrderSide, price schema.Price, qty schema.Quantity) (effectivePrice schema.Price, commission schema.Fee)
}

// NoFees is a FeeModel that applies neither commission nor slippage.
type NoFees struct{}

func (NoFees) Apply(_ schema.OrderSide, price schema.Price, _ schema.Quantity) (schema.Price, schema.Fee) {
	return price, 0
}

// LinearFeeModel applies a proportional commission rate and a proportional
// slippage rate (widening the effective price against the trader), both
// expressed in basis points scaled by 1e6 (commissionBps=100 == 0.01%).
type LinearFeeModel struct {
	CommissionBps int64
	SlippageBps   int64
}

func (m LinearFeeModel) Apply(side schema.OrderSide, price schema.Price, qty schema.Quantity) (schema.Price, schema.Fee) {
	effective := price
	if m.SlippageBps != 0 {
		adj := int64(price) * m.SlippageBps / 1_000_000
		if side == schema.OrderSideBuy {
			effective = price + schema.Price(adj)
		} else {
			effective = price - schema.Price(adj)
		}
	}
	notional := int64(effective) * int64(qty)
	if notional < 0 {
		notional = -notional
	}
	commission := schema.Fee(notional * m.CommissionBps / 1_000_000)
	return effective, commission
}
