// Package risk layers rate-limiting and price-band checks in front of the
// portfolio manager's pre-trade gate. It never duplicates position/notional
// limits — those live on portfolio.Manager — it only adds checks that need
// state the portfolio manager doesn't keep (recent order rate, last seen
// reference price).
package risk

import (
	"time"

	"tradecore/internal/portfolio"
	"tradecore/internal/schema"
)

const maxInt64 = int64(^uint64(0) >> 1)

// Config defines the rate and price-band limits layered on top of the
// portfolio manager's own risk gate.
type Config struct {
	OrderRateLimit       int
	OrderRateWindow      time.Duration
	MaxPriceDeviationBps int64
}

// Engine evaluates order submissions before they reach portfolio.Manager.
type Engine struct {
	cfg             Config
	manager         *portfolio.Manager
	rateWindowStart int64
	rateCount       int
	refPrices       map[schema.SymbolID]schema.Price
}

// NewEngine wraps a portfolio manager with rate and price-band gates.
func NewEngine(cfg Config, manager *portfolio.Manager) *Engine {
	return &Engine{cfg: cfg, manager: manager, refPrices: make(map[schema.SymbolID]schema.Price)}
}

// ObserveMarket updates the reference price used for the price-band check.
func (e *Engine) ObserveMarket(symbol schema.SymbolID, price schema.Price) {
	e.refPrices[symbol] = price
}

// Evaluate checks rate and price-band limits, then delegates to the
// portfolio manager's pre-trade gate. now is a UnixNano timestamp; a zero
// value falls back to the wall clock.
func (e *Engine) Evaluate(symbol schema.SymbolID, signedQty schema.Quantity, price schema.Price, now int64) (bool, schema.RiskReason) {
	if now == 0 {
		now = time.Now().UTC().UnixNano()
	}

	if e.cfg.OrderRateLimit > 0 && e.cfg.OrderRateWindow > 0 {
		window := int64(e.cfg.OrderRateWindow)
		if e.rateWindowStart == 0 || now-e.rateWindowStart >= window {
			e.rateWindowStart = now
			e.rateCount = 0
		}
		e.rateCount++
		if e.rateCount > e.cfg.OrderRateLimit {
			return false, schema.RiskReasonMaxOrderSize
		}
	}

	if e.cfg.MaxPriceDeviationBps > 0 {
		if ref, ok := e.refPrices[symbol]; ok && ref > 0 {
			diff := absInt64(int64(price) - int64(ref))
			if exceedsDeviation(diff, int64(ref), e.cfg.MaxPriceDeviationBps) {
				return false, schema.RiskReasonPositionLimit
			}
		}
	}

	return e.manager.CanExecute(symbol, signedQty, price)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func exceedsDeviation(diff int64, ref int64, bps int64) bool {
	if diff <= 0 || ref <= 0 || bps <= 0 {
		return false
	}
	if diff > maxInt64/10000 {
		return true
	}
	lhs := diff * 10000
	if ref > maxInt64/bps {
		return true
	}
	rhs := ref * bps
	return lhs > rhs
}
