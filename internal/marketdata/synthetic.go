// Package marketdata generates synthetic price ticks for backtests that
// don't need a recorded market data file.
package marketdata

import (
	"fmt"
	"math/rand"
	"time"

	"tradecore/internal/schema"
)

// Config parameterizes a synthetic tick stream. Symbols are cycled
// round-robin; each symbol walks its own price with a bounded random step.
type Config struct {
	Symbols     []schema.SymbolID
	StartPrice  schema.Price
	StepSize    schema.Price
	BaseQty     schema.Quantity
	Seed        int64
	TickCount   int
	StartTsNano int64
	TickNanos   int64
}

// SyntheticSource implements engine.MarketSource with a deterministic
// pseudo-random walk, seeded so runs are reproducible.
type SyntheticSource struct {
	symbols   []schema.SymbolID
	prices    []schema.Price
	baseQty   schema.Quantity
	step      schema.Price
	rng       *rand.Rand
	index     int
	emitted   int
	tickCount int
	ts        int64
	tickNanos int64
}

// NewSyntheticSource builds a source from cfg. StartPrice seeds every
// symbol's walk; TickCount bounds the stream (0 means unbounded).
func NewSyntheticSource(cfg Config) (*SyntheticSource, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("marketdata: no symbols configured")
	}
	step := cfg.StepSize
	if step <= 0 {
		step = 1
	}
	baseQty := cfg.BaseQty
	if baseQty <= 0 {
		baseQty = 1
	}
	tickNanos := cfg.TickNanos
	if tickNanos <= 0 {
		tickNanos = int64(time.Millisecond)
	}
	prices := make([]schema.Price, len(cfg.Symbols))
	for i := range prices {
		prices[i] = cfg.StartPrice
	}
	return &SyntheticSource{
		symbols:   append([]schema.SymbolID(nil), cfg.Symbols...),
		prices:    prices,
		baseQty:   baseQty,
		step:      step,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		tickCount: cfg.TickCount,
		ts:        cfg.StartTsNano,
		tickNanos: tickNanos,
	}, nil
}

// Next implements engine.MarketSource.
func (s *SyntheticSource) Next() (schema.MarketEvent, bool) {
	if s.tickCount > 0 && s.emitted >= s.tickCount {
		return schema.MarketEvent{}, false
	}

	symbol := s.symbols[s.index]
	price := s.walk(s.index)
	buyerInitiated := s.rng.Intn(2) == 0

	ev := schema.MarketEvent{
		SymbolID:       symbol,
		Price:          price,
		Quantity:       s.baseQty,
		TimestampNanos: s.ts,
		BuyerInitiated: buyerInitiated,
	}

	s.index = (s.index + 1) % len(s.symbols)
	s.ts += s.tickNanos
	s.emitted++
	return ev, true
}

func (s *SyntheticSource) walk(idx int) schema.Price {
	delta := schema.Price(s.rng.Intn(3)-1) * s.step
	next := s.prices[idx] + delta
	if next <= 0 {
		next = s.prices[idx]
	}
	s.prices[idx] = next
	return next
}
