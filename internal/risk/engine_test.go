package risk

import (
	"testing"
	"time"

	"tradecore/internal/portfolio"
	"tradecore/internal/schema"
)

func newTestManager() *portfolio.Manager {
	return portfolio.NewManager(4, 100_000, portfolio.DefaultRiskLimits(), portfolio.NoFees{}, nil)
}

func TestEvaluateAllowsWithinLimits(t *testing.T) {
	e := NewEngine(Config{}, newTestManager())
	ok, reason := e.Evaluate(0, 10, 100, 1)
	if !ok || reason != schema.RiskReasonNone {
		t.Fatalf("expected allow, got ok=%v reason=%v", ok, reason)
	}
}

func TestEvaluateRejectsAboveRateLimit(t *testing.T) {
	e := NewEngine(Config{OrderRateLimit: 2, OrderRateWindow: time.Second}, newTestManager())

	for i := 0; i < 2; i++ {
		if ok, _ := e.Evaluate(0, 1, 100, 1); !ok {
			t.Fatalf("expected order %d to be allowed", i)
		}
	}
	ok, reason := e.Evaluate(0, 1, 100, 1)
	if ok {
		t.Fatalf("expected third order within the window to be rejected")
	}
	if reason != schema.RiskReasonMaxOrderSize {
		t.Fatalf("unexpected reason: %v", reason)
	}
}

func TestEvaluateRejectsPriceOutsideBand(t *testing.T) {
	e := NewEngine(Config{MaxPriceDeviationBps: 100}, newTestManager())
	e.ObserveMarket(0, 100)

	ok, _ := e.Evaluate(0, 10, 200, 1)
	if ok {
		t.Fatalf("expected order priced far outside the reference band to be rejected")
	}
}

func TestEvaluateDelegatesToPortfolioLimits(t *testing.T) {
	e := NewEngine(Config{}, newTestManager())
	ok, reason := e.Evaluate(0, 10_000, 100, 1)
	if ok {
		t.Fatalf("expected oversize order to be rejected by the portfolio gate")
	}
	if reason != schema.RiskReasonMaxOrderSize {
		t.Fatalf("unexpected reason: %v", reason)
	}
}
