package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tradecore/internal/portfolio"
	"tradecore/internal/risk"
	"tradecore/internal/schema"
)

// FileConfig mirrors the JSON config layout read from disk.
type FileConfig struct {
	Symbols    []string           `json:"symbols"`
	Risk       RiskConfig         `json:"risk"`
	Portfolio  PortfolioConfig    `json:"portfolio"`
	Dispatcher DispatcherConfig   `json:"dispatcher"`
	Features   FeatureFlagsConfig `json:"features"`
}

// RiskConfig mirrors risk.Config with JSON-friendly duration handling.
type RiskConfig struct {
	OrderRateLimit       int    `json:"orderRateLimit"`
	OrderRateWindowMillis int64 `json:"orderRateWindowMillis"`
	MaxPriceDeviationBps int64  `json:"maxPriceDeviationBps"`
}

// PortfolioConfig configures the portfolio manager's starting state and
// default per-symbol limits.
type PortfolioConfig struct {
	StartingCash schema.Notional `json:"startingCash"`
	MaxPositions int32           `json:"maxPositions"`
	MaxOrderSize schema.Quantity `json:"maxOrderSize"`
	MaxNotional  schema.Notional `json:"maxNotional"`
}

// DispatcherConfig holds the dispatcher sizing knobs. LedgerCapacity sizes
// the matcher's historical ledgers. QueueCapacity is loaded and defaulted
// but not applied: engine.New allocates its queue with a fixed initial
// capacity and does not read it.
type DispatcherConfig struct {
	QueueCapacity  int `json:"queueCapacity"`
	LedgerCapacity int `json:"ledgerCapacity"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	EnableRiskEngine *bool `json:"enableRiskEngine"`
	EnableWAL        *bool `json:"enableWal"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	EnableRiskEngine bool
	EnableWAL        bool
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry   *schema.SymbolRegistry
	Risk       risk.Config
	Limits     portfolio.RiskLimits
	StartCash  schema.Notional
	Dispatcher DispatcherConfig
	Features   FeatureFlags
}

// Load reads a JSON config file and builds the symbol registry plus the
// resolved risk, portfolio and dispatcher settings.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}

	registry, err := buildRegistry(cfg.Symbols)
	if err != nil {
		return Loaded{}, err
	}

	limits := resolveLimits(cfg.Portfolio)

	dispatcherCfg := cfg.Dispatcher
	if dispatcherCfg.QueueCapacity <= 0 {
		dispatcherCfg.QueueCapacity = 256
	}
	if dispatcherCfg.LedgerCapacity <= 0 {
		dispatcherCfg.LedgerCapacity = 4096
	}

	return Loaded{
		Registry: registry,
		Risk: risk.Config{
			OrderRateLimit:       cfg.Risk.OrderRateLimit,
			OrderRateWindow:      time.Duration(cfg.Risk.OrderRateWindowMillis) * time.Millisecond,
			MaxPriceDeviationBps: cfg.Risk.MaxPriceDeviationBps,
		},
		Limits:     limits,
		StartCash:  cfg.Portfolio.StartingCash,
		Dispatcher: dispatcherCfg,
		Features:   resolveFeatures(cfg.Features),
	}, nil
}

// LoadRegistry reads a JSON config file and only builds the symbol registry.
func LoadRegistry(path string) (*schema.SymbolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return buildRegistry(cfg.Symbols)
}

func buildRegistry(symbols []string) (*schema.SymbolRegistry, error) {
	reg := schema.NewSymbolRegistry()
	for _, name := range symbols {
		if _, err := reg.Register(name); err != nil {
			return nil, fmt.Errorf("registering symbol %q: %w", name, err)
		}
	}
	return reg, nil
}

func resolveLimits(cfg PortfolioConfig) portfolio.RiskLimits {
	limits := portfolio.DefaultRiskLimits()
	if cfg.MaxPositions > 0 {
		limits.MaxPositions = cfg.MaxPositions
	}
	if cfg.MaxOrderSize > 0 {
		limits.MaxOrderSize = cfg.MaxOrderSize
	}
	if cfg.MaxNotional > 0 {
		limits.MaxNotional = cfg.MaxNotional
	}
	return limits
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{
		EnableRiskEngine: true,
		EnableWAL:        true,
	}
	if cfg.EnableRiskEngine != nil {
		flags.EnableRiskEngine = *cfg.EnableRiskEngine
	}
	if cfg.EnableWAL != nil {
		flags.EnableWAL = *cfg.EnableWAL
	}
	return flags
}
