package ops

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadBuildsRegistryAndLimits(t *testing.T) {
	path := writeConfig(t, `{
		"symbols": ["BTCUSDT", "ETHUSDT"],
		"risk": {"orderRateLimit": 10, "orderRateWindowMillis": 1000, "maxPriceDeviationBps": 50},
		"portfolio": {"startingCash": 500000, "maxOrderSize": 20},
		"dispatcher": {"queueCapacity": 128}
	}`)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Registry.Len() != 2 {
		t.Fatalf("expected 2 symbols registered, got %d", loaded.Registry.Len())
	}
	if _, ok := loaded.Registry.Lookup("ETHUSDT"); !ok {
		t.Fatalf("expected ETHUSDT to be registered")
	}
	if loaded.StartCash != 500000 {
		t.Fatalf("expected starting cash 500000, got %v", loaded.StartCash)
	}
	if loaded.Limits.MaxOrderSize != 20 {
		t.Fatalf("expected overridden max order size 20, got %v", loaded.Limits.MaxOrderSize)
	}
	if loaded.Dispatcher.QueueCapacity != 128 {
		t.Fatalf("expected queue capacity 128, got %d", loaded.Dispatcher.QueueCapacity)
	}
	if loaded.Dispatcher.LedgerCapacity != 4096 {
		t.Fatalf("expected default ledger capacity 4096, got %d", loaded.Dispatcher.LedgerCapacity)
	}
}

func TestLoadDefaultsFeatureFlagsToEnabled(t *testing.T) {
	path := writeConfig(t, `{"symbols": ["BTCUSDT"]}`)

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Features.EnableRiskEngine || !loaded.Features.EnableWAL {
		t.Fatalf("expected both feature flags to default true, got %+v", loaded.Features)
	}
}

func TestLoadRegistryOnly(t *testing.T) {
	path := writeConfig(t, `{"symbols": ["BTCUSDT", "ETHUSDT", "SOLUSDT"]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 symbols, got %d", reg.Len())
	}
}
