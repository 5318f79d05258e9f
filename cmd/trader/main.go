package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	zlog "github.com/rs/zerolog/log"

	"tradecore/internal/bus"
	"tradecore/internal/engine"
	tcerrors "tradecore/internal/errors"
	"tradecore/internal/execution"
	"tradecore/internal/marketdata"
	"tradecore/internal/obs"
	"tradecore/internal/ops"
	"tradecore/internal/persist"
	"tradecore/internal/portfolio"
	"tradecore/internal/queue"
	"tradecore/internal/recorder"
	"tradecore/internal/risk"
	"tradecore/internal/schema"
	"tradecore/internal/state"
)

// runtimeConfig holds the currently active configuration behind an atomic
// value so a background reload never races the run loop reading it.
type runtimeConfig struct {
	v atomic.Value
}

func newRuntimeConfig(loaded ops.Loaded) *runtimeConfig {
	var rc runtimeConfig
	rc.v.Store(loaded)
	return &rc
}

func (r *runtimeConfig) Load() ops.Loaded {
	return r.v.Load().(ops.Loaded)
}

func (r *runtimeConfig) Update(loaded ops.Loaded) {
	r.v.Store(loaded)
}

func main() {
	configPath := flag.String("config", "", "Path to JSON config (default: built-in demo universe)")
	configReload := flag.Duration("config-reload-interval", 2*time.Second, "Config reload poll interval (0=disable)")
	walDir := flag.String("wal-dir", "testdata/wal", "WAL directory for recording")
	tickCount := flag.Int("tick-count", 200, "Number of synthetic market ticks to run")
	signalInterval := flag.Int("signal-interval", 5, "Emit a demo buy signal every N ticks per symbol (0=never)")
	signalQty := flag.Int64("signal-qty", 5, "Quantity submitted by the demo signal strategy")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot output (default: <wal-dir>/positions.json)")
	recoverEnabled := flag.Bool("recover", false, "Recover positions from snapshot + WAL before running")
	recoverSnapshot := flag.String("recover-snapshot", "", "Snapshot path for recovery (default: <wal-dir>/positions.json)")
	recoverPrefix := flag.String("recover-prefix", "", "WAL file prefix for recovery (default: wal)")
	recoverNoChecksum := flag.Bool("recover-no-checksum", false, "Disable checksum validation for recovery")
	recoverMaxPayload := flag.Int("recover-max-payload", 0, "Max payload size in bytes for recovery (0=unlimited)")

	replayDir := flag.String("replay-dir", "", "If set, replay this WAL directory instead of running the engine")
	replayPrefix := flag.String("replay-prefix", "", "WAL file prefix (default: wal)")
	replaySpeed := flag.Float64("replay-speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	replayUseRecv := flag.Bool("replay-use-recv-time", false, "Use receive timestamp for pacing")
	replayNoChecksum := flag.Bool("replay-no-checksum", false, "Disable checksum validation")
	replayMaxPayload := flag.Int("replay-max-payload", 0, "Max payload size in bytes (0=unlimited)")
	replaySnapshot := flag.String("replay-snapshot", "", "Snapshot path for replay verification (default: <replay-dir>/positions.json)")
	replayVerifySnapshot := flag.Bool("replay-verify-snapshot", true, "Verify positions against snapshot after replay")

	pgDSN := flag.String("pg-dsn", "", "PostgreSQL connection string for fill/equity persistence (disabled if empty)")
	runtimeMetricsInterval := flag.Duration("runtime-metrics-interval", 0, "Periodic runtime memory report interval (0=disable)")
	pyroscopeAddr := flag.String("pyroscope-addr", "", "Pyroscope server address for continuous profiling (disabled if empty)")
	flag.Parse()

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "tradecore/trader",
			ServerAddress:   *pyroscopeAddr,
			Tags:            map[string]string{"env": "sim"},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() { _ = profiler.Stop() }()
	}

	ctx := context.Background()

	if *replayDir != "" {
		cfg := recorder.PlaybackConfig{
			Dir:             *replayDir,
			FilePrefix:      *replayPrefix,
			Speed:           *replaySpeed,
			UseRecvTime:     *replayUseRecv,
			DisableChecksum: *replayNoChecksum,
			MaxPayloadSize:  *replayMaxPayload,
		}
		snapshotIn := resolveSnapshotPath(*replayDir, *replaySnapshot)
		if err := runReplay(ctx, cfg, snapshotIn, *replayVerifySnapshot); err != nil {
			log.Fatalf("replay failed: %v", err)
		}
		return
	}

	loaded, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	runtime := newRuntimeConfig(loaded)
	if *configPath != "" && *configReload > 0 {
		go watchConfig(ctx, *configPath, *configReload, runtime.Update)
	}

	if *runtimeMetricsInterval > 0 {
		sampler := obs.NewRuntimeSampler()
		sampler.SetLogger(zlog.Logger)
		go sampler.Run(ctx, *runtimeMetricsInterval)
	}

	var ledger *persist.Ledger
	if *pgDSN != "" {
		client, err := persist.Connect(*pgDSN, nil)
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		ledger, err = persist.NewLedger(client)
		if err != nil {
			log.Fatalf("ledger migrate failed: %v", err)
		}
	}

	snapshotOut := resolveSnapshotPath(*walDir, *snapshotPath)
	var recoverCfg *state.RecoverConfig
	if *recoverEnabled {
		recoverPath := resolveSnapshotPath(*walDir, *recoverSnapshot)
		recoverCfg = &state.RecoverConfig{
			WALDir:          *walDir,
			SnapshotPath:    recoverPath,
			FilePrefix:      *recoverPrefix,
			DisableChecksum: *recoverNoChecksum,
			MaxPayloadSize:  *recoverMaxPayload,
		}
	}

	runCfg := runConfig{
		walDir:         *walDir,
		tickCount:      *tickCount,
		signalInterval: *signalInterval,
		signalQty:      schema.Quantity(*signalQty),
		snapshotPath:   snapshotOut,
		recoverCfg:     recoverCfg,
		ledger:         ledger,
	}
	if err := runRecord(ctx, runtime, runCfg); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

type runConfig struct {
	walDir         string
	tickCount      int
	signalInterval int
	signalQty      schema.Quantity
	snapshotPath   string
	recoverCfg     *state.RecoverConfig
	ledger         *persist.Ledger
}

// demoStrategy submits a fixed-size buy signal every signalInterval ticks
// per symbol, gated first by the optional risk engine and then by the
// portfolio manager's own pre-trade checks.
type demoStrategy struct {
	book     *portfolio.Manager
	riskGate *risk.Engine
	interval int
	qty      schema.Quantity
	ticks    map[schema.SymbolID]int
}

func newDemoStrategy(interval int, qty schema.Quantity) *demoStrategy {
	return &demoStrategy{interval: interval, qty: qty, ticks: make(map[schema.SymbolID]int)}
}

func (s *demoStrategy) OnMarket(tick schema.MarketEvent, _ *queue.Queue) {
	if s.riskGate != nil {
		s.riskGate.ObserveMarket(tick.SymbolID, tick.Price)
	}
	if s.interval <= 0 {
		return
	}
	s.ticks[tick.SymbolID]++
	if s.ticks[tick.SymbolID]%s.interval != 0 {
		return
	}

	if s.riskGate != nil {
		if ok, reason := s.riskGate.Evaluate(tick.SymbolID, s.qty, tick.Price, tick.TimestampNanos); !ok {
			log.Printf("signal rejected by risk engine: symbol=%d reason=%s", tick.SymbolID, reason)
			return
		}
	}
	if _, reason := s.book.OnSignal(tick.SymbolID, s.qty, tick.Price, tick.TimestampNanos); reason != schema.RiskReasonNone {
		log.Printf("signal rejected by portfolio manager: symbol=%d reason=%s", tick.SymbolID, reason)
	}
}

func (s *demoStrategy) OnSignal(schema.SignalEvent, *queue.Queue) {}

func runRecord(ctx context.Context, runtime *runtimeConfig, cfg runConfig) error {
	loaded := runtime.Load()
	if loaded.Registry.Len() == 0 {
		return fmt.Errorf("trader: symbol registry is empty")
	}

	positions := state.NewPositionReducer()
	var seq uint64
	var lastEventTs int64
	if cfg.recoverCfg != nil {
		recovered, err := state.RecoverPositions(ctx, *cfg.recoverCfg)
		if err != nil {
			return err
		}
		positions = recovered.Positions
		seq = recovered.LastSeq
		lastEventTs = recovered.LastEventTs
		log.Printf("recovered positions=%d last_seq=%d", positions.Count(), seq)
	}

	walCfg := recorder.DefaultConfig(cfg.walDir)
	writer, err := recorder.NewWriter(walCfg)
	if err != nil {
		return err
	}
	if err := writer.Start(ctx); err != nil {
		return err
	}

	walQueue := bus.NewQueue(1024)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		walQueue.Run(ctx, func(e bus.Event) {
			if err := writer.AppendEvent(e.Header, e.Msg); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		})
	}()

	symbols := make([]schema.SymbolID, 0, loaded.Registry.Len())
	for _, info := range loaded.Registry.Symbols() {
		symbols = append(symbols, info.ID)
	}
	source, err := marketdata.NewSyntheticSource(marketdata.Config{
		Symbols:    symbols,
		StartPrice: 100,
		StepSize:   1,
		BaseQty:    1,
		TickCount:  cfg.tickCount,
	})
	if err != nil {
		return err
	}

	matcher := execution.NewSimMatcher(loaded.Dispatcher.LedgerCapacity)
	matcher.SetLogger(zlog.Logger)
	strategy := newDemoStrategy(cfg.signalInterval, cfg.signalQty)
	dispatcher := engine.New(source, strategy, matcher, nil)
	dispatcher.SetLogger(zlog.Logger)

	book := portfolio.NewManager(loaded.Registry.Len(), loaded.StartCash, loaded.Limits, portfolio.NoFees{}, engine.QueueOrderSink{Queue: dispatcher.Queue()})
	book.SetLogger(zlog.Logger)
	dispatcher.SetBook(book)
	strategy.book = book
	if loaded.Features.EnableRiskEngine {
		strategy.riskGate = risk.NewEngine(loaded.Risk, book)
	}

	metrics := obs.NewMetrics()

	dispatcher.SetRecorder(func(ev schema.Event) {
		seq++
		ts := eventTimestamp(ev)
		if ts > lastEventTs {
			lastEventTs = ts
		}
		header := schema.NewHeader(ev.Kind, 0, seq, ts, time.Now().UTC().UnixNano())
		header.TraceID = metrics.NextTraceID()
		metrics.ObserveEvent(header)

		if ev.Kind == schema.EventKindFill {
			metrics.ObserveFill(ev.Fill)
			positions.ApplyFill(ev.Fill)
			if cfg.ledger != nil {
				if err := cfg.ledger.RecordFill(ev.Fill); err != nil {
					log.Printf("ledger record fill failed: %v", err)
				}
			}
		}

		if !loaded.Features.EnableWAL {
			return
		}
		if err := walQueue.TryPublish(bus.Event{Header: header, Msg: ev}); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	})

	runErr := runDispatcher(ctx, dispatcher)

	if cfg.ledger != nil {
		point := book.ComputeMetrics(lastEventTs)
		if err := cfg.ledger.RecordEquity(point); err != nil {
			log.Printf("ledger record equity failed: %v", err)
		}
	}

	walQueue.Close()
	wg.Wait()

	var appendErr error
	select {
	case appendErr = <-errCh:
	default:
	}

	if err := writer.Close(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if appendErr != nil {
		return appendErr
	}

	if cfg.snapshotPath != "" {
		snapshot := positions.SnapshotWithMeta(seq, lastEventTs)
		if err := state.WriteSnapshot(cfg.snapshotPath, snapshot); err != nil {
			return err
		}
	}

	snap := metrics.Snapshot()
	log.Printf("metrics: events=%v risk_reasons=%v drops=%d closed=%d event_latency=%+v",
		snap.EventCounts, snap.RiskReasonCounts, snap.QueueDrops, snap.QueueClosed, snap.EventLatency)
	log.Printf("run complete: events_handled=%d cash=%d realized_pnl=%d positions=%d",
		dispatcher.EventsHandled(), book.CashBalance(), book.RealizedPnL(), positions.Count())
	return nil
}

// runDispatcher runs the dispatcher loop and recovers the panic its default
// on_error hook raises on a fatal dispatch error, turning it into a regular
// error return so the caller can log it and unwind the run cleanly instead
// of crashing the process mid-WAL-write.
func runDispatcher(ctx context.Context, d *engine.Dispatcher) (err error) {
	defer func() {
		if r := recover(); r == nil {
			return
		} else if e, ok := r.(error); ok {
			err = e
		} else {
			err = fmt.Errorf("engine: fatal dispatch panic: %v", r)
		}
		zlog.Error().Bool("known_fatal_kind", tcerrors.IsFatal(err)).Msg("engine: run aborted")
	}()
	return d.Run(ctx)
}

// eventTimestamp extracts the timestamp carried by whichever payload is
// active for ev.Kind, since Event itself has no top-level timestamp field.
func eventTimestamp(ev schema.Event) int64 {
	switch ev.Kind {
	case schema.EventKindMarket:
		return ev.Market.TimestampNanos
	case schema.EventKindSignal:
		return ev.Signal.TimestampNanos
	case schema.EventKindOrder:
		return ev.Order.TimestampNanos
	case schema.EventKindFill:
		return ev.Fill.TimestampNanos
	case schema.EventKindCancel:
		return ev.Cancel.TimestampNanos
	default:
		return 0
	}
}

func runReplay(ctx context.Context, cfg recorder.PlaybackConfig, snapshotPath string, verifySnapshot bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	positions := state.NewPositionReducer()
	counts := make(map[schema.EventKind]int)
	total := 0

	pb, err := recorder.NewPlayback(cfg)
	if err != nil {
		return err
	}
	pb.SetLogger(zlog.Logger)
	err = pb.RunEvents(ctx, func(header schema.EventHeader, ev schema.Event) error {
		total++
		counts[header.Type]++
		if ev.Kind == schema.EventKindFill {
			positions.ApplyFill(ev.Fill)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if verifySnapshot {
		if snapshotPath == "" {
			return fmt.Errorf("trader: snapshot path is empty")
		}
		expected, err := state.ReadSnapshot(snapshotPath)
		if err != nil {
			return err
		}
		actual := positions.Snapshot()
		if err := state.CompareSnapshots(expected, actual); err != nil {
			return err
		}
		log.Printf("snapshot verified: positions=%d", len(actual.Positions))
	}
	log.Printf("replay completed: total=%d counts=%v positions=%d", total, counts, positions.Count())
	return nil
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return defaultLoaded()
	}
	return ops.Load(path)
}

// defaultLoaded builds a small two-symbol demo universe so `go run
// ./cmd/trader` works with no config file.
func defaultLoaded() (ops.Loaded, error) {
	reg := schema.NewSymbolRegistry()
	if _, err := reg.Register("BTC-USD"); err != nil {
		return ops.Loaded{}, err
	}
	if _, err := reg.Register("ETH-USD"); err != nil {
		return ops.Loaded{}, err
	}
	return ops.Loaded{
		Registry: reg,
		Risk: risk.Config{
			OrderRateLimit:       20,
			OrderRateWindow:      time.Second,
			MaxPriceDeviationBps: 500,
		},
		Limits:    portfolio.DefaultRiskLimits(),
		StartCash: schema.Notional(1_000_000),
		Dispatcher: ops.DispatcherConfig{
			QueueCapacity:  256,
			LedgerCapacity: 4096,
		},
		Features: ops.FeatureFlags{
			EnableRiskEngine: true,
			EnableWAL:        true,
		},
	}, nil
}

func resolveSnapshotPath(dir, path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(dir, "positions.json")
}

func watchConfig(ctx context.Context, path string, interval time.Duration, update func(ops.Loaded)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				log.Printf("config stat failed: %v", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			loaded, err := ops.Load(path)
			if err != nil {
				log.Printf("config reload failed: %v", err)
				continue
			}
			update(loaded)
			lastMod = info.ModTime()
			log.Printf("config reloaded: %s", path)
		}
	}
}
