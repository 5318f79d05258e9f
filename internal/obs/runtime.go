package obs

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// RuntimeSampler periodically logs heap and GC stats via a structured
// logger, the way every other long-running component in this module
// reports its state (see execution.Base, portfolio.Manager,
// engine.Dispatcher). It replaces a hand-rolled byte-buffer text printer
// with the zerolog idiom the rest of the codebase already uses.
type RuntimeSampler struct {
	logger     zerolog.Logger
	prev, curr runtime.MemStats
}

// NewRuntimeSampler allocates a sampler. Call SetLogger before Run to
// route samples anywhere other than the discard logger.
func NewRuntimeSampler() *RuntimeSampler {
	return &RuntimeSampler{logger: zerolog.Nop()}
}

// SetLogger installs the logger samples are written to.
func (r *RuntimeSampler) SetLogger(logger zerolog.Logger) {
	r.logger = logger
}

// Sample reads the current runtime.MemStats and rotates it into curr,
// keeping the previous reading in prev for delta computation.
func (r *RuntimeSampler) Sample() {
	r.prev, r.curr = r.curr, r.prev
	runtime.ReadMemStats(&r.curr)
}

// Log emits the current sample as a structured log line.
func (r *RuntimeSampler) Log() {
	gcCount := r.curr.NumGC - r.prev.NumGC
	pauseNs := r.curr.PauseTotalNs - r.prev.PauseTotalNs
	live := int64(r.curr.Mallocs) - int64(r.curr.Frees)

	r.logger.Info().
		Uint64("heap_alloc_bytes", r.curr.HeapAlloc).
		Uint64("heap_inuse_bytes", r.curr.HeapInuse).
		Uint64("heap_objects", r.curr.HeapObjects).
		Uint64("next_gc_bytes", r.curr.NextGC).
		Uint32("gc_count", gcCount).
		Uint64("gc_pause_ns", pauseNs).
		Float64("gc_cpu_fraction", r.curr.GCCPUFraction).
		Int64("live_objects", live).
		Msg("runtime: memory sample")
}

// Run samples and logs at interval until ctx is cancelled.
func (r *RuntimeSampler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sample()
			r.Log()
		}
	}
}
