// Package perf profiles the replay loop's own wall-clock cost: how long
// this process spends advancing each asset's Runtime, as distinct from
// the simulated latency values the core computes. Built on
// github.com/rcrowley/go-metrics decaying histograms, repointed from
// live strategy/order timings to backtest replay throughput.
package perf

import (
	"sync"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
)

// ReplayStepThresholdNs is the wall-clock budget for one Elapse call
// before Profiler logs a warning.
const ReplayStepThresholdNs = 5_000_000 // 5ms

// Profiler tracks per-asset replay-step wall-clock duration using decaying
// histograms, so a long-running backtest can report throughput without
// retaining every sample.
type Profiler struct {
	mu     sync.RWMutex
	steps  map[string]metrics.Histogram
	logger *zap.Logger
}

// New builds a Profiler that logs threshold breaches through logger.
func New(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{steps: make(map[string]metrics.Histogram), logger: logger}
}

// TrackReplayStep records how long a single Elapse/ElapseBT call on asset
// took, starting at start.
func (p *Profiler) TrackReplayStep(asset string, start time.Time) {
	p.mu.RLock()
	h, ok := p.steps[asset]
	p.mu.RUnlock()
	if !ok {
		p.mu.Lock()
		h, ok = p.steps[asset]
		if !ok {
			h = metrics.NewHistogram(metrics.NewExpDecaySample(1028, 0.015))
			p.steps[asset] = h
		}
		p.mu.Unlock()
	}

	elapsedNs := time.Since(start).Nanoseconds()
	h.Update(elapsedNs)

	if elapsedNs > ReplayStepThresholdNs {
		p.logger.Warn("replay step exceeded wall-clock budget",
			zap.String("asset", asset),
			zap.Int64("elapsed_ns", elapsedNs),
			zap.Int64("threshold_ns", ReplayStepThresholdNs))
	}
}

// StepStats reports min/max/mean/p95/p99 wall-clock nanoseconds spent in
// asset's replay steps so far.
func (p *Profiler) StepStats(asset string) (min, max, mean, p95, p99 int64, ok bool) {
	p.mu.RLock()
	h, exists := p.steps[asset]
	p.mu.RUnlock()
	if !exists {
		return 0, 0, 0, 0, 0, false
	}
	snap := h.Snapshot()
	return snap.Min, snap.Max, int64(snap.Mean), int64(snap.Percentile(0.95)), int64(snap.Percentile(0.99)), true
}
