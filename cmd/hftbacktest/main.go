// Command hftbacktest runs a backtest configuration end to end and
// prints each asset's final state values, the way a CLI wrapper around
// the core would drive it for an offline run.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/hftbacktest/internal/config"
	"github.com/abdoElHodaky/hftbacktest/internal/multiasset"
	"github.com/abdoElHodaky/hftbacktest/internal/obslog"
	"github.com/abdoElHodaky/hftbacktest/internal/perf"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/wiring"
)

func main() {
	configPath := flag.String("config", "", "path to backtest.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger, err := obslog.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	if err := run(cfg, logger); err != nil {
		logger.Error("backtest run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.BacktestConfig, logger *zap.Logger) error {
	book := multiasset.NewBook(0)
	profiler := perf.New(logger)
	symbols := make([]string, 0, len(cfg.Assets))

	for _, ac := range cfg.Assets {
		rt, err := wiring.BuildAsset(book.Clock, ac)
		if err != nil {
			return err
		}
		book.Add(ac.Symbol, rt)
		symbols = append(symbols, ac.Symbol)
		logger.Info("asset registered", zap.String("symbol", ac.Symbol), zap.String("book_mode", string(ac.BookMode)))
	}

	for {
		done := true
		for i, rt := range book.Runtimes() {
			start := time.Now()
			code := rt.Elapse(1_000_000_000)
			profiler.TrackReplayStep(symbols[i], start)
			if code != simerrors.EndOfData {
				done = false
			}
		}
		if done {
			break
		}
	}

	for i, rt := range book.Runtimes() {
		s := rt.StateValues()
		logger.Info("final state",
			zap.Int("asset", i),
			zap.Float64("position", s.Position),
			zap.Float64("balance", s.Balance),
			zap.Float64("fee", s.Fee),
			zap.Int64("trade_num", s.TradeNum),
		)
		if min, max, mean, p95, p99, ok := profiler.StepStats(symbols[i]); ok {
			logger.Info("replay step wall-clock stats",
				zap.String("symbol", symbols[i]),
				zap.Int64("min_ns", min), zap.Int64("max_ns", max),
				zap.Int64("mean_ns", mean), zap.Int64("p95_ns", p95), zap.Int64("p99_ns", p99),
			)
		}
	}
	return nil
}
