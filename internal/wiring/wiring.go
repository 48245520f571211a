// Package wiring builds a concrete per-asset backtest stack from an
// internal/config.AssetConfig: the depth/L3 book, queue model, fill
// policy and latency model selected by its variant knobs.
package wiring

import (
	"fmt"

	"github.com/abdoElHodaky/hftbacktest/internal/backtest"
	"github.com/abdoElHodaky/hftbacktest/internal/codec"
	"github.com/abdoElHodaky/hftbacktest/internal/config"
	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/exchange"
	"github.com/abdoElHodaky/hftbacktest/internal/latency"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/tape"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// BuildAsset constructs the full (tape, depth, L3, queue model, exchange
// simulator, latency model, runtime) stack for one asset, registering it
// on clock.
func BuildAsset(clock *backtest.Clock, ac config.AssetConfig) (*backtest.Runtime, error) {
	events, err := loadEvents(ac.DataFiles)
	if err != nil {
		return nil, fmt.Errorf("asset %s: load events: %w", ac.Symbol, err)
	}
	tp, err := tape.New(events)
	if err != nil {
		return nil, fmt.Errorf("asset %s: build tape: %w", ac.Symbol, err)
	}

	roi := depth.ROI{Lo: ac.ROI.LoTick, Hi: ac.ROI.HiTick}
	exchDepth := depth.New(ac.TickSize, ac.LotSize, roi)
	localDepth := depth.New(ac.TickSize, ac.LotSize, roi)

	var l3 *depth.L3Book
	if ac.BookMode == config.L3MBO {
		l3 = depth.NewL3Book(exchDepth)
	}

	qm, err := buildQueueModel(ac.Queue, l3)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", ac.Symbol, err)
	}

	policy, err := buildFillPolicy(ac.ExchangeVariant)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", ac.Symbol, err)
	}

	fee, err := buildFeeModel(ac.Fee)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", ac.Symbol, err)
	}
	assetType := types.Linear
	if ac.AssetType == "inverse" {
		assetType = types.Inverse
	}
	asset := &types.AssetState{
		TickSize: ac.TickSize, LotSize: ac.LotSize,
		AssetType: assetType, FeeModel: fee,
	}

	sim := exchange.New(exchDepth, l3, qm, policy, asset)

	lat, err := buildLatencyModel(ac.Latency)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", ac.Symbol, err)
	}

	return backtest.New(clock, tp, sim, localDepth, lat, asset, ac.Latency.TimeoutNs), nil
}

func loadEvents(files []string) ([]types.Event, error) {
	var events []types.Event
	for _, f := range files {
		rows, err := codec.ReadEventFile(f)
		if err != nil {
			return nil, err
		}
		events = append(events, rows...)
	}
	return events, nil
}

func buildQueueModel(qc config.QueueConfig, l3 *depth.L3Book) (*queue.QueueModel, error) {
	switch qc.Variant {
	case config.QueueRiskAverse, "":
		return queue.NewRiskAverseQueueModel(), nil
	case config.QueueProb:
		fn, err := buildProbFunc(qc)
		if err != nil {
			return nil, err
		}
		return queue.NewProbQueueModel(fn), nil
	case config.QueueL3:
		if l3 == nil {
			return nil, fmt.Errorf("queue variant %q requires book_mode=l3", qc.Variant)
		}
		return queue.NewL3QueueModel(l3), nil
	default:
		return nil, fmt.Errorf("unknown queue variant %q", qc.Variant)
	}
}

func buildProbFunc(qc config.QueueConfig) (queue.ProbFunc, error) {
	if qc.Normalize == 2 || qc.Normalize == 3 {
		return buildNormalizedProbFunc(qc)
	}
	switch qc.ProbFunc {
	case config.ProbIdentity, "":
		return queue.IdentityProbQueueFunc, nil
	case config.ProbSquare:
		return queue.SquareProbQueueFunc, nil
	case config.ProbPower:
		return queue.PowerProbQueueFunc(qc.PowerN), nil
	case config.ProbLog:
		return queue.LogProbQueueFunc, nil
	default:
		return nil, fmt.Errorf("unknown prob_func %q", qc.ProbFunc)
	}
}

// buildNormalizedProbFunc selects one of the "2"/"3" total-size-normalized
// variants, which take the reference queue quantity at construction
// rather than per call, keeping the static-dispatch discipline of the
// rest of the queue package.
func buildNormalizedProbFunc(qc config.QueueConfig) (queue.ProbFunc, error) {
	ref := qc.RefQueueQty
	if qc.Normalize == 2 {
		switch qc.ProbFunc {
		case config.ProbIdentity, "":
			return queue.IdentityProbQueueFunc2(ref), nil
		case config.ProbSquare:
			return queue.SquareProbQueueFunc2(ref), nil
		case config.ProbLog:
			return queue.LogProbQueueFunc2(ref), nil
		default:
			return nil, fmt.Errorf("prob_func %q has no normalize=2 variant", qc.ProbFunc)
		}
	}
	switch qc.ProbFunc {
	case config.ProbIdentity, "":
		return queue.IdentityProbQueueFunc3(ref), nil
	case config.ProbSquare:
		return queue.SquareProbQueueFunc3(ref), nil
	case config.ProbLog:
		return queue.LogProbQueueFunc3(ref), nil
	default:
		return nil, fmt.Errorf("prob_func %q has no normalize=3 variant", qc.ProbFunc)
	}
}

func buildFillPolicy(v config.ExchangeVariant) (exchange.FillPolicy, error) {
	switch v {
	case config.NoPartialFill, "":
		return exchange.NoPartialFillExchange{}, nil
	case config.PartialFill:
		return exchange.PartialFillExchange{}, nil
	default:
		return nil, fmt.Errorf("unknown exchange variant %q", v)
	}
}

func buildFeeModel(fc config.FeeConfig) (types.FeeModel, error) {
	kind := types.FeePerValue
	switch fc.Kind {
	case "", "per_value":
		kind = types.FeePerValue
	case "per_qty":
		kind = types.FeePerQty
	case "per_trade":
		kind = types.FeePerTrade
	default:
		return types.FeeModel{}, fmt.Errorf("unknown fee kind %q", fc.Kind)
	}
	return types.FeeModel{Kind: kind, MakerRate: fc.MakerRate, TakerRate: fc.TakerRate}, nil
}

func buildLatencyModel(lc config.LatencyConfig) (latency.Model, error) {
	switch lc.Variant {
	case config.LatencyConstant, "":
		return latency.NewConstantLatency(lc.EntryLatencyNs, lc.ResponseLatencyNs), nil
	case config.LatencyFeed, config.LatencyFeedFwd, config.LatencyFeedBack:
		dir := latency.FeedSymmetric
		if lc.Variant == config.LatencyFeedFwd {
			dir = latency.FeedForward
		} else if lc.Variant == config.LatencyFeedBack {
			dir = latency.FeedBackward
		}
		tracker := &latency.FeedTracker{}
		return latency.NewFeedLatency(dir, tracker, nil, lc.EntryMul, lc.ResponseMul, lc.EntryBaseNs, lc.ResponseBaseNs), nil
	case config.LatencyInterp:
		table, err := codec.ReadLatencyFile(lc.TableFile)
		if err != nil {
			return nil, fmt.Errorf("load latency table: %w", err)
		}
		rows := make([]latency.LatencyRow, len(table))
		for i, row := range table {
			rows[i] = latency.LatencyRow{ReqTS: row.ReqTS, ExchTS: row.ExchTS, RespTS: row.RespTS}
		}
		return latency.NewIntpOrderLatency(rows), nil
	default:
		return nil, fmt.Errorf("unknown latency variant %q", lc.Variant)
	}
}
