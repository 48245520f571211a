package wiring

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/backtest"
	"github.com/abdoElHodaky/hftbacktest/internal/codec"
	"github.com/abdoElHodaky/hftbacktest/internal/config"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func writeTempEvents(t *testing.T, events []types.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.bin")
	require.NoError(t, codec.WriteEventFile(path, events))
	return path
}

func baseAssetConfig(t *testing.T, dataFile string) config.AssetConfig {
	return config.AssetConfig{
		Symbol:    "TEST",
		TickSize:  0.01,
		LotSize:   0.001,
		AssetType: "linear",
		Fee:       config.FeeConfig{Kind: "per_value", TakerRate: 0.001, MakerRate: 0},
		ROI:       config.ROI{LoTick: 9000, HiTick: 11000},
		BookMode:  config.L2MBP,
		Queue:     config.QueueConfig{Variant: config.QueueRiskAverse},
		Latency:   config.LatencyConfig{Variant: config.LatencyConstant, EntryLatencyNs: 1_000_000, ResponseLatencyNs: 1_000_000},
		DataFiles: []string{dataFile},
	}
}

func TestBuildAssetL2RiskAverseRuns(t *testing.T) {
	path := writeTempEvents(t, []types.Event{
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.BuyEvent, ExchTS: 0, LocalTS: 0, Px: 100.00, Qty: 5},
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.SellEvent, ExchTS: 0, LocalTS: 0, Px: 100.01, Qty: 5},
	})
	ac := baseAssetConfig(t, path)

	clock := backtest.NewClock(0)
	rt, err := BuildAsset(clock, ac)
	require.NoError(t, err)
	require.NotNil(t, rt)

	code := rt.Elapse(10_000_000)
	require.True(t, code == simerrors.OK || code == simerrors.EndOfData)
}

func TestBuildAssetL3QueueRequiresL3BookMode(t *testing.T) {
	path := writeTempEvents(t, []types.Event{
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.BuyEvent, ExchTS: 0, LocalTS: 0, Px: 100.00, Qty: 5},
	})
	ac := baseAssetConfig(t, path)
	ac.Queue = config.QueueConfig{Variant: config.QueueL3}

	clock := backtest.NewClock(0)
	_, err := BuildAsset(clock, ac)
	require.Error(t, err)
}

func TestBuildAssetL3QueueWithL3BookMode(t *testing.T) {
	path := writeTempEvents(t, []types.Event{
		{EvFlags: types.ExchEvent | types.LocalEvent | types.AddOrderEvent | types.BuyEvent, ExchTS: 0, LocalTS: 0, Px: 100.00, Qty: 5, OrderID: 1},
	})
	ac := baseAssetConfig(t, path)
	ac.BookMode = config.L3MBO
	ac.Queue = config.QueueConfig{Variant: config.QueueL3}

	clock := backtest.NewClock(0)
	rt, err := BuildAsset(clock, ac)
	require.NoError(t, err)
	require.NotNil(t, rt)
}

func TestBuildAssetProbQueueNormalizedVariant(t *testing.T) {
	path := writeTempEvents(t, []types.Event{
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.BuyEvent, ExchTS: 0, LocalTS: 0, Px: 100.00, Qty: 5},
	})
	ac := baseAssetConfig(t, path)
	ac.Queue = config.QueueConfig{Variant: config.QueueProb, ProbFunc: config.ProbSquare, Normalize: 2, RefQueueQty: 10}

	clock := backtest.NewClock(0)
	rt, err := BuildAsset(clock, ac)
	require.NoError(t, err)
	require.NotNil(t, rt)
}

func TestBuildAssetUnknownQueueVariantErrors(t *testing.T) {
	path := writeTempEvents(t, nil)
	ac := baseAssetConfig(t, path)
	ac.Queue = config.QueueConfig{Variant: "bogus"}

	clock := backtest.NewClock(0)
	_, err := BuildAsset(clock, ac)
	require.Error(t, err)
}

func TestBuildAssetUnknownLatencyVariantErrors(t *testing.T) {
	path := writeTempEvents(t, nil)
	ac := baseAssetConfig(t, path)
	ac.Latency = config.LatencyConfig{Variant: "bogus"}

	clock := backtest.NewClock(0)
	_, err := BuildAsset(clock, ac)
	require.Error(t, err)
}
