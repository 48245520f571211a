package hftbacktest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/backtest"
	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/exchange"
	"github.com/abdoElHodaky/hftbacktest/internal/latency"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/tape"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
	hbt "github.com/abdoElHodaky/hftbacktest/pkg/hftbacktest"
)

func newRuntime(t *testing.T, events []types.Event) *backtest.Runtime {
	t.Helper()
	roi := depth.ROI{Lo: 9000, Hi: 11000}
	exchDepth := depth.New(0.01, 0.001, roi)
	localDepth := depth.New(0.01, 0.001, roi)
	qm := queue.NewRiskAverseQueueModel()
	sim := exchange.New(exchDepth, nil, qm, exchange.NoPartialFillExchange{}, &types.AssetState{TickSize: 0.01, LotSize: 0.001})
	lat := latency.NewConstantLatency(1_000_000, 1_000_000)
	tp, err := tape.New(events)
	require.NoError(t, err)
	return backtest.New(backtest.NewClock(0), tp, sim, localDepth, lat, &types.AssetState{TickSize: 0.01, LotSize: 0.001}, 5_000_000)
}

func TestHbtSubmitBuyOrderRejectsLotMisalignedQty(t *testing.T) {
	h := hbt.New(newRuntime(t, nil))
	code := h.SubmitBuyOrder(0, 1, 100.00, 0.00015, types.GTC, types.Limit, false)
	require.Equal(t, simerrors.OrderRejected, code)
}

func TestHbtDepthViewReflectsLocalBook(t *testing.T) {
	events := []types.Event{
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.BuyEvent, ExchTS: 0, LocalTS: 0, Px: 100.00, Qty: 5},
		{EvFlags: types.ExchEvent | types.LocalEvent | types.DepthEvent | types.SellEvent, ExchTS: 0, LocalTS: 0, Px: 100.01, Qty: 3},
	}
	h := hbt.New(newRuntime(t, events))
	h.Elapse(1)

	view := h.Depth(0)
	require.InDelta(t, 100.00, view.BestBid(), 1e-9)
	require.InDelta(t, 100.01, view.BestAsk(), 1e-9)
}

func TestHbtCurrentTimestampDefaultsToZeroWithNoAssets(t *testing.T) {
	h := hbt.New()
	require.Equal(t, int64(0), h.CurrentTimestamp())
}

func TestHbtCloseIsIdempotent(t *testing.T) {
	h := hbt.New(newRuntime(t, nil))
	require.Equal(t, simerrors.OK, h.Close())
	require.Equal(t, simerrors.OK, h.Close())
}
