package multiasset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/backtest"
	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/exchange"
	"github.com/abdoElHodaky/hftbacktest/internal/latency"
	"github.com/abdoElHodaky/hftbacktest/internal/multiasset"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/tape"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func newRuntime(t *testing.T, clock *backtest.Clock) *backtest.Runtime {
	t.Helper()
	roi := depth.ROI{Lo: 9000, Hi: 11000}
	exchDepth := depth.New(0.01, 0.001, roi)
	localDepth := depth.New(0.01, 0.001, roi)
	qm := queue.NewRiskAverseQueueModel()
	sim := exchange.New(exchDepth, nil, qm, exchange.NoPartialFillExchange{}, &types.AssetState{TickSize: 0.01, LotSize: 0.001})
	lat := latency.NewConstantLatency(1_000_000, 1_000_000)
	tp, err := tape.New(nil)
	require.NoError(t, err)
	return backtest.New(clock, tp, sim, localDepth, lat, &types.AssetState{TickSize: 0.01, LotSize: 0.001}, 5_000_000)
}

func TestBookRegistersAssetsUnderSharedClock(t *testing.T) {
	book := multiasset.NewBook(0)
	r1 := newRuntime(t, book.Clock)
	r2 := newRuntime(t, book.Clock)

	idx1 := book.Add("BTCUSDT", r1)
	idx2 := book.Add("ETHUSDT", r2)

	require.Equal(t, 0, idx1)
	require.Equal(t, 1, idx2)
	require.Equal(t, 2, book.Len())
	require.Same(t, r1, book.Runtime(0))
	require.Same(t, r2, book.Runtime(1))

	got, ok := book.RuntimeByName("ETHUSDT")
	require.True(t, ok)
	require.Same(t, r2, got)

	_, ok = book.RuntimeByName("missing")
	require.False(t, ok)
}

func TestBookRuntimesPreservesRegistrationOrder(t *testing.T) {
	book := multiasset.NewBook(0)
	r1 := newRuntime(t, book.Clock)
	r2 := newRuntime(t, book.Clock)
	book.Add("A", r1)
	book.Add("B", r2)

	all := book.Runtimes()
	require.Len(t, all, 2)
	require.Same(t, r1, all[0])
	require.Same(t, r2, all[1])
}
