package statsrecorder_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/backtest"
	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/exchange"
	"github.com/abdoElHodaky/hftbacktest/internal/latency"
	"github.com/abdoElHodaky/hftbacktest/internal/multiasset"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/statsrecorder"
	"github.com/abdoElHodaky/hftbacktest/internal/tape"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func newRuntime(t *testing.T, clock *backtest.Clock, balance float64) *backtest.Runtime {
	t.Helper()
	roi := depth.ROI{Lo: 9000, Hi: 11000}
	exchDepth := depth.New(0.01, 0.001, roi)
	localDepth := depth.New(0.01, 0.001, roi)
	qm := queue.NewRiskAverseQueueModel()
	sim := exchange.New(exchDepth, nil, qm, exchange.NoPartialFillExchange{}, &types.AssetState{TickSize: 0.01, LotSize: 0.001})
	lat := latency.NewConstantLatency(1_000_000, 1_000_000)
	tp, err := tape.New(nil)
	require.NoError(t, err)
	return backtest.New(clock, tp, sim, localDepth, lat, &types.AssetState{TickSize: 0.01, LotSize: 0.001, Balance: balance}, 5_000_000)
}

func TestRecorderCollectEmitsPerAssetGauges(t *testing.T) {
	book := multiasset.NewBook(0)
	book.Add("BTCUSDT", newRuntime(t, book.Clock, 100))
	book.Add("ETHUSDT", newRuntime(t, book.Clock, 200))

	rec := statsrecorder.New(book, func(idx int) string {
		if idx == 0 {
			return "BTCUSDT"
		}
		return "ETHUSDT"
	})

	require.NoError(t, prometheus.Register(rec))
	defer prometheus.Unregister(rec)

	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var balanceFamily *dto.MetricFamily
	for _, fam := range metricFamilies {
		if fam.GetName() == "hftbacktest_balance" {
			balanceFamily = fam
		}
	}
	require.NotNil(t, balanceFamily)
	require.Len(t, balanceFamily.Metric, 2)
}

func TestRecorderDefaultsToNumericLabels(t *testing.T) {
	book := multiasset.NewBook(0)
	book.Add("only", newRuntime(t, book.Clock, 0))

	rec := statsrecorder.New(book, nil)
	ch := make(chan prometheus.Metric, 16)
	rec.Collect(ch)
	close(ch)

	var count int
	for m := range ch {
		var out dto.Metric
		require.NoError(t, m.Write(&out))
		require.Equal(t, "0", out.GetLabel()[0].GetValue())
		count++
	}
	require.Equal(t, 6, count)
}
