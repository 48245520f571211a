package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/exchange"
	"github.com/abdoElHodaky/hftbacktest/internal/latency"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/tape"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func newTestRuntime(t *testing.T, events []types.Event) *Runtime {
	t.Helper()
	tp, err := tape.New(events)
	require.NoError(t, err)

	exchDepth := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	localDepth := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	asset := &types.AssetState{TickSize: 0.1, LotSize: 1.0, AssetType: types.Linear}
	sim := exchange.New(exchDepth, nil, queue.NewRiskAverseQueueModel(), exchange.NoPartialFillExchange{}, asset)
	lat := latency.NewConstantLatency(1_000_000, 2_000_000)

	return New(NewClock(0), tp, sim, localDepth, lat, asset, 5_000_000)
}

// Scenario 5: ConstantLatency(entry=1ms, response=2ms);
// submitting at t=0 with wait=true returns once current_timestamp is 3ms.
func TestLatencyOrderingWaitReturnsAtResponseDelivery(t *testing.T) {
	r := newTestRuntime(t, nil)
	r.Sim.Depth.ApplyDepth(types.Buy, 999, 1.0)

	orderID, code := r.SubmitOrder(types.Order{
		OrderID: 1, Side: types.Buy, PriceTick: 999, Qty: 1.0,
	}, true)

	assert.Equal(t, simerrors.OK, code)
	assert.Equal(t, int64(3_000_000), r.CurrentTimestamp())

	o, ok := r.Orders()[orderID]
	require.True(t, ok)
	assert.Equal(t, types.StatusOpen, o.Status)
	assert.Equal(t, int64(1_000_000), o.ExchTS)
	assert.Equal(t, int64(3_000_000), o.LocalTS)
}

func TestElapseReportsEndOfDataOnEmptyTape(t *testing.T) {
	r := newTestRuntime(t, nil)
	code := r.Elapse(10_000_000)
	assert.Equal(t, simerrors.EndOfData, code)
}

func TestWaitOrderResponseTimesOutWithoutAdmission(t *testing.T) {
	r := newTestRuntime(t, nil)
	code := r.WaitOrderResponse(999, 500_000)
	assert.Equal(t, simerrors.Timeout, code)
}
