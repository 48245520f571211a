package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func newAsset() *types.AssetState {
	return &types.AssetState{
		TickSize:  0.1,
		LotSize:   0.1,
		AssetType: types.Linear,
		FeeModel:  types.FeeModel{Kind: types.FeePerValue, TakerRate: 0.001, MakerRate: 0},
	}
}

// Scenario 1: immediate taker market buy fills at the best ask.
func TestImmediateTakerMarketBuy(t *testing.T) {
	d := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	d.ApplyDepth(types.Buy, 1000, 1.0)  // bid 100.0 @ 1.0
	d.ApplyDepth(types.Sell, 1001, 1.0) // ask 100.1 @ 1.0

	asset := newAsset()
	sim := New(d, nil, queue.NewRiskAverseQueueModel(), NoPartialFillExchange{}, asset)

	resp := sim.Submit(types.Order{
		OrderID: 1, Side: types.Buy, OrderType: types.Market,
		PriceTick: 1001, Qty: 0.5,
	})

	assert.Equal(t, types.StatusFilled, resp.Order.Status)
	assert.InDelta(t, 0.5, asset.Position, 1e-9)
	assert.InDelta(t, -50.10005, asset.Balance, 1e-9) // -100.1*0.5 - fee(0.001*50.05)
}

// Scenario 2: a GTX order that would cross is rejected outright.
func TestGTXRejectsWhenMarketable(t *testing.T) {
	d := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	d.ApplyDepth(types.Buy, 1000, 1.0)
	d.ApplyDepth(types.Sell, 1001, 1.0)

	asset := newAsset()
	sim := New(d, nil, queue.NewRiskAverseQueueModel(), NoPartialFillExchange{}, asset)

	resp := sim.Submit(types.Order{
		OrderID: 1, Side: types.Buy, OrderType: types.Limit, TimeInForce: types.GTX,
		PriceTick: 1001, Qty: 1.0,
	})

	assert.Equal(t, types.StatusRejected, resp.Order.Status)
	assert.Zero(t, asset.Position)
	assert.Zero(t, asset.Balance)
}

// Scenario 3: a front-of-queue sell fills completely under
// NoPartialFillExchange once any trade touches its price.
func TestFrontOfQueueFillNoPartial(t *testing.T) {
	d := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	d.ApplyDepth(types.Sell, 1001, 2.0)

	asset := newAsset()
	qm := queue.NewRiskAverseQueueModel()
	sim := New(d, nil, qm, NoPartialFillExchange{}, asset)

	o := &types.Order{OrderID: 7, Side: types.Sell, PriceTick: 1001, Qty: 0.3, LeftoverQty: 0.3, Status: types.StatusOpen}
	qm.OnNew(o, 0) // already at the front
	sim.orders[o.OrderID] = o
	sim.ordersAt[levelKey{types.Sell, 1001}] = []uint64{o.OrderID}

	sim.AdvanceTo(5_000_000)
	responses := sim.OnTradeEvent(types.Buy, 1001, 0.1)

	require.Len(t, responses, 1)
	assert.Equal(t, types.StatusFilled, responses[0].Order.Status)
	assert.InDelta(t, 0.3, responses[0].Order.Qty-responses[0].Order.LeftoverQty, 1e-9)
}

// Scenario 4: the same setup under PartialFillExchange fills
// only the traded quantity, preserving queue position for the remainder.
func TestFrontOfQueueFillPartial(t *testing.T) {
	d := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	d.ApplyDepth(types.Sell, 1001, 2.0)

	asset := newAsset()
	qm := queue.NewRiskAverseQueueModel()
	sim := New(d, nil, qm, PartialFillExchange{}, asset)

	o := &types.Order{OrderID: 7, Side: types.Sell, PriceTick: 1001, Qty: 0.3, LeftoverQty: 0.3, Status: types.StatusOpen}
	qm.OnNew(o, 0)
	sim.orders[o.OrderID] = o
	sim.ordersAt[levelKey{types.Sell, 1001}] = []uint64{o.OrderID}

	responses := sim.OnTradeEvent(types.Buy, 1001, 0.1)

	require.Len(t, responses, 1)
	assert.Equal(t, types.StatusPartiallyFilled, responses[0].Order.Status)
	assert.InDelta(t, 0.2, o.LeftoverQty, 1e-9)
}

func TestCancelUnrestsOrder(t *testing.T) {
	d := depth.New(0.1, 1.0, depth.ROI{Lo: 900, Hi: 1100})
	asset := newAsset()
	sim := New(d, nil, queue.NewRiskAverseQueueModel(), NoPartialFillExchange{}, asset)

	resp := sim.Submit(types.Order{OrderID: 1, Side: types.Buy, PriceTick: 999, Qty: 1.0})
	assert.Equal(t, types.StatusOpen, resp.Order.Status)

	cancelResp := sim.Cancel(1)
	assert.Equal(t, types.StatusCanceled, cancelResp.Order.Status)
	_, exists := sim.Order(1)
	assert.False(t, exists)
}
