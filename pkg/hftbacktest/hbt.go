// Package hftbacktest is the public strategy-facing façade over
// internal/backtest. It is the import path a live connector or a future
// CPython binding would bind against.
package hftbacktest

import (
	"github.com/abdoElHodaky/hftbacktest/internal/backtest"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// AssetIndex identifies one asset within a multi-asset backtest.
type AssetIndex int

// Hbt is the public strategy API: a thin wrapper forwarding to one or
// more internal/backtest.Runtime instances and returning simerrors.Code
// values, never panicking across the API boundary.
type Hbt struct {
	runtimes []*backtest.Runtime
}

// New wraps the given per-asset runtimes (already sharing one
// backtest.Clock, see internal/multiasset) as the public façade.
func New(runtimes ...*backtest.Runtime) *Hbt {
	return &Hbt{runtimes: runtimes}
}

func (h *Hbt) runtime(asset AssetIndex) *backtest.Runtime {
	return h.runtimes[asset]
}

// CurrentTimestamp returns the shared virtual clock reading.
func (h *Hbt) CurrentTimestamp() int64 {
	if len(h.runtimes) == 0 {
		return 0
	}
	return h.runtimes[0].CurrentTimestamp()
}

// Position returns asset's current position.
func (h *Hbt) Position(asset AssetIndex) float64 { return h.runtime(asset).Position() }

// Depth exposes the read-only depth accessors for asset.
func (h *Hbt) Depth(asset AssetIndex) *DepthView {
	return &DepthView{md: h.runtime(asset).Local}
}

// Orders returns the known local-side order view for asset.
func (h *Hbt) Orders(asset AssetIndex) map[uint64]*types.Order { return h.runtime(asset).Orders() }

// LastTrades returns trades observed locally since the last clear.
func (h *Hbt) LastTrades(asset AssetIndex) []types.Event { return h.runtime(asset).LastTrades() }

// StateValues returns position/balance/fee/trade-counter accounting.
func (h *Hbt) StateValues(asset AssetIndex) types.AssetState { return h.runtime(asset).StateValues() }

// SubmitBuyOrder submits a BUY order for asset.
func (h *Hbt) SubmitBuyOrder(asset AssetIndex, orderID uint64, price, qty float64, tif types.TimeInForce, ot types.OrderType, wait bool) simerrors.Code {
	return h.submit(asset, orderID, types.Buy, price, qty, tif, ot, wait)
}

// SubmitSellOrder submits a SELL order for asset.
func (h *Hbt) SubmitSellOrder(asset AssetIndex, orderID uint64, price, qty float64, tif types.TimeInForce, ot types.OrderType, wait bool) simerrors.Code {
	return h.submit(asset, orderID, types.Sell, price, qty, tif, ot, wait)
}

func (h *Hbt) submit(asset AssetIndex, orderID uint64, side types.Side, price, qty float64, tif types.TimeInForce, ot types.OrderType, wait bool) simerrors.Code {
	r := h.runtime(asset)
	tickSize := r.Sim.TickSize
	if !types.IsLotAligned(qty, r.Sim.LotSize) {
		return simerrors.OrderRejected
	}
	o := types.Order{
		OrderID:   orderID,
		Side:      side,
		PriceTick: types.RoundTick(price, tickSize),
		Qty:       qty,
		TimeInForce: tif,
		OrderType: ot,
	}
	_, code := r.SubmitOrder(o, wait)
	return code
}

// Modify requests a price/quantity change for orderID.
func (h *Hbt) Modify(asset AssetIndex, orderID uint64, price, qty float64, wait bool) simerrors.Code {
	return h.runtime(asset).ModifyOrder(orderID, price, qty, wait)
}

// Cancel requests cancellation of orderID.
func (h *Hbt) Cancel(asset AssetIndex, orderID uint64, wait bool) simerrors.Code {
	return h.runtime(asset).CancelOrder(orderID, wait)
}

// ClearInactiveOrders drops terminal orders from asset's local view.
func (h *Hbt) ClearInactiveOrders(asset AssetIndex) { h.runtime(asset).ClearInactiveOrders() }

// ClearLastTrades drops asset's recorded trade history.
func (h *Hbt) ClearLastTrades(asset AssetIndex) { h.runtime(asset).ClearLastTrades() }

// Elapse advances the shared clock by durationNs across every asset;
// multi-asset stacks share one clock so they all move together.
func (h *Hbt) Elapse(durationNs int64) simerrors.Code {
	var worst simerrors.Code
	end := h.CurrentTimestamp() + durationNs
	for _, r := range h.runtimes {
		if code := r.Elapse(end - r.CurrentTimestamp()); code != simerrors.OK {
			worst = code
		}
	}
	return worst
}

// ElapseBT advances only backtest time.
func (h *Hbt) ElapseBT(asset AssetIndex, durationNs int64) simerrors.Code {
	return h.runtime(asset).ElapseBT(durationNs)
}

// WaitNextFeed advances asset until its next locally applied trade event
// (see backtest.Runtime.WaitNextFeed).
func (h *Hbt) WaitNextFeed(asset AssetIndex, includeOrderResp bool, timeoutNs int64) simerrors.Code {
	return h.runtime(asset).WaitNextFeed(includeOrderResp, timeoutNs)
}

// WaitOrderResponse advances asset until orderID's response is delivered.
func (h *Hbt) WaitOrderResponse(asset AssetIndex, orderID uint64, timeoutNs int64) simerrors.Code {
	return h.runtime(asset).WaitOrderResponse(orderID, timeoutNs)
}

// GetUserData returns the most recent user-tagged auxiliary event for tag.
func (h *Hbt) GetUserData(asset AssetIndex, tag uint32) (types.Event, bool) {
	return h.runtime(asset).GetUserData(tag)
}

// Close idempotently freezes every asset's runtime.
func (h *Hbt) Close() simerrors.Code {
	var worst simerrors.Code
	for _, r := range h.runtimes {
		if code := r.Close(); code != simerrors.OK {
			worst = code
		}
	}
	return worst
}

// DepthView is the read-only depth accessor returned by Hbt.Depth.
type DepthView struct {
	md interface {
		BestBidPx() float64
		BestAskPx() float64
		BestBidTick() (int64, bool)
		BestAskTick() (int64, bool)
		QtyAtTick(types.Side, int64) float64
		TickSize() float64
		LotSize() float64
	}
}

func (d *DepthView) BestBid() float64           { return d.md.BestBidPx() }
func (d *DepthView) BestAsk() float64           { return d.md.BestAskPx() }
func (d *DepthView) BestBidTick() (int64, bool) { return d.md.BestBidTick() }
func (d *DepthView) BestAskTick() (int64, bool) { return d.md.BestAskTick() }
func (d *DepthView) BidQtyAtTick(tick int64) float64 {
	return d.md.QtyAtTick(types.Buy, tick)
}
func (d *DepthView) AskQtyAtTick(tick int64) float64 {
	return d.md.QtyAtTick(types.Sell, tick)
}
func (d *DepthView) TickSize() float64 { return d.md.TickSize() }
func (d *DepthView) LotSize() float64  { return d.md.LotSize() }
