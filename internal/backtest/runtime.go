// Package backtest implements the local runtime: the clock advancement
// algorithm and the Strategy API it drives, for one asset.
// internal/multiasset multiplexes several Runtimes over one shared Clock.
package backtest

import (
	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/exchange"
	"github.com/abdoElHodaky/hftbacktest/internal/latency"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/tape"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

type pendingRequest struct {
	arriveTS int64
	req      exchange.Request
}

type pendingResponse struct {
	deliveryTS int64
	resp       exchange.Response
}

// Runtime drives one asset's tape against its exchange simulator and
// maintains the local-side view the strategy observes. Not safe for
// concurrent use: the replay loop is single-threaded, so it carries no
// lock at all.
type Runtime struct {
	Clock   *Clock
	Tape    *tape.Tape
	Sim     *exchange.Simulator
	Local   *depth.MarketDepth
	Latency latency.Model
	Asset   *types.AssetState

	// TimeoutDelayNs is the fixed delay, from the configured latency
	// model's timeout_ns, at which a request hitting the Timeout
	// sentinel surfaces its synthesized EXPIRED response.
	TimeoutDelayNs int64

	pendingRequests  []pendingRequest
	pendingResponses []pendingResponse

	orders         map[uint64]*types.Order
	deliveredResp  map[uint64]int64 // orderID -> local delivery ts of its last response
	lastTrades []types.Event
	userTags   map[uint32]types.Event
}

// New builds a Runtime for one asset, sharing clock with the rest of the
// multi-asset book. timeoutDelayNs is the fixed delay applied when the
// latency model returns the Timeout sentinel.
func New(clock *Clock, tp *tape.Tape, sim *exchange.Simulator, local *depth.MarketDepth, lat latency.Model, asset *types.AssetState, timeoutDelayNs int64) *Runtime {
	return &Runtime{
		Clock:          clock,
		Tape:           tp,
		Sim:            sim,
		Local:          local,
		Latency:        lat,
		Asset:          asset,
		TimeoutDelayNs: timeoutDelayNs,
		orders:         make(map[uint64]*types.Order),
		deliveredResp:  make(map[uint64]int64),
		userTags:       make(map[uint32]types.Event),
	}
}

// advanceUntil runs the arbitration loop of up to endTS,
// applying at each chosen timestamp: tape→exchange, strategy→exchange
// requests, exchange→local responses, tape→local feed — in that order.
// stop, if non-nil, is consulted after each timestamp and ends the loop
// early when it returns true (used by wait_next_feed/wait_order_response).
func (r *Runtime) advanceUntil(endTS int64, stop func() bool) {
	for {
		ts, ok := r.nextEventTS(endTS)
		if !ok {
			break
		}
		r.Clock.Advance(ts)
		r.applyExchAt(ts)
		r.applyRequestsAt(ts)
		r.applyResponsesAt(ts)
		r.applyLocalFeedAt(ts)
		if stop != nil && stop() {
			return
		}
	}
	r.Clock.Advance(endTS)
}

// nextEventTS picks the smallest of the next exchange-side tape event, the
// next local-side tape event, the next pending request arrival, and the
// next pending response delivery, provided it does not exceed endTS
// ("Advancement algorithm").
func (r *Runtime) nextEventTS(endTS int64) (int64, bool) {
	best := endTS + 1
	found := false

	if ev, ok := r.Tape.PeekExch(); ok && ev.ExchTS <= endTS {
		best, found = ev.ExchTS, true
	}
	if ev, ok := r.Tape.PeekLocal(); ok && ev.LocalTS <= endTS && (!found || ev.LocalTS < best) {
		best, found = ev.LocalTS, true
	}
	for _, pr := range r.pendingRequests {
		if pr.arriveTS <= endTS && (!found || pr.arriveTS < best) {
			best, found = pr.arriveTS, true
		}
	}
	for _, pr := range r.pendingResponses {
		if pr.deliveryTS <= endTS && (!found || pr.deliveryTS < best) {
			best, found = pr.deliveryTS, true
		}
	}
	return best, found
}

func (r *Runtime) applyExchAt(ts int64) {
	r.Sim.AdvanceTo(ts)
	for {
		ev, ok := r.Tape.PeekExch()
		if !ok || ev.ExchTS != ts {
			return
		}
		var responses []*exchange.Response
		switch {
		case ev.EvFlags.Has(types.TradeEvent):
			side := types.Sell
			if ev.EvFlags.IsBuy() {
				side = types.Buy
			}
			responses = r.Sim.OnTradeEvent(side, priceTick(ev, r.Sim.TickSize), ev.Qty)
		case ev.EvFlags.Has(types.DepthEvent):
			side := types.Sell
			if ev.EvFlags.IsBuy() {
				side = types.Buy
			}
			r.Sim.OnDepthEvent(side, priceTick(ev, r.Sim.TickSize), ev.Qty)
		case ev.EvFlags.Has(types.DepthClearEvent):
			r.Sim.Depth.Clear(nil)
		}
		for _, resp := range responses {
			r.scheduleResponse(*resp, ts)
			r.Sim.ReleaseResponse(resp)
		}
		r.Tape.AdvanceExch()
	}
}

func priceTick(ev types.Event, tickSize float64) int64 {
	if tickSize == 0 {
		return 0
	}
	return types.RoundTick(ev.Px, tickSize)
}

func (r *Runtime) applyRequestsAt(ts int64) {
	kept := r.pendingRequests[:0]
	for _, pr := range r.pendingRequests {
		if pr.arriveTS != ts {
			kept = append(kept, pr)
			continue
		}
		r.Sim.AdvanceTo(ts)
		var resp *exchange.Response
		switch pr.req.Kind {
		case exchange.Submit:
			resp = r.Sim.Submit(pr.req.Order)
		case exchange.Modify:
			resp = r.Sim.Modify(pr.req.Order.OrderID, types.RoundTick(pr.req.NewPx, r.Sim.TickSize), pr.req.NewQty)
		case exchange.Cancel:
			resp = r.Sim.Cancel(pr.req.Order.OrderID)
		}
		r.scheduleResponse(*resp, ts)
		r.Sim.ReleaseResponse(resp)
	}
	r.pendingRequests = kept
}

func (r *Runtime) scheduleResponse(resp exchange.Response, ts int64) {
	respLat := r.Latency.ResponseLatency(ts)
	deliveryTS := ts
	if !latency.IsDrop(respLat) {
		deliveryTS = ts + respLat
	}
	r.pendingResponses = append(r.pendingResponses, pendingResponse{deliveryTS: deliveryTS, resp: resp})
}

func (r *Runtime) applyResponsesAt(ts int64) {
	kept := r.pendingResponses[:0]
	for _, pr := range r.pendingResponses {
		if pr.deliveryTS != ts {
			kept = append(kept, pr)
			continue
		}
		o := pr.resp.Order
		o.LocalTS = ts
		r.orders[o.OrderID] = &o
		r.deliveredResp[o.OrderID] = ts
	}
	r.pendingResponses = kept
}

func (r *Runtime) applyLocalFeedAt(ts int64) {
	for {
		ev, ok := r.Tape.PeekLocal()
		if !ok || ev.LocalTS != ts {
			return
		}
		switch {
		case ev.EvFlags.Has(types.UserDefinedEvent):
			if tag, ok := ev.EvFlags.UserTag(); ok {
				r.userTags[tag] = ev
			}
		case ev.EvFlags.Has(types.TradeEvent):
			r.lastTrades = append(r.lastTrades, ev)
			r.Local.RecordTrade(priceTick(ev, r.Local.TickSize()), ev.Qty)
		case ev.EvFlags.Has(types.DepthSnapshotBeginEvent):
			r.Local.BeginSnapshot(nil)
		case ev.EvFlags.Has(types.DepthSnapshotEndEvent):
			r.Local.EndSnapshot()
		case ev.EvFlags.Has(types.DepthClearEvent):
			r.Local.Clear(nil)
		case ev.EvFlags.Has(types.DepthEvent), ev.EvFlags.Has(types.DepthSnapshotEvent):
			side := types.Sell
			if ev.EvFlags.IsBuy() {
				side = types.Buy
			}
			r.Local.ApplyDepth(side, priceTick(ev, r.Local.TickSize()), ev.Qty)
		}
		r.Tape.AdvanceLocal()
	}
}

// Elapse advances the clock by durationNs, driving tape/request/response
// arbitration throughout ("elapse").
func (r *Runtime) Elapse(durationNs int64) simerrors.Code {
	if !r.Clock.Running() {
		return simerrors.Stopped
	}
	end := r.Clock.Now() + durationNs
	r.advanceUntil(end, func() bool { return !r.Clock.Running() })
	if r.Tape.ExhaustedExch() && r.Tape.ExhaustedLocal() && len(r.pendingRequests) == 0 && len(r.pendingResponses) == 0 {
		return simerrors.EndOfData
	}
	return simerrors.OK
}

// ElapseBT advances only backtest time, ignoring any other external
// source ("elapse_bt"); identical to Elapse in this core since
// the tape is the only time source the simulator has.
func (r *Runtime) ElapseBT(durationNs int64) simerrors.Code {
	return r.Elapse(durationNs)
}

// WaitNextFeed advances until the next trade event is applied locally
// (and, if includeOrderResp, until a response is delivered for an order
// that had no delivered response before the call), or until timeoutNs
// elapses. A depth-only update applied locally does not end the wait,
// and a further response for an order that already had one delivered is
// not detected.
func (r *Runtime) WaitNextFeed(includeOrderResp bool, timeoutNs int64) simerrors.Code {
	start := r.Clock.Now()
	end := start + timeoutNs
	feedCount := len(r.lastTrades)
	respCount := len(r.deliveredResp)
	hit := false
	r.advanceUntil(end, func() bool {
		if len(r.lastTrades) != feedCount {
			hit = true
			return true
		}
		if includeOrderResp && len(r.deliveredResp) != respCount {
			hit = true
			return true
		}
		return !r.Clock.Running()
	})
	if !hit {
		return simerrors.Timeout
	}
	return simerrors.OK
}

// WaitOrderResponse advances until a response for orderID is delivered
// locally or timeoutNs elapses ("wait_order_response").
func (r *Runtime) WaitOrderResponse(orderID uint64, timeoutNs int64) simerrors.Code {
	start := r.Clock.Now()
	if ts, ok := r.deliveredResp[orderID]; ok && ts >= start {
		return simerrors.OK
	}
	end := start + timeoutNs
	hit := false
	r.advanceUntil(end, func() bool {
		if ts, ok := r.deliveredResp[orderID]; ok && ts >= start {
			hit = true
			return true
		}
		return !r.Clock.Running()
	})
	if !hit {
		return simerrors.Timeout
	}
	return simerrors.OK
}

// scheduleExpired synthesizes a terminal EXPIRED response for o, delivered
// TimeoutDelayNs after now, bypassing the exchange entirely: the Timeout
// sentinel means the request never reached it.
func (r *Runtime) scheduleExpired(o types.Order, now int64) {
	o.Status = types.StatusExpired
	o.LocalTS = now
	r.pendingResponses = append(r.pendingResponses, pendingResponse{
		deliveryTS: now + r.TimeoutDelayNs,
		resp:       exchange.Response{Order: o, ExchTS: now},
	})
}

// SubmitOrder enters a new order request, to arrive at the exchange after
// the configured entry latency. If wait, the call
// blocks (advances the clock) until its response is delivered.
func (r *Runtime) SubmitOrder(o types.Order, wait bool) (uint64, simerrors.Code) {
	now := r.Clock.Now()
	entryLat := r.Latency.EntryLatency(now)
	if latency.IsDrop(entryLat) {
		return o.OrderID, simerrors.OrderRejected
	}
	o.Status = types.StatusPendingSubmit
	o.LocalTS = now
	r.orders[o.OrderID] = &o

	if latency.IsTimeout(entryLat) {
		r.scheduleExpired(o, now)
		if wait {
			return o.OrderID, r.WaitOrderResponse(o.OrderID, r.TimeoutDelayNs+1)
		}
		return o.OrderID, simerrors.OK
	}

	r.pendingRequests = append(r.pendingRequests, pendingRequest{
		arriveTS: now + entryLat,
		req:      exchange.Request{Kind: exchange.Submit, Order: o},
	})
	if wait {
		return o.OrderID, r.WaitOrderResponse(o.OrderID, entryLat+r.Latency.ResponseLatency(now)+1)
	}
	return o.OrderID, simerrors.OK
}

// ModifyOrder requests a price/quantity change for orderID.
func (r *Runtime) ModifyOrder(orderID uint64, newPx, newQty float64, wait bool) simerrors.Code {
	now := r.Clock.Now()
	entryLat := r.Latency.EntryLatency(now)
	if latency.IsDrop(entryLat) {
		return simerrors.OrderRejected
	}
	if latency.IsTimeout(entryLat) {
		r.scheduleExpired(types.Order{OrderID: orderID}, now)
		if wait {
			return r.WaitOrderResponse(orderID, r.TimeoutDelayNs+1)
		}
		return simerrors.OK
	}
	r.pendingRequests = append(r.pendingRequests, pendingRequest{
		arriveTS: now + entryLat,
		req:      exchange.Request{Kind: exchange.Modify, Order: types.Order{OrderID: orderID}, NewPx: newPx, NewQty: newQty},
	})
	if wait {
		return r.WaitOrderResponse(orderID, entryLat+r.Latency.ResponseLatency(now)+1)
	}
	return simerrors.OK
}

// CancelOrder requests cancellation of orderID.
func (r *Runtime) CancelOrder(orderID uint64, wait bool) simerrors.Code {
	now := r.Clock.Now()
	entryLat := r.Latency.EntryLatency(now)
	if latency.IsDrop(entryLat) {
		return simerrors.OrderRejected
	}
	if latency.IsTimeout(entryLat) {
		r.scheduleExpired(types.Order{OrderID: orderID}, now)
		if wait {
			return r.WaitOrderResponse(orderID, r.TimeoutDelayNs+1)
		}
		return simerrors.OK
	}
	r.pendingRequests = append(r.pendingRequests, pendingRequest{
		arriveTS: now + entryLat,
		req:      exchange.Request{Kind: exchange.Cancel, Order: types.Order{OrderID: orderID}},
	})
	if wait {
		return r.WaitOrderResponse(orderID, entryLat+r.Latency.ResponseLatency(now)+1)
	}
	return simerrors.OK
}

// CurrentTimestamp returns the runtime's virtual clock reading.
func (r *Runtime) CurrentTimestamp() int64 { return r.Clock.Now() }

// Position returns the asset's current position.
func (r *Runtime) Position() float64 { return r.Asset.Position }

// StateValues returns the per-asset accounting block.
func (r *Runtime) StateValues() types.AssetState { return *r.Asset }

// Orders returns the known local-side order view.
func (r *Runtime) Orders() map[uint64]*types.Order { return r.orders }

// LastTrades returns trades observed locally since the last clear.
func (r *Runtime) LastTrades() []types.Event { return r.lastTrades }

// ClearLastTrades drops the recorded trade history.
func (r *Runtime) ClearLastTrades() { r.lastTrades = nil }

// ClearInactiveOrders drops terminal orders from the local view.
func (r *Runtime) ClearInactiveOrders() {
	for id, o := range r.orders {
		if o.Status.Inactive() {
			delete(r.orders, id)
		}
	}
}

// GetUserData returns the most recently delivered user-tagged event
// matching tag.
func (r *Runtime) GetUserData(tag uint32) (types.Event, bool) {
	ev, ok := r.userTags[tag]
	return ev, ok
}

// Close idempotently drains all pending exchange-to-local responses and
// marks the runtime terminal.
func (r *Runtime) Close() simerrors.Code {
	if !r.Clock.Running() {
		return simerrors.OK
	}
	if len(r.pendingResponses) > 0 {
		last := r.pendingResponses[0].deliveryTS
		for _, pr := range r.pendingResponses {
			if pr.deliveryTS > last {
				last = pr.deliveryTS
			}
		}
		r.advanceUntil(last, nil)
	}
	r.Clock.Stop()
	return simerrors.OK
}
