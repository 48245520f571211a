// Package exchange implements the exchange-side matching simulator: it
// drives the exchange view of the book from the tape and matches the
// strategy's own resting orders against it.
package exchange

import (
	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/queue"
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

type levelKey struct {
	side types.Side
	tick int64
}

// Simulator is one asset's exchange-side state: the replayed public
// book, the strategy's resting-order arena, and the queue/fill policy
// that decides when a resting order executes. Not safe for concurrent
// use; the replay loop is single-threaded.
type Simulator struct {
	Depth  *depth.MarketDepth
	L3     *depth.L3Book // nil when running in L2-only mode
	Queue  *queue.QueueModel
	Policy FillPolicy

	TickSize float64
	LotSize  float64
	Asset    *types.AssetState

	orders   map[uint64]*types.Order
	ordersAt map[levelKey][]uint64 // FIFO by submission exch_ts

	curExchTS int64
	respPool  *ResponsePool
}

// New constructs a Simulator for one asset's exchange-side stack.
func New(d *depth.MarketDepth, l3 *depth.L3Book, q *queue.QueueModel, policy FillPolicy, asset *types.AssetState) *Simulator {
	return &Simulator{
		Depth:    d,
		L3:       l3,
		Queue:    q,
		Policy:   policy,
		TickSize: d.TickSize(),
		LotSize:  d.LotSize(),
		Asset:    asset,
		orders:   make(map[uint64]*types.Order),
		ordersAt: make(map[levelKey][]uint64),
		respPool: NewResponsePool(),
	}
}

// ReleaseResponse returns r to the simulator's response pool once the
// caller (internal/backtest) has copied it into a scheduled delivery.
func (s *Simulator) ReleaseResponse(r *Response) {
	s.respPool.Put(r)
}

func (s *Simulator) bestOpposite(side types.Side) (int64, bool) {
	if side == types.Buy {
		return s.Depth.BestAskTick()
	}
	return s.Depth.BestBidTick()
}

func (s *Simulator) crosses(side types.Side, priceTick int64) bool {
	best, ok := s.bestOpposite(side)
	if !ok {
		return false
	}
	if side == types.Buy {
		return priceTick >= best
	}
	return priceTick <= best
}

func (s *Simulator) restingOrderIDs(side types.Side, tick int64) []uint64 {
	return s.ordersAt[levelKey{side, tick}]
}

func (s *Simulator) rest(o *types.Order) {
	key := levelKey{o.Side, o.PriceTick}
	s.ordersAt[key] = append(s.ordersAt[key], o.OrderID)
	s.orders[o.OrderID] = o
	levelQty := s.Depth.QtyAtTick(o.Side, o.PriceTick)
	s.Queue.OnNew(o, levelQty)
}

func (s *Simulator) unrest(o *types.Order) {
	key := levelKey{o.Side, o.PriceTick}
	ids := s.ordersAt[key]
	for i, id := range ids {
		if id == o.OrderID {
			s.ordersAt[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(s.orders, o.OrderID)
}

// AdvanceTo moves the simulator's exchange clock forward; callers invoke
// this before OnDepthEvent/OnTradeEvent for events at the new timestamp.
func (s *Simulator) AdvanceTo(exchTS int64) { s.curExchTS = exchTS }

// OnDepthEvent applies a non-trade book mutation at the exchange clock's
// current timestamp and notifies resting orders at that level of the
// quantity change.
func (s *Simulator) OnDepthEvent(side types.Side, tick int64, newQty float64) {
	prevQty, appliedQty := s.Depth.ApplyDepth(side, tick, newQty)
	if prevQty == appliedQty {
		return
	}
	for _, id := range s.restingOrderIDs(side, tick) {
		s.Queue.OnDepthChange(s.orders[id], prevQty, appliedQty)
	}
}

// OnTradeEvent notifies the queue model and matches resting orders at
// the traded price; it walks resting orders at the affected price only.
// tradeSide is the taker's side (BUY trade lifts the ask, SELL trade hits
// the bid); restingSide is therefore its opposite.
func (s *Simulator) OnTradeEvent(tradeSide types.Side, tick int64, qty float64) []*Response {
	s.Depth.RecordTrade(tick, qty)
	restingSide := tradeSide.Opposite()

	var responses []*Response
	for _, id := range append([]uint64(nil), s.restingOrderIDs(restingSide, tick)...) {
		o := s.orders[id]
		if o == nil || !o.Active() {
			continue
		}
		s.Queue.OnTrade(o, qty)
		if !s.Queue.Ready(o) {
			continue
		}
		filled := s.Policy.RestingFill(s, o, qty)
		if filled <= 0 {
			continue
		}
		s.Queue.ConsumeL3(o, filled)
		s.applyFill(o, float64(tick)*s.TickSize, filled, true)
		stillOpen := o.LeftoverQty
		if stillOpen <= 0 {
			o.Status = types.StatusFilled
			s.unrest(o)
		} else {
			o.Status = types.StatusPartiallyFilled
		}
		responses = append(responses, s.respond(o))
	}
	return responses
}

func (s *Simulator) applyFill(o *types.Order, px, qty float64, maker bool) {
	s.Asset.ApplyFill(o.Side, px, qty, maker)
	o.LeftoverQty -= qty
}

func (s *Simulator) respond(o *types.Order) *Response {
	r := s.respPool.Get()
	r.Order = *o
	r.ExchTS = s.curExchTS
	return r
}

// Submit admits a new order at the simulator's current exchange time,
// applying TIF rules and the configured FillPolicy. The returned
// Response carries the order's resulting status; the caller
// (internal/backtest) schedules its local delivery at ExchTS +
// response_latency.
func (s *Simulator) Submit(o types.Order) *Response {
	o.ExchTS = s.curExchTS
	o.LeftoverQty = o.Qty
	crossed := s.crosses(o.Side, o.PriceTick) || o.OrderType == types.Market

	if o.TimeInForce == types.GTX && crossed {
		o.Status = types.StatusRejected
		return s.respond(&o)
	}
	if o.TimeInForce == types.FOK && crossed {
		filled, _ := s.Policy.TakerFill(s, &o)
		if filled < o.LeftoverQty {
			o.Status = types.StatusRejected
			return s.respond(&o)
		}
	}

	if crossed {
		filled, avgPx := s.Policy.TakerFill(s, &o)
		if filled > 0 {
			s.applyFill(&o, avgPx, filled, false)
		}
		switch {
		case o.LeftoverQty <= 0:
			o.Status = types.StatusFilled
			return s.respond(&o)
		case o.TimeInForce == types.IOC || o.TimeInForce == types.FOK:
			o.Status = types.StatusCanceled
			return s.respond(&o)
		default:
			s.rest(&o)
			o.Status = types.StatusOpen
			return s.respond(&o)
		}
	}

	if o.TimeInForce == types.IOC || o.TimeInForce == types.FOK {
		// Non-marketable IOC/FOK orders have nothing to fill against.
		o.Status = types.StatusCanceled
		return s.respond(&o)
	}

	s.rest(&o)
	o.Status = types.StatusOpen
	o.Maker = true
	return s.respond(&o)
}

// Cancel unrests orderID, if it still exists.
func (s *Simulator) Cancel(orderID uint64) *Response {
	o, ok := s.orders[orderID]
	if !ok {
		rejected := types.Order{Status: types.StatusRejected}
		return s.respond(&rejected)
	}
	s.unrest(o)
	o.Status = types.StatusCanceled
	return s.respond(o)
}

// Modify changes a resting order's price and/or quantity, re-admitting
// it through Submit. Every modification, a pure quantity decrease
// included, loses queue priority: Submit re-seeds the position via OnNew
// as for a new order.
func (s *Simulator) Modify(orderID uint64, newPriceTick int64, newQty float64) *Response {
	o, ok := s.orders[orderID]
	if !ok {
		rejected := types.Order{Status: types.StatusRejected}
		return s.respond(&rejected)
	}
	s.unrest(o)
	o.PriceTick = newPriceTick
	o.Qty = newQty
	return s.Submit(*o)
}

// Order looks up a resting order by id (for Strategy API reads).
func (s *Simulator) Order(orderID uint64) (*types.Order, bool) {
	o, ok := s.orders[orderID]
	return o, ok
}

// Orders returns the orders currently resting at the exchange; filled and
// canceled orders are removed from it as they leave the book.
func (s *Simulator) Orders() map[uint64]*types.Order { return s.orders }

// RejectionCode maps a response's order status to the typed error surface
// consumed by the Strategy API: ORDER_REJECTED when admission
// failed, OK otherwise.
func RejectionCode(r *Response) simerrors.Code {
	if r.Order.Status == types.StatusRejected {
		return simerrors.OrderRejected
	}
	return simerrors.OK
}
