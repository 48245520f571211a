// Package queue implements the queue-position model: tracking how far a
// resting limit order sits from the head of its price level's FIFO
// queue, and deciding when that position entitles it to a fill.
//
// The three variants share one QueueModel struct selected once at
// construction and dispatched by a Variant tag, rather than through a
// per-call interface vtable.
package queue

import (
	"math"

	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// Variant selects the queue-position algorithm a QueueModel applies.
type Variant uint8

const (
	RiskAverse Variant = iota
	Prob
	L3
)

// RiskAversePos is the queue position tracked by RiskAverseQueueModel: the
// quantity still ahead of the order at its price, which only decreases on
// trades at that price ("cancellations happen strictly behind").
type RiskAversePos struct {
	Front float64
}

func (*RiskAversePos) queuePos() {}

// ProbPos is the queue position tracked by ProbQueueModel: an estimated
// split of the level's resting quantity into the portion ahead of the
// order and the portion behind it ("(front_qty, behind_qty)").
type ProbPos struct {
	Front  float64
	Behind float64
}

func (*ProbPos) queuePos() {}

// L3Pos marks an order as tracked exactly by an depth.L3Book; it carries
// no state of its own, the book is the source of truth.
type L3Pos struct{}

func (*L3Pos) queuePos() {}

// QueueModel is the single queue-model type for all three variants.
// Construct with NewRiskAverseQueueModel, NewProbQueueModel or
// NewL3QueueModel.
type QueueModel struct {
	Variant Variant
	ProbFn  ProbFunc
	Book    *depth.L3Book
}

// NewRiskAverseQueueModel builds the conservative variant: position only
// advances on trades at the order's own price.
func NewRiskAverseQueueModel() *QueueModel {
	return &QueueModel{Variant: RiskAverse}
}

// NewProbQueueModel builds the probabilistic variant parameterized by fn,
// which must satisfy f(0)=0, f(1)=1, monotone.
func NewProbQueueModel(fn ProbFunc) *QueueModel {
	return &QueueModel{Variant: Prob, ProbFn: fn}
}

// NewL3QueueModel builds the exact variant backed by a Market-By-Order
// book; queue position is implicit in the order's FIFO slot.
func NewL3QueueModel(book *depth.L3Book) *QueueModel {
	return &QueueModel{Variant: L3, Book: book}
}

// OnNew assigns order's initial queue position from the level's resting
// quantity ahead of it at admission time ("on_new").
func (m *QueueModel) OnNew(order *types.Order, levelQtyAhead float64) {
	switch m.Variant {
	case RiskAverse:
		order.QueuePos = &RiskAversePos{Front: levelQtyAhead}
	case Prob:
		order.QueuePos = &ProbPos{Front: levelQtyAhead, Behind: order.LeftoverQty}
	case L3:
		order.QueuePos = &L3Pos{}
	}
}

// OnTrade advances order's position by tradeQty when the book trades at
// its price ("on_trade").
func (m *QueueModel) OnTrade(order *types.Order, tradeQty float64) {
	switch m.Variant {
	case RiskAverse:
		p := order.QueuePos.(*RiskAversePos)
		p.Front = math.Max(0, p.Front-tradeQty)
	case Prob:
		p := order.QueuePos.(*ProbPos)
		p.Front = math.Max(0, p.Front-tradeQty)
	case L3:
		// position is implicit in the book's FIFO list; nothing to track.
	}
}

// OnDepthChange updates order's position when the level's aggregated
// quantity changes from prevQty to newQty by cancellation or replacement,
// not by a trade ("on_depth_change").
func (m *QueueModel) OnDepthChange(order *types.Order, prevQty, newQty float64) {
	delta := prevQty - newQty
	if delta <= 0 {
		return
	}
	switch m.Variant {
	case RiskAverse:
		// cancellations happen strictly behind the order; front_qty is
		// unaffected.
	case Prob:
		p := order.QueuePos.(*ProbPos)
		total := p.Front + p.Behind
		if total <= 0 {
			return
		}
		x := p.Front / total
		frontShare := m.ProbFn(x)
		p.Front = math.Max(0, p.Front-delta*frontShare)
		p.Behind = math.Max(0, p.Behind-delta*(1-frontShare))
	case L3:
	}
}

// Ready reports whether order is at the head of its queue, split from
// the actual fill-quantity decision so the exchange's FillPolicy
// (no-partial vs partial) stays the single place that decides how much
// of a trade an order claims.
func (m *QueueModel) Ready(order *types.Order) bool {
	switch m.Variant {
	case RiskAverse:
		return order.QueuePos.(*RiskAversePos).Front <= 0
	case Prob:
		return order.QueuePos.(*ProbPos).Front <= 0
	case L3:
		return m.Book != nil && m.Book.OrderExists(order.OrderID) && m.Book.QueueAheadQty(order.OrderID) <= 0
	default:
		return false
	}
}

// ConsumeL3 removes qty from order's L3 FIFO slot once the exchange
// simulator has decided qty is the quantity it fills. No-op for the
// RiskAverse/Prob variants, whose position is tracked as scalars on the
// order itself.
func (m *QueueModel) ConsumeL3(order *types.Order, qty float64) {
	if m.Variant != L3 || m.Book == nil || qty <= 0 {
		return
	}
	m.Book.Fill(order.Side, order.PriceTick, qty)
}
