package exchange

import (
	"math"

	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// FillPolicy is the shared contract of the two exchange variants. It is
// assigned once at Simulator construction and invoked from the one
// matching loop, so the fill rule is a static two-entry dispatch rather
// than a switch re-evaluated on every event.
type FillPolicy interface {
	// TakerFill executes an order that crosses the book on arrival
	// (conditions 1 and the taker-walk clause), returning the filled
	// quantity and its volume-weighted average price.
	TakerFill(sim *Simulator, o *types.Order) (filledQty, avgPx float64)
	// RestingFill executes the front-of-queue clause (condition 3) when a
	// trade occurs at a resting order's own price.
	RestingFill(sim *Simulator, o *types.Order, tradeQty float64) (filledQty float64)
}

// NoPartialFillExchange fills a front-of-queue order completely once any
// trade touches its price, and fills a crossing taker order completely at
// the best opposite price regardless of displayed size.
type NoPartialFillExchange struct{}

func (NoPartialFillExchange) TakerFill(sim *Simulator, o *types.Order) (filledQty, avgPx float64) {
	best, ok := sim.bestOpposite(o.Side)
	if !ok {
		return 0, 0
	}
	return o.LeftoverQty, float64(best) * sim.TickSize
}

func (NoPartialFillExchange) RestingFill(sim *Simulator, o *types.Order, tradeQty float64) (filledQty float64) {
	if tradeQty <= 0 {
		return 0
	}
	return o.LeftoverQty
}

// PartialFillExchange fills a front-of-queue order only up to the trade
// quantity, preserving its queue position for the remainder, and walks a
// crossing taker order level by level without mutating the replayed book.
type PartialFillExchange struct{}

// maxWalkLevels bounds the price-by-price taker walk so a thin or empty
// book can never spin the matching loop indefinitely.
const maxWalkLevels = 10_000

func (PartialFillExchange) TakerFill(sim *Simulator, o *types.Order) (filledQty, avgPx float64) {
	remaining := o.LeftoverQty
	var notional float64
	tick, ok := sim.bestOpposite(o.Side)
	step := int64(1)
	if o.Side == types.Sell {
		step = -1
	}
	for steps := 0; ok && remaining > 0 && steps < maxWalkLevels; steps++ {
		levelQty := sim.Depth.QtyAtTick(o.Side.Opposite(), tick)
		if levelQty > 0 {
			take := math.Min(levelQty, remaining)
			notional += take * float64(tick) * sim.TickSize
			remaining -= take
		}
		tick += step
	}
	filledQty = o.LeftoverQty - remaining
	if filledQty <= 0 {
		return 0, 0
	}
	return filledQty, notional / filledQty
}

func (PartialFillExchange) RestingFill(sim *Simulator, o *types.Order, tradeQty float64) (filledQty float64) {
	return math.Min(tradeQty, o.LeftoverQty)
}
