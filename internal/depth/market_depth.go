// Package depth implements the L2 Market-By-Price book as two
// representations: a hashed map (sparse, any range) mirrored into a
// dense array within a configured Region-Of-Interest for O(1)
// best-price scans.
package depth

import (
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// ROI is the tick range [Lo, Hi] the dense array covers.
type ROI struct {
	Lo, Hi int64
}

func (r ROI) contains(tick int64) bool { return tick >= r.Lo && tick <= r.Hi }
func (r ROI) index(tick int64) int     { return int(tick - r.Lo) }
func (r ROI) size() int {
	if r.Hi < r.Lo {
		return 0
	}
	return int(r.Hi-r.Lo) + 1
}

const noTick = int64(-1) << 62

// MarketDepth is one side-pair order book for one asset, one view
// (exchange or local — "two views"). Not safe for concurrent use;
// the backtest loop is single-threaded.
type MarketDepth struct {
	tickSize float64
	lotSize  float64
	roi      ROI

	bidLevels map[int64]float64
	askLevels map[int64]float64
	bidROI    []float64
	askROI    []float64

	bestBidTick int64
	bestAskTick int64

	lastTradeTick int64
	lastTradeQty  float64

	snapshotting bool
}

// New constructs an empty MarketDepth for the given tick/lot size and ROI.
func New(tickSize, lotSize float64, roi ROI) *MarketDepth {
	return &MarketDepth{
		tickSize:    tickSize,
		lotSize:     lotSize,
		roi:         roi,
		bidLevels:   make(map[int64]float64),
		askLevels:   make(map[int64]float64),
		bidROI:      make([]float64, roi.size()),
		askROI:      make([]float64, roi.size()),
		bestBidTick: noTick,
		bestAskTick: noTick,
	}
}

func (d *MarketDepth) TickSize() float64 { return d.tickSize }
func (d *MarketDepth) LotSize() float64  { return d.lotSize }

func (d *MarketDepth) levelsFor(side types.Side) map[int64]float64 {
	if side == types.Buy {
		return d.bidLevels
	}
	return d.askLevels
}

func (d *MarketDepth) roiFor(side types.Side) []float64 {
	if side == types.Buy {
		return d.bidROI
	}
	return d.askROI
}

// QtyAtTick returns the resting quantity at tick on side, 0 if empty.
func (d *MarketDepth) QtyAtTick(side types.Side, tick int64) float64 {
	if d.roi.contains(tick) {
		return d.roiFor(side)[d.roi.index(tick)]
	}
	return d.levelsFor(side)[tick]
}

// BestBidTick returns the best bid tick and whether one exists.
func (d *MarketDepth) BestBidTick() (int64, bool) {
	return d.bestBidTick, d.bestBidTick != noTick
}

// BestAskTick returns the best ask tick and whether one exists.
func (d *MarketDepth) BestAskTick() (int64, bool) {
	return d.bestAskTick, d.bestAskTick != noTick
}

// BestBidPx returns the best bid price, or 0 if the book has no bids.
func (d *MarketDepth) BestBidPx() float64 {
	if t, ok := d.BestBidTick(); ok {
		return float64(t) * d.tickSize
	}
	return 0
}

// BestAskPx returns the best ask price, or 0 if the book has no asks.
func (d *MarketDepth) BestAskPx() float64 {
	if t, ok := d.BestAskTick(); ok {
		return float64(t) * d.tickSize
	}
	return 0
}

// ApplyDepth sets the quantity at (side, tick); zero removes the level
//. Returns the previous and new quantity so the caller can
// forward the delta to the queue model's OnDepthChange.
func (d *MarketDepth) ApplyDepth(side types.Side, tick int64, newQty float64) (prevQty, appliedQty float64) {
	prevQty = d.QtyAtTick(side, tick)

	if newQty <= 0 {
		delete(d.levelsFor(side), tick)
		newQty = 0
	} else {
		d.levelsFor(side)[tick] = newQty
	}
	if d.roi.contains(tick) {
		d.roiFor(side)[d.roi.index(tick)] = newQty
	}

	if !d.snapshotting {
		d.updateBestOnChange(side, tick, newQty)
	}
	return prevQty, newQty
}

func (d *MarketDepth) updateBestOnChange(side types.Side, tick int64, qty float64) {
	switch side {
	case types.Buy:
		if qty > 0 {
			if best, ok := d.BestBidTick(); !ok || tick > best {
				d.bestBidTick = tick
			}
			return
		}
		if best, ok := d.BestBidTick(); ok && tick == best {
			d.recomputeBestBid()
		}
	case types.Sell:
		if qty > 0 {
			if best, ok := d.BestAskTick(); !ok || tick < best {
				d.bestAskTick = tick
			}
			return
		}
		if best, ok := d.BestAskTick(); ok && tick == best {
			d.recomputeBestAsk()
		}
	}
}

// recomputeBestBid scans outward (downward) from the last known best,
// using the dense ROI array when possible, falling back to a full scan
// of the sparse map when the search walks outside the ROI.
func (d *MarketDepth) recomputeBestBid() {
	if d.roi.contains(d.bestBidTick) {
		for t := d.bestBidTick - 1; t >= d.roi.Lo; t-- {
			if d.bidROI[d.roi.index(t)] > 0 {
				d.bestBidTick = t
				return
			}
		}
	}
	d.bestBidTick = scanMaxKey(d.bidLevels)
}

func (d *MarketDepth) recomputeBestAsk() {
	if d.roi.contains(d.bestAskTick) {
		for t := d.bestAskTick + 1; t <= d.roi.Hi; t++ {
			if d.askROI[d.roi.index(t)] > 0 {
				d.bestAskTick = t
				return
			}
		}
	}
	d.bestAskTick = scanMinKey(d.askLevels)
}

func scanMaxKey(levels map[int64]float64) int64 {
	best := noTick
	for tick, qty := range levels {
		if qty > 0 && tick > best {
			best = tick
		}
	}
	return best
}

func scanMinKey(levels map[int64]float64) int64 {
	best := int64(1) << 62
	found := false
	for tick, qty := range levels {
		if qty > 0 && tick < best {
			best = tick
			found = true
		}
	}
	if !found {
		return noTick
	}
	return best
}

// Clear wipes one side of the book (used on a depth-clear event or
// snapshot begin). side == nil clears both.
func (d *MarketDepth) Clear(side *types.Side) {
	clearBid := side == nil || *side == types.Buy
	clearAsk := side == nil || *side == types.Sell
	if clearBid {
		d.bidLevels = make(map[int64]float64)
		for i := range d.bidROI {
			d.bidROI[i] = 0
		}
		d.bestBidTick = noTick
	}
	if clearAsk {
		d.askLevels = make(map[int64]float64)
		for i := range d.askROI {
			d.askROI[i] = 0
		}
		d.bestAskTick = noTick
	}
}

// BeginSnapshot clears the given side(s) and suspends incremental
// best-pointer maintenance until EndSnapshot, so snapshot application is
// atomic from the caller's perspective.
func (d *MarketDepth) BeginSnapshot(side *types.Side) {
	d.Clear(side)
	d.snapshotting = true
}

// EndSnapshot recomputes best pointers from scratch and resumes
// incremental maintenance.
func (d *MarketDepth) EndSnapshot() {
	d.bestBidTick = scanMaxKey(d.bidLevels)
	d.bestAskTick = scanMinKey(d.askLevels)
	d.snapshotting = false
}

// RecordTrade stores the most recent trade price/qty for observability
// ("apply_trade ... no book mutation"); the queue-model and
// matcher notifications themselves are the exchange simulator's job.
func (d *MarketDepth) RecordTrade(tick int64, qty float64) {
	d.lastTradeTick = tick
	d.lastTradeQty = qty
}

// LastTrade returns the most recently recorded trade tick/qty.
func (d *MarketDepth) LastTrade() (tick int64, qty float64) {
	return d.lastTradeTick, d.lastTradeQty
}
