package depth

import (
	"math"

	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

const nilIdx int32 = -1

// l3Node is one order's slot in the intrusive per-level FIFO linked
// list; the list uses next/prev indices into the same arena rather than
// pointers.
type l3Node struct {
	orderID    uint64
	side       types.Side
	tick       int64
	qty        float64
	prev, next int32
}

type levelKey struct {
	side types.Side
	tick int64
}

// FillPortion is one order's share of an L3 fill walk.
type FillPortion struct {
	OrderID uint64
	Qty     float64
}

// L3Book is the Market-By-Order view: an arena of per-order nodes plus, per
// price level, a head/tail pair into that arena forming the FIFO queue.
// Aggregated level quantities are mirrored into the embedded MarketDepth
// so best-price queries stay O(1).
type L3Book struct {
	depth   *MarketDepth
	nodes   []l3Node
	free    []int32
	byOrder map[uint64]int32
	head    map[levelKey]int32
	tail    map[levelKey]int32
	total   map[levelKey]float64
}

// NewL3Book wraps a MarketDepth with order-level detail.
func NewL3Book(d *MarketDepth) *L3Book {
	return &L3Book{
		depth:   d,
		byOrder: make(map[uint64]int32),
		head:    make(map[levelKey]int32),
		tail:    make(map[levelKey]int32),
		total:   make(map[levelKey]float64),
	}
}

// Depth returns the aggregated MarketDepth view backing this L3 book.
func (b *L3Book) Depth() *MarketDepth { return b.depth }

func (b *L3Book) alloc(orderID uint64, side types.Side, tick int64, qty float64) int32 {
	n := l3Node{orderID: orderID, side: side, tick: tick, qty: qty, prev: nilIdx, next: nilIdx}
	if len(b.free) > 0 {
		idx := b.free[len(b.free)-1]
		b.free = b.free[:len(b.free)-1]
		b.nodes[idx] = n
		return idx
	}
	b.nodes = append(b.nodes, n)
	return int32(len(b.nodes) - 1)
}

func (b *L3Book) releaseNode(idx int32) {
	b.free = append(b.free, idx)
}

func (b *L3Book) linkTail(key levelKey, idx int32) {
	if tail, ok := b.tail[key]; ok {
		b.nodes[tail].next = idx
		b.nodes[idx].prev = tail
		b.tail[key] = idx
	} else {
		b.head[key] = idx
		b.tail[key] = idx
	}
}

func (b *L3Book) unlink(key levelKey, idx int32) {
	n := b.nodes[idx]
	if n.prev != nilIdx {
		b.nodes[n.prev].next = n.next
	} else {
		if n.next != nilIdx {
			b.head[key] = n.next
		} else {
			delete(b.head, key)
		}
	}
	if n.next != nilIdx {
		b.nodes[n.next].prev = n.prev
	} else {
		if n.prev != nilIdx {
			b.tail[key] = n.prev
		} else {
			delete(b.tail, key)
		}
	}
}

func (b *L3Book) setTotal(key levelKey, total float64) {
	if total <= 0 {
		delete(b.total, key)
		total = 0
	} else {
		b.total[key] = total
	}
	b.depth.ApplyDepth(key.side, key.tick, total)
}

// Add appends a new resting order to the tail of its price level's queue
// ("ADD appends").
func (b *L3Book) Add(side types.Side, orderID uint64, tick int64, qty float64) {
	key := levelKey{side, tick}
	idx := b.alloc(orderID, side, tick, qty)
	b.linkTail(key, idx)
	b.byOrder[orderID] = idx
	b.setTotal(key, b.total[key]+qty)
}

// Modify updates price and/or quantity of a resting order. A price change
// or a quantity increase re-links the order to the tail of its (possibly
// new) level; a quantity decrease at the same price preserves queue
// position.
func (b *L3Book) Modify(orderID uint64, newTick int64, newQty float64) {
	idx, ok := b.byOrder[orderID]
	if !ok {
		return
	}
	n := b.nodes[idx]
	oldKey := levelKey{n.side, n.tick}

	if newTick != n.tick || newQty > n.qty {
		b.unlink(oldKey, idx)
		b.setTotal(oldKey, b.total[oldKey]-n.qty)

		n.tick, n.qty = newTick, newQty
		b.nodes[idx] = n
		newKey := levelKey{n.side, newTick}
		b.linkTail(newKey, idx)
		b.setTotal(newKey, b.total[newKey]+newQty)
		return
	}

	delta := n.qty - newQty
	n.qty = newQty
	b.nodes[idx] = n
	b.setTotal(oldKey, b.total[oldKey]-delta)
}

// Cancel unlinks a resting order from its level.
func (b *L3Book) Cancel(orderID uint64) {
	idx, ok := b.byOrder[orderID]
	if !ok {
		return
	}
	n := b.nodes[idx]
	key := levelKey{n.side, n.tick}
	b.unlink(key, idx)
	b.setTotal(key, b.total[key]-n.qty)
	delete(b.byOrder, orderID)
	b.releaseNode(idx)
}

// Fill consumes up to qty from the head of the level's FIFO queue,
// splitting across orders as needed ("FILL consumes the head").
// Fully-consumed orders are unlinked and removed from the order map.
func (b *L3Book) Fill(side types.Side, tick int64, qty float64) []FillPortion {
	key := levelKey{side, tick}
	var fills []FillPortion
	remaining := qty

	idx, ok := b.head[key]
	for ok && remaining > 0 {
		n := &b.nodes[idx]
		take := math.Min(remaining, n.qty)
		fills = append(fills, FillPortion{OrderID: n.orderID, Qty: take})
		n.qty -= take
		remaining -= take
		next := n.next

		if n.qty <= 0 {
			b.unlink(key, idx)
			delete(b.byOrder, n.orderID)
			b.releaseNode(idx)
		}
		idx, ok = next, next != nilIdx
	}

	b.setTotal(key, b.total[key]-(qty-remaining))
	return fills
}

// QueueAheadQty returns the resting quantity ahead of orderID in its
// level's FIFO queue, the L3 queue model's exact queue position.
func (b *L3Book) QueueAheadQty(orderID uint64) float64 {
	idx, ok := b.byOrder[orderID]
	if !ok {
		return 0
	}
	n := b.nodes[idx]
	key := levelKey{n.side, n.tick}

	var ahead float64
	cur, ok := b.head[key]
	for ok && cur != idx {
		ahead += b.nodes[cur].qty
		next := b.nodes[cur].next
		cur, ok = next, next != nilIdx
	}
	return ahead
}

// OrderExists reports whether orderID currently rests in the book.
func (b *L3Book) OrderExists(orderID uint64) bool {
	_, ok := b.byOrder[orderID]
	return ok
}

// LevelQty returns the total quantity queued at (side, tick), 0 if the
// level is empty, for tests and diagnostics.
func (b *L3Book) LevelQty(side types.Side, tick int64) float64 {
	return b.total[levelKey{side, tick}]
}
