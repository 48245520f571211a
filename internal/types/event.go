// Package types holds the wire-level and in-memory vocabulary shared across
// the tape, depth, latency, queue, exchange and backtest packages: events,
// orders, sides, time-in-force, and per-asset accounting state.
package types

import "fmt"

// EventFlags is a bitset tagging an Event row with its kind and the side(s)
// of the book/stream it applies to.
type EventFlags uint64

const (
	BuyEvent EventFlags = 1 << iota
	SellEvent
	DepthEvent
	TradeEvent
	DepthSnapshotEvent
	DepthClearEvent
	DepthSnapshotBeginEvent
	DepthSnapshotEndEvent
	AddOrderEvent
	ModifyOrderEvent
	CancelOrderEvent
	FillOrderEvent
	ExchEvent
	LocalEvent
	UserDefinedEvent
)

// userTagShift places a caller-assigned tag (>=100 per the data contract)
// in the upper 32 bits of a user-defined event's flags, leaving the low
// bits free for the EXCH_EVENT/LOCAL_EVENT/UserDefinedEvent markers.
const userTagShift = 32

// WithUserTag builds the flags for a user-defined auxiliary-data row
// (spot prices, funding rates, ...). Delivered local-side only.
func WithUserTag(tag uint32) EventFlags {
	return UserDefinedEvent | LocalEvent | EventFlags(uint64(tag)<<userTagShift)
}

// UserTag extracts the caller-assigned tag from a user-defined event's
// flags, if present.
func (f EventFlags) UserTag() (tag uint32, ok bool) {
	if f&UserDefinedEvent == 0 {
		return 0, false
	}
	return uint32(uint64(f) >> userTagShift), true
}

func (f EventFlags) Has(bit EventFlags) bool { return f&bit != 0 }

func (f EventFlags) IsExch() bool  { return f.Has(ExchEvent) }
func (f EventFlags) IsLocal() bool { return f.Has(LocalEvent) }
func (f EventFlags) IsBuy() bool   { return f.Has(BuyEvent) }
func (f EventFlags) IsSell() bool  { return f.Has(SellEvent) }

func (f EventFlags) String() string {
	return fmt.Sprintf("EventFlags(%#x)", uint64(f))
}

// Event is the tape's atomic record. A single row may carry both
// EXCH_EVENT and LOCAL_EVENT with distinct timestamps.
type Event struct {
	EvFlags EventFlags
	ExchTS  int64 // ns since epoch
	LocalTS int64 // ns since epoch
	Px      float64
	Qty     float64
	OrderID uint64 // L3 only
	Ival    int64  // reserved, used by user-defined events to stash an integer
	Fval    float64
}

// Valid checks the row-level invariants: an event must carry at least
// one of EXCH_EVENT/LOCAL_EVENT, and when both are present local
// delivery cannot precede the exchange action (positive feed latency).
func (e Event) Valid() bool {
	if !e.EvFlags.IsExch() && !e.EvFlags.IsLocal() {
		return false
	}
	if e.EvFlags.IsExch() && e.EvFlags.IsLocal() && e.LocalTS < e.ExchTS {
		return false
	}
	return true
}

// FeedLatencyNs returns local_ts - exch_ts for a row carrying both flags.
func (e Event) FeedLatencyNs() int64 { return e.LocalTS - e.ExchTS }
