// Package tape implements the event tape: a pull interface over a
// chronologically ordered event array with two independent logical
// cursors, one over EXCH_EVENT rows ordered by exch_ts, one over
// LOCAL_EVENT rows ordered by local_ts.
package tape

import (
	"github.com/abdoElHodaky/hftbacktest/internal/simerrors"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

// Tape is a pull-style iterator over a physical event array. The core
// trusts a pre-processing pass to have produced a single array consistent
// with both orderings and never re-sorts at runtime.
type Tape struct {
	events   []types.Event
	exchPos  int
	localPos int
}

// New validates events against the row-level and ordering invariants and
// wraps them in a Tape. Returns a DATA_INVALID error on any violation; a
// LOCAL_EVENT with local_ts < exch_ts is rejected outright rather than
// clamped.
func New(events []types.Event) (*Tape, error) {
	if err := Validate(events); err != nil {
		return nil, err
	}
	return &Tape{events: events}, nil
}

// Validate checks the dual-cursor monotonicity invariants without
// constructing a Tape.
func Validate(events []types.Event) error {
	var lastExch, lastLocal int64
	haveExch, haveLocal := false, false

	for i, e := range events {
		if !e.Valid() {
			return simerrors.Newf(simerrors.DataInvalid,
				"event %d invalid: neither EXCH_EVENT nor LOCAL_EVENT set, or local_ts < exch_ts", i)
		}
		if e.EvFlags.IsExch() {
			if haveExch && e.ExchTS < lastExch {
				return simerrors.Newf(simerrors.DataInvalid,
					"event %d: exch_ts %d decreases from %d", i, e.ExchTS, lastExch)
			}
			lastExch, haveExch = e.ExchTS, true
		}
		if e.EvFlags.IsLocal() {
			if haveLocal && e.LocalTS < lastLocal {
				return simerrors.Newf(simerrors.DataInvalid,
					"event %d: local_ts %d decreases from %d", i, e.LocalTS, lastLocal)
			}
			lastLocal, haveLocal = e.LocalTS, true
		}
	}
	return nil
}

// Append concatenates a second chronologically later event block. When
// snapshotBoundary is set, a synthetic DEPTH_CLEAR_EVENT is emitted ahead
// of the new block on both the exchange and local streams.
func (t *Tape) Append(events []types.Event, snapshotBoundary bool) error {
	if err := Validate(events); err != nil {
		return err
	}
	if snapshotBoundary {
		var ts int64
		if len(events) > 0 {
			ts = events[0].ExchTS
			if events[0].LocalTS != 0 {
				ts = events[0].LocalTS
			}
		}
		t.events = append(t.events, types.Event{
			EvFlags: types.DepthClearEvent | types.ExchEvent | types.LocalEvent,
			ExchTS:  ts,
			LocalTS: ts,
		})
	}
	t.events = append(t.events, events...)
	return nil
}

// PeekExch returns the next row the exchange-side cursor has not yet
// consumed, without advancing it.
func (t *Tape) PeekExch() (types.Event, bool) {
	for t.exchPos < len(t.events) {
		if t.events[t.exchPos].EvFlags.IsExch() {
			return t.events[t.exchPos], true
		}
		t.exchPos++
	}
	return types.Event{}, false
}

// AdvanceExch consumes the row last returned by PeekExch.
func (t *Tape) AdvanceExch() {
	if _, ok := t.PeekExch(); ok {
		t.exchPos++
	}
}

// PeekLocal returns the next row the local-side cursor has not yet
// consumed, without advancing it.
func (t *Tape) PeekLocal() (types.Event, bool) {
	for t.localPos < len(t.events) {
		if t.events[t.localPos].EvFlags.IsLocal() {
			return t.events[t.localPos], true
		}
		t.localPos++
	}
	return types.Event{}, false
}

// AdvanceLocal consumes the row last returned by PeekLocal.
func (t *Tape) AdvanceLocal() {
	if _, ok := t.PeekLocal(); ok {
		t.localPos++
	}
}

// ExhaustedExch reports whether the exchange-side cursor has reached the
// end of the tape.
func (t *Tape) ExhaustedExch() bool {
	_, ok := t.PeekExch()
	return !ok
}

// ExhaustedLocal reports whether the local-side cursor has reached the end
// of the tape.
func (t *Tape) ExhaustedLocal() bool {
	_, ok := t.PeekLocal()
	return !ok
}

// Len returns the number of physical rows currently held.
func (t *Tape) Len() int { return len(t.events) }
