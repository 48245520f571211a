package latency

// FeedTracker holds the most recent local_ts - exch_ts sample passed to
// Observe, giving FeedLatency models a "most recently observed feed
// latency". internal/backtest does not call Observe, so a tracker built
// by wiring.BuildAsset stays empty and its FeedLatency returns only the
// base latencies.
type FeedTracker struct {
	last    int64
	hasLast bool
}

// Observe records a newly delivered feed event's latency.
func (t *FeedTracker) Observe(feedLatencyNs int64) {
	t.last, t.hasLast = feedLatencyNs, true
}

// Last returns the most recently observed feed latency.
func (t *FeedTracker) Last() (int64, bool) { return t.last, t.hasLast }

// ForwardPeek looks ahead to a feed event not yet delivered, returning its
// local_ts - exch_ts. It is supplied by the caller of NewFeedLatency;
// wiring.BuildAsset passes nil, so no forward sample is available there.
type ForwardPeek func() (int64, bool)

// FeedDirection selects which observed sample a FeedLatency model uses:
// backward/forward variants pick the preceding/succeeding feed event,
// while the plain form averages them.
type FeedDirection uint8

const (
	FeedBackward FeedDirection = iota
	FeedForward
	FeedSymmetric
)

// FeedLatency derives entry/response latency from the tape's own observed
// feed delay, scaled and offset by caller-supplied coefficients.
type FeedLatency struct {
	Direction   FeedDirection
	Tracker     *FeedTracker
	Forward     ForwardPeek
	EntryMul    float64
	ResponseMul float64
	EntryBase   int64
	ResponseBase int64
}

func NewFeedLatency(dir FeedDirection, tracker *FeedTracker, forward ForwardPeek, entryMul, responseMul float64, entryBase, responseBase int64) *FeedLatency {
	return &FeedLatency{
		Direction: dir, Tracker: tracker, Forward: forward,
		EntryMul: entryMul, ResponseMul: responseMul,
		EntryBase: entryBase, ResponseBase: responseBase,
	}
}

func (f *FeedLatency) sample() (int64, bool) {
	var back, fwd int64
	backOK, fwdOK := false, false
	if f.Tracker != nil {
		back, backOK = f.Tracker.Last()
	}
	if f.Forward != nil {
		fwd, fwdOK = f.Forward()
	}

	switch f.Direction {
	case FeedBackward:
		return back, backOK
	case FeedForward:
		return fwd, fwdOK
	default: // FeedSymmetric
		switch {
		case backOK && fwdOK:
			return (back + fwd) / 2, true
		case backOK:
			return back, true
		case fwdOK:
			return fwd, true
		default:
			return 0, false
		}
	}
}

func (f *FeedLatency) EntryLatency(_ int64) int64 {
	s, ok := f.sample()
	if !ok {
		return f.EntryBase
	}
	return f.EntryBase + int64(f.EntryMul*float64(s))
}

func (f *FeedLatency) ResponseLatency(_ int64) int64 {
	s, ok := f.sample()
	if !ok {
		return f.ResponseBase
	}
	return f.ResponseBase + int64(f.ResponseMul*float64(s))
}
