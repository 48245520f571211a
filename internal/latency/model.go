// Package latency implements the order-latency contract: for a
// submission at local time t, produce an (entry, response) latency pair
// describing when the request reaches the exchange and when its eventual
// response reaches the strategy.
package latency

import "math"

// Timeout is the sentinel latency value that produces a terminal EXPIRED
// response after a fixed delay, distinct from an ordinary negative
// return which drops the request entirely.
const Timeout = int64(math.MinInt64)

// Model is the latency contract consulted by the local runtime on every
// order submission.
type Model interface {
	// EntryLatency returns the delay from submission at t to exchange
	// arrival. Negative means dropped; Timeout means a fixed-delay
	// EXPIRED response.
	EntryLatency(t int64) int64
	// ResponseLatency returns the delay from an exchange action at t to
	// its local delivery.
	ResponseLatency(t int64) int64
}

// IsDrop reports whether a latency value signals the request should be
// dropped (any negative value other than the Timeout sentinel).
func IsDrop(latencyNs int64) bool {
	return latencyNs < 0 && latencyNs != Timeout
}

// IsTimeout reports whether a latency value is the fixed-delay timeout
// sentinel.
func IsTimeout(latencyNs int64) bool {
	return latencyNs == Timeout
}
