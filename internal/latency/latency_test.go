package latency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantLatency(t *testing.T) {
	m := NewConstantLatency(1_000_000, 2_000_000)
	assert.Equal(t, int64(1_000_000), m.EntryLatency(0))
	assert.Equal(t, int64(2_000_000), m.ResponseLatency(0))
}

func TestFeedLatencyBackward(t *testing.T) {
	tracker := &FeedTracker{}
	tracker.Observe(500_000)
	m := NewFeedLatency(FeedBackward, tracker, nil, 1.0, 1.0, 100_000, 200_000)
	assert.Equal(t, int64(600_000), m.EntryLatency(0))
	assert.Equal(t, int64(700_000), m.ResponseLatency(0))
}

func TestFeedLatencySymmetricAverages(t *testing.T) {
	tracker := &FeedTracker{}
	tracker.Observe(400_000)
	forward := func() (int64, bool) { return 600_000, true }
	m := NewFeedLatency(FeedSymmetric, tracker, forward, 1.0, 0, 0, 0)
	assert.Equal(t, int64(500_000), m.EntryLatency(0))
}

func TestIntpOrderLatencyInterpolates(t *testing.T) {
	table := []LatencyRow{
		{ReqTS: 0, ExchTS: 1_000_000, RespTS: 3_000_000},
		{ReqTS: 10_000_000, ExchTS: 11_000_000, RespTS: 14_000_000},
	}
	m := NewIntpOrderLatency(table)

	// Midpoint submission interpolates halfway between the two rows.
	entry := m.EntryLatency(5_000_000)
	resp := m.ResponseLatency(5_000_000)
	assert.Equal(t, int64(1_000_000), entry) // interp exch_ts=6_000_000 - t=5_000_000
	assert.Equal(t, int64(2_500_000), resp)  // interp resp_ts=8_500_000 - interp exch_ts=6_000_000
}

func TestIntpOrderLatencyEmptyTableTimesOut(t *testing.T) {
	m := NewIntpOrderLatency(nil)
	assert.True(t, IsTimeout(m.EntryLatency(0)))
}
