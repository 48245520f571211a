package latency

import "sort"

// LatencyRow is one recorded (req_ts, exch_ts, resp_ts) observation, the
// in-memory shape of codec.LatencyRow without the on-disk padding field.
type LatencyRow struct {
	ReqTS  int64
	ExchTS int64
	RespTS int64
}

// IntpOrderLatency performs piecewise-linear interpolation over a sorted
// table of observed round trips ("IntpOrderLatency(table)"):
// for a submission at t, bracket t between two recorded req_ts rows and
// interpolate exch_ts and resp_ts; entry latency is the interpolated
// exch_ts minus t, response latency is the interpolated resp_ts minus the
// interpolated exch_ts.
type IntpOrderLatency struct {
	table []LatencyRow
}

// NewIntpOrderLatency wraps table, which must already be sorted by ReqTS
// ("monotone in req_ts").
func NewIntpOrderLatency(table []LatencyRow) *IntpOrderLatency {
	return &IntpOrderLatency{table: table}
}

// interp returns the interpolated (exch_ts, resp_ts) for submission at t.
func (m *IntpOrderLatency) interp(t int64) (exchTS, respTS int64, ok bool) {
	n := len(m.table)
	if n == 0 {
		return 0, 0, false
	}
	if n == 1 || t <= m.table[0].ReqTS {
		return m.table[0].ExchTS, m.table[0].RespTS, true
	}
	if t >= m.table[n-1].ReqTS {
		return m.table[n-1].ExchTS, m.table[n-1].RespTS, true
	}

	// First row with ReqTS > t; bracket is [i-1, i].
	i := sort.Search(n, func(i int) bool { return m.table[i].ReqTS > t })
	lo, hi := m.table[i-1], m.table[i]

	frac := float64(t-lo.ReqTS) / float64(hi.ReqTS-lo.ReqTS)
	exchTS = lo.ExchTS + int64(frac*float64(hi.ExchTS-lo.ExchTS))
	respTS = lo.RespTS + int64(frac*float64(hi.RespTS-lo.RespTS))
	return exchTS, respTS, true
}

func (m *IntpOrderLatency) EntryLatency(t int64) int64 {
	exchTS, _, ok := m.interp(t)
	if !ok {
		return Timeout
	}
	return exchTS - t
}

func (m *IntpOrderLatency) ResponseLatency(t int64) int64 {
	exchTS, respTS, ok := m.interp(t)
	if !ok {
		return Timeout
	}
	return respTS - exchTS
}
