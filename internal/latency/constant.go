package latency

// ConstantLatency is the simplest Model variant: fixed entry and
// response delays regardless of time, side or order kind.
type ConstantLatency struct {
	EntryNs    int64
	ResponseNs int64
}

func NewConstantLatency(entryNs, responseNs int64) *ConstantLatency {
	return &ConstantLatency{EntryNs: entryNs, ResponseNs: responseNs}
}

func (c *ConstantLatency) EntryLatency(_ int64) int64    { return c.EntryNs }
func (c *ConstantLatency) ResponseLatency(_ int64) int64 { return c.ResponseNs }
