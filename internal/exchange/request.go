package exchange

import "github.com/abdoElHodaky/hftbacktest/internal/types"

// RequestKind distinguishes the three order requests the local side can
// send to the exchange ("order admission").
type RequestKind uint8

const (
	Submit RequestKind = iota
	Modify
	Cancel
)

// Request is one local→exchange order action. internal/backtest leaves
// ArriveTS zero: it keeps each request's exchange arrival time (local
// submission time plus entry latency) beside the request in its own
// pending-request queue.
type Request struct {
	Kind     RequestKind
	Order    types.Order
	NewPx    float64 // Modify only
	NewQty   float64 // Modify only
	ArriveTS int64   // exch_ts this request takes effect at; not set by internal/backtest
}

// Response is one exchange→local message: the order's post-action state
// and the exchange time it was produced. The Simulator leaves DeliveryTS
// zero; internal/backtest computes the local delivery time (ExchTS plus
// response latency) and keeps it beside its copy of the response.
type Response struct {
	Order      types.Order
	ExchTS     int64
	DeliveryTS int64
}
