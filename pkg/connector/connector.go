// Package connector describes the shape of the live-exchange contract
// the simulation core is built to stand in for. It defines the message
// shapes only: no transport, authentication, or reconnection logic.
package connector

import "github.com/abdoElHodaky/hftbacktest/internal/types"

// OrderRequest is the shape a live connector would translate into an
// exchange-specific wire order, mirrored here so pkg/hftbacktest.Hbt and
// a future real connector share one vocabulary.
type OrderRequest struct {
	Asset       string
	OrderID     uint64
	Side        types.Side
	Price       float64
	Qty         float64
	TimeInForce types.TimeInForce
	OrderType   types.OrderType
}

// OrderResponse is the shape a live connector would produce from an
// exchange's order-ack/fill/reject message.
type OrderResponse struct {
	Asset   string
	OrderID uint64
	Status  types.OrderStatus
	FillPx  float64
	FillQty float64
	ExchTS  int64
}

// FeedMessage is the shape a live connector would produce from a
// market-data update, structurally identical to a replayed tape row so
// the same internal/backtest.Runtime logic drives both.
type FeedMessage struct {
	Asset string
	Event types.Event
}

// Connector is the contract a real implementation would satisfy; this
// module ships no implementation of it, only the shape.
type Connector interface {
	Submit(OrderRequest) error
	Cancel(asset string, orderID uint64) error
	Feed() <-chan FeedMessage
	Responses() <-chan OrderResponse
}
