package types

import "fmt"

// Side is the direction of an order or a resting book level.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// TimeInForce is the order's time-in-force instruction (TIF).
type TimeInForce uint8

const (
	GTC TimeInForce = iota // good till canceled
	GTX                    // post-only; rejects if marketable
	IOC                    // immediate or cancel
	FOK                    // fill or kill
)

func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case GTX:
		return "GTX"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "UNKNOWN"
	}
}

// OrderType distinguishes resting limit orders from immediate-execution
// market orders.
type OrderType uint8

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	if t == Market {
		return "MARKET"
	}
	return "LIMIT"
}

// OrderStatus is an order's lifecycle state.
type OrderStatus uint8

const (
	StatusNew OrderStatus = iota
	StatusNone
	StatusPendingSubmit
	StatusPendingCancel
	StatusPendingModify
	StatusOpen
	StatusPartiallyFilled
	StatusFilled
	StatusCanceled
	StatusExpired
	StatusRejected
)

func (s OrderStatus) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusNone:
		return "NONE"
	case StatusPendingSubmit:
		return "PENDING_SUBMIT"
	case StatusPendingCancel:
		return "PENDING_CANCEL"
	case StatusPendingModify:
		return "PENDING_MODIFY"
	case StatusOpen:
		return "OPEN"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCanceled:
		return "CANCELED"
	case StatusExpired:
		return "EXPIRED"
	case StatusRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("OrderStatus(%d)", uint8(s))
	}
}

// Inactive reports whether the order has reached a terminal status and is
// only observable until the strategy clears it.
func (s OrderStatus) Inactive() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusExpired, StatusRejected:
		return true
	default:
		return false
	}
}

// QueuePos is the opaque queue-position value a queue-model variant
// attaches to a resting order. Each variant defines its
// own concrete shape: RiskAverseQueueModel stores a *RiskAversePos,
// ProbQueueModel a *ProbPos, L3QueueModel an *L3Pos.
type QueuePos interface{}

// Order is a single resting or in-flight order, local or exchange side
//. The same struct is used for both: PENDING_* fields apply on
// the local side, OPEN/PARTIALLY_FILLED/... reflect exchange outcomes
// delivered back after response latency.
type Order struct {
	OrderID     uint64
	Side        Side
	PriceTick   int64
	Qty         float64
	LeftoverQty float64
	TimeInForce TimeInForce
	OrderType   OrderType
	Status      OrderStatus
	QueuePos    QueuePos
	Maker       bool
	ExchTS      int64
	LocalTS     int64
}

// Active reports whether the order still has resting size to match.
func (o *Order) Active() bool {
	return !o.Status.Inactive() && o.LeftoverQty > 0
}

// AssetState is the per-asset accounting block: position, cash balance,
// cumulative fees and trade counters. AssetType selects the PnL formula
// applied on each fill.
type AssetState struct {
	TickSize  float64
	LotSize   float64
	AssetType AssetKind
	FeeModel  FeeModel

	Position     float64
	Balance      float64
	Fee          float64
	TradeNum     int64
	TradeQty     float64
	TradeAmount  float64
}

// AssetKind selects the PnL formula for a fill.
type AssetKind uint8

const (
	Linear AssetKind = iota
	Inverse
)

// FeeKind selects how a fee rate is applied to a trade.
type FeeKind uint8

const (
	FeePerValue FeeKind = iota // fee_rate * notional
	FeePerQty                  // fee_rate * qty
	FeePerTrade                // fee_rate, flat
)

// FeeModel is the per-asset fee configuration, separate maker/taker rates.
type FeeModel struct {
	Kind      FeeKind
	MakerRate float64
	TakerRate float64
}

// Notional returns the trade notional value used by FeePerValue and the
// Linear PnL formula.
func Notional(px, qty float64) float64 { return px * qty }

// Fee computes the signed fee charged for a fill of qty at px, given
// whether the order was the maker or taker side. Fees are returned as a
// positive cost to the account (caller subtracts from balance).
func (m FeeModel) Fee(px, qty float64, maker bool) float64 {
	rate := m.TakerRate
	if maker {
		rate = m.MakerRate
	}
	switch m.Kind {
	case FeePerValue:
		return rate * Notional(px, qty)
	case FeePerQty:
		return rate * qty
	case FeePerTrade:
		return rate
	default:
		return 0
	}
}

// CashFlow returns the signed cash received (positive) or spent (negative)
// for a fill of qty at px on side s, under the asset's Linear/Inverse
// convention: linear = qty*px, inverse = qty/px.
func (a *AssetState) CashFlow(s Side, px, qty float64) float64 {
	notional := Notional(px, qty)
	if a.AssetType == Inverse {
		notional = qty / px
	}
	if s == Buy {
		return -notional
	}
	return notional
}

// ApplyFill updates position, balance, fee and trade counters for a
// single fill, maintaining the conservation invariant that balance +
// position*mid - fee tracks cumulative PnL.
func (a *AssetState) ApplyFill(s Side, px, qty float64, maker bool) {
	if s == Buy {
		a.Position += qty
	} else {
		a.Position -= qty
	}
	a.Balance += a.CashFlow(s, px, qty)

	fee := a.FeeModel.Fee(px, qty, maker)
	a.Balance -= fee
	a.Fee += fee

	a.TradeNum++
	a.TradeQty += qty
	a.TradeAmount += Notional(px, qty)
}
