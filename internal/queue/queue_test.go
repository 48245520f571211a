package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/hftbacktest/internal/depth"
	"github.com/abdoElHodaky/hftbacktest/internal/types"
)

func TestRiskAverseQueueModelReadyOnlyAtHead(t *testing.T) {
	m := NewRiskAverseQueueModel()
	order := &types.Order{OrderID: 1, Side: types.Sell, PriceTick: 1001, Qty: 0.3, LeftoverQty: 0.3}
	m.OnNew(order, 0.5)

	assert.False(t, m.Ready(order))

	m.OnTrade(order, 0.5)
	assert.True(t, m.Ready(order))
}

func TestRiskAverseQueueModelIgnoresCancelAhead(t *testing.T) {
	m := NewRiskAverseQueueModel()
	order := &types.Order{OrderID: 1, Side: types.Buy, PriceTick: 1000, LeftoverQty: 1.0}
	m.OnNew(order, 2.0)
	m.OnDepthChange(order, 2.0, 0.5) // a cancellation strictly behind
	pos := order.QueuePos.(*RiskAversePos)
	assert.Equal(t, 2.0, pos.Front)
}

func TestProbQueueModelIdentitySplitsProportionally(t *testing.T) {
	m := NewProbQueueModel(IdentityProbQueueFunc)
	order := &types.Order{OrderID: 1, Side: types.Buy, PriceTick: 1000, Qty: 1.0, LeftoverQty: 1.0}
	m.OnNew(order, 3.0) // front=3, behind=1 (order's own size)

	m.OnDepthChange(order, 4.0, 2.0) // delta=2, x=3/4=0.75
	pos := order.QueuePos.(*ProbPos)
	assert.InDelta(t, 1.5, pos.Front, 1e-9)  // 3 - 2*0.75
	assert.InDelta(t, 0.5, pos.Behind, 1e-9) // 1 - 2*0.25
}

func TestProbFuncBoundaryConditions(t *testing.T) {
	for _, fn := range []ProbFunc{IdentityProbQueueFunc, SquareProbQueueFunc, PowerProbQueueFunc(3), LogProbQueueFunc} {
		assert.InDelta(t, 0, fn(0), 1e-9)
		assert.InDelta(t, 1, fn(1), 1e-9)
	}
}

func TestL3QueueModelExactPosition(t *testing.T) {
	md := depth.New(0.1, 1.0, depth.ROI{})
	book := depth.NewL3Book(md)
	m := NewL3QueueModel(book)

	book.Add(types.Sell, 1, 1001, 0.2)
	book.Add(types.Sell, 2, 1001, 0.3)

	order := &types.Order{OrderID: 2, Side: types.Sell, PriceTick: 1001, Qty: 0.3, LeftoverQty: 0.3}
	m.OnNew(order, book.QueueAheadQty(2))
	require.IsType(t, &L3Pos{}, order.QueuePos)

	assert.False(t, m.Ready(order), "order 2 is behind order 1, should not be ready")

	book.Cancel(1)
	assert.True(t, m.Ready(order))

	m.ConsumeL3(order, 0.3)
	assert.False(t, book.OrderExists(2), "fully consumed order should be removed from the book")
}
