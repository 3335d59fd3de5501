package orderbook

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(id string, side Side, price int64, quantity uint64, at time.Time) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Price:     decimal.NewFromInt(price),
		Quantity:  quantity,
		CreatedAt: at,
		UpdatedAt: at,
		LastTxn:   Transaction{Kind: TxnAdd, At: at},
	}
}

func TestBidQueueOrdering(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("a", Bid, 50, 100, base))
	q.insertOrder(newTestOrder("b", Bid, 52, 100, base.Add(time.Second)))
	q.insertOrder(newTestOrder("c", Bid, 51, 100, base.Add(2*time.Second)))

	// Bids iterate highest price first.
	prices := q.prices()
	require.Len(t, prices, 3)
	assert.True(t, prices[0].Equal(decimal.NewFromInt(52)))
	assert.True(t, prices[1].Equal(decimal.NewFromInt(51)))
	assert.True(t, prices[2].Equal(decimal.NewFromInt(50)))

	best, ok := q.bestPrice()
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.NewFromInt(52)))

	worst, ok := q.worstPrice()
	require.True(t, ok)
	assert.True(t, worst.Equal(decimal.NewFromInt(50)))
}

func TestAskQueueOrdering(t *testing.T) {
	q := newAskQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("a", Ask, 55, 100, base))
	q.insertOrder(newTestOrder("b", Ask, 53, 100, base.Add(time.Second)))
	q.insertOrder(newTestOrder("c", Ask, 54, 100, base.Add(2*time.Second)))

	// Asks iterate lowest price first.
	prices := q.prices()
	require.Len(t, prices, 3)
	assert.True(t, prices[0].Equal(decimal.NewFromInt(53)))
	assert.True(t, prices[1].Equal(decimal.NewFromInt(54)))
	assert.True(t, prices[2].Equal(decimal.NewFromInt(55)))
}

func TestQueueFIFOWithinLevel(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("first", Bid, 50, 100, base))
	q.insertOrder(newTestOrder("second", Bid, 50, 200, base.Add(time.Second)))
	q.insertOrder(newTestOrder("third", Bid, 50, 300, base.Add(2*time.Second)))

	orders := q.ordersAt(decimal.NewFromInt(50))
	require.Len(t, orders, 3)
	assert.Equal(t, "first", orders[0].ID)
	assert.Equal(t, "second", orders[1].ID)
	assert.Equal(t, "third", orders[2].ID)

	unit, ok := q.unit(decimal.NewFromInt(50))
	require.True(t, ok)
	assert.Equal(t, uint64(600), unit.totalQuantity)
	assert.Equal(t, int64(3), unit.count)
}

func TestQueueRemoveMiddleOrder(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("a", Bid, 50, 100, base))
	middle := newTestOrder("b", Bid, 50, 200, base.Add(time.Second))
	q.insertOrder(middle)
	q.insertOrder(newTestOrder("c", Bid, 50, 300, base.Add(2*time.Second)))

	q.removeOrder(middle)

	orders := q.ordersAt(decimal.NewFromInt(50))
	require.Len(t, orders, 2)
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "c", orders[1].ID)
	assert.Nil(t, q.order("b"))
	assert.Equal(t, int64(2), q.orderCount())

	unit, ok := q.unit(decimal.NewFromInt(50))
	require.True(t, ok)
	assert.Equal(t, uint64(400), unit.totalQuantity)
}

func TestQueueRemovingLastOrderDropsLevel(t *testing.T) {
	q := newAskQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	only := newTestOrder("only", Ask, 55, 100, base)
	q.insertOrder(only)
	require.Equal(t, int64(1), q.depthCount())

	q.removeOrder(only)

	assert.Equal(t, int64(0), q.depthCount())
	assert.Equal(t, int64(0), q.orderCount())
	_, ok := q.unit(decimal.NewFromInt(55))
	assert.False(t, ok)
	_, ok = q.bestPrice()
	assert.False(t, ok)
}

func TestQueueMoveToTail(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	head := newTestOrder("head", Bid, 50, 100, base)
	q.insertOrder(head)
	q.insertOrder(newTestOrder("mid", Bid, 50, 100, base.Add(time.Second)))
	q.insertOrder(newTestOrder("tail", Bid, 50, 100, base.Add(2*time.Second)))

	q.moveToTail(head)

	orders := q.ordersAt(decimal.NewFromInt(50))
	require.Len(t, orders, 3)
	assert.Equal(t, "mid", orders[0].ID)
	assert.Equal(t, "tail", orders[1].ID)
	assert.Equal(t, "head", orders[2].ID)
}

func TestQueueMoveToTailWhenAlreadyTail(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("a", Bid, 50, 100, base))
	tail := newTestOrder("b", Bid, 50, 100, base.Add(time.Second))
	q.insertOrder(tail)

	q.moveToTail(tail)

	orders := q.ordersAt(decimal.NewFromInt(50))
	require.Len(t, orders, 2)
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "b", orders[1].ID)
}

func TestQueueEquivalentDecimalPricesShareLevel(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	a := newTestOrder("a", Bid, 50, 100, base)
	q.insertOrder(a)

	// 50.0 with a different exponent must land on the same level as 50.
	b := &Order{
		ID:        "b",
		Side:      Bid,
		Price:     decimal.New(500, -1),
		Quantity:  200,
		CreatedAt: base.Add(time.Second),
		UpdatedAt: base.Add(time.Second),
		LastTxn:   Transaction{Kind: TxnAdd, At: base.Add(time.Second)},
	}
	q.insertOrder(b)

	assert.Equal(t, int64(1), q.depthCount())
	orders := q.ordersAt(decimal.NewFromInt(50))
	require.Len(t, orders, 2)
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "b", orders[1].ID)
}

func TestQueueDepth(t *testing.T) {
	q := newAskQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("a", Ask, 55, 100, base))
	q.insertOrder(newTestOrder("b", Ask, 55, 200, base.Add(time.Second)))
	q.insertOrder(newTestOrder("c", Ask, 56, 300, base.Add(2*time.Second)))

	levels := q.depth(10)
	require.Len(t, levels, 2)
	assert.True(t, levels[0].Price.Equal(decimal.NewFromInt(55)))
	assert.Equal(t, uint64(300), levels[0].Quantity)
	assert.Equal(t, int64(2), levels[0].Orders)
	assert.True(t, levels[1].Price.Equal(decimal.NewFromInt(56)))
	assert.Equal(t, uint64(300), levels[1].Quantity)

	limited := q.depth(1)
	require.Len(t, limited, 1)
	assert.True(t, limited[0].Price.Equal(decimal.NewFromInt(55)))
}

func TestQueueToSnapshotIsPriceThenTimeOrdered(t *testing.T) {
	q := newBidQueue()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

	q.insertOrder(newTestOrder("b1", Bid, 50, 100, base))
	q.insertOrder(newTestOrder("b2", Bid, 51, 100, base.Add(time.Second)))
	q.insertOrder(newTestOrder("b3", Bid, 50, 100, base.Add(2*time.Second)))

	snapshot := q.toSnapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "b2", snapshot[0].ID)
	assert.Equal(t, "b1", snapshot[1].ID)
	assert.Equal(t, "b3", snapshot[2].ID)
}
