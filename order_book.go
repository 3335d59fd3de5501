package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book maintains the resting-order state of one instrument's two-sided limit
// order book: price ordering per side, FIFO time priority within a price,
// and O(1) cancel/amend by order id. It never matches orders and performs no
// execution.
//
// The book is single-threaded and synchronous. It performs no internal
// locking; the embedding application must serialize all mutating calls.
type Book struct {
	seqID      uint64
	bidQueue   *queue
	askQueue   *queue
	publishLog PublishLog
}

// NewBook creates a book that discards its event feed.
func NewBook() *Book {
	return NewBookWithPublisher(NewDiscardPublishLog())
}

// NewBookWithPublisher creates a book that emits a BookLog for every
// successful mutation.
func NewBookWithPublisher(publishLog PublishLog) *Book {
	return &Book{
		bidQueue:   newBidQueue(),
		askQueue:   newAskQueue(),
		publishLog: publishLog,
	}
}

func (book *Book) queueFor(side Side) *queue {
	if side == Bid {
		return book.bidQueue
	}
	return book.askQueue
}

// findOrder resolves an active order and its side queue by id.
func (book *Book) findOrder(id string) (*queue, *Order) {
	if order := book.bidQueue.order(id); order != nil {
		return book.bidQueue, order
	}
	if order := book.askQueue.order(id); order != nil {
		return book.askQueue, order
	}
	return nil, nil
}

// resolveTime reads the wall clock only when the caller omitted the
// timestamp; an explicit value is used exactly as given.
func resolveTime(at []time.Time) time.Time {
	if len(at) > 0 {
		return at[0]
	}
	return time.Now()
}

func (book *Book) nextSeqID() uint64 {
	book.seqID++
	return book.seqID
}

func (book *Book) publish(log *BookLog) {
	book.publishLog.Publish(log)
	releaseBookLog(log)
}

// AddOrder places a new resting order at the tail of its price level.
// It fails if the id is already active or the side is unknown; on failure
// no state changes.
func (book *Book) AddOrder(id string, side Side, price decimal.Decimal, quantity uint64, at ...time.Time) bool {
	if side != Bid && side != Ask {
		return false
	}
	if _, order := book.findOrder(id); order != nil {
		return false
	}

	t := resolveTime(at)
	order := &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: t,
		UpdatedAt: t,
		LastTxn:   Transaction{Kind: TxnAdd, At: t},
	}

	book.queueFor(side).insertOrder(order)
	book.publish(NewOpenLog(book.nextSeqID(), order))
	return true
}

// RemoveOrder cancels an active order, dropping its price level if the
// order was the last one resting there. The order's transaction history is
// discarded with it; queries by this id afterwards report not found.
func (book *Book) RemoveOrder(id string, at ...time.Time) bool {
	myQueue, order := book.findOrder(id)
	if order == nil {
		return false
	}

	t := resolveTime(at)
	myQueue.removeOrder(order)
	book.publish(NewCancelLog(book.nextSeqID(), order, t))
	return true
}

// AmendOrder modifies an active order's price and/or quantity. A nil
// argument means "leave unchanged". Exactly one of three behaviors applies:
//
//   - price change (with or without a quantity change): the order moves to
//     the tail of the new price level and its last update time becomes t
//     (fresh priority);
//   - quantity increase at the same price: the order moves to the tail of
//     its level and its last update time becomes t (priority lost);
//   - quantity decrease at the same price: the quantity updates in place,
//     position and last update time stay untouched (priority kept).
//
// An amend that changes nothing fails and leaves the book unmodified, as
// does an unknown id.
func (book *Book) AmendOrder(id string, newPrice *decimal.Decimal, newQuantity *uint64, at ...time.Time) bool {
	myQueue, order := book.findOrder(id)
	if order == nil {
		return false
	}

	priceChanged := newPrice != nil && !newPrice.Equal(order.Price)
	quantityChanged := newQuantity != nil && *newQuantity != order.Quantity
	if !priceChanged && !quantityChanged {
		return false
	}

	t := resolveTime(at)
	oldPrice := order.Price
	oldQuantity := order.Quantity

	switch {
	case priceChanged:
		myQueue.removeOrder(order)
		order.Price = *newPrice
		if newQuantity != nil {
			order.Quantity = *newQuantity
		}
		order.UpdatedAt = t
		order.LastTxn = Transaction{Kind: TxnAmend, At: t}
		myQueue.insertOrder(order)

	case *newQuantity > oldQuantity:
		myQueue.updateOrderQuantity(order, *newQuantity)
		order.UpdatedAt = t
		order.LastTxn = Transaction{Kind: TxnAmend, At: t}
		myQueue.moveToTail(order)

	default:
		// Quantity decrease keeps the order's position and update time.
		myQueue.updateOrderQuantity(order, *newQuantity)
		order.LastTxn = Transaction{Kind: TxnAmend, At: t}
	}

	book.publish(NewAmendLog(book.nextSeqID(), order, oldPrice, oldQuantity, t))
	return true
}

// IsCrossed reports whether the best ask price is at or below the best bid
// price. It is false whenever either side is empty.
func (book *Book) IsCrossed() bool {
	bestBid, okBid := book.bidQueue.bestPrice()
	bestAsk, okAsk := book.askQueue.bestPrice()
	if !okBid || !okAsk {
		return false
	}
	return bestAsk.LessThanOrEqual(bestBid)
}

// TopPrice returns the best active price on a side: the highest bid or the
// lowest ask.
func (book *Book) TopPrice(side Side) (decimal.Decimal, bool) {
	return book.queueFor(side).bestPrice()
}

// BottomPrice returns the worst active price on a side.
func (book *Book) BottomPrice(side Side) (decimal.Decimal, bool) {
	return book.queueFor(side).worstPrice()
}

// NumPriceLevels returns the count of distinct active prices on a side.
func (book *Book) NumPriceLevels(side Side) int {
	return int(book.queueFor(side).depthCount())
}

// PriceLevels returns the active prices on a side in priority order,
// best first.
func (book *Book) PriceLevels(side Side) []decimal.Decimal {
	return book.queueFor(side).prices()
}

// NumOrdersAt returns the order count at a price, 0 if the price is not
// active.
func (book *Book) NumOrdersAt(side Side, price decimal.Decimal) int {
	if unit, ok := book.queueFor(side).unit(price); ok {
		return int(unit.count)
	}
	return 0
}

// OrdersAt returns snapshots of the orders at a price in time-priority
// order, oldest first.
func (book *Book) OrdersAt(side Side, price decimal.Decimal) []Order {
	return book.queueFor(side).ordersAt(price)
}

// NumOrdersOnSide returns the total number of active orders on a side.
func (book *Book) NumOrdersOnSide(side Side) int {
	return int(book.queueFor(side).orderCount())
}

// OrdersOnSide returns snapshots of every order on a side, price priority
// first and time priority within a price.
func (book *Book) OrdersOnSide(side Side) []Order {
	return book.queueFor(side).toSnapshot()
}

// GetOrder returns a snapshot of an active order's current state.
func (book *Book) GetOrder(id string) (Order, bool) {
	_, order := book.findOrder(id)
	if order == nil {
		return Order{}, false
	}
	return order.snapshot(), true
}

// LastTransaction returns the kind and time of the order's latest mutation
// while it remains active. History is not retrievable after removal.
func (book *Book) LastTransaction(id string) (Transaction, bool) {
	_, order := book.findOrder(id)
	if order == nil {
		return Transaction{}, false
	}
	return order.LastTxn, true
}

// filterOrders collects snapshots of every active order matching the
// predicate, bids first, each side in price-then-time priority order.
func (book *Book) filterOrders(match func(*Order) bool) []Order {
	result := make([]Order, 0)

	for _, q := range []*queue{book.bidQueue, book.askQueue} {
		el := q.depthList.Front()
		for el != nil {
			unit, _ := el.Value.(*priceUnit)
			for order := unit.head; order != nil; order = order.next {
				if match(order) {
					result = append(result, order.snapshot())
				}
			}
			el = el.Next()
		}
	}

	return result
}

// OrdersCreatedBefore returns all active orders created strictly before t.
func (book *Book) OrdersCreatedBefore(t time.Time) []Order {
	return book.filterOrders(func(o *Order) bool { return o.CreatedAt.Before(t) })
}

// OrdersCreatedAfter returns all active orders created strictly after t.
func (book *Book) OrdersCreatedAfter(t time.Time) []Order {
	return book.filterOrders(func(o *Order) bool { return o.CreatedAt.After(t) })
}

// OrdersUpdatedBefore returns all active orders last updated strictly
// before t.
func (book *Book) OrdersUpdatedBefore(t time.Time) []Order {
	return book.filterOrders(func(o *Order) bool { return o.UpdatedAt.Before(t) })
}

// OrdersUpdatedAfter returns all active orders last updated strictly
// after t.
func (book *Book) OrdersUpdatedAfter(t time.Time) []Order {
	return book.filterOrders(func(o *Order) bool { return o.UpdatedAt.After(t) })
}

// Depth returns the aggregated depth of both sides up to limit levels,
// best price first.
func (book *Book) Depth(limit uint32) *Depth {
	return &Depth{
		UpdateID: book.seqID,
		Bids:     book.bidQueue.depth(limit),
		Asks:     book.askQueue.depth(limit),
	}
}
