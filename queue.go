package orderbook

import (
	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
)

// priceUnit holds the resting orders at one price as an intrusive
// doubly-linked list in ascending last-update-time order (head = oldest,
// highest priority). An empty priceUnit never stays in the queue.
type priceUnit struct {
	price         decimal.Decimal
	totalQuantity uint64
	head          *Order
	tail          *Order
	count         int64
}

// queue is one side of the book. Price levels live in a skiplist whose
// comparator direction puts the best price first; priceList gives O(1)
// level lookup by canonical price key and orders gives O(1) lookup by id.
// Together with the intrusive list pointers on Order, detaching an
// arbitrary order is O(1).
type queue struct {
	side        Side
	totalOrders int64
	depths      int64
	depthList   *skiplist.SkipList
	priceList   map[string]*skiplist.Element
	orders      map[string]*Order
}

// newBidQueue creates the queue for buy orders.
// Price levels are sorted descending (highest price first).
func newBidQueue() *queue {
	return &queue{
		side: Bid,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(decimal.Decimal)
			d2, _ := rhs.(decimal.Decimal)

			if d1.LessThan(d2) {
				return 1
			} else if d1.GreaterThan(d2) {
				return -1
			}

			return 0
		})),
		priceList: make(map[string]*skiplist.Element),
		orders:    make(map[string]*Order),
	}
}

// newAskQueue creates the queue for sell orders.
// Price levels are sorted ascending (lowest price first).
func newAskQueue() *queue {
	return &queue{
		side: Ask,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(decimal.Decimal)
			d2, _ := rhs.(decimal.Decimal)

			if d1.GreaterThan(d2) {
				return 1
			} else if d1.LessThan(d2) {
				return -1
			}

			return 0
		})),
		priceList: make(map[string]*skiplist.Element),
		orders:    make(map[string]*Order),
	}
}

// priceKey returns the canonical map key for a price. decimal values that
// compare equal render the same string, so one level per distinct price.
func priceKey(price decimal.Decimal) string {
	return price.String()
}

// order finds an order by its ID.
func (q *queue) order(id string) *Order {
	return q.orders[id]
}

// unit finds the price level for a price, if it is active.
func (q *queue) unit(price decimal.Decimal) (*priceUnit, bool) {
	el, ok := q.priceList[priceKey(price)]
	if !ok {
		return nil, false
	}
	u, _ := el.Value.(*priceUnit)
	return u, true
}

// insertOrder appends an order at the tail of its price level, creating the
// level if the price is not active yet. New arrivals always have the lowest
// priority among equal prices.
func (q *queue) insertOrder(order *Order) {
	key := priceKey(order.Price)
	el, ok := q.priceList[key]
	if ok {
		unit, _ := el.Value.(*priceUnit)
		order.prev = unit.tail
		order.next = nil
		if unit.tail != nil {
			unit.tail.next = order
		}
		unit.tail = order
		if unit.head == nil {
			unit.head = order
		}

		unit.totalQuantity += order.Quantity
		unit.count++
	} else {
		unit := &priceUnit{
			price:         order.Price,
			head:          order,
			tail:          order,
			totalQuantity: order.Quantity,
			count:         1,
		}
		order.next = nil
		order.prev = nil

		el := q.depthList.Set(order.Price, unit)
		q.priceList[key] = el
		q.depths++
	}

	q.orders[order.ID] = order
	q.totalOrders++
}

// removeOrder detaches an order from its price level and drops the level
// from the skiplist when it becomes empty.
func (q *queue) removeOrder(order *Order) {
	key := priceKey(order.Price)
	skipElement, ok := q.priceList[key]
	if !ok {
		return
	}
	unit, _ := skipElement.Value.(*priceUnit)

	if order.prev != nil {
		order.prev.next = order.next
	} else {
		unit.head = order.next
	}

	if order.next != nil {
		order.next.prev = order.prev
	} else {
		unit.tail = order.prev
	}

	// Clear pointers to avoid leaks
	order.next = nil
	order.prev = nil

	unit.totalQuantity -= order.Quantity
	unit.count--
	delete(q.orders, order.ID)
	q.totalOrders--

	if unit.count == 0 {
		q.depthList.RemoveElement(skipElement)
		delete(q.priceList, key)
		q.depths--
	}
}

// moveToTail detaches an order and re-appends it at the back of its price
// level. Used when an amend forfeits time priority within the same level.
func (q *queue) moveToTail(order *Order) {
	unit, ok := q.unit(order.Price)
	if !ok || unit.tail == order {
		return
	}

	if order.prev != nil {
		order.prev.next = order.next
	} else {
		unit.head = order.next
	}
	order.next.prev = order.prev

	order.prev = unit.tail
	order.next = nil
	unit.tail.next = order
	unit.tail = order
}

// updateOrderQuantity updates an order's quantity in place, keeping the
// level total consistent. The order's position is not touched.
func (q *queue) updateOrderQuantity(order *Order, newQuantity uint64) {
	if unit, ok := q.unit(order.Price); ok {
		unit.totalQuantity = unit.totalQuantity - order.Quantity + newQuantity
	}
	order.Quantity = newQuantity
}

// bestPrice returns the first (best) active price on this side.
func (q *queue) bestPrice() (decimal.Decimal, bool) {
	el := q.depthList.Front()
	if el == nil {
		return decimal.Decimal{}, false
	}

	unit, _ := el.Value.(*priceUnit)
	return unit.price, true
}

// worstPrice returns the last (worst) active price on this side.
func (q *queue) worstPrice() (decimal.Decimal, bool) {
	el := q.depthList.Back()
	if el == nil {
		return decimal.Decimal{}, false
	}

	unit, _ := el.Value.(*priceUnit)
	return unit.price, true
}

// prices returns all active prices in priority order (best first).
func (q *queue) prices() []decimal.Decimal {
	result := make([]decimal.Decimal, 0, q.depths)

	el := q.depthList.Front()
	for el != nil {
		unit, _ := el.Value.(*priceUnit)
		result = append(result, unit.price)
		el = el.Next()
	}

	return result
}

// ordersAt returns snapshots of the orders at a price in time-priority
// order. The slice is empty if the price is not active.
func (q *queue) ordersAt(price decimal.Decimal) []Order {
	unit, ok := q.unit(price)
	if !ok {
		return []Order{}
	}

	result := make([]Order, 0, unit.count)
	for order := unit.head; order != nil; order = order.next {
		result = append(result, order.snapshot())
	}

	return result
}

// orderCount returns the total number of orders in the queue.
func (q *queue) orderCount() int64 {
	return q.totalOrders
}

// depthCount returns the number of price levels in the queue.
func (q *queue) depthCount() int64 {
	return q.depths
}

// toSnapshot serializes the queue into a slice of Order values.
// It iterates the skiplist (price levels) and then each linked list
// (orders) to preserve price-then-time priority.
func (q *queue) toSnapshot() []Order {
	snapshots := make([]Order, 0, q.totalOrders)

	elem := q.depthList.Front()
	for elem != nil {
		unit, _ := elem.Value.(*priceUnit)

		for order := unit.head; order != nil; order = order.next {
			snapshots = append(snapshots, order.snapshot())
		}

		elem = elem.Next()
	}

	return snapshots
}

// depth returns the aggregated depth of this side up to the specified limit.
func (q *queue) depth(limit uint32) []*DepthItem {
	result := make([]*DepthItem, 0, limit)

	el := q.depthList.Front()

	var i uint32 = 0
	for i < limit && el != nil {
		unit, _ := el.Value.(*priceUnit)
		d := DepthItem{
			Price:    unit.price,
			Quantity: unit.totalQuantity,
			Orders:   unit.count,
		}

		result = append(result, &d)

		el = el.Next()
		i++
	}

	return result
}
