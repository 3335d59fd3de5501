package orderbook

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type LogType string

const (
	LogTypeOpen   LogType = "open"
	LogTypeAmend  LogType = "amend"
	LogTypeCancel LogType = "cancel"
)

// BookLog represents an event in the order book. SequenceID is increasing
// for every event and is used for ordering, deduplication, and rebuild
// synchronization in downstream consumers. OldPrice and OldQuantity are
// only set for Amend events.
type BookLog struct {
	SequenceID  uint64          `json:"seq_id"`
	Type        LogType         `json:"type"`
	Side        Side            `json:"side"`
	Price       decimal.Decimal `json:"price"`
	Quantity    uint64          `json:"quantity"`
	OldPrice    decimal.Decimal `json:"old_price,omitempty"`
	OldQuantity uint64          `json:"old_quantity,omitempty"`
	OrderID     string          `json:"order_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

var bookLogPool = sync.Pool{
	New: func() any {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	// Reset structure to zero values.
	// For decimal.Decimal, the zero value (nil internal pointer) represents 0, which is valid.
	*log = BookLog{}
	bookLogPool.Put(log)
}

// NewOpenLog builds the event for an order entering the book.
func NewOpenLog(seqID uint64, order *Order) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeOpen
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Quantity
	log.OrderID = order.ID
	log.CreatedAt = order.CreatedAt
	return log
}

// NewCancelLog builds the event for an order leaving the book.
func NewCancelLog(seqID uint64, order *Order, at time.Time) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeCancel
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Quantity
	log.OrderID = order.ID
	log.CreatedAt = at
	return log
}

// NewAmendLog builds the event for an in-book modification. The order
// carries the new price and quantity already.
func NewAmendLog(seqID uint64, order *Order, oldPrice decimal.Decimal, oldQuantity uint64, at time.Time) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeAmend
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Quantity
	log.OldPrice = oldPrice
	log.OldQuantity = oldQuantity
	log.OrderID = order.ID
	log.CreatedAt = at
	return log
}
