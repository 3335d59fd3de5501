package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side int8

const (
	Bid Side = 1
	Ask Side = 2
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// TxnKind is the kind of the latest mutation applied to a resting order.
type TxnKind string

const (
	TxnAdd   TxnKind = "add"
	TxnAmend TxnKind = "amend"
)

// Transaction records the latest mutation applied to an order while it rests
// in the book. It is discarded together with the order on removal.
type Transaction struct {
	Kind TxnKind   `json:"kind"`
	At   time.Time `json:"at"`
}

// Order represents the state of a resting order in the book.
// Query methods hand out value copies of it, never the live entity.
type Order struct {
	ID        string          `json:"id"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  uint64          `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"` // defines time priority within a price level
	LastTxn   Transaction     `json:"last_txn"`

	// Intrusive linked list pointers (ignored by JSON)
	next *Order
	prev *Order
}

// snapshot returns a value copy that is safe to hand to callers.
func (o *Order) snapshot() Order {
	cpy := *o
	cpy.next = nil
	cpy.prev = nil
	return cpy
}

// DepthItem is one aggregated price level in a depth snapshot.
type DepthItem struct {
	Price    decimal.Decimal `json:"price"`
	Quantity uint64          `json:"quantity"`
	Orders   int64           `json:"orders"`
}

// Depth is an aggregated view of both sides of the book, best price first.
type Depth struct {
	UpdateID uint64       `json:"update_id"`
	Bids     []*DepthItem `json:"bids"`
	Asks     []*DepthItem `json:"asks"`
}
