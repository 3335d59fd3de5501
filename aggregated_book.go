package orderbook

import (
	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// AggregatedBook maintains a simplified view of the order book, tracking
// only price levels and their aggregated quantities (depth). It is designed
// for downstream consumers (e.g. a market-data publisher) that rebuild book
// state from the BookLog event feed instead of holding the Book itself.
//
// Like the Book, it is single-threaded; the embedding application
// serializes Replay against readers.
type AggregatedBook struct {
	seqID uint64
	ask   *treemap.TreeMap[decimal.Decimal, uint64]
	bid   *treemap.TreeMap[decimal.Decimal, uint64]
}

// NewAggregatedBook creates a new AggregatedBook with empty ask and bid
// sides. Both trees iterate best price first.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		ask: treemap.NewWithKeyCompare[decimal.Decimal, uint64](func(a, b decimal.Decimal) bool {
			return a.LessThan(b)
		}),
		bid: treemap.NewWithKeyCompare[decimal.Decimal, uint64](func(a, b decimal.Decimal) bool {
			return a.GreaterThan(b)
		}),
	}
}

// SequenceID returns the last applied sequence ID.
// Used for synchronization and gap detection during rebuild.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID
}

func (ab *AggregatedBook) treeFor(side Side) *treemap.TreeMap[decimal.Decimal, uint64] {
	if side == Bid {
		return ab.bid
	}
	return ab.ask
}

func (ab *AggregatedBook) add(side Side, price decimal.Decimal, quantity uint64) {
	tree := ab.treeFor(side)
	current, _ := tree.Get(price)
	tree.Set(price, current+quantity)
}

func (ab *AggregatedBook) sub(side Side, price decimal.Decimal, quantity uint64) {
	tree := ab.treeFor(side)
	current, ok := tree.Get(price)
	if !ok {
		return
	}
	if current <= quantity {
		tree.Del(price)
		return
	}
	tree.Set(price, current-quantity)
}

// Replay applies a BookLog event to the aggregated view. Events must arrive
// in sequence order: an already-applied event is skipped silently, a gap
// returns ErrSequenceGap and leaves the view unchanged so the caller can
// resynchronize from a fresh snapshot.
func (ab *AggregatedBook) Replay(log *BookLog) error {
	if log.SequenceID <= ab.seqID {
		return nil
	}
	if log.SequenceID != ab.seqID+1 {
		logger.Warn("book log sequence gap",
			"expected", ab.seqID+1,
			"got", log.SequenceID)
		return ErrSequenceGap
	}

	switch log.Type {
	case LogTypeOpen:
		ab.add(log.Side, log.Price, log.Quantity)
	case LogTypeCancel:
		ab.sub(log.Side, log.Price, log.Quantity)
	case LogTypeAmend:
		ab.sub(log.Side, log.OldPrice, log.OldQuantity)
		ab.add(log.Side, log.Price, log.Quantity)
	}

	ab.seqID = log.SequenceID
	return nil
}

// Quantity returns the aggregated quantity at a price level for the given
// side. It is zero if the price level does not exist.
func (ab *AggregatedBook) Quantity(side Side, price decimal.Decimal) uint64 {
	quantity, _ := ab.treeFor(side).Get(price)
	return quantity
}

// NumPriceLevels returns the count of active price levels on a side.
func (ab *AggregatedBook) NumPriceLevels(side Side) int {
	return ab.treeFor(side).Len()
}

// BestPrice returns the best active price on a side.
func (ab *AggregatedBook) BestPrice(side Side) (decimal.Decimal, bool) {
	it := ab.treeFor(side).Iterator()
	if !it.Valid() {
		return decimal.Decimal{}, false
	}
	return it.Key(), true
}

// Levels returns the aggregated levels of a side up to limit, best price
// first.
func (ab *AggregatedBook) Levels(side Side, limit int) []*DepthItem {
	result := make([]*DepthItem, 0, limit)

	for it := ab.treeFor(side).Iterator(); it.Valid() && len(result) < limit; it.Next() {
		result = append(result, &DepthItem{
			Price:    it.Key(),
			Quantity: it.Value(),
		})
	}

	return result
}
