package main

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/tradecore/orderbook"
)

func printSummary(book *orderbook.Book) {
	fmt.Print("Top Bid: ")
	if top, ok := book.TopPrice(orderbook.Bid); ok {
		fmt.Print(top)
	} else {
		fmt.Print("(none)")
	}
	fmt.Print(" | Top Ask: ")
	if top, ok := book.TopPrice(orderbook.Ask); ok {
		fmt.Print(top)
	} else {
		fmt.Print("(none)")
	}
	crossed := "NO"
	if book.IsCrossed() {
		crossed = "YES"
	}
	fmt.Printf(" | Crossed? %s\n", crossed)
}

func printSide(book *orderbook.Book, side orderbook.Side) {
	if side == orderbook.Bid {
		fmt.Println("Bids:")
	} else {
		fmt.Println("Asks:")
	}
	for _, price := range book.PriceLevels(side) {
		fmt.Printf("  Price %s -> ", price)
		for _, o := range book.OrdersAt(side, price) {
			fmt.Printf("[id=%s, q=%d, lu=%s] ", o.ID, o.Quantity, o.UpdatedAt.Format("15:04:05.000"))
		}
		fmt.Println()
	}
}

func printBook(book *orderbook.Book) {
	printSide(book, orderbook.Bid)
	printSide(book, orderbook.Ask)
}

func qty(v uint64) *uint64 { return &v }

func px(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func main() {
	book := orderbook.NewBook()

	book.AddOrder("1", orderbook.Bid, decimal.NewFromInt(50), 400)
	book.AddOrder("2", orderbook.Bid, decimal.NewFromInt(50), 300)
	book.AddOrder("3", orderbook.Ask, decimal.NewFromInt(55), 400)
	book.AddOrder("4", orderbook.Bid, decimal.NewFromInt(51), 100)
	book.AddOrder("5", orderbook.Ask, decimal.NewFromInt(56), 200)

	fmt.Println("Initial Book:")
	printBook(book)
	printSummary(book)
	fmt.Println("----")

	book.RemoveOrder("1")
	fmt.Println("After cancelling Order 1:")
	printBook(book)
	fmt.Println("----")

	// Re-add order 1, then grow it: same price with a larger quantity moves
	// it behind every other order at that level.
	book.AddOrder("1", orderbook.Bid, decimal.NewFromInt(50), 400)
	book.AmendOrder("1", nil, qty(500))
	fmt.Println("After amending Order 1 to qty 500 (same price, increased qty => loses priority):")
	printSide(book, orderbook.Bid)
	fmt.Println("----")

	// Shrink order 2: same price with a smaller quantity keeps its position.
	book.AmendOrder("2", nil, qty(200))
	fmt.Println("After amending Order 2 to qty 200 (same price, decreased qty => keeps priority):")
	printSide(book, orderbook.Bid)
	fmt.Println("----")

	// Move order 5 onto the bid side's best price so the market crosses.
	book.AmendOrder("5", px(51), nil)
	fmt.Println("After amending Order 5 to price 51:")
	printBook(book)
	printSummary(book)
	fmt.Println("----")

	// Seed a handful of generated orders and show the aggregated depth.
	for i := 0; i < 5; i++ {
		book.AddOrder(xid.New().String(), orderbook.Bid, decimal.NewFromInt(49-int64(i)), 100*uint64(i+1))
		book.AddOrder(xid.New().String(), orderbook.Ask, decimal.NewFromInt(57+int64(i)), 100*uint64(i+1))
	}

	depth := book.Depth(5)
	fmt.Println("Aggregated depth (top 5):")
	fmt.Println("  Bids:")
	for _, level := range depth.Bids {
		fmt.Printf("    %s x %d (%d orders)\n", level.Price, level.Quantity, level.Orders)
	}
	fmt.Println("  Asks:")
	for _, level := range depth.Asks {
		fmt.Printf("    %s x %d (%d orders)\n", level.Price, level.Quantity, level.Orders)
	}

	fmt.Println("Demo complete.")
}
