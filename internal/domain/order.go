package domain

import "time"

// OrderType indicates whether the order invests or divests.
type OrderType string

const (
	OrderTypeBuy  OrderType = "BUY"
	OrderTypeSell OrderType = "SELL"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// StockAllocation is one entry of a model portfolio.
type StockAllocation struct {
	Symbol string
	Weight float64 // fraction of the total amount, 0..1
}

// MarketPrice is a caller-supplied price override for a symbol.
type MarketPrice struct {
	Symbol string
	Price  float64
}

// StockOrder is the computed slice of an order for a single symbol.
type StockOrder struct {
	Symbol   string
	Amount   float64 // currency units, 2 decimals
	Quantity float64 // shares, rounded to the configured precision
	Price    float64
}

// Order is a split order. It is never mutated after creation.
type Order struct {
	OrderID       string
	Type          OrderType
	TotalAmount   float64
	ExecutionDate time.Time
	Stocks        []StockOrder // same order as the input portfolio
	CreatedAt     time.Time
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() Order {
	c := *o
	c.Stocks = make([]StockOrder, len(o.Stocks))
	copy(c.Stocks, o.Stocks)
	return c
}
