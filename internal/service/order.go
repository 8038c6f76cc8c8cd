package service

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/efreitasn/ordersplit/internal/calendar"
	"github.com/efreitasn/ordersplit/internal/domain"
	"github.com/efreitasn/ordersplit/internal/engine"
	"github.com/efreitasn/ordersplit/internal/store"
	"github.com/google/uuid"
)

// MinTotalAmount is the smallest order amount accepted.
const MinTotalAmount = 0.01

// SplitOrderRequest represents the input for splitting an order.
type SplitOrderRequest struct {
	ModelPortfolio []domain.StockAllocation
	TotalAmount    float64
	OrderType      domain.OrderType
	MarketPrices   []domain.MarketPrice // optional overrides
}

// Options holds the numeric settings an OrderService needs.
type Options struct {
	ShareDecimalPrecision int
	Currency              string
}

// OrderService splits orders across a model portfolio and records them in
// the ledger.
type OrderService struct {
	pricing   *engine.PriceResolver
	calendar  *calendar.Calendar
	ledger    *store.Ledger
	precision int
	currency  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	pricing *engine.PriceResolver,
	cal *calendar.Calendar,
	ledger *store.Ledger,
	opts Options,
	logger *slog.Logger,
) *OrderService {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	return &OrderService{
		pricing:   pricing,
		calendar:  cal,
		ledger:    ledger,
		precision: opts.ShareDecimalPrecision,
		currency:  opts.Currency,
		logger:    logger,
		now:       time.Now,
	}
}

// SplitOrder validates the request, allocates the total amount across the
// portfolio, schedules the order on the next trading day, and saves it.
// Pricing and allocation errors are returned unchanged and nothing is saved.
func (s *OrderService) SplitOrder(req SplitOrderRequest) (*domain.Order, error) {
	if err := validateSplitRequest(req); err != nil {
		return nil, err
	}

	s.logger.Info("creating order",
		slog.String("order_type", string(req.OrderType)),
		slog.String("total_amount", domain.FormatAmount(req.TotalAmount, s.currency)),
		slog.Int("stocks", len(req.ModelPortfolio)),
	)

	symbols := make([]string, len(req.ModelPortfolio))
	for i, a := range req.ModelPortfolio {
		symbols[i] = a.Symbol
	}

	prices := s.pricing.Prices(symbols, req.MarketPrices)

	stocks, err := engine.CalculateStockOrders(req.ModelPortfolio, req.TotalAmount, prices, s.precision)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		OrderID:       uuid.New().String(),
		Type:          req.OrderType,
		TotalAmount:   req.TotalAmount,
		ExecutionDate: s.calendar.NextTradingDay(now),
		Stocks:        stocks,
		CreatedAt:     now,
	}

	s.ledger.SaveOrder(order)

	s.logger.Info("order created",
		slog.String("order_id", order.OrderID),
		slog.Time("execution_date", order.ExecutionDate),
	)
	for _, st := range stocks {
		s.logger.Debug("stock order",
			slog.String("order_id", order.OrderID),
			slog.String("symbol", st.Symbol),
			slog.Float64("quantity", st.Quantity),
			slog.String("price", domain.FormatAmount(st.Price, s.currency)),
			slog.String("amount", domain.FormatAmount(st.Amount, s.currency)),
		)
	}

	return order, nil
}

// GetOrderHistory returns every saved order in insertion order.
func (s *OrderService) GetOrderHistory() []domain.Order {
	orders := s.ledger.AllOrders()
	s.logger.Debug("retrieved order history", slog.Int("count", len(orders)))
	return orders
}

// ListOrderHistory returns one page of the order history and the total
// number of saved orders.
func (s *OrderService) ListOrderHistory(page, limit int) ([]domain.Order, int, error) {
	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	orders, total := s.ledger.Page(page, limit)
	return orders, total, nil
}

// ClearHistory empties the ledger.
func (s *OrderService) ClearHistory() {
	s.ledger.ClearHistory()
	s.logger.Info("order history cleared")
}

// validateSplitRequest checks the request shape. Portfolio weights are left
// to the allocator, which owns the sum and sign rules.
func validateSplitRequest(req SplitOrderRequest) error {
	if !req.OrderType.Valid() {
		return &domain.ValidationError{
			Message: fmt.Sprintf("Unknown order type: %s. Must be one of: BUY, SELL", req.OrderType),
		}
	}
	if len(req.ModelPortfolio) == 0 {
		return &domain.ValidationError{
			Message: "modelPortfolio must contain at least 1 allocation",
		}
	}
	if math.IsInf(req.TotalAmount, 0) {
		return &domain.ValidationError{
			Message: "totalAmount must be a finite number",
		}
	}
	if !(req.TotalAmount >= MinTotalAmount) {
		return &domain.ValidationError{
			Message: fmt.Sprintf("totalAmount must not be less than %v", MinTotalAmount),
		}
	}
	for _, mp := range req.MarketPrices {
		if math.IsNaN(mp.Price) || math.IsInf(mp.Price, 0) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("market price for %s must be a finite number", mp.Symbol),
			}
		}
		if mp.Price < 0 {
			return &domain.ValidationError{
				Message: fmt.Sprintf("market price for %s must not be negative", mp.Symbol),
			}
		}
	}
	return nil
}
