package engine

import (
	"fmt"
	"math"

	"github.com/efreitasn/ordersplit/internal/domain"
)

// WeightTolerance is how far the sum of portfolio weights may drift from 1.
const WeightTolerance = 0.001

// ValidatePortfolio checks that weights are finite, sum to 1 within
// WeightTolerance, and that none is negative. The sum is checked before the
// signs, so a portfolio violating both rules reports the sum error.
func ValidatePortfolio(allocations []domain.StockAllocation) error {
	var total float64
	for _, a := range allocations {
		if math.IsNaN(a.Weight) || math.IsInf(a.Weight, 0) {
			return &domain.ValidationError{
				Message: fmt.Sprintf("portfolio weight for %s must be a finite number", a.Symbol),
			}
		}
		total += a.Weight
	}

	if !(math.Abs(total-1) <= WeightTolerance) {
		return &domain.ValidationError{
			Message: fmt.Sprintf("portfolio weights must sum to 1 (100%%), current sum: %v", total),
		}
	}

	for _, a := range allocations {
		if a.Weight < 0 {
			return &domain.ValidationError{
				Message: "portfolio weights cannot be negative",
			}
		}
	}

	return nil
}

// CalculateStockOrders validates the portfolio and splits totalAmount across
// it. Each allocation yields one StockOrder, in input order, with the amount
// rounded to cents and the quantity rounded to precision decimal places.
// Duplicate symbols are not merged.
//
// A symbol missing from prices, or priced at zero, fails with
// domain.ErrPriceNotFound. A negative price fails in
// domain.CalculateShareQuantity.
func CalculateStockOrders(
	allocations []domain.StockAllocation,
	totalAmount float64,
	prices map[string]float64,
	precision int,
) ([]domain.StockOrder, error) {
	if err := ValidatePortfolio(allocations); err != nil {
		return nil, err
	}
	if math.IsNaN(totalAmount) || math.IsInf(totalAmount, 0) {
		return nil, &domain.ValidationError{Message: "totalAmount must be a finite number"}
	}

	orders := make([]domain.StockOrder, 0, len(allocations))
	for _, a := range allocations {
		price, ok := prices[a.Symbol]
		if !ok || price == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrPriceNotFound, a.Symbol)
		}

		amount := domain.RoundToPrecision(totalAmount*a.Weight, domain.AmountPrecision)
		quantity, err := domain.CalculateShareQuantity(amount, price, precision)
		if err != nil {
			return nil, err
		}

		orders = append(orders, domain.StockOrder{
			Symbol:   a.Symbol,
			Amount:   amount,
			Quantity: quantity,
			Price:    price,
		})
	}

	return orders, nil
}
