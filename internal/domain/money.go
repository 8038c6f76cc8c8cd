package domain

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of decimal places kept for monetary amounts.
const AmountPrecision = 2

// RoundToPrecision rounds value to precision decimal places, half away from
// zero. The value is read through its shortest decimal representation, so
// 1.005 rounds to 1.01 even though the float is slightly below it.
// NaN and infinities are returned unchanged.
func RoundToPrecision(value float64, precision int) float64 {
	if !isFinite(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(int32(precision)).InexactFloat64()
}

// CalculateShareQuantity returns amount / price rounded to precision
// decimal places. The price must be strictly positive and both values
// finite.
func CalculateShareQuantity(amount, price float64, precision int) (float64, error) {
	if !isFinite(amount) {
		return 0, &ValidationError{Message: "amount must be a finite number"}
	}
	if math.IsInf(price, 1) {
		return 0, &ValidationError{Message: "price must be a finite number"}
	}
	if !(price > 0) {
		return 0, &ValidationError{Message: "price must be greater than zero"}
	}
	q := decimal.NewFromFloat(amount).DivRound(decimal.NewFromFloat(price), int32(precision))
	return q.InexactFloat64(), nil
}

// FormatAmount renders amount in the given ISO 4217 currency, e.g. "$10,000.00".
func FormatAmount(amount float64, currency string) string {
	return money.NewFromFloat(amount, currency).Display()
}

// KnownCurrency reports whether code is an ISO 4217 currency known to go-money.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
