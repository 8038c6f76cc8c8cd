package engine

import "github.com/efreitasn/ordersplit/internal/domain"

// PriceResolver resolves per-symbol prices from caller overrides, falling
// back to a single configured default. It never fails and never reaches
// outside the process.
type PriceResolver struct {
	defaultPrice float64
}

// NewPriceResolver creates a PriceResolver with the given default price.
func NewPriceResolver(defaultPrice float64) *PriceResolver {
	return &PriceResolver{defaultPrice: defaultPrice}
}

// DefaultPrice returns the fallback price.
func (r *PriceResolver) DefaultPrice() float64 {
	return r.defaultPrice
}

// Price returns the first override matching symbol, or the default price.
// A nil or empty overrides slice always yields the default.
func (r *PriceResolver) Price(symbol string, overrides []domain.MarketPrice) float64 {
	for _, mp := range overrides {
		if mp.Symbol == symbol {
			return mp.Price
		}
	}
	return r.defaultPrice
}

// Prices resolves every symbol independently. Duplicate symbols collapse
// into a single entry.
func (r *PriceResolver) Prices(symbols []string, overrides []domain.MarketPrice) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		prices[s] = r.Price(s, overrides)
	}
	return prices
}
