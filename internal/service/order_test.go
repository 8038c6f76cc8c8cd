package service

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/efreitasn/ordersplit/internal/calendar"
	"github.com/efreitasn/ordersplit/internal/domain"
	"github.com/efreitasn/ordersplit/internal/engine"
	"github.com/efreitasn/ordersplit/internal/store"
	"github.com/google/uuid"
)

// testOrderEnv bundles all dependencies needed for OrderService tests.
type testOrderEnv struct {
	ledger *store.Ledger
	svc    *OrderService
}

func newTestOrderEnv() *testOrderEnv {
	l := store.NewLedger()
	svc := NewOrderService(
		engine.NewPriceResolver(100),
		calendar.Default(),
		l,
		Options{ShareDecimalPrecision: 4, Currency: "USD"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &testOrderEnv{ledger: l, svc: svc}
}

// at pins the service clock.
func (env *testOrderEnv) at(t time.Time) {
	env.svc.now = func() time.Time { return t }
}

func samplePortfolio() []domain.StockAllocation {
	return []domain.StockAllocation{
		{Symbol: "AAPL", Weight: 0.5},
		{Symbol: "GOOGL", Weight: 0.3},
		{Symbol: "MSFT", Weight: 0.2},
	}
}

func TestSplitOrder_EndToEnd(t *testing.T) {
	env := newTestOrderEnv()
	monday := time.Date(2026, 1, 12, 10, 30, 0, 0, time.UTC)
	env.at(monday)

	order, err := env.svc.SplitOrder(SplitOrderRequest{
		ModelPortfolio: samplePortfolio(),
		TotalAmount:    10000,
		OrderType:      domain.OrderTypeBuy,
		MarketPrices: []domain.MarketPrice{
			{Symbol: "AAPL", Price: 150},
			{Symbol: "GOOGL", Price: 2800},
			{Symbol: "MSFT", Price: 300},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uuid.Parse(order.OrderID); err != nil {
		t.Errorf("OrderID %q is not a UUID: %v", order.OrderID, err)
	}
	if order.Type != domain.OrderTypeBuy {
		t.Errorf("Type = %q, want BUY", order.Type)
	}
	if order.TotalAmount != 10000 {
		t.Errorf("TotalAmount = %v, want 10000", order.TotalAmount)
	}
	if !order.ExecutionDate.Equal(monday) {
		t.Errorf("ExecutionDate = %v, want %v", order.ExecutionDate, monday)
	}
	if !order.CreatedAt.Equal(monday) {
		t.Errorf("CreatedAt = %v, want %v", order.CreatedAt, monday)
	}

	want := []domain.StockOrder{
		{Symbol: "AAPL", Amount: 5000, Quantity: 33.3333, Price: 150},
		{Symbol: "GOOGL", Amount: 3000, Quantity: 1.0714, Price: 2800},
		{Symbol: "MSFT", Amount: 2000, Quantity: 6.6667, Price: 300},
	}
	if len(order.Stocks) != len(want) {
		t.Fatalf("got %d stocks, want %d", len(order.Stocks), len(want))
	}
	for i := range want {
		if order.Stocks[i] != want[i] {
			t.Errorf("Stocks[%d] = %+v, want %+v", i, order.Stocks[i], want[i])
		}
	}

	if env.ledger.Count() != 1 {
		t.Errorf("ledger count = %d, want 1", env.ledger.Count())
	}
}

func TestSplitOrder_DefaultPrice(t *testing.T) {
	env := newTestOrderEnv()

	order, err := env.svc.SplitOrder(SplitOrderRequest{
		ModelPortfolio: samplePortfolio(),
		TotalAmount:    1000,
		OrderType:      domain.OrderTypeSell,
		MarketPrices:   []domain.MarketPrice{{Symbol: "AAPL", Price: 250}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Stocks[0].Price != 250 || order.Stocks[0].Quantity != 2 {
		t.Errorf("AAPL = %+v, want override price 250 and 2 shares", order.Stocks[0])
	}
	if order.Stocks[1].Price != 100 || order.Stocks[1].Quantity != 3 {
		t.Errorf("GOOGL = %+v, want default price 100 and 3 shares", order.Stocks[1])
	}
	if order.Type != domain.OrderTypeSell {
		t.Errorf("Type = %q, want SELL", order.Type)
	}
}

func TestSplitOrder_WeekendSchedulesMonday(t *testing.T) {
	env := newTestOrderEnv()
	saturday := time.Date(2026, 1, 17, 14, 0, 0, 0, time.UTC)
	env.at(saturday)

	order, err := env.svc.SplitOrder(SplitOrderRequest{
		ModelPortfolio: samplePortfolio(),
		TotalAmount:    1000,
		OrderType:      domain.OrderTypeBuy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 1, 19, 14, 0, 0, 0, time.UTC)
	if !order.ExecutionDate.Equal(want) {
		t.Errorf("ExecutionDate = %v, want %v", order.ExecutionDate, want)
	}
	if !order.CreatedAt.Equal(saturday) {
		t.Errorf("CreatedAt = %v, want %v", order.CreatedAt, saturday)
	}
}

func TestSplitOrder_UniqueIDs(t *testing.T) {
	env := newTestOrderEnv()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		order, err := env.svc.SplitOrder(SplitOrderRequest{
			ModelPortfolio: samplePortfolio(),
			TotalAmount:    100,
			OrderType:      domain.OrderTypeBuy,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[order.OrderID] {
			t.Fatalf("duplicate order id %s", order.OrderID)
		}
		seen[order.OrderID] = true
	}
}

func TestSplitOrder_AllocationErrorsNotSaved(t *testing.T) {
	tests := []struct {
		name      string
		portfolio []domain.StockAllocation
		prices    []domain.MarketPrice
		check     func(t *testing.T, err error)
	}{
		{
			name:      "weights do not sum to one",
			portfolio: []domain.StockAllocation{{Symbol: "AAPL", Weight: 0.5}, {Symbol: "MSFT", Weight: 0.3}},
			check: func(t *testing.T, err error) {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) || !strings.Contains(ve.Message, "must sum to 1") {
					t.Fatalf("expected sum ValidationError, got %v", err)
				}
			},
		},
		{
			name:      "negative weight",
			portfolio: []domain.StockAllocation{{Symbol: "AAPL", Weight: 1.5}, {Symbol: "MSFT", Weight: -0.5}},
			check: func(t *testing.T, err error) {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) || ve.Message != "portfolio weights cannot be negative" {
					t.Fatalf("expected negative-weight ValidationError, got %v", err)
				}
			},
		},
		{
			name:      "zero override price",
			portfolio: []domain.StockAllocation{{Symbol: "AAPL", Weight: 1}},
			prices:    []domain.MarketPrice{{Symbol: "AAPL", Price: 0}},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrPriceNotFound) {
					t.Fatalf("expected ErrPriceNotFound, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestOrderEnv()
			order, err := env.svc.SplitOrder(SplitOrderRequest{
				ModelPortfolio: tt.portfolio,
				TotalAmount:    1000,
				OrderType:      domain.OrderTypeBuy,
				MarketPrices:   tt.prices,
			})
			if order != nil {
				t.Errorf("expected nil order, got %+v", order)
			}
			tt.check(t, err)
			if env.ledger.Count() != 0 {
				t.Errorf("ledger count = %d, want 0 after failure", env.ledger.Count())
			}
		})
	}
}

func TestSplitOrder_RequestValidation(t *testing.T) {
	valid := SplitOrderRequest{
		ModelPortfolio: samplePortfolio(),
		TotalAmount:    1000,
		OrderType:      domain.OrderTypeBuy,
	}

	tests := []struct {
		name   string
		mutate func(r *SplitOrderRequest)
		msg    string
	}{
		{"unknown order type", func(r *SplitOrderRequest) { r.OrderType = "HOLD" }, "Unknown order type"},
		{"lowercase order type", func(r *SplitOrderRequest) { r.OrderType = "buy" }, "Unknown order type"},
		{"empty portfolio", func(r *SplitOrderRequest) { r.ModelPortfolio = nil }, "at least 1 allocation"},
		{"zero amount", func(r *SplitOrderRequest) { r.TotalAmount = 0 }, "totalAmount"},
		{"below minimum", func(r *SplitOrderRequest) { r.TotalAmount = 0.001 }, "totalAmount"},
		{"negative amount", func(r *SplitOrderRequest) { r.TotalAmount = -5 }, "totalAmount"},
		{"negative market price", func(r *SplitOrderRequest) {
			r.MarketPrices = []domain.MarketPrice{{Symbol: "AAPL", Price: -1}}
		}, "must not be negative"},
		{"infinite amount", func(r *SplitOrderRequest) { r.TotalAmount = math.Inf(1) }, "totalAmount must be a finite number"},
		{"negative infinite amount", func(r *SplitOrderRequest) { r.TotalAmount = math.Inf(-1) }, "totalAmount must be a finite number"},
		{"NaN amount", func(r *SplitOrderRequest) { r.TotalAmount = math.NaN() }, "totalAmount"},
		{"NaN market price", func(r *SplitOrderRequest) {
			r.MarketPrices = []domain.MarketPrice{{Symbol: "AAPL", Price: math.NaN()}}
		}, "market price for AAPL must be a finite number"},
		{"infinite market price", func(r *SplitOrderRequest) {
			r.MarketPrices = []domain.MarketPrice{{Symbol: "AAPL", Price: math.Inf(1)}}
		}, "market price for AAPL must be a finite number"},
		{"NaN weight", func(r *SplitOrderRequest) {
			r.ModelPortfolio = []domain.StockAllocation{{Symbol: "AAPL", Weight: math.NaN()}}
		}, "portfolio weight for AAPL must be a finite number"},
		{"infinite weight", func(r *SplitOrderRequest) {
			r.ModelPortfolio = []domain.StockAllocation{{Symbol: "AAPL", Weight: math.Inf(1)}}
		}, "portfolio weight for AAPL must be a finite number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestOrderEnv()
			req := valid
			tt.mutate(&req)

			_, err := env.svc.SplitOrder(req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Message, tt.msg) {
				t.Errorf("message = %q, want it to contain %q", ve.Message, tt.msg)
			}
			if env.ledger.Count() != 0 {
				t.Errorf("ledger count = %d, want 0", env.ledger.Count())
			}
		})
	}
}

func TestGetOrderHistory(t *testing.T) {
	env := newTestOrderEnv()

	if got := env.svc.GetOrderHistory(); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}

	var ids []string
	for i := 0; i < 3; i++ {
		order, err := env.svc.SplitOrder(SplitOrderRequest{
			ModelPortfolio: samplePortfolio(),
			TotalAmount:    float64(1000 * (i + 1)),
			OrderType:      domain.OrderTypeBuy,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, order.OrderID)
	}

	history := env.svc.GetOrderHistory()
	if len(history) != 3 {
		t.Fatalf("got %d orders, want 3", len(history))
	}
	for i, o := range history {
		if o.OrderID != ids[i] {
			t.Errorf("history[%d] = %s, want %s", i, o.OrderID, ids[i])
		}
	}
}

func TestGetOrderHistory_MutatingResultDoesNotAffectLedger(t *testing.T) {
	env := newTestOrderEnv()
	order, err := env.svc.SplitOrder(SplitOrderRequest{
		ModelPortfolio: samplePortfolio(),
		TotalAmount:    1000,
		OrderType:      domain.OrderTypeBuy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Neither the returned order nor a history snapshot reaches the ledger.
	order.Stocks[0].Amount = -1
	history := env.svc.GetOrderHistory()
	history[0].Stocks[1].Amount = -1

	again := env.svc.GetOrderHistory()
	if again[0].Stocks[0].Amount != 500 || again[0].Stocks[1].Amount != 300 {
		t.Errorf("ledger state mutated: %+v", again[0].Stocks)
	}
}

func TestListOrderHistory(t *testing.T) {
	env := newTestOrderEnv()
	for i := 0; i < 5; i++ {
		if _, err := env.svc.SplitOrder(SplitOrderRequest{
			ModelPortfolio: samplePortfolio(),
			TotalAmount:    100,
			OrderType:      domain.OrderTypeBuy,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	orders, total, err := env.svc.ListOrderHistory(2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || len(orders) != 2 {
		t.Errorf("got %d orders of %d, want 2 of 5", len(orders), total)
	}

	for _, args := range [][2]int{{0, 10}, {1, 0}, {1, 101}} {
		_, _, err := env.svc.ListOrderHistory(args[0], args[1])
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ListOrderHistory(%d, %d): expected ValidationError, got %v", args[0], args[1], err)
		}
	}
}

func TestClearHistory(t *testing.T) {
	env := newTestOrderEnv()
	for i := 0; i < 3; i++ {
		if _, err := env.svc.SplitOrder(SplitOrderRequest{
			ModelPortfolio: samplePortfolio(),
			TotalAmount:    100,
			OrderType:      domain.OrderTypeBuy,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	env.svc.ClearHistory()

	if env.ledger.Count() != 0 {
		t.Errorf("Count() = %d, want 0", env.ledger.Count())
	}
	if len(env.svc.GetOrderHistory()) != 0 {
		t.Error("history not empty after clear")
	}
}

func TestSplitOrder_ReadsClockOnce(t *testing.T) {
	env := newTestOrderEnv()
	// Each call advances a day, starting on a Monday.
	next := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time {
		cur := next
		next = next.AddDate(0, 0, 1)
		return cur
	}

	order, err := env.svc.SplitOrder(SplitOrderRequest{
		ModelPortfolio: samplePortfolio(),
		TotalAmount:    1000,
		OrderType:      domain.OrderTypeBuy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.CreatedAt.Equal(order.ExecutionDate) {
		t.Errorf("CreatedAt = %v, ExecutionDate = %v, want the same instant on a trading day",
			order.CreatedAt, order.ExecutionDate)
	}
}
