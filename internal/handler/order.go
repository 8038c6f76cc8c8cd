package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/efreitasn/ordersplit/internal/domain"
	"github.com/efreitasn/ordersplit/internal/service"
)

// timestampLayout renders timestamps in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// SplitOrderBody is the request body for POST /api/orders/split. The yaml
// tags let the CLI read the same shape from request files.
type SplitOrderBody struct {
	ModelPortfolio []AllocationBody  `json:"modelPortfolio" yaml:"modelPortfolio"`
	TotalAmount    *float64          `json:"totalAmount" yaml:"totalAmount"`
	OrderType      string            `json:"orderType" yaml:"orderType"`
	MarketPrices   []MarketPriceBody `json:"marketPrices,omitempty" yaml:"marketPrices,omitempty"`
}

// AllocationBody is one model portfolio entry.
type AllocationBody struct {
	Symbol string   `json:"symbol" yaml:"symbol"`
	Weight *float64 `json:"weight" yaml:"weight"`
}

// MarketPriceBody is one price override.
type MarketPriceBody struct {
	Symbol string   `json:"symbol" yaml:"symbol"`
	Price  *float64 `json:"price" yaml:"price"`
}

// ToRequest converts the body into a service request. Required numeric
// fields that are absent are reported as validation errors.
func (b SplitOrderBody) ToRequest() (service.SplitOrderRequest, error) {
	if b.TotalAmount == nil {
		return service.SplitOrderRequest{}, &domain.ValidationError{Message: "totalAmount is required"}
	}

	req := service.SplitOrderRequest{
		ModelPortfolio: make([]domain.StockAllocation, len(b.ModelPortfolio)),
		TotalAmount:    *b.TotalAmount,
		OrderType:      domain.OrderType(b.OrderType),
	}
	for i, a := range b.ModelPortfolio {
		if a.Weight == nil {
			return service.SplitOrderRequest{}, &domain.ValidationError{
				Message: fmt.Sprintf("modelPortfolio[%d].weight is required", i),
			}
		}
		req.ModelPortfolio[i] = domain.StockAllocation{Symbol: a.Symbol, Weight: *a.Weight}
	}
	for i, mp := range b.MarketPrices {
		if mp.Price == nil {
			return service.SplitOrderRequest{}, &domain.ValidationError{
				Message: fmt.Sprintf("marketPrices[%d].price is required", i),
			}
		}
		req.MarketPrices = append(req.MarketPrices, domain.MarketPrice{Symbol: mp.Symbol, Price: *mp.Price})
	}
	return req, nil
}

// OrderResponse is the JSON representation of a split order.
type OrderResponse struct {
	OrderID       string               `json:"orderId"`
	OrderType     string               `json:"orderType"`
	TotalAmount   float64              `json:"totalAmount"`
	ExecutionDate string               `json:"executionDate"`
	Stocks        []StockOrderResponse `json:"stocks"`
	CreatedAt     string               `json:"createdAt"`
}

// StockOrderResponse is a single stock allocation in the order response.
type StockOrderResponse struct {
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// orderPageResponse is the paginated history response.
type orderPageResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// SplitOrder handles POST /api/orders/split.
func (h *OrderHandler) SplitOrder(w http.ResponseWriter, r *http.Request) {
	var body SplitOrderBody
	if err := ParseJSON(r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		mapOrderError(w, err)
		return
	}

	order, err := h.orderSvc.SplitOrder(req)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, BuildOrderResponse(order))
}

// GetHistory handles GET /api/orders/history. Without page or limit query
// parameters it returns the whole history as a JSON array.
func (h *OrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("limit") == "" {
		orders := h.orderSvc.GetOrderHistory()
		resp := make([]OrderResponse, len(orders))
		for i := range orders {
			resp[i] = BuildOrderResponse(&orders[i])
		}
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	page := 1
	if p := q.Get("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "page must be a valid integer")
			return
		}
	}

	limit := 20
	if l := q.Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a valid integer")
			return
		}
	}

	orders, total, err := h.orderSvc.ListOrderHistory(page, limit)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	resp := orderPageResponse{
		Orders: make([]OrderResponse, len(orders)),
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
	for i := range orders {
		resp.Orders[i] = BuildOrderResponse(&orders[i])
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ClearHistory handles DELETE /api/orders/history.
func (h *OrderHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.orderSvc.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// BuildOrderResponse converts a domain order to its JSON representation.
func BuildOrderResponse(o *domain.Order) OrderResponse {
	stocks := make([]StockOrderResponse, len(o.Stocks))
	for i, s := range o.Stocks {
		stocks[i] = StockOrderResponse{
			Symbol:   s.Symbol,
			Amount:   s.Amount,
			Quantity: s.Quantity,
			Price:    s.Price,
		}
	}
	return OrderResponse{
		OrderID:       o.OrderID,
		OrderType:     string(o.Type),
		TotalAmount:   o.TotalAmount,
		ExecutionDate: formatTimestamp(o.ExecutionDate),
		Stocks:        stocks,
		CreatedAt:     formatTimestamp(o.CreatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrPriceNotFound):
		WriteError(w, http.StatusNotFound, "price_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
