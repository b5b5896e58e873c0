package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/core/service"
	"github.com/lamnm/aims-checkout/internal/core/validation"
	"github.com/lamnm/aims-checkout/internal/port"
)

type HTTPHandler struct {
	orders   *service.OrderService
	payments *service.PaymentService
}

func NewHTTPHandler(orders *service.OrderService, payments *service.PaymentService) *HTTPHandler {
	return &HTTPHandler{orders: orders, payments: payments}
}

func NewRouter(h *HTTPHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/orders", h.PlaceOrder)
	r.Get("/api/orders/{id}", h.GetOrder)
	r.Get("/api/orders/{id}/invoice", h.GetInvoice)
	r.Get("/api/payment/return", h.PaymentReturn)
	r.Get("/health", h.HealthCheck)
	return r
}

type PlaceOrderRequest struct {
	SessionID    string            `json:"session_id"`
	DeliveryInfo map[string]string `json:"delivery_info"`
}

type PlaceOrderResponse struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	ShippingFee int64  `json:"shipping_fee"`
	Total       int64  `json:"total"`
	PaymentURL  string `json:"payment_url"`
}

type PaymentReturnResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PlaceOrder runs the checkout pipeline up to the gateway redirect:
// availability, cart snapshot, delivery info gate, shipping fee,
// persistence, payment URL.
func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
		return
	}

	ctx := r.Context()
	if err := h.orders.PlaceOrder(ctx, req.SessionID); err != nil {
		if errors.Is(err, port.ErrItemUnavailable) {
			writeJSON(w, http.StatusGone, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	order, err := h.orders.CreateOrder(ctx, req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if len(order.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cart is empty"})
		return
	}

	if err := h.orders.ProcessDeliveryInfo(order, req.DeliveryInfo); err != nil {
		var vErr *validation.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Reason})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	h.orders.PriceOrder(order)

	if err := h.orders.SubmitOrder(ctx, order); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	paymentURL, err := h.payments.GeneratePaymentURL(ctx, order.ID, order.Total(), "AIMS order "+order.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, PlaceOrderResponse{
		OrderID:     order.ID,
		Amount:      order.Amount,
		ShippingFee: order.ShippingFee,
		Total:       order.Total(),
		PaymentURL:  paymentURL,
	})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	invoice, err := h.orders.CreateInvoice(order)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// PaymentReturn handles the customer's redirect back from the gateway.
// The storefront appends order_id and session_id to the configured
// return URL; everything else in the query is the gateway's response
// and is handed to the orchestrator verbatim.
func (h *HTTPHandler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	orderID := query.Get("order_id")
	sessionID := query.Get("session_id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "order_id is required"})
		return
	}

	gatewayParams := url.Values{}
	for key, vals := range query {
		if key == "order_id" || key == "session_id" {
			continue
		}
		gatewayParams[key] = vals
	}

	outcome := h.payments.PayOrder(r.Context(), gatewayParams.Encode(), orderID, sessionID)

	status := http.StatusOK
	if outcome.Result == domain.PaymentResultFailure {
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, PaymentReturnResponse{
		Result:  string(outcome.Result),
		Message: outcome.Message,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
