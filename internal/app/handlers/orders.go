package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bereketg/artisan-market/internal/auth/authmiddleware"
	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/bereketg/artisan-market/internal/storage"
)

// CheckoutResponse reports the created order and either a checkout URL to
// open in a new browsing context, or the payment error (the order is kept
// with paymentStatus=Pending for a later retry).
type CheckoutResponse struct {
	OrderID      int64   `json:"order_id"`
	TotalAmount  float64 `json:"total_amount"`
	TxRef        string  `json:"tx_ref,omitempty"`
	CheckoutURL  string  `json:"checkout_url,omitempty"`
	PaymentError string  `json:"payment_error,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Shipped Delivered Cancelled"`
}

// CheckoutHandler handles POST /api/orders: the whole checkout flow, from
// cart validation through order creation to payment initiation.
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := checkoutService.Checkout(r.Context(), userID)
		if err != nil {
			var vErr *service.ValidationError
			if errors.As(err, &vErr) {
				http.Error(w, vErr.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, service.ErrMultipleArtisans) {
				http.Error(w, "cart contains products from multiple artisans", http.StatusBadRequest)
				return
			}
			logger.Error("checkout failed", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := CheckoutResponse{
			OrderID:      result.Order.ID,
			TotalAmount:  result.Order.TotalAmount,
			TxRef:        result.TxRef,
			CheckoutURL:  result.CheckoutURL,
			PaymentError: result.PaymentError,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ListOrdersHandler handles GET /api/orders (scope depends on the role)
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		role, _ := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.ListOrders(r.Context(), userID, role)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(orders); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// GetOrderHandler handles GET /api/orders/{id}
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		role, _ := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		order, err := orderService.GetOrder(r.Context(), userID, role, id)
		if err != nil {
			writeOrderError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(order); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// UpdateOrderStatusHandler handles PATCH /api/orders/{id}/status
// (order's artisan or admin)
func UpdateOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		role, _ := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		var req UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		if err := orderService.UpdateStatus(r.Context(), userID, role, id, models.OrderStatus(req.Status)); err != nil {
			writeOrderError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RetryPaymentHandler handles POST /api/orders/{id}/pay: manual payment
// retry for an order stuck in paymentStatus=Pending.
func RetryPaymentHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RetryPaymentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		pt, err := paymentService.RetryPayment(r.Context(), id, userID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, service.ErrNotOwner):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, service.ErrPaymentNotPending):
				http.Error(w, "order payment is not pending", http.StatusConflict)
			case errors.Is(err, service.ErrPaymentInitFailed):
				logger.Error("payment retry failed", slog.Any("error", err))
				http.Error(w, "payment initiation failed", http.StatusBadRequest)
			default:
				logger.Error("payment retry failed", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(pt); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

func writeOrderError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrBadTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Error("order operation failed", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
