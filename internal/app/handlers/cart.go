package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bereketg/artisan-market/internal/auth/authmiddleware"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/bereketg/artisan-market/internal/storage"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// GetCartHandler handles GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		cart, err := cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// AddCartItemHandler handles POST /api/cart/items
func AddCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req AddCartItemRequest
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

		cart, err := cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to add item", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// SetCartQuantityHandler handles PUT /api/cart/items/{productID}
func SetCartQuantityHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetCartQuantityHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req SetCartQuantityRequest
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

		cart, err := cartService.SetQuantity(r.Context(), userID, productID, req.Quantity)
		if err != nil {
			writeCartError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// RemoveCartItemHandler handles DELETE /api/cart/items/{productID}
func RemoveCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		productID, err := parseIDParam(r, "productID")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		cart, err := cartService.RemoveItem(r.Context(), userID, productID)
		if err != nil {
			writeCartError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cart); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

func writeCartError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotInCart):
		http.Error(w, "product not in cart", http.StatusNotFound)
	case errors.Is(err, storage.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	default:
		logger.Error("cart operation failed", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
