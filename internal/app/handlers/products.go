package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bereketg/artisan-market/internal/auth/authmiddleware"
	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/bereketg/artisan-market/internal/storage"
	"github.com/go-chi/chi/v5"
)

type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// ListProductsHandler handles GET /api/products (public, optional ?category=)
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListProducts(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(products); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// GetProductHandler handles GET /api/products/{id} (public)
func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		product, err := catalog.GetProduct(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(product); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// CreateProductHandler handles POST /api/products (artisan only)
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req ProductRequest
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

		product, err := catalog.CreateProduct(r.Context(), userID, &models.Product{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Stock:       req.Stock,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			http.Error(w, "failed to create product", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(product); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// UpdateProductHandler handles PUT /api/products/{id} (owner artisan or admin)
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		role, _ := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req ProductRequest
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

		err = catalog.UpdateProduct(r.Context(), userID, role, &models.Product{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Stock:       req.Stock,
		})
		if err != nil {
			writeCatalogError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteProductHandler handles DELETE /api/products/{id} (owner artisan or admin)
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		role, _ := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		if err := catalog.DeleteProduct(r.Context(), userID, role, id); err != nil {
			writeCatalogError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeCatalogError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		logger.Error("catalog operation failed", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
