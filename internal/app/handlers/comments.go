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

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// CreateCommentHandler handles POST /api/products/{id}/comments
func CreateCommentHandler(log *slog.Logger, commentService service.CommentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateCommentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		productID, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		var req CreateCommentRequest
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

		comment, err := commentService.CreateComment(r.Context(), userID, productID, req.Text)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				http.Error(w, "product not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to create comment", slog.Any("error", err))
			http.Error(w, "failed to create comment", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(comment); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// ListCommentsHandler handles GET /api/products/{id}/comments (public)
func ListCommentsHandler(log *slog.Logger, commentService service.CommentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListCommentsHandler"
		logger := log.With(slog.String("op", op))

		productID, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}

		comments, err := commentService.ListComments(r.Context(), productID)
		if err != nil {
			logger.Error("failed to list comments", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if comments == nil {
			comments = []*models.Comment{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(comments); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// DeleteCommentHandler handles DELETE /api/comments/{id} (author or admin)
func DeleteCommentHandler(log *slog.Logger, commentService service.CommentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteCommentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		role, _ := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := parseIDParam(r, "id")
		if err != nil {
			http.Error(w, "invalid comment id", http.StatusBadRequest)
			return
		}

		if err := commentService.DeleteComment(r.Context(), userID, role, id); err != nil {
			switch {
			case errors.Is(err, storage.ErrCommentNotFound):
				http.Error(w, "comment not found", http.StatusNotFound)
			case errors.Is(err, service.ErrNotOwner):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				logger.Error("failed to delete comment", slog.Any("error", err))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
