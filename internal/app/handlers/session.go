package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bereketg/artisan-market/internal/auth/authmiddleware"
	"github.com/bereketg/artisan-market/internal/service"
)

type RoleResponse struct {
	Role string `json:"role"`
}

type SessionUserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// RoleHandler handles GET /api/session/role. The role comes straight from
// the verified token; a missing or bad token never reaches this handler and
// reads as anonymous on the client.
func RoleHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RoleHandler"
		logger := log.With(slog.String("op", op))

		role, ok := authmiddleware.RoleFromContext(r.Context())
		if !ok {
			logger.Error("role not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(RoleResponse{Role: string(role)}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// SessionUserHandler handles GET /api/session/user
func SessionUserHandler(log *slog.Logger, sessionService service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SessionUserHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := sessionService.CurrentUser(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get current user", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		resp := SessionUserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Phone: user.Phone,
			Role:  string(user.Role),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
