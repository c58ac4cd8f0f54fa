package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/bereketg/artisan-market/internal/storage"
	"github.com/go-playground/validator/v10"
)

// RegisterRequest carries the registration form; the role is fixed at this
// point and cannot be changed later.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=customer artisan admin"`
}

type RegisterResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse carries the session JWT
type LoginResponse struct {
	Token string `json:"token"`
}

var validate = validator.New()

// RegisterHandler handles POST /api/auth/register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
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

		user, err := authService.Register(r.Context(), req.Email, req.Password, req.Name, req.Phone, models.Role(req.Role))
		if err != nil {
			if errors.Is(err, storage.ErrEmailTaken) {
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			logger.Error("registration failed", slog.Any("error", err))
			http.Error(w, "registration failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(RegisterResponse{ID: user.ID, Email: user.Email, Role: string(user.Role)}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// LoginHandler handles POST /api/auth/login
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
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

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(LoginResponse{Token: token}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
}
