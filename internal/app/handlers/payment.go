package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bereketg/artisan-market/internal/payment/chapa"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/go-chi/chi/v5"
)

// AcceptPaymentRequest mirrors the provider's initialize contract; the
// server attaches the secret and forwards the body as-is.
type AcceptPaymentRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Currency    string `json:"currency" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	TxRef       string `json:"tx_ref" validate:"required"`
	ReturnURL   string `json:"return_url"`
}

type VerifyPaymentResponse struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

// AcceptPaymentHandler handles POST /accept-payment: the thin proxy to the
// provider's transaction-initialize endpoint. Any provider or network error
// comes back as a generic 400; the provider response body is returned
// verbatim on success.
func AcceptPaymentHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AcceptPaymentHandler"
		logger := log.With(slog.String("op", op))

		var req AcceptPaymentRequest
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

		resp, err := paymentService.InitializeRaw(r.Context(), &chapa.InitializeRequest{
			Amount:      req.Amount,
			Currency:    req.Currency,
			Email:       req.Email,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
			TxRef:       req.TxRef,
			ReturnURL:   req.ReturnURL,
		})
		if err != nil {
			logger.Error("payment initiation failed", slog.Any("error", err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			if resp != nil {
				// pass the provider's own message through
				_ = json.NewEncoder(w).Encode(resp)
			} else {
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "failed", "message": "payment initiation failed"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// VerifyPaymentHandler handles GET /api/payments/verify/{txRef}: asks the
// provider for the transaction outcome and reconciles the order's payment
// status.
func VerifyPaymentHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.VerifyPaymentHandler"
		logger := log.With(slog.String("op", op))

		txRef := chi.URLParam(r, "txRef")
		if txRef == "" {
			http.Error(w, "txRef parameter is required", http.StatusBadRequest)
			return
		}

		status, err := paymentService.Verify(r.Context(), txRef)
		if err != nil {
			logger.Error("verification failed", slog.Any("error", err))
			http.Error(w, "verification failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(VerifyPaymentResponse{TxRef: txRef, Status: string(status)}); err != nil {
			logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}
