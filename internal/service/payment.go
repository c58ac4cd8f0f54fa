package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/events"
	"github.com/bereketg/artisan-market/internal/metrics"
	"github.com/bereketg/artisan-market/internal/payment/chapa"
	"github.com/bereketg/artisan-market/internal/storage"
)

var (
	// ErrPaymentInitFailed means the order exists but the provider call did
	// not yield a checkout URL; the order keeps paymentStatus=Pending and the
	// user retries from the order details view.
	ErrPaymentInitFailed = errors.New("payment initiation failed")
	ErrPaymentNotPending = errors.New("order payment is not pending")
)

// SplitFullName splits on the first whitespace: the head becomes the first
// name, the remainder the last name. A single token yields an empty last
// name. This mirrors what the payment provider form expects and is kept
// exactly, quirks included.
func SplitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	i := strings.IndexFunc(full, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimSpace(full[i+1:])
}

// NewTxRef builds "txn-{orderID}-{epochMillis}". Uniqueness rests on the
// order ID; two refs in the same millisecond still differ when the orders
// do. The DB unique index catches the remaining collision case.
func NewTxRef(orderID int64) string {
	return fmt.Sprintf("txn-%d-%d", orderID, time.Now().UnixMilli())
}

// Gateway is the slice of the provider client the service needs; tests
// substitute a fake.
type Gateway interface {
	Initialize(ctx context.Context, req *chapa.InitializeRequest) (*chapa.InitializeResponse, error)
	Verify(ctx context.Context, txRef string) (*chapa.VerifyResponse, error)
}

type PaymentService interface {
	// InitiateForOrder records a transaction and asks the provider for a
	// checkout URL. The order's payment status is not touched on failure.
	InitiateForOrder(ctx context.Context, order *models.Order, payer *models.User) (*models.PaymentTransaction, error)
	// RetryPayment re-initiates payment for the caller's own Pending order.
	RetryPayment(ctx context.Context, orderID, callerID int64) (*models.PaymentTransaction, error)
	// Verify asks the provider for the transaction outcome and reconciles
	// the order's payment status.
	Verify(ctx context.Context, txRef string) (models.PaymentStatus, error)
	// InitializeRaw forwards a caller-built request to the provider and
	// returns the response verbatim.
	InitializeRaw(ctx context.Context, req *chapa.InitializeRequest) (*chapa.InitializeResponse, error)
}

type paymentService struct {
	log         *slog.Logger
	gateway     Gateway
	paymentRepo storage.PaymentStorage
	orderRepo   storage.OrderStorage
	userRepo    storage.UserStorage
	publisher   events.Publisher
	currency    string
	returnURL   string
}

func NewPaymentService(
	log *slog.Logger,
	gateway Gateway,
	paymentRepo storage.PaymentStorage,
	orderRepo storage.OrderStorage,
	userRepo storage.UserStorage,
	publisher events.Publisher,
	currency, returnURL string,
) PaymentService {
	return &paymentService{
		log:         log,
		gateway:     gateway,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		currency:    currency,
		returnURL:   returnURL,
	}
}

func (s *paymentService) InitiateForOrder(ctx context.Context, order *models.Order, payer *models.User) (*models.PaymentTransaction, error) {
	const op = "service.PaymentService.InitiateForOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", order.ID))

	firstName, lastName := SplitFullName(payer.Name)
	txRef := NewTxRef(order.ID)

	pt, err := s.paymentRepo.CreateTransaction(ctx, &models.PaymentTransaction{
		TxRef:      txRef,
		OrderID:    order.ID,
		Amount:     order.TotalAmount,
		Currency:   s.currency,
		PayerEmail: payer.Email,
		PayerName:  payer.Name,
		PayerPhone: payer.Phone,
	})
	if err != nil {
		logger.Error("failed to record payment transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.gateway.Initialize(ctx, &chapa.InitializeRequest{
		Amount:      strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
		Currency:    s.currency,
		Email:       payer.Email,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: payer.Phone,
		TxRef:       txRef,
		ReturnURL:   s.returnURL,
	})
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("initialize", "failed").Inc()
		s.publishPayment(events.EventPaymentFailed, order.ID, txRef, order.TotalAmount, err.Error())
		logger.Error("payment initiation failed", slog.Any("error", err))
		return pt, fmt.Errorf("%s: %w: %v", op, ErrPaymentInitFailed, err)
	}

	pt.CheckoutURL = resp.Data.CheckoutURL
	if err := s.paymentRepo.SetCheckoutURL(ctx, txRef, pt.CheckoutURL); err != nil {
		logger.Error("failed to store checkout url", slog.Any("error", err))
	}

	metrics.PaymentsTotal.WithLabelValues("initialize", "success").Inc()
	s.publishPayment(events.EventPaymentStarted, order.ID, txRef, order.TotalAmount, "")
	logger.Info("payment initiated", slog.String("txRef", txRef))
	return pt, nil
}

func (s *paymentService) RetryPayment(ctx context.Context, orderID, callerID int64) (*models.PaymentTransaction, error) {
	const op = "service.PaymentService.RetryPayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.Int64("callerID", callerID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if order.CustomerID != callerID {
		logger.Warn("retry rejected: not the order owner")
		return nil, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}
	if order.PaymentStatus != models.PaymentPending {
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotPending)
	}

	payer, err := s.userRepo.GetUserByID(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.InitiateForOrder(ctx, order, payer)
}

func (s *paymentService) Verify(ctx context.Context, txRef string) (models.PaymentStatus, error) {
	const op = "service.PaymentService.Verify"
	logger := s.log.With(slog.String("op", op), slog.String("txRef", txRef))

	pt, err := s.paymentRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("verify", "failed").Inc()
		logger.Error("verification call failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var status models.PaymentStatus
	switch resp.Data.Status {
	case "success":
		status = models.PaymentSuccess
	case "failed":
		status = models.PaymentFailed
	default:
		// still pending on the provider side, nothing to reconcile
		return models.PaymentPending, nil
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, pt.OrderID, status); err != nil {
		logger.Error("failed to update payment status", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.PaymentsTotal.WithLabelValues("verify", strings.ToLower(string(status))).Inc()
	eventType := events.EventPaymentSuccess
	if status == models.PaymentFailed {
		eventType = events.EventPaymentFailed
	}
	s.publishPayment(eventType, pt.OrderID, txRef, pt.Amount, "")

	logger.Info("payment verified", slog.String("status", string(status)))
	return status, nil
}

func (s *paymentService) InitializeRaw(ctx context.Context, req *chapa.InitializeRequest) (*chapa.InitializeResponse, error) {
	const op = "service.PaymentService.InitializeRaw"

	resp, err := s.gateway.Initialize(ctx, req)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues("initialize", "failed").Inc()
		s.log.Error("proxy initiation failed", slog.String("op", op), slog.Any("error", err))
		return resp, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PaymentsTotal.WithLabelValues("initialize", "success").Inc()
	return resp, nil
}

func (s *paymentService) publishPayment(eventType string, orderID int64, txRef string, amount float64, reason string) {
	env, err := events.NewEnvelope(eventType, orderID, events.PaymentPayload{
		OrderID: orderID,
		TxRef:   txRef,
		Amount:  amount,
		Reason:  reason,
	})
	if err != nil {
		s.log.Error("failed to build payment event", slog.Any("error", err))
		return
	}
	s.publisher.Publish(events.TopicPayment, env)
}
