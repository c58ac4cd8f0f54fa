package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/events"
	"github.com/bereketg/artisan-market/internal/metrics"
	"github.com/bereketg/artisan-market/internal/storage"
)

// ValidationError names the first violated cart invariant; checkout fails
// fast on it before any order or provider call happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

var ErrMultipleArtisans = errors.New("cart contains products from multiple artisans")

// CheckoutResult reports the created order plus the payment leg. When
// payment initiation fails, Order is still set and PaymentError carries the
// user-visible message; the order stays with paymentStatus=Pending.
type CheckoutResult struct {
	Order        *models.Order
	CheckoutURL  string
	TxRef        string
	PaymentError string
}

type CheckoutService interface {
	Checkout(ctx context.Context, customerID int64) (*CheckoutResult, error)
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	cartSvc     CartService
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	userRepo    storage.UserStorage
	paymentSvc  PaymentService
	publisher   events.Publisher
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	cartSvc CartService,
	cartRepo storage.CartStorage,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	userRepo storage.UserStorage,
	paymentSvc PaymentService,
	publisher events.Publisher,
) CheckoutService {
	return &checkoutService{
		log:         log,
		db:          db,
		cartSvc:     cartSvc,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		paymentSvc:  paymentSvc,
		publisher:   publisher,
	}
}

// validateCart enforces the checkout preconditions: a non-empty cart, fully
// populated lines, and exactly one artisan across all lines. Lines missing
// an artisan are resolved from the catalog before the single-artisan check.
func (s *checkoutService) validateCart(ctx context.Context, cart *models.Cart) (int64, error) {
	if len(cart.Items) == 0 {
		return 0, &ValidationError{Field: "cart", Msg: "cart is empty"}
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ProductID <= 0 {
			return 0, &ValidationError{Field: "product_id", Msg: "line item has no product"}
		}
		if item.Name == "" {
			return 0, &ValidationError{Field: "name", Msg: "line item has no product name"}
		}
		if item.UnitPrice <= 0 {
			return 0, &ValidationError{Field: "unit_price", Msg: "line item price must be positive"}
		}
		if item.Quantity < 1 {
			return 0, &ValidationError{Field: "quantity", Msg: "line item quantity must be at least 1"}
		}
		if item.ArtisanID == 0 {
			product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
			if err != nil {
				return 0, &ValidationError{Field: "artisan_id", Msg: "could not resolve artisan for line item"}
			}
			item.ArtisanID = product.ArtisanID
		}
	}

	artisanID := cart.Items[0].ArtisanID
	for _, item := range cart.Items[1:] {
		if item.ArtisanID != artisanID {
			return 0, ErrMultipleArtisans
		}
	}
	return artisanID, nil
}

// Checkout validates the cart, creates the order in one DB transaction
// (with row locks on the product rows so stock cannot go negative under
// concurrent checkouts), clears the cart and then initiates payment. A
// payment failure after the order commit is a documented partial-failure
// state, not a rollback.
func (s *checkoutService) Checkout(ctx context.Context, customerID int64) (*CheckoutResult, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("customerID", customerID))
	logger.Info("starting checkout")

	cart, err := s.cartRepo.LoadCart(ctx, customerID)
	if err != nil {
		logger.Error("failed to load cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	artisanID, err := s.validateCart(ctx, cart)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("blocked").Inc()
		logger.Warn("checkout blocked", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := &models.Order{
		CustomerID:    customerID,
		ArtisanID:     artisanID,
		TotalAmount:   cart.Total(),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	for _, item := range cart.Items {
		product, err := s.productRepo.LockProductByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to lock product", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to lock product: %w", op, err)
		}
		if product.Stock < item.Quantity {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			metrics.OrdersTotal.WithLabelValues("blocked").Inc()
			logger.Warn("insufficient stock", slog.Int64("productID", item.ProductID),
				slog.Int("stock", product.Stock), slog.Int("requested", item.Quantity))
			return nil, fmt.Errorf("%s: insufficient stock for %q", op, item.Name)
		}
		if err := s.productRepo.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to decrement stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}
	}

	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	order.ID = orderID
	metrics.OrdersTotal.WithLabelValues("created").Inc()
	logger.Info("order created", slog.Int64("orderID", orderID))

	// line items leave the cart once the order is placed
	if err := s.cartSvc.ClearCart(ctx, customerID); err != nil {
		logger.Error("failed to clear cart after checkout", slog.Any("error", err))
	}

	s.publishCreated(order)

	payer, err := s.userRepo.GetUserByID(ctx, customerID)
	if err != nil {
		logger.Error("failed to load payer", slog.Any("error", err))
		return &CheckoutResult{Order: order, PaymentError: "could not start payment, retry from order details"}, nil
	}

	pt, err := s.paymentSvc.InitiateForOrder(ctx, order, payer)
	if err != nil {
		// order stays Pending; the user retries from the order details view
		result := &CheckoutResult{Order: order, PaymentError: err.Error()}
		if pt != nil {
			result.TxRef = pt.TxRef
		}
		return result, nil
	}

	return &CheckoutResult{
		Order:       order,
		CheckoutURL: pt.CheckoutURL,
		TxRef:       pt.TxRef,
	}, nil
}

func (s *checkoutService) publishCreated(order *models.Order) {
	env, err := events.NewEnvelope(events.EventOrderCreated, order.ID, events.OrderCreatedPayload{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		ArtisanID:   order.ArtisanID,
		TotalAmount: order.TotalAmount,
		Lines:       len(order.Items),
	})
	if err != nil {
		s.log.Error("failed to build order event", slog.Any("error", err))
		return
	}
	s.publisher.Publish(events.TopicOrderCreated, env)
}
