package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/events"
	"github.com/bereketg/artisan-market/internal/storage"
)

var ErrBadTransition = errors.New("illegal order status transition")

// OrderService is the read/lifecycle side of orders; creation happens in
// CheckoutService. Listing is role-scoped: customers see their own orders,
// artisans the orders addressed to them, admins everything.
type OrderService interface {
	ListOrders(ctx context.Context, callerID int64, callerRole models.Role) ([]*models.Order, error)
	GetOrder(ctx context.Context, callerID int64, callerRole models.Role, orderID int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, callerID int64, callerRole models.Role, orderID int64, to models.OrderStatus) error
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	publisher events.Publisher
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, publisher events.Publisher) OrderService {
	return &orderService{log: log, orderRepo: orderRepo, publisher: publisher}
}

func (s *orderService) ListOrders(ctx context.Context, callerID int64, callerRole models.Role) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	var (
		orders []*models.Order
		err    error
	)
	switch callerRole {
	case models.RoleAdmin:
		orders, err = s.orderRepo.ListOrders(ctx)
	case models.RoleArtisan:
		orders, err = s.orderRepo.GetOrdersByArtisanID(ctx, callerID)
	default:
		orders, err = s.orderRepo.GetOrdersByCustomerID(ctx, callerID)
	}
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, callerID int64, callerRole models.Role, orderID int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if callerRole != models.RoleAdmin && order.CustomerID != callerID && order.ArtisanID != callerID {
		return nil, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}
	return order, nil
}

// UpdateStatus moves the order along Pending -> Shipped -> Delivered (or to
// Cancelled from Pending). Only the order's artisan or an admin may do it.
func (s *orderService) UpdateStatus(ctx context.Context, callerID int64, callerRole models.Role, orderID int64, to models.OrderStatus) error {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("to", string(to)))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if callerRole != models.RoleAdmin && order.ArtisanID != callerID {
		logger.Warn("status update rejected", slog.Int64("callerID", callerID))
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}
	if !models.CanTransition(order.Status, to) {
		return fmt.Errorf("%s: %w: %s -> %s", op, ErrBadTransition, order.Status, to)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, to); err != nil {
		logger.Error("failed to update order status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	env, err := events.NewEnvelope(events.EventOrderStatus, orderID, events.OrderStatusPayload{
		OrderID: orderID,
		From:    string(order.Status),
		To:      string(to),
	})
	if err == nil {
		s.publisher.Publish(events.TopicOrderStatus, env)
	}

	logger.Info("order status updated")
	return nil
}
