package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bereketg/artisan-market/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage describes order persistence. Creation is tx-scoped so the
// order header, its line items and the stock decrements commit atomically.
type OrderStorage interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error)
	GetOrdersByArtisanID(ctx context.Context, artisanID int64) ([]*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

// CreateOrderTx inserts the order header and its line items inside the
// caller's transaction and returns the new order ID.
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (customer_id, artisan_id, total_amount, status, payment_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		order.CustomerID, order.ArtisanID, order.TotalAmount, order.Status, order.PaymentStatus,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, item.ProductID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return id, nil
}

const orderCols = "id, customer_id, artisan_id, total_amount, status, payment_status, created_at"

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, "SELECT "+orderCols+" FROM orders WHERE id = $1", id)
	if err := row.Scan(&order.ID, &order.CustomerID, &order.ArtisanID, &order.TotalAmount,
		&order.Status, &order.PaymentStatus, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, product_id, name, unit_price, quantity FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.ArtisanID, &order.TotalAmount,
			&order.Status, &order.PaymentStatus, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderCols+" FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
}

func (r *orderRepository) GetOrdersByArtisanID(ctx context.Context, artisanID int64) ([]*models.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderCols+" FROM orders WHERE artisan_id = $1 ORDER BY created_at DESC", artisanID)
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderCols+" FROM orders ORDER BY created_at DESC")
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET payment_status = $1 WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
