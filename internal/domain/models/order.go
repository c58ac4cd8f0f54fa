package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// PaymentStatus tracks the payment leg independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentSuccess PaymentStatus = "Success"
	PaymentFailed  PaymentStatus = "Failed"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderShipped: true, OrderCancelled: true},
	OrderShipped:   {OrderDelivered: true},
	OrderDelivered: {},
	OrderCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
// Delivered and Cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// OrderItem is one product line frozen into an order at checkout time.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Order belongs to exactly one customer and exactly one artisan; every line
// item shares that artisan. Invariant: TotalAmount == sum(UnitPrice*Quantity).
type Order struct {
	ID            int64         `json:"id"`
	CustomerID    int64         `json:"customer_id"`
	ArtisanID     int64         `json:"artisan_id"`
	Items         []OrderItem   `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}
