package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventPaymentStarted = "PaymentStarted"
	EventPaymentSuccess = "PaymentSuccess"
	EventPaymentFailed  = "PaymentFailed"
	EventOrderStatus    = "OrderStatusChanged"
)

const (
	TopicOrderCreated = "order.created"
	TopicPayment      = "order.payment"
	TopicOrderStatus  = "order.status"
)

// Envelope wraps every published event. The order ID doubles as the
// partition key so one order's events keep their relative order.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Version    int             `json:"event_version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	OrderID    int64           `json:"order_id"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope around an already-marshalled payload.
func NewEnvelope(eventType string, orderID int64, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		Version:    1,
		OccurredAt: time.Now(),
		Producer:   "artisan-market",
		OrderID:    orderID,
		Payload:    raw,
	}, nil
}

type OrderCreatedPayload struct {
	OrderID     int64   `json:"order_id"`
	CustomerID  int64   `json:"customer_id"`
	ArtisanID   int64   `json:"artisan_id"`
	TotalAmount float64 `json:"total_amount"`
	Lines       int     `json:"lines"`
}

type PaymentPayload struct {
	OrderID int64   `json:"order_id"`
	TxRef   string  `json:"tx_ref"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason,omitempty"`
}

type OrderStatusPayload struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}
