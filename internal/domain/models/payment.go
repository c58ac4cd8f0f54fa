package models

import "time"

// PaymentTransaction is one payment-initiation attempt against the provider.
// TxRef is unique in the database; its value is built from the order ID plus
// wall-clock millis, so uniqueness across attempts is only probabilistic.
type PaymentTransaction struct {
	ID          int64     `json:"id"`
	TxRef       string    `json:"tx_ref"`
	OrderID     int64     `json:"order_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PayerEmail  string    `json:"payer_email"`
	PayerName   string    `json:"payer_name"`
	PayerPhone  string    `json:"payer_phone"`
	CheckoutURL string    `json:"checkout_url"`
	CreatedAt   time.Time `json:"created_at"`
}
