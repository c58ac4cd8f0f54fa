package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/lib/pq"
)

var (
	ErrPaymentNotFound = errors.New("payment transaction not found")
	ErrTxRefTaken      = errors.New("tx_ref already exists")
)

// PaymentStorage records payment-initiation attempts. tx_ref carries a
// UNIQUE constraint, so the improbable collision shows up as an insert
// error instead of a silent overwrite.
type PaymentStorage interface {
	CreateTransaction(ctx context.Context, p *models.PaymentTransaction) (*models.PaymentTransaction, error)
	GetByTxRef(ctx context.Context, txRef string) (*models.PaymentTransaction, error)
	SetCheckoutURL(ctx context.Context, txRef, url string) error
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentStorage {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateTransaction(ctx context.Context, p *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO payment_transactions (tx_ref, order_id, amount, currency, payer_email, payer_name, payer_phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id, created_at`,
		p.TxRef, p.OrderID, p.Amount, p.Currency, p.PayerEmail, p.PayerName, p.PayerPhone,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, ErrTxRefTaken
		}
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) GetByTxRef(ctx context.Context, txRef string) (*models.PaymentTransaction, error) {
	p := &models.PaymentTransaction{}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tx_ref, order_id, amount, currency, payer_email, payer_name, payer_phone, COALESCE(checkout_url, ''), created_at
		 FROM payment_transactions WHERE tx_ref = $1`, txRef)
	if err := row.Scan(&p.ID, &p.TxRef, &p.OrderID, &p.Amount, &p.Currency,
		&p.PayerEmail, &p.PayerName, &p.PayerPhone, &p.CheckoutURL, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) SetCheckoutURL(ctx context.Context, txRef, url string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE payment_transactions SET checkout_url = $1 WHERE tx_ref = $2", url, txRef)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
