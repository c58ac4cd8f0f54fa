package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/lib/pq"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage describes catalog reads plus the tx-scoped mutators the
// checkout path needs (row lock and stock decrement).
type ProductStorage interface {
	ListProducts(ctx context.Context, category string) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	// LockProductByIDTx takes a FOR UPDATE lock so concurrent checkouts cannot
	// decrement the same stock row past zero.
	LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, by int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productCols = "id, artisan_id, name, description, category, price, stock, created_at"

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.ArtisanID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListProducts(ctx context.Context, category string) ([]*models.Product, error) {
	query := "SELECT " + productCols + " FROM products"
	var args []any
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productCols+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (artisan_id, name, description, category, price, stock, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id, created_at`,
		p.ArtisanID, p.Name, p.Description, p.Category, p.Price, p.Stock,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $1, description = $2, category = $3, price = $4, stock = $5 WHERE id = $6`,
		p.Name, p.Description, p.Category, p.Price, p.Stock, p.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+productCols+" FROM products WHERE id = $1 FOR UPDATE NOWAIT", id)
	p, err := scanProduct(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, by int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1", by, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
