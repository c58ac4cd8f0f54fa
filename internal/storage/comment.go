package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bereketg/artisan-market/internal/domain/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentStorage interface {
	CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetCommentByID(ctx context.Context, id int64) (*models.Comment, error)
	GetCommentsByProductID(ctx context.Context, productID int64) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentStorage {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (author_id, product_id, text, created_at)
		 VALUES ($1, $2, $3, NOW()) RETURNING id, created_at`,
		c.AuthorID, c.ProductID, c.Text,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

func (r *commentRepository) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	c := &models.Comment{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, author_id, product_id, text, created_at FROM comments WHERE id = $1", id)
	if err := row.Scan(&c.ID, &c.AuthorID, &c.ProductID, &c.Text, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) GetCommentsByProductID(ctx context.Context, productID int64) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, author_id, product_id, text, created_at FROM comments WHERE product_id = $1 ORDER BY created_at DESC",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.ProductID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) DeleteComment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
