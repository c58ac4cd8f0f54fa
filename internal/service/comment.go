package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/storage"
)

type CommentService interface {
	CreateComment(ctx context.Context, authorID, productID int64, text string) (*models.Comment, error)
	ListComments(ctx context.Context, productID int64) ([]*models.Comment, error)
	// DeleteComment removes a comment; allowed for its author and for admins.
	DeleteComment(ctx context.Context, callerID int64, callerRole models.Role, commentID int64) error
}

type commentService struct {
	log         *slog.Logger
	commentRepo storage.CommentStorage
	productRepo storage.ProductStorage
}

func NewCommentService(log *slog.Logger, commentRepo storage.CommentStorage, productRepo storage.ProductStorage) CommentService {
	return &commentService{log: log, commentRepo: commentRepo, productRepo: productRepo}
}

func (s *commentService) CreateComment(ctx context.Context, authorID, productID int64, text string) (*models.Comment, error) {
	const op = "service.CommentService.CreateComment"
	logger := s.log.With(slog.String("op", op), slog.Int64("authorID", authorID), slog.Int64("productID", productID))

	// comments only attach to existing products
	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment, err := s.commentRepo.CreateComment(ctx, &models.Comment{
		AuthorID:  authorID,
		ProductID: productID,
		Text:      text,
	})
	if err != nil {
		logger.Error("failed to create comment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return comment, nil
}

func (s *commentService) ListComments(ctx context.Context, productID int64) ([]*models.Comment, error) {
	const op = "service.CommentService.ListComments"

	comments, err := s.commentRepo.GetCommentsByProductID(ctx, productID)
	if err != nil {
		s.log.Error("failed to list comments", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return comments, nil
}

func (s *commentService) DeleteComment(ctx context.Context, callerID int64, callerRole models.Role, commentID int64) error {
	const op = "service.CommentService.DeleteComment"
	logger := s.log.With(slog.String("op", op), slog.Int64("commentID", commentID))

	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if comment.AuthorID != callerID && callerRole != models.RoleAdmin {
		logger.Warn("delete rejected", slog.Int64("callerID", callerID))
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := s.commentRepo.DeleteComment(ctx, commentID); err != nil {
		logger.Error("failed to delete comment", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
