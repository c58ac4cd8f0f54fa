package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/storage"
)

// ErrNotOwner means the caller is neither the owning artisan nor an admin.
var ErrNotOwner = errors.New("not the owner of this resource")

// CatalogService covers the public read side of the product catalog and the
// artisan-scoped write side.
type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, artisanID int64, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, callerID int64, callerRole models.Role, p *models.Product) error
	DeleteProduct(ctx context.Context, callerID int64, callerRole models.Role, id int64) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{log: log, productRepo: productRepo}
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"

	products, err := s.productRepo.ListProducts(ctx, category)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, artisanID int64, p *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("artisanID", artisanID))

	p.ArtisanID = artisanID
	created, err := s.productRepo.CreateProduct(ctx, p)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

// UpdateProduct lets the owning artisan (or an admin) modify a listing.
// The artisan binding of a product never changes.
func (s *catalogService) UpdateProduct(ctx context.Context, callerID int64, callerRole models.Role, p *models.Product) error {
	const op = "service.CatalogService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", p.ID))

	existing, err := s.productRepo.GetProductByID(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if existing.ArtisanID != callerID && callerRole != models.RoleAdmin {
		logger.Warn("update rejected", slog.Int64("callerID", callerID))
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := s.productRepo.UpdateProduct(ctx, p); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update product: %w", op, err)
	}
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, callerID int64, callerRole models.Role, id int64) error {
	const op = "service.CatalogService.DeleteProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	existing, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if existing.ArtisanID != callerID && callerRole != models.RoleAdmin {
		logger.Warn("delete rejected", slog.Int64("callerID", callerID))
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete product: %w", op, err)
	}
	return nil
}
