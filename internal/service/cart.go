package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/storage"
)

var ErrNotInCart = errors.New("product not in cart")

// CartService is an explicit, injected cart store. Quantities are clamped
// against the product's stock on every mutation, and the full snapshot is
// persisted after each change.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, qty int) (*models.Cart, error)
	SetQuantity(ctx context.Context, userID, productID int64, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*models.Cart, error)
	ClearCart(ctx context.Context, userID int64) error
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{log: log, cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	const op = "service.CartService.GetCart"

	cart, err := s.cartRepo.LoadCart(ctx, userID)
	if err != nil {
		s.log.Error("failed to load cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

// AddItem merges the quantity into an existing line or inserts a new one.
// The resulting quantity is clamped to min(existing+qty, stock); an add can
// never push a line past the product's stock ceiling.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, qty int) (*models.Cart, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if qty < 1 {
		return nil, fmt.Errorf("%s: quantity must be at least 1", op)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if product.Stock < 1 {
		return nil, fmt.Errorf("%s: product is out of stock", op)
	}

	cart, err := s.cartRepo.LoadCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if i := cart.Find(productID); i >= 0 {
		cart.Items[i].Quantity = clamp(cart.Items[i].Quantity+qty, 1, product.Stock)
		cart.Items[i].StockCeiling = product.Stock
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:    product.ID,
			Name:         product.Name,
			UnitPrice:    product.Price,
			Quantity:     clamp(qty, 1, product.Stock),
			StockCeiling: product.Stock,
			ArtisanID:    product.ArtisanID,
		})
	}

	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

// SetQuantity replaces the line quantity, clamped to [1, stock].
func (s *cartService) SetQuantity(ctx context.Context, userID, productID int64, qty int) (*models.Cart, error) {
	const op = "service.CartService.SetQuantity"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cart, err := s.cartRepo.LoadCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	i := cart.Find(productID)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotInCart)
	}
	cart.Items[i].Quantity = clamp(qty, 1, product.Stock)
	cart.Items[i].StockCeiling = product.Stock

	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) (*models.Cart, error) {
	const op = "service.CartService.RemoveItem"

	cart, err := s.cartRepo.LoadCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	i := cart.Find(productID)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotInCart)
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID int64) error {
	const op = "service.CartService.ClearCart"

	if err := s.cartRepo.DeleteCart(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
