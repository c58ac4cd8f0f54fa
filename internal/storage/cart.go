package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// KeyCart - per-user cart snapshot: cart:{user_id} -> JSON models.Cart
const KeyCart = "cart:%d"

// CartStorage persists the full cart snapshot on every mutation. A missing
// key reads back as an empty cart, never an error.
type CartStorage interface {
	LoadCart(ctx context.Context, userID int64) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID int64) error
}

type cartRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRepository(rdb *redis.Client, ttl time.Duration) CartStorage {
	return &cartRepository{rdb: rdb, ttl: ttl}
}

func (r *cartRepository) LoadCart(ctx context.Context, userID int64) (*models.Cart, error) {
	raw, err := r.rdb.Get(ctx, fmt.Sprintf(KeyCart, userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &models.Cart{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &models.Cart{}
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, fmt.Sprintf(KeyCart, cart.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, fmt.Sprintf(KeyCart, userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
