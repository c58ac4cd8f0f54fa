package models

import "time"

// Product is an item listed by an artisan. Stock is the cart-quantity ceiling.
type Product struct {
	ID          int64     `json:"id"`
	ArtisanID   int64     `json:"artisan_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}
