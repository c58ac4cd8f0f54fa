package models

import "time"

// CartItem is one product line inside a user's cart.
// Invariant: 1 <= Quantity <= StockCeiling.
type CartItem struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	StockCeiling int     `json:"stock_ceiling"`
	ArtisanID    int64   `json:"artisan_id"`
}

// Cart is the full snapshot persisted on every mutation and reloaded
// on first access.
type Cart struct {
	UserID    int64      `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Total returns the sum of unit price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// Find returns the index of the line with the given product, or -1.
func (c *Cart) Find(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
