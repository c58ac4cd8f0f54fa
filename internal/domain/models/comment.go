package models

import "time"

// Comment is a user note on a product, deletable by its author or an admin.
type Comment struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	ProductID int64     `json:"product_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
