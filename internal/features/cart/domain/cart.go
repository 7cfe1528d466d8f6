package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrItemNotFound is returned when a cart line does not exist for the user.
var ErrItemNotFound = errors.New("cart item not found")

// CartItem is one line of a user's cart. A product appears once per selected
// size; adding it again adjusts the quantity instead of duplicating the line.
type CartItem struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	ProductID    int64     `json:"product_id"`
	Quantity     int       `json:"quantity"`
	SelectedSize string    `json:"selected_size,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
