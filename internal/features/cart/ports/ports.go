package ports

import (
	"context"

	"github.com/google/uuid"

	"printstore-api/internal/features/cart/domain"
)

// CartRepository is the outbound port for cart persistence.
type CartRepository interface {
	// Upsert inserts a cart line or adjusts the existing one. When replace
	// is true the stored quantity is overwritten, otherwise it accumulates.
	Upsert(ctx context.Context, item *domain.CartItem, replace bool) error

	// SetQuantity overwrites the quantity of an existing line.
	// Returns domain.ErrItemNotFound when the line does not exist.
	SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, selectedSize string, quantity int) error

	// Remove deletes one cart line.
	// Returns domain.ErrItemNotFound when the line does not exist.
	Remove(ctx context.Context, userID uuid.UUID, productID int64, selectedSize string) error

	// ListByUser returns the user's cart lines, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)

	// Clear deletes every cart line of the user.
	Clear(ctx context.Context, userID uuid.UUID) error
}
