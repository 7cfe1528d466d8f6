package ports

import (
	"context"

	"github.com/google/uuid"

	"printstore-api/internal/features/orders/domain"
)

// OrderRepository is the outbound port for order persistence.
type OrderRepository interface {
	// CreateWithItems persists an order header and its items atomically.
	// Either the whole order lands or nothing does. The stored ID and
	// CreatedAt are written back into the passed order.
	CreateWithItems(ctx context.Context, order *domain.Order) error

	// ListByUser returns a user's orders, newest first, items included.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)

	// QikinkOrderIDs returns the vendor order ids recorded for a user.
	// Orders without a vendor id are skipped.
	QikinkOrderIDs(ctx context.Context, userID uuid.UUID) ([]int64, error)
}
