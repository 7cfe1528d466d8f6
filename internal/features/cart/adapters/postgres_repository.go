package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"printstore-api/internal/features/cart/domain"
)

// PostgresRepository implements the CartRepository port over pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts or adjusts a cart line. The unique (user_id, product_id,
// selected_size) constraint turns repeat adds into quantity updates.
func (r *PostgresRepository) Upsert(ctx context.Context, item *domain.CartItem, replace bool) error {
	query := `
		INSERT INTO cart (user_id, product_id, quantity, selected_size)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id, selected_size)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
		RETURNING id, quantity, created_at`
	if replace {
		query = `
		INSERT INTO cart (user_id, product_id, quantity, selected_size)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id, selected_size)
		DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id, quantity, created_at`
	}

	err := r.pool.QueryRow(ctx, query,
		item.UserID, item.ProductID, item.Quantity, item.SelectedSize,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing cart line.
func (r *PostgresRepository) SetQuantity(ctx context.Context, userID uuid.UUID, productID int64, selectedSize string, quantity int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart SET quantity = $4
		WHERE user_id = $1 AND product_id = $2 AND selected_size = $3`,
		userID, productID, selectedSize, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Remove deletes one cart line.
func (r *PostgresRepository) Remove(ctx context.Context, userID uuid.UUID, productID int64, selectedSize string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM cart
		WHERE user_id = $1 AND product_id = $2 AND selected_size = $3`,
		userID, productID, selectedSize,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListByUser returns the user's cart lines, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, product_id, quantity, selected_size, created_at
		FROM cart
		WHERE user_id = $1
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		err := rows.Scan(&item.ID, &item.UserID, &item.ProductID,
			&item.Quantity, &item.SelectedSize, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return items, nil
}

// Clear deletes every cart line of the user.
func (r *PostgresRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
