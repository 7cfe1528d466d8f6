package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printstore-api/internal/features/orders/domain"
)

// querier is the slice of pgxpool.Pool the repository needs, so tests can
// exercise the transaction paths without a live database.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements the OrderRepository port over pgx.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// CreateWithItems writes the order header and every item in one transaction,
// so a failed item insert can never leave an orphan header behind.
func (r *PostgresRepository) CreateWithItems(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			user_id, qikink_order_id, order_number, status, payment_mode,
			total_amount, subtotal, shipping, taxes,
			coupon_discount, coupon_code, shipping_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12)
		RETURNING id, created_at`,
		order.UserID, order.QikinkOrderID, order.OrderNumber, order.Status,
		order.PaymentMode, order.TotalAmount, order.Subtotal, order.Shipping,
		order.Taxes, order.CouponDiscount, order.CouponCode, order.ShippingAddress,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if len(order.Items) > 0 {
		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(`
				INSERT INTO order_items (order_id, product_id, quantity, price, selected_size)
				VALUES ($1, $2, $3, $4, $5)`,
				order.ID, item.ProductID, item.Quantity, item.Price, item.SelectedSize,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// ListByUser returns the user's orders newest first, with items attached.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, COALESCE(qikink_order_id, 0), order_number, status,
		       COALESCE(payment_mode, ''), total_amount, subtotal, shipping, taxes,
		       coupon_discount, COALESCE(coupon_code, ''), created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.QikinkOrderID, &o.OrderNumber,
			&o.Status, &o.PaymentMode, &o.TotalAmount, &o.Subtotal,
			&o.Shipping, &o.Taxes, &o.CouponDiscount, &o.CouponCode, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price, COALESCE(selected_size, '')
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.Price, &item.SelectedSize)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	return orders, nil
}

// QikinkOrderIDs returns the vendor ids of the user's recorded orders.
func (r *PostgresRepository) QikinkOrderIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT qikink_order_id
		FROM orders
		WHERE user_id = $1 AND qikink_order_id IS NOT NULL`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query qikink order ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan qikink order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read qikink order ids: %w", err)
	}
	return ids, nil
}
