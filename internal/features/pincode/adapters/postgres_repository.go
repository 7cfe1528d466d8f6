package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printstore-api/internal/features/pincode/domain"
)

// PostgresRepository implements the PincodeRepository port over pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Lookup returns the aggregated serviceability row for a pincode.
func (r *PostgresRepository) Lookup(ctx context.Context, pincode string) (*domain.Serviceability, error) {
	var s domain.Serviceability
	err := r.pool.QueryRow(ctx, `
		SELECT pincode, COALESCE(city, ''), COALESCE(state, ''),
		       cod_delivery, prepaid_delivery, pickup, reverse_pickup,
		       couriers_count, couriers
		FROM pincodes_agg
		WHERE pincode = $1`,
		pincode,
	).Scan(&s.Pincode, &s.City, &s.State, &s.CODDelivery, &s.PrepaidDelivery,
		&s.Pickup, &s.ReversePickup, &s.CouriersCount, &s.Couriers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPincodeNotFound
		}
		return nil, fmt.Errorf("failed to look up pincode: %w", err)
	}
	return &s, nil
}
