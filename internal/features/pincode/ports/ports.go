package ports

import (
	"context"

	"printstore-api/internal/features/pincode/domain"
)

// PincodeRepository is the outbound port for serviceability lookups.
type PincodeRepository interface {
	// Lookup returns the serviceability row for a pincode.
	// Returns domain.ErrPincodeNotFound when no data exists.
	Lookup(ctx context.Context, pincode string) (*domain.Serviceability, error)
}
