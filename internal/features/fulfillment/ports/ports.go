package ports

import (
	"context"
	"time"

	"printstore-api/internal/features/fulfillment/domain"
)

// TokenSource hands out a currently valid vendor access token.
// This is a Primary dependency of the submission workflow.
type TokenSource interface {
	// Token returns a valid access token, refreshing it when needed.
	Token(ctx context.Context) (string, error)
}

// TokenFetcher performs the raw credential exchange with the vendor.
// Implemented by the vendor adapter, consumed by the token cache.
type TokenFetcher interface {
	// FetchToken exchanges client credentials for a token and its lifetime.
	FetchToken(ctx context.Context) (token string, expiresIn time.Duration, err error)
}

// Vendor is the outbound port to the fulfillment provider's order API.
type Vendor interface {
	// CreateOrder submits an order and returns the vendor's acknowledgement.
	CreateOrder(ctx context.Context, token string, order *domain.OrderSubmission) (*domain.VendorOrderResult, error)
	// ListOrders fetches the vendor's full order listing for the merchant
	// account. The vendor API has no per-user filter.
	ListOrders(ctx context.Context, token string) ([]domain.VendorOrder, error)
}
