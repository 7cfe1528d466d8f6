package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned when a bearer token is missing, malformed or
// rejected by the auth service.
var ErrUnauthorized = errors.New("unauthorized")

// User identifies an authenticated storefront customer.
type User struct {
	// ID is the auth service's user id.
	ID uuid.UUID
	// Email is the user's account email.
	Email string
}

// Verifier resolves a bearer token to a user identity.
// This is a Secondary Port (Driven Port); token issuance is out of scope.
type Verifier interface {
	// Verify returns the user owning the token, or ErrUnauthorized.
	Verify(ctx context.Context, token string) (*User, error)
}
