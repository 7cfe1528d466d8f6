package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"printstore-api/internal/core/config"
	"printstore-api/internal/core/httpclient"

	"github.com/google/uuid"
)

// GoTrueVerifier implements Verifier against a GoTrue-compatible auth service
// (the storefront's managed database platform exposes one).
type GoTrueVerifier struct {
	client *http.Client
	config config.AuthConfig
}

// NewGoTrueVerifier creates a verifier for the configured auth service.
func NewGoTrueVerifier(cfg config.AuthConfig) *GoTrueVerifier {
	return &GoTrueVerifier{
		client: httpclient.NewClient(10 * time.Second),
		config: cfg,
	}
}

// gotrueUser is the wire shape of the auth service's user endpoint.
type gotrueUser struct {
	// ID is the user's uuid.
	ID string `json:"id"`
	// Email is the account email.
	Email string `json:"email"`
}

// Verify resolves the bearer token via GET /auth/v1/user.
func (v *GoTrueVerifier) Verify(ctx context.Context, token string) (*User, error) {
	url := fmt.Sprintf("%s/auth/v1/user", v.config.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.config.ServiceKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("auth service returned status: %d", resp.StatusCode)
	}

	var wire gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	id, err := uuid.Parse(wire.ID)
	if err != nil {
		return nil, fmt.Errorf("auth service returned malformed user id: %w", err)
	}

	return &User{ID: id, Email: wire.Email}, nil
}
