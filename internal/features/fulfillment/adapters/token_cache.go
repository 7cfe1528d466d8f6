package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"printstore-api/internal/core/cache"
	"printstore-api/internal/core/logger"
	"printstore-api/internal/features/fulfillment/ports"

	"go.uber.org/zap"
)

// tokenStoreKey is where a live vendor token is shared between replicas.
const tokenStoreKey = "qikink:token"

// storedToken is the JSON shape persisted in the shared cache.
type storedToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenCache implements ports.TokenSource over a TokenFetcher. It holds a
// single vendor token with expiry, refreshes it when absent or expired, and
// enforces a minimum delay since the last refresh was initiated. The vendor
// token endpoint is idempotent per credentials, so a racing refresh would be
// harmless; the mutex simply serializes callers within one process.
type TokenCache struct {
	fetcher      ports.TokenFetcher
	store        cache.Cache // optional, may be nil
	safetyMargin time.Duration
	minInterval  time.Duration

	mu        sync.Mutex
	value     string
	expiresAt time.Time
	lastFetch time.Time

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTokenCache creates a token cache. store may be nil to keep the token
// purely in-process; when set, tokens are shared across replicas through it.
func NewTokenCache(fetcher ports.TokenFetcher, store cache.Cache, minInterval, safetyMargin time.Duration) *TokenCache {
	return &TokenCache{
		fetcher:      fetcher,
		store:        store,
		safetyMargin: safetyMargin,
		minInterval:  minInterval,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Token returns a valid access token, refreshing it when needed.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.value != "" && now.Before(c.expiresAt) {
		return c.value, nil
	}

	// Another replica may already hold a live token.
	if tok := c.fromStore(ctx); tok != nil {
		c.value = tok.Value
		c.expiresAt = tok.ExpiresAt
		return c.value, nil
	}

	// Throttle refreshes relative to when the last one was initiated.
	if wait := c.minInterval - now.Sub(c.lastFetch); wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	c.lastFetch = c.now()

	value, expiresIn, err := c.fetcher.FetchToken(ctx)
	if err != nil {
		// Failed results are never cached.
		return "", err
	}

	c.value = value
	c.expiresAt = c.now().Add(expiresIn - c.safetyMargin)
	c.toStore(ctx)

	logger.Get().Debug("Vendor token refreshed",
		zap.Time("expires_at", c.expiresAt),
	)

	return c.value, nil
}

// fromStore returns a still-valid token from the shared cache, or nil.
// Store failures only cost an extra refresh, so they are not fatal.
func (c *TokenCache) fromStore(ctx context.Context) *storedToken {
	if c.store == nil {
		return nil
	}

	data, err := c.store.Get(ctx, tokenStoreKey)
	if err != nil {
		return nil
	}

	var tok storedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil
	}
	if tok.Value == "" || !c.now().Before(tok.ExpiresAt) {
		return nil
	}
	return &tok
}

func (c *TokenCache) toStore(ctx context.Context) {
	if c.store == nil {
		return
	}

	ttl := c.expiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(storedToken{Value: c.value, ExpiresAt: c.expiresAt})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, tokenStoreKey, data, ttl); err != nil {
		logger.Get().Warn("Failed to share vendor token", zap.Error(err))
	}
}
