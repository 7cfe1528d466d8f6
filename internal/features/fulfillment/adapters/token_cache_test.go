package adapter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"printstore-api/internal/core/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher counts credential exchanges and returns canned tokens.
type stubFetcher struct {
	mu        sync.Mutex
	calls     int
	token     string
	expiresIn time.Duration
	err       error
}

func (f *stubFetcher) FetchToken(ctx context.Context) (string, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	return f.token, f.expiresIn, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeClock drives the cache's notion of time and records sleeps instead of
// actually waiting.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestTokenCache(fetcher *stubFetcher, store cache.Cache) (*TokenCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tc := NewTokenCache(fetcher, store, 2*time.Second, 60*time.Second)
	tc.now = clock.Now
	tc.sleep = clock.Sleep
	return tc, clock
}

func TestTokenCache_ReusesValidToken(t *testing.T) {
	fetcher := &stubFetcher{token: "tok-1", expiresIn: 1 * time.Hour}
	tc, clock := newTestTokenCache(fetcher, nil)
	ctx := context.Background()

	first, err := tc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	clock.now = clock.now.Add(30 * time.Minute)

	second, err := tc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", second)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestTokenCache_RefreshesAfterExpiry(t *testing.T) {
	fetcher := &stubFetcher{token: "tok-1", expiresIn: 10 * time.Minute}
	tc, clock := newTestTokenCache(fetcher, nil)
	ctx := context.Background()

	_, err := tc.Token(ctx)
	require.NoError(t, err)

	// Safety margin shaves 60s off the reported lifetime, so at 9m30s the
	// cached token is already considered expired.
	clock.now = clock.now.Add(9*time.Minute + 30*time.Second)
	fetcher.token = "tok-2"

	refreshed, err := tc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", refreshed)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestTokenCache_ThrottlesRefreshes(t *testing.T) {
	fetcher := &stubFetcher{token: "tok-1", expiresIn: 0}
	tc, clock := newTestTokenCache(fetcher, nil)
	ctx := context.Background()

	// Zero lifetime keeps every call on the refresh path.
	_, err := tc.Token(ctx)
	require.NoError(t, err)

	clock.now = clock.now.Add(500 * time.Millisecond)

	_, err = tc.Token(ctx)
	require.NoError(t, err)

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 1500*time.Millisecond, clock.sleeps[0])
	assert.Equal(t, 2, fetcher.callCount())
}

func TestTokenCache_FailedFetchNotCached(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("vendor down")}
	tc, clock := newTestTokenCache(fetcher, nil)
	ctx := context.Background()

	_, err := tc.Token(ctx)
	require.Error(t, err)

	clock.now = clock.now.Add(10 * time.Second)
	fetcher.err = nil
	fetcher.token = "tok-1"
	fetcher.expiresIn = 1 * time.Hour

	token, err := tc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestTokenCache_SharesTokenThroughStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	fetcher := &stubFetcher{token: "tok-1", expiresIn: 1 * time.Hour}
	first, _ := newTestTokenCache(fetcher, store)

	_, err = first.Token(ctx)
	require.NoError(t, err)

	// A second cache over the same store must find the token without
	// touching the vendor.
	other := &stubFetcher{token: "tok-other", expiresIn: 1 * time.Hour}
	second, _ := newTestTokenCache(other, store)

	token, err := second.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 0, other.callCount())
}
