package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepRecorder replaces the executor's sleep so tests run instantly while
// still observing the requested delays.
type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestExecutor(client *http.Client, minInterval time.Duration, maxAttempts int) (*Executor, *sleepRecorder) {
	rec := &sleepRecorder{}
	e := NewExecutor(client, minInterval, maxAttempts)
	e.sleep = rec.sleep
	return e, rec
}

// errorTransport fails every request at the transport level and counts attempts.
type errorTransport struct {
	calls int32
}

func (t *errorTransport) RoundTrip(*http.Request) (*http.Response, error) {
	atomic.AddInt32(&t.calls, 1)
	return nil, errors.New("connection refused")
}

func TestExecutor_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	e, rec := newTestExecutor(server.Client(), 0, 3)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := e.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, rec.delays)
}

func TestExecutor_RetryAfterHonoured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e, rec := newTestExecutor(server.Client(), 0, 3)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := e.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	require.Len(t, rec.delays, 1)
	assert.Equal(t, 5*time.Second, rec.delays[0])
}

func TestExecutor_RateLimitExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"too many requests"}`))
	}))
	defer server.Close()

	e, rec := newTestExecutor(server.Client(), 0, 3)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := e.Do(req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrExhaustedRetries))

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, http.StatusTooManyRequests, retryErr.LastStatus)
	assert.Contains(t, string(retryErr.Body), "too many requests")

	// Three attempts, no fourth. Backoff 2^1, 2^2 between them.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, rec.delays, 2)
	assert.Equal(t, 2*time.Second, rec.delays[0])
	assert.Equal(t, 4*time.Second, rec.delays[1])
}

func TestExecutor_TransportFailureExhausted(t *testing.T) {
	transport := &errorTransport{}
	client := &http.Client{Transport: transport}

	e, rec := newTestExecutor(client, 0, 3)

	req, err := http.NewRequest(http.MethodGet, "http://qikink.invalid/api/order", nil)
	require.NoError(t, err)

	resp, err := e.Do(req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrExhaustedRetries))

	var retryErr *RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Error(t, retryErr.Err)
	assert.Zero(t, retryErr.LastStatus)

	assert.Equal(t, int32(3), atomic.LoadInt32(&transport.calls))
	assert.Len(t, rec.delays, 2)
}

func TestExecutor_ThrottlesBetweenRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e, rec := newTestExecutor(server.Client(), 2*time.Second, 1)

	// Pretend a request was initiated just now.
	e.lastRequest = e.now()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := e.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, rec.delays, 1)
	assert.InDelta(t, float64(2*time.Second), float64(rec.delays[0]), float64(100*time.Millisecond))
}

func TestExecutor_ContextCancelled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := NewExecutor(server.Client(), 0, 3)
	// Real ctx-aware sleep with a cancelled context must abort the retry loop.
	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	cancel()

	_, err = e.Do(req)
	require.Error(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
