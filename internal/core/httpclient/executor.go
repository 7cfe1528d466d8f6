package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"printstore-api/internal/core/logger"

	"go.uber.org/zap"
)

// ErrExhaustedRetries is returned when every attempt of a throttled request
// failed with a retryable condition.
var ErrExhaustedRetries = errors.New("retries exhausted")

// RetryError carries the last observed response or transport error after the
// retry bound was reached. It wraps ErrExhaustedRetries.
type RetryError struct {
	// Attempts is the number of attempts that were made.
	Attempts int
	// LastStatus is the HTTP status of the last response, 0 on transport failure.
	LastStatus int
	// Body is the last response body, if any.
	Body []byte
	// Err is the last transport error, if any.
	Err error
}

func (e *RetryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("retries exhausted after %d attempts: last status %d", e.Attempts, e.LastStatus)
}

func (e *RetryError) Unwrap() error { return ErrExhaustedRetries }

// Executor wraps an http.Client with a process-wide minimum-interval throttle
// and bounded exponential-backoff retries on HTTP 429 and transport failures.
// It knows nothing about request semantics; callers decide what is safe to
// send through it.
type Executor struct {
	client      *http.Client
	minInterval time.Duration
	maxAttempts int

	mu          sync.Mutex
	lastRequest time.Time

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor over the given client. maxAttempts is the
// total number of attempts, not the number of retries.
func NewExecutor(client *http.Client, minInterval time.Duration, maxAttempts int) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Executor{
		client:      client,
		minInterval: minInterval,
		maxAttempts: maxAttempts,
		now:         time.Now,
		sleep:       sleepCtx,
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

// throttle blocks until the minimum interval since the previous request has
// elapsed, then marks the current request as initiated.
func (e *Executor) throttle(ctx context.Context) error {
	e.mu.Lock()
	wait := e.minInterval - e.now().Sub(e.lastRequest)
	if wait > 0 {
		e.mu.Unlock()
		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
		e.mu.Lock()
	}
	e.lastRequest = e.now()
	e.mu.Unlock()
	return nil
}

// Do executes the request, retrying on 429 responses and transport errors.
// A 429 with a Retry-After header is retried after that many seconds,
// otherwise after 2^attempt seconds. Non-429 responses are returned as-is,
// whatever their status; interpreting them is the caller's job.
func (e *Executor) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	var (
		lastErr    error
		lastStatus int
		lastBody   []byte
	)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			req.Body = body
		}

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			lastStatus = 0
			lastBody = nil
			if attempt == e.maxAttempts {
				break
			}
			delay := backoffDelay(attempt)
			logger.Get().Warn("Request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if serr := e.sleep(ctx, delay); serr != nil {
				return nil, serr
			}
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		lastErr = nil
		lastStatus = resp.StatusCode
		lastBody, _ = io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if attempt == e.maxAttempts {
			break
		}

		delay := retryAfterDelay(resp, attempt)
		logger.Get().Warn("Rate limited by upstream, retrying",
			zap.String("url", req.URL.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		if serr := e.sleep(ctx, delay); serr != nil {
			return nil, serr
		}
	}

	return nil, &RetryError{
		Attempts:   e.maxAttempts,
		LastStatus: lastStatus,
		Body:       lastBody,
		Err:        lastErr,
	}
}

// retryAfterDelay honours a Retry-After header given in seconds, falling back
// to exponential backoff.
func retryAfterDelay(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return backoffDelay(attempt)
}

func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
