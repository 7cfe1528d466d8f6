package httpclient

import (
	"net/http"
	"time"

	"printstore-api/internal/core/logger"

	"go.uber.org/zap"
)

// defaultUserAgent identifies this service to the vendor and auth APIs it calls.
const defaultUserAgent = "printstore-api/1.0"

// LoggingRoundTripper stamps outbound requests with the service user agent and
// captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", defaultUserAgent)
	}

	start := time.Now()

	logger.Get().Debug("Outbound request started",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("url", req.URL.String()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("Outbound request failed",
			zap.String("method", req.Method),
			zap.String("host", req.URL.Host),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("Outbound request completed",
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}
