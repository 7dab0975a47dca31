// Package httpclient provides the retrying HTTP client used to fetch
// upstream dataset collections.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultMaxAttempts bounds the number of fetch attempts per request.
	DefaultMaxAttempts = 3

	// DefaultAttemptTimeout bounds each individual attempt.
	DefaultAttemptTimeout = 30 * time.Second

	// maxResponseSize caps response bodies (100MB).
	maxResponseSize = 100 * 1024 * 1024

	// errorBodyLimit is how much of an upstream error body is kept for
	// diagnostics.
	errorBodyLimit = 200

	userAgent = "spacedata-server/1.0"
)

// Client is the interface for upstream GET operations.
type Client interface {
	// Get fetches the URL and returns the response body. HTTP 429 and
	// 5xx responses, transport errors and per-attempt timeouts are
	// retried with exponential backoff; any other non-2xx status fails
	// immediately with an *HTTPError.
	Get(ctx context.Context, url string) ([]byte, error)
}

// RetryingClient is the default Client implementation.
type RetryingClient struct {
	client         *http.Client
	maxAttempts    uint
	attemptTimeout time.Duration
}

var _ Client = (*RetryingClient)(nil)

// New creates a retrying client. Zero values select the defaults.
func New(maxAttempts int, attemptTimeout time.Duration) *RetryingClient {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &RetryingClient{
		client:         &http.Client{},
		maxAttempts:    uint(maxAttempts),
		attemptTimeout: attemptTimeout,
	}
}

// Get performs the GET with bounded retries and exponential backoff.
func (c *RetryingClient) Get(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		slog.Debug("upstream fetch attempt", "attempt", attempt, "url", url)
		return c.getOnce(ctx, url)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxAttempts),
	)
	if err != nil {
		slog.Warn("upstream fetch failed", "url", url, "attempts", attempt, "error", err)
		return nil, err
	}
	return body, nil
}

// getOnce performs a single attempt bounded by the per-attempt timeout.
func (c *RetryingClient) getOnce(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport errors and attempt timeouts are retryable.
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response exceeds maximum size of %d bytes", maxResponseSize))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	httpErr := NewHTTPError(resp.StatusCode, url, truncate(body, errorBodyLimit))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		slog.Warn("upstream returned retryable status", "status", resp.StatusCode, "url", url)
		return nil, httpErr
	}
	return nil, backoff.Permanent(httpErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
