package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fwojciec/llmfetch"
)

// DefaultRetryAttempts is the total number of tries for a fetch.
const DefaultRetryAttempts = 4

// DefaultRetryDelay is the base of the exponential backoff: 1s, 2s, 4s.
const DefaultRetryDelay = 1 * time.Second

var _ llmfetch.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries transient fetch failures with exponential backoff.
type RetryFetcher struct {
	fetcher  llmfetch.Fetcher
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// RetryOption configures a RetryFetcher.
type RetryOption func(*RetryFetcher)

// WithRetryAttempts sets the total number of tries.
func WithRetryAttempts(n uint) RetryOption {
	return func(f *RetryFetcher) {
		f.attempts = n
	}
}

// WithRetryDelay sets the first backoff delay.
// This is useful for testing without waiting for real delays.
func WithRetryDelay(d time.Duration) RetryOption {
	return func(f *RetryFetcher) {
		f.delay = d
	}
}

// WithRetryLogger logs each retry at info level.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(f *RetryFetcher) {
		f.logger = logger
	}
}

// NewRetryFetcher wraps fetcher with retries.
func NewRetryFetcher(fetcher llmfetch.Fetcher, opts ...RetryOption) *RetryFetcher {
	f := &RetryFetcher{
		fetcher:  fetcher,
		attempts: DefaultRetryAttempts,
		delay:    DefaultRetryDelay,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch tries the wrapped fetcher until it succeeds, returns a permanent
// error, or runs out of attempts. The last error is returned.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return retry.DoWithData(
		func() (string, error) {
			return f.fetcher.Fetch(ctx, url)
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsTransient),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Info("retrying fetch", "url", url, "attempt", n+2, "error", err)
		}),
	)
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.fetcher.Close()
}

// IsTransient reports whether a fetch error is worth retrying: network
// failures and timeouts, 429 and 5xx responses. Invalid input, other
// statuses and cancellation are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if llmfetch.ErrorCode(err) == llmfetch.EINVALID {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return true
}
