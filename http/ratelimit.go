package http

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/llmfetch"
	"golang.org/x/time/rate"
)

var (
	_ llmfetch.DomainLimiter = (*DomainLimiter)(nil)
	_ llmfetch.Fetcher       = (*RateLimitedFetcher)(nil)
)

// DomainLimiter provides per-domain rate limiting using token buckets.
// It creates a separate rate limiter for each domain, allowing concurrent
// requests to different domains while enforcing rate limits within each domain.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1. A non-positive rps
// disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.rps <= 0 {
		return ctx.Err()
	}

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// RateLimitedFetcher waits on a DomainLimiter before each fetch.
type RateLimitedFetcher struct {
	fetcher llmfetch.Fetcher
	limiter llmfetch.DomainLimiter
}

// NewRateLimitedFetcher wraps fetcher so requests to one host are paced by
// limiter.
func NewRateLimitedFetcher(fetcher llmfetch.Fetcher, limiter llmfetch.DomainLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{fetcher: fetcher, limiter: limiter}
}

// Fetch waits for the host of rawURL, then delegates. URLs that do not
// parse are passed through so the wrapped fetcher reports the error.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return "", err
		}
	}
	return f.fetcher.Fetch(ctx, rawURL)
}

// Close closes the wrapped fetcher.
func (f *RateLimitedFetcher) Close() error {
	return f.fetcher.Close()
}
