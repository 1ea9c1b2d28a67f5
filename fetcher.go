package llmfetch

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the document at url decoded to UTF-8.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter paces requests per host.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx ends.
	Wait(ctx context.Context, domain string) error
}
