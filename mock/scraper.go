package mock

import (
	"context"

	"github.com/fwojciec/llmfetch"
)

var _ llmfetch.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of llmfetch.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, req llmfetch.ScrapeRequest) (*llmfetch.ScrapeResult, error)
}

func (s *Scraper) Scrape(ctx context.Context, req llmfetch.ScrapeRequest) (*llmfetch.ScrapeResult, error) {
	return s.ScrapeFn(ctx, req)
}
