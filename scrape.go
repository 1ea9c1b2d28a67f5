package llmfetch

import "context"

// ScrapeRequest asks for one document to be extracted into a job.
type ScrapeRequest struct {
	JobID int64 `json:"-"`

	// URL defaults to the job's source URL.
	URL string `json:"url"`

	// Fields defaults to all of the job's fields.
	Fields []string `json:"fields"`
}

// ScrapeResult is the row written by a scrape and the values behind it.
type ScrapeResult struct {
	RowID   int64               `json:"rowId"`
	Results map[string][]string `json:"results"`
}

// Scraper fetches a document, extracts the requested fields and stores
// them as a new row.
type Scraper interface {
	// Scrape returns ENOTFOUND if the job does not exist and EINVALID if the
	// request names fields the job does not declare or has no URL.
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error)
}
