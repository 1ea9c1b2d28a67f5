package extract

import (
	"context"
	"fmt"

	"github.com/fwojciec/llmfetch"
)

// Ensure Scraper implements llmfetch.Scraper at compile time.
var _ llmfetch.Scraper = (*Scraper)(nil)

// Scraper fetches a document and stores the extracted fields as a job row.
type Scraper struct {
	Jobs      llmfetch.JobService
	Fetcher   llmfetch.Fetcher
	Extractor llmfetch.FieldExtractor
}

// NewScraper creates a new Scraper.
func NewScraper(jobs llmfetch.JobService, fetcher llmfetch.Fetcher, extractor llmfetch.FieldExtractor) *Scraper {
	return &Scraper{Jobs: jobs, Fetcher: fetcher, Extractor: extractor}
}

// Scrape fetches req.URL (or the job's source URL), extracts req.Fields (or
// all of the job's fields) and inserts one row. Unresolved fields are stored
// as null.
func (s *Scraper) Scrape(ctx context.Context, req llmfetch.ScrapeRequest) (*llmfetch.ScrapeResult, error) {
	job, err := s.Jobs.FindJobByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	url := req.URL
	if url == "" {
		url = job.SourceURL
	}
	if url == "" {
		return nil, llmfetch.Errorf(llmfetch.EINVALID, "url required: job %d has no source URL", job.ID)
	}

	fields := req.Fields
	if len(fields) == 0 {
		fields = job.Fields
	}
	for _, f := range fields {
		if !job.HasField(f) {
			return nil, llmfetch.Errorf(llmfetch.EINVALID, "field %q is not declared on job %d", f, job.ID)
		}
	}

	html, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	results, err := s.Extractor.ExtractFields(ctx, html, fields)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	if results == nil {
		results = make(map[string][]string, len(fields))
	}

	values := make(map[string]any, len(fields))
	for _, f := range fields {
		if v := results[f]; v != nil {
			values[f] = v
		} else {
			values[f] = nil
			results[f] = nil
		}
	}

	rowID, err := s.Jobs.InsertRow(ctx, job.ID, values)
	if err != nil {
		return nil, err
	}
	return &llmfetch.ScrapeResult{RowID: rowID, Results: results}, nil
}
