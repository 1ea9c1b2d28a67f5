package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fwojciec/llmfetch"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	res, err := deps.Scraper.Scrape(deps.Ctx, llmfetch.ScrapeRequest{
		JobID:  c.ID,
		URL:    c.URL,
		Fields: c.Fields,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Stored row %d in job %d\n", res.RowID, c.ID)
	writeResults(deps.Stdout, res.Results)
	return nil
}

// writeResults prints each field's values, one field per line, sorted by
// field name.
func writeResults(w io.Writer, results map[string][]string) {
	for _, field := range slices.Sorted(maps.Keys(results)) {
		values := results[field]
		if values == nil {
			fmt.Fprintf(w, "  %s: (not found)\n", field)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", field, strings.Join(values, ", "))
	}
}
