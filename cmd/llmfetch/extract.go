package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/llmfetch"
)

// Run executes the extract command. Results are printed as a JSON object
// with null for unresolved fields; nothing is stored.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: fetch %s: %v\n", c.URL, err)
		return err
	}

	results, err := deps.Extractor.ExtractFields(deps.Ctx, html, c.Fields)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
