package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fwojciec/llmfetch"
)

// Run executes the rows command.
func (c *RowsCmd) Run(deps *Dependencies) error {
	job, err := deps.Jobs.FindJobByID(deps.Ctx, c.ID)
	if err != nil {
		if llmfetch.ErrorCode(err) == llmfetch.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: job %d not found. Use 'llmfetch list' to see available jobs.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		}
		return err
	}

	rows, err := deps.Jobs.FindRows(deps.Ctx, job.ID, llmfetch.RowFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintf(deps.Stdout, "No rows for job %d. Use 'llmfetch scrape %d' to add one.\n", job.ID, job.ID)
		return nil
	}

	return writeRows(deps.Stdout, job.Fields, rows)
}

// writeRows prints rows as an aligned table with one column per field.
func writeRows(w io.Writer, fields []string, rows []*llmfetch.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "ID")
	for _, f := range fields {
		fmt.Fprintf(tw, "\t%s", f)
	}
	fmt.Fprintln(tw)

	for _, r := range rows {
		fmt.Fprintf(tw, "%d", r.ID)
		for _, f := range fields {
			fmt.Fprintf(tw, "\t%s", formatValue(r.Values[f]))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// formatValue renders a stored value on a single line. NULL renders empty.
func formatValue(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		s = v
	case []string:
		s = strings.Join(v, ", ")
	default:
		s = fmt.Sprint(v)
	}
	return strings.Join(strings.Fields(s), " ")
}
