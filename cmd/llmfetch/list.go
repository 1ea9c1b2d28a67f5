package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/llmfetch"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	jobs, err := deps.Jobs.FindJobs(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(deps.Stdout, "No jobs found. Use 'llmfetch create' to create one.")
		return nil
	}

	return writeJobs(deps.Stdout, jobs)
}

// writeJobs prints jobs as an aligned table. The fields column shows the
// number of filled values per field when stats are present.
func writeJobs(w io.Writer, jobs []*llmfetch.Job) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tROWS\tFIELDS\tSOURCE")
	for _, j := range jobs {
		rows := "-"
		if j.Stats != nil {
			rows = fmt.Sprint(j.Stats.Rows)
		}
		source := j.SourceURL
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			j.ID, j.CreatedAt.Local().Format(time.DateTime), rows, formatFields(j), source)
	}
	return tw.Flush()
}

func formatFields(j *llmfetch.Job) string {
	if len(j.Fields) == 0 {
		return "empty"
	}
	parts := make([]string, len(j.Fields))
	for i, f := range j.Fields {
		if j.Stats != nil {
			parts[i] = fmt.Sprintf("%s:%d", f, j.Stats.Filled[f])
		} else {
			parts[i] = f
		}
	}
	return strings.Join(parts, ", ")
}
