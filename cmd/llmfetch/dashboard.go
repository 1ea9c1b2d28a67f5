package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/llmfetch"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Run executes the dashboard command. It redraws every Interval until the
// context is canceled, or prints once with --once.
func (c *DashboardCmd) Run(deps *Dependencies) error {
	if c.Once {
		return c.render(deps)
	}
	if c.Interval <= 0 {
		return llmfetch.Errorf(llmfetch.EINVALID, "interval must be positive")
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		fmt.Fprint(deps.Stdout, clearScreen)
		fmt.Fprintf(deps.Stdout, "llmfetch dashboard  %s  %s\n\n", c.APIURL, time.Now().Format(time.TimeOnly))
		if err := c.render(deps); err != nil {
			// Keep polling; the server may come back.
			fmt.Fprintf(deps.Stdout, "error: %v\n", err)
		}

		select {
		case <-deps.Ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *DashboardCmd) render(deps *Dependencies) error {
	if c.Job == 0 {
		jobs, err := deps.API.FindJobs(deps.Ctx)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Fprintln(deps.Stdout, "No jobs found. Use 'llmfetch create' to create one.")
			return nil
		}
		return writeJobs(deps.Stdout, jobs)
	}

	rows, err := deps.API.FindRows(deps.Ctx, c.Job)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintf(deps.Stdout, "No rows for job %d.\n", c.Job)
		return nil
	}
	return writeRows(deps.Stdout, rows[0].Fields, rows)
}
