package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/llmfetch"
)

// Run executes the create command.
func (c *CreateCmd) Run(deps *Dependencies) error {
	job := &llmfetch.Job{
		SourceURL: c.URL,
		Fields:    c.Fields,
	}
	if err := deps.Jobs.CreateJob(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Created job %d with fields: %s\n", job.ID, strings.Join(job.Fields, ", "))
	return nil
}
