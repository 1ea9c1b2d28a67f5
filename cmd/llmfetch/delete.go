package main

import (
	"fmt"

	"github.com/fwojciec/llmfetch"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return llmfetch.Errorf(llmfetch.EINVALID, "use --force to confirm deletion")
	}

	deleted, err := deps.Jobs.DeleteJob(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", llmfetch.ErrorMessage(err))
		return err
	}

	if !deleted {
		fmt.Fprintf(deps.Stderr, "error: job %d not found. Use 'llmfetch list' to see available jobs.\n", c.ID)
		return llmfetch.Errorf(llmfetch.ENOTFOUND, "job %d not found", c.ID)
	}

	fmt.Fprintf(deps.Stdout, "Deleted job %d\n", c.ID)
	return nil
}
