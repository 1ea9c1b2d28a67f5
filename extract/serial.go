package extract

import (
	"context"

	"github.com/fwojciec/llmfetch"
	"golang.org/x/sync/semaphore"
)

// Ensure SerialGenerator implements llmfetch.Generator at compile time.
var _ llmfetch.Generator = (*SerialGenerator)(nil)

// SerialGenerator allows one Complete call in flight at a time. Local model
// runtimes hold a single context and cannot interleave sessions.
type SerialGenerator struct {
	gen llmfetch.Generator
	sem *semaphore.Weighted
}

// Serial wraps gen so that calls are made one at a time.
func Serial(gen llmfetch.Generator) *SerialGenerator {
	return &SerialGenerator{gen: gen, sem: semaphore.NewWeighted(1)}
}

// Complete waits for the generator to be free, or for ctx to end.
func (s *SerialGenerator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.sem.Release(1)
	return s.gen.Complete(ctx, prompt, params)
}
