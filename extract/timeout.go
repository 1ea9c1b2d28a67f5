package extract

import (
	"context"
	"time"

	"github.com/fwojciec/llmfetch"
)

// Ensure TimeoutGenerator implements llmfetch.Generator at compile time.
var _ llmfetch.Generator = (*TimeoutGenerator)(nil)

// TimeoutGenerator bounds every Complete call with its own deadline.
//
// Wrapped by Serial, the deadline starts once the call holds the generator,
// so time spent queued behind other fields is not charged to it.
type TimeoutGenerator struct {
	gen     llmfetch.Generator
	timeout time.Duration
}

// Timeout wraps gen so that each call is canceled after d. A d of zero or
// less uses DefaultTimeout.
func Timeout(gen llmfetch.Generator, d time.Duration) *TimeoutGenerator {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &TimeoutGenerator{gen: gen, timeout: d}
}

// Complete calls the wrapped generator with a deadline of now plus the
// timeout.
func (g *TimeoutGenerator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.gen.Complete(ctx, prompt, params)
}
