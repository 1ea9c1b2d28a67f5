package mock

import (
	"context"

	"github.com/fwojciec/llmfetch"
)

var _ llmfetch.Generator = (*Generator)(nil)

// Generator is a mock implementation of llmfetch.Generator.
type Generator struct {
	CompleteFn func(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error)
}

func (g *Generator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	return g.CompleteFn(ctx, prompt, params)
}
