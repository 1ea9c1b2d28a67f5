package llmfetch

import "context"

// GenerateParams controls sampling for a single completion.
type GenerateParams struct {
	Temperature float32
	TopK        int
	TopP        float32
	Seed        int64
	MaxTokens   int
	Stop        []string
}

// Generator produces text completions. Implementations must be deterministic
// for a fixed prompt and params so that retries can be reproduced.
type Generator interface {
	Complete(ctx context.Context, prompt string, params GenerateParams) (string, error)
}
