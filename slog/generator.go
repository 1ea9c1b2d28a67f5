package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/llmfetch"
)

// Ensure LoggingGenerator implements llmfetch.Generator.
var _ llmfetch.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with debug logging. Prompts and
// responses are not logged in full.
type LoggingGenerator struct {
	next   llmfetch.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next llmfetch.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Complete logs prompt size, seed and timing and delegates.
func (g *LoggingGenerator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (text string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		g.logger.Log(ctx, level, "generate",
			"prompt_bytes", len(prompt),
			"seed", params.Seed,
			"response", truncate(text, 120),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Complete(ctx, prompt, params)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
