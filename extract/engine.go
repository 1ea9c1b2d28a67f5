package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/llmfetch"
	"golang.org/x/sync/errgroup"
)

// Engine defaults.
const (
	DefaultMaxAttempts = 5
	DefaultSeed        = 42
	DefaultSeedStride  = 1
	DefaultTimeout     = 60 * time.Second
	DefaultMaxTokens   = 256
	DefaultConcurrency = 4
)

// Ensure Engine implements llmfetch.FieldExtractor at compile time.
var _ llmfetch.FieldExtractor = (*Engine)(nil)

// Engine runs the generate, parse, validate and evaluate loop for each
// field of a document.
type Engine struct {
	Generator llmfetch.Generator
	Validator llmfetch.QueryValidator
	Evaluator llmfetch.Evaluator

	// Simplifier, if set, shrinks the document shown to the model.
	// Queries are still evaluated against the original document.
	Simplifier llmfetch.Simplifier

	// Hints defaults to DefaultHints when nil.
	Hints *Hints

	MaxAttempts int
	BaseSeed    int64
	SeedStride  int64

	// Timeout bounds each generation call. An expired call counts as a
	// failed attempt. Zero leaves deadlines to the generator: with a Serial
	// generator, set zero and wrap the inner generator with Timeout so that
	// waiting for the generator is not charged to the call.
	Timeout time.Duration

	MaxTokens int

	// Concurrency limits how many fields ExtractFields works on at once.
	Concurrency int

	Logger *slog.Logger
}

// NewEngine creates an Engine with default settings.
func NewEngine(gen llmfetch.Generator, validator llmfetch.QueryValidator, evaluator llmfetch.Evaluator) *Engine {
	return &Engine{
		Generator:   gen,
		Validator:   validator,
		Evaluator:   evaluator,
		MaxAttempts: DefaultMaxAttempts,
		BaseSeed:    DefaultSeed,
		SeedStride:  DefaultSeedStride,
		Timeout:     DefaultTimeout,
		MaxTokens:   DefaultMaxTokens,
		Concurrency: DefaultConcurrency,
	}
}

// NewSerialEngine creates an Engine whose generator runs one call at a time.
// Each call gets timeout from the moment it holds the generator.
func NewSerialEngine(gen llmfetch.Generator, validator llmfetch.QueryValidator, evaluator llmfetch.Evaluator, timeout time.Duration) *Engine {
	e := NewEngine(Serial(Timeout(gen, timeout)), validator, evaluator)
	e.Timeout = 0
	return e
}

// ExtractField resolves one field. It returns nil without error when every
// attempt fails.
func (e *Engine) ExtractField(ctx context.Context, html, field string) ([]string, error) {
	if strings.TrimSpace(field) == "" {
		return nil, llmfetch.Errorf(llmfetch.EINVALID, "field name required")
	}
	markup, err := e.prepare(html)
	if err != nil {
		return nil, err
	}
	return e.extract(ctx, html, markup, field)
}

// ExtractFields resolves every field concurrently. Each field runs its own
// attempt sequence; unresolved fields map to nil.
func (e *Engine) ExtractFields(ctx context.Context, html string, fields []string) (map[string][]string, error) {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return nil, llmfetch.Errorf(llmfetch.EINVALID, "field name required")
		}
	}
	markup, err := e.prepare(html)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]string, len(fields))
	unique := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := results[f]; !ok {
			results[f] = nil
			unique = append(unique, f)
		}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Concurrency, 1))
	for _, field := range unique {
		g.Go(func() error {
			values, err := e.extract(ctx, html, markup, field)
			if err != nil {
				return err
			}
			mu.Lock()
			results[field] = values
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) prepare(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", llmfetch.Errorf(llmfetch.EINVALID, "empty HTML input")
	}
	if e.Simplifier == nil {
		return html, nil
	}
	return e.Simplifier.Simplify(html)
}

func (e *Engine) extract(ctx context.Context, html, markup, field string) ([]string, error) {
	attempts := e.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, err := e.attempt(ctx, html, markup, field, attempt)
		if err == nil {
			e.logger().Debug("field resolved", "field", field, "attempt", attempt, "matches", len(values))
			return values, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger().Debug("attempt failed", "field", field, "attempt", attempt, "error", err)
	}
	e.logger().Debug("field unresolved", "field", field, "attempts", attempts)
	return nil, nil
}

var (
	errNoQuery   = errors.New("no valid query in response")
	errNoContent = errors.New("query matched no content")
)

// attempt runs a single generate, parse, validate and evaluate cycle.
func (e *Engine) attempt(ctx context.Context, html, markup, field string, attempt int) ([]string, error) {
	hints := DefaultHints
	if e.Hints != nil {
		hints = *e.Hints
	}
	prompt := hints.BuildPrompt(markup, field, attempt)

	response, err := e.generate(ctx, prompt, e.params(attempt))
	if err != nil {
		return nil, err
	}

	query, ok := ParseResponse(response, e.Validator)
	if !ok {
		return nil, errNoQuery
	}

	values, err := e.Evaluator.Evaluate(html, query)
	if err != nil {
		return nil, err
	}
	if !hasContent(values) {
		return nil, errNoContent
	}
	return values, nil
}

func (e *Engine) generate(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	if e.Timeout <= 0 {
		return e.Generator.Complete(ctx, prompt, params)
	}
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()
	return e.Generator.Complete(ctx, prompt, params)
}

// params returns reproducible sampling settings for attempt.
func (e *Engine) params(attempt int) llmfetch.GenerateParams {
	maxTokens := e.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return llmfetch.GenerateParams{
		Temperature: 0,
		TopK:        1,
		TopP:        1,
		Seed:        e.BaseSeed + int64(attempt)*e.SeedStride,
		MaxTokens:   maxTokens,
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func hasContent(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
