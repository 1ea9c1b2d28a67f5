package mock

import (
	"context"

	"github.com/fwojciec/llmfetch"
)

var (
	_ llmfetch.QueryValidator = (*QueryValidator)(nil)
	_ llmfetch.Evaluator      = (*Evaluator)(nil)
	_ llmfetch.Simplifier     = (*Simplifier)(nil)
	_ llmfetch.FieldExtractor = (*FieldExtractor)(nil)
)

// QueryValidator is a mock implementation of llmfetch.QueryValidator.
type QueryValidator struct {
	ValidFn func(query string) bool
}

func (v *QueryValidator) Valid(query string) bool {
	return v.ValidFn(query)
}

// Evaluator is a mock implementation of llmfetch.Evaluator.
type Evaluator struct {
	EvaluateFn func(html, query string) ([]string, error)
}

func (e *Evaluator) Evaluate(html, query string) ([]string, error) {
	return e.EvaluateFn(html, query)
}

// Simplifier is a mock implementation of llmfetch.Simplifier.
type Simplifier struct {
	SimplifyFn func(html string) (string, error)
}

func (s *Simplifier) Simplify(html string) (string, error) {
	return s.SimplifyFn(html)
}

// FieldExtractor is a mock implementation of llmfetch.FieldExtractor.
type FieldExtractor struct {
	ExtractFieldFn  func(ctx context.Context, html, field string) ([]string, error)
	ExtractFieldsFn func(ctx context.Context, html string, fields []string) (map[string][]string, error)
}

func (e *FieldExtractor) ExtractField(ctx context.Context, html, field string) ([]string, error) {
	return e.ExtractFieldFn(ctx, html, field)
}

func (e *FieldExtractor) ExtractFields(ctx context.Context, html string, fields []string) (map[string][]string, error) {
	return e.ExtractFieldsFn(ctx, html, fields)
}
