package llmfetch

import "context"

// QueryValidator decides whether a candidate XPath expression is well formed
// and evaluable.
type QueryValidator interface {
	Valid(query string) bool
}

// Evaluator runs an XPath expression against a document.
type Evaluator interface {
	// Evaluate returns the trimmed text of every matched node in document
	// order. An error means the query matched nothing usable.
	Evaluate(html string, query string) ([]string, error)
}

// Simplifier reduces a document to the markup worth showing a model.
type Simplifier interface {
	Simplify(html string) (string, error)
}

// FieldExtractor resolves field values from a document.
type FieldExtractor interface {
	// ExtractField returns the matched values for field, or nil when no
	// attempt produced a usable query. Unresolved fields are not errors.
	ExtractField(ctx context.Context, html, field string) ([]string, error)

	// ExtractFields runs ExtractField for every field. Unresolved fields map
	// to nil.
	ExtractFields(ctx context.Context, html string, fields []string) (map[string][]string, error)
}
