package xpath

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/fwojciec/llmfetch"
)

// Ensure Evaluator implements llmfetch.Evaluator at compile time.
var _ llmfetch.Evaluator = (*Evaluator)(nil)

// Evaluator runs XPath expressions against full HTML documents.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the trimmed text content of each node matched by query,
// in document order.
func (e *Evaluator) Evaluate(rawHTML, query string) ([]string, error) {
	if rawHTML == "" {
		return nil, llmfetch.Errorf(llmfetch.EINVALID, "empty HTML input")
	}

	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, llmfetch.Errorf(llmfetch.EINVALID, "failed to parse HTML: %v", err)
	}

	nodes, err := queryAll(doc, query)
	if err != nil {
		return nil, llmfetch.Errorf(llmfetch.EINVALID, "xpath query failed: %v", err)
	}

	texts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		texts = append(texts, strings.TrimSpace(htmlquery.InnerText(node)))
	}
	return texts, nil
}
