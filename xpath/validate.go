// Package xpath validates and evaluates XPath expressions against HTML
// documents using antchfx/htmlquery.
package xpath

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/fwojciec/llmfetch"
	"golang.org/x/net/html"
)

// MaxQueryLength bounds accepted expressions in characters (exclusive).
const MaxQueryLength = 1000

// placeholderHTML is the document every candidate is test-evaluated against.
const placeholderHTML = `<html><head><title></title></head><body><div class="placeholder"><span>x</span></div></body></html>`

var placeholder = mustParse(placeholderHTML)

// Ensure Validator implements llmfetch.QueryValidator at compile time.
var _ llmfetch.QueryValidator = Validator{}

// Validator accepts well-formed, evaluable XPath expressions.
type Validator struct{}

// Valid reports whether query passes Validate.
func (Validator) Valid(query string) bool {
	return Validate(query)
}

// Validate reports whether query is an absolute XPath expression that
// compiles and evaluates against a placeholder document.
func Validate(query string) bool {
	if n := utf8.RuneCountInString(query); n < 2 || n >= MaxQueryLength {
		return false
	}
	if !strings.HasPrefix(query, "/") {
		return false
	}
	if strings.TrimSpace(strings.TrimLeft(query, "/")) == "" {
		return false
	}
	if strings.ContainsAny(query, "<>") {
		return false
	}
	_, err := queryAll(placeholder, query)
	return err == nil
}

// queryAll compiles and runs expr. The xpath package panics on some
// malformed input, so panics are returned as errors.
func queryAll(doc *html.Node, expr string) (nodes []*html.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			nodes, err = nil, fmt.Errorf("xpath: evaluating %q: %v", expr, r)
		}
	}()

	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return htmlquery.QuerySelectorAll(doc, compiled), nil
}

func mustParse(s string) *html.Node {
	doc, err := htmlquery.Parse(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return doc
}
