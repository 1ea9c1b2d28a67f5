// Package extract turns model output into XPath queries and evaluates them,
// retrying with perturbed prompts until a query returns content.
package extract

import (
	"fmt"
	"strings"
)

// Hints is an ordered, read-only list of per-attempt prompt nudges.
type Hints struct {
	list []string
}

// NewHints copies hints into a new Hints.
func NewHints(hints ...string) Hints {
	return Hints{list: append([]string(nil), hints...)}
}

// DefaultHints nudge later attempts toward different selector strategies.
var DefaultHints = NewHints(
	"Use class-based selection, for example //div[@class='name'].",
	"Use position-based selection, for example //ul/li[2]/span.",
	"Try a simpler selector with fewer steps.",
	"Select the element itself instead of its text() node.",
)

// Len returns the number of hints.
func (h Hints) Len() int {
	return len(h.list)
}

// At returns the hint for attempt. There is no hint past the end of the list.
func (h Hints) At(attempt int) (string, bool) {
	if attempt < 0 || attempt >= len(h.list) {
		return "", false
	}
	return h.list[attempt], true
}

// BuildPrompt builds the prompt for field on the given attempt using
// DefaultHints.
func BuildPrompt(markup, field string, attempt int) string {
	return DefaultHints.BuildPrompt(markup, field, attempt)
}

// BuildPrompt builds the prompt asking for one structural XPath expression
// that selects field in markup. The result depends only on its arguments.
func (h Hints) BuildPrompt(markup, field string, attempt int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write an XPath expression that selects every %q value in the HTML document below.\n\n", field)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Select nodes by structure only: tag names, attributes, classes and positions.\n")
	sb.WriteString("- Do not match on text content. Never use text()='...', contains(text(), ...) or similar.\n")
	sb.WriteString("- The expression must start with / or //.\n")
	sb.WriteString("- Reply with exactly one XPath expression and nothing else.\n")
	if hint, ok := h.At(attempt); ok {
		fmt.Fprintf(&sb, "- Hint: %s\n", hint)
	}
	sb.WriteString("\n<html>\n")
	sb.WriteString(markup)
	sb.WriteString("\n</html>\n\n")
	fmt.Fprintf(&sb, "Field: %s\nXPath:", field)
	return sb.String()
}
