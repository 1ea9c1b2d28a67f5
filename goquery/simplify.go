// Package goquery prepares HTML for prompts using PuerkitoBio/goquery.
package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/llmfetch"
	"golang.org/x/net/html"
)

// DefaultMaxBytes caps simplified markup when Simplifier.MaxBytes is zero.
const DefaultMaxBytes = 16 * 1024

// noiseSelector matches elements that never carry extractable content.
const noiseSelector = "script, style, noscript, template, svg, iframe"

var whitespace = regexp.MustCompile(`\s+`)

// Ensure Simplifier implements llmfetch.Simplifier at compile time.
var _ llmfetch.Simplifier = (*Simplifier)(nil)

// Simplifier reduces an HTML document to the markup worth showing a model.
// The result is only used for prompting; queries are always evaluated
// against the original document.
type Simplifier struct {
	// MaxBytes truncates the output. Zero means DefaultMaxBytes and a
	// negative value disables truncation.
	MaxBytes int
}

// NewSimplifier creates a Simplifier with the default size cap.
func NewSimplifier() *Simplifier {
	return &Simplifier{MaxBytes: DefaultMaxBytes}
}

// Simplify strips scripts, styles, embedded objects and comments, keeps the
// body markup (or the whole document when there is no body content) and
// collapses whitespace runs to single spaces.
func (s *Simplifier) Simplify(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", llmfetch.Errorf(llmfetch.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find(noiseSelector).Remove()
	for _, n := range doc.Nodes {
		removeComments(n)
	}

	markup, err := bodyMarkup(doc)
	if err != nil {
		return "", llmfetch.Errorf(llmfetch.EINTERNAL, "failed to render HTML: %v", err)
	}

	markup = strings.TrimSpace(whitespace.ReplaceAllString(markup, " "))
	return truncate(markup, s.maxBytes()), nil
}

func (s *Simplifier) maxBytes() int {
	if s.MaxBytes == 0 {
		return DefaultMaxBytes
	}
	return s.MaxBytes
}

func bodyMarkup(doc *goquery.Document) (string, error) {
	body := doc.Find("body")
	if body.Length() > 0 && strings.TrimSpace(body.Text()) != "" {
		return body.Html()
	}
	return goquery.OuterHtml(doc.Selection)
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n < 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
