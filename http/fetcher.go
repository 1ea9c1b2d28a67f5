// Package http provides HTTP implementations of llmfetch.Fetcher and a
// client for the llmfetch REST API.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/llmfetch"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps the size of fetched documents.
const DefaultMaxBodyBytes = 8 << 20

// userAgent identifies the fetcher to servers.
const userAgent = "llmfetch/1.0 (+https://github.com/fwojciec/llmfetch)"

// Ensure Fetcher implements llmfetch.Fetcher at compile time.
var _ llmfetch.Fetcher = (*Fetcher)(nil)

// StatusError is returned when a server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Fetcher retrieves HTML documents with plain HTTP requests. It does not
// execute JavaScript.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes sets the largest accepted response body.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the document at rawURL and decodes it to UTF-8 using the
// charset declared by the response or the document.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > f.maxBody {
		return "", llmfetch.Errorf(llmfetch.EINVALID, "document at %s exceeds %d bytes", rawURL, f.maxBody)
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", rawURL, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return llmfetch.Errorf(llmfetch.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return llmfetch.Errorf(llmfetch.EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return llmfetch.Errorf(llmfetch.EINVALID, "URL %q has no host", rawURL)
	}
	return nil
}
