package integrations

import (
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 10 * time.Second

// DefaultAccept is applied to every request before client and request headers.
const DefaultAccept = "application/vnd.github.v3+json"

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewHTTPClientWithTimeout is NewHTTPClient with a caller-chosen timeout.
// A zero timeout falls back to the default.
func NewHTTPClientWithTimeout(d time.Duration) *http.Client {
	if d <= 0 {
		d = httpTimeout
	}
	return &http.Client{Timeout: d}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape escapes a single path segment.
func PathEscape(s string) string { return url.PathEscape(s) }
