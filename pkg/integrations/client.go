package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/observability"
)

// Client provides shared HTTP functionality for API clients.
// It applies default headers, classifies failures and decodes JSON bodies.
// It never retries: every retry is user-initiated.
type Client struct {
	http    *http.Client
	headers map[string]string
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used to report failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client, on top of
// [DefaultAccept]. Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...Option) *Client {
	c := &Client{
		http:    NewHTTPClient(),
		headers: headers,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	_, err := c.GetMeta(ctx, url, headers, v)
	return err
}

// GetMeta is GetWithHeaders that also returns the response headers, for
// endpoints whose pagination metadata lives in the Link header.
func (c *Client) GetMeta(ctx context.Context, url string, headers map[string]string, v any) (http.Header, error) {
	resp, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.fail(url, fmt.Errorf("%w: %w", errors.ErrAborted, ctxErr))
		}
		return nil, c.fail(url, fmt.Errorf("%w: decode %s: %v", errors.ErrMalformedResponse, url, err))
	}
	return resp.Header, nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Useful for raw content negotiation such as README files.
func (c *Client) GetText(ctx context.Context, url string, headers map[string]string) (string, error) {
	resp, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(url, c.transportError(ctx, err))
	}
	return string(data), nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	req.Header.Set("Accept", DefaultAccept)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		err = c.transportError(ctx, err)
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, c.fail(rawURL, err)
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, c.fail(rawURL, err)
	}
	return resp, nil
}

// transportError distinguishes cancellation from genuine network failures.
func (c *Client) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", errors.ErrAborted, ctxErr)
	}
	return fmt.Errorf("%w: %v", errors.ErrNetwork, err)
}

// fail logs err and returns it unchanged.
func (c *Client) fail(url string, err error) error {
	if errors.IsAborted(err) {
		c.logger.Debug("request aborted", "url", url)
	} else {
		c.logger.Warn("fetch failed", "url", url, "err", err)
	}
	return err
}

func checkStatus(url string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &errors.HTTPError{Status: code, URL: url}
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}
