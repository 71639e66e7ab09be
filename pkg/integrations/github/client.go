package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// rawAccept asks the contents API for the file body instead of a JSON envelope.
const rawAccept = "application/vnd.github.raw"

// eventsPageSize is the largest page the events API serves.
const eventsPageSize = 100

var lastPagePattern = regexp.MustCompile(`[?&]page=(\d+)[^>]*>;\s*rel="last"`)

// Client provides access to the unauthenticated GitHub REST API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client targeting baseURL.
// Pass an empty baseURL for [DefaultBaseURL].
func NewClient(baseURL string, opts ...integrations.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(nil, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// SearchUsers searches accounts whose login matches query, returning at most
// perPage items in the API's ranking order.
func (c *Client) SearchUsers(ctx context.Context, query string, perPage int) (*SearchResponse, error) {
	url := fmt.Sprintf("%s/search/users?q=%s+in:login&per_page=%d", c.baseURL, integrations.URLEncode(query), perPage)

	var data SearchResponse
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	if err := validateRecord("search response", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// User fetches a user record. A 404 matches errors.ErrNotFound.
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, integrations.PathEscape(login))

	var data User
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.IsNotFound(err) {
			return nil, fmt.Errorf("github user %s: %w", login, err)
		}
		return nil, err
	}
	if err := validateRecord("user", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Repos fetches the first page of a user's public repositories.
func (c *Client) Repos(ctx context.Context, login string) ([]Repo, error) {
	url := fmt.Sprintf("%s/users/%s/repos", c.baseURL, integrations.PathEscape(login))

	var data []Repo
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	if err := validateRecords("repos", data); err != nil {
		return nil, err
	}
	return data, nil
}

// StarredCount returns how many repositories a user has starred. It requests
// a single item per page and reads the total from the rel="last" link; when
// the response carries no pagination metadata it counts the returned page.
func (c *Client) StarredCount(ctx context.Context, login string) (int, error) {
	url := fmt.Sprintf("%s/users/%s/starred?per_page=1", c.baseURL, integrations.PathEscape(login))

	var data []struct {
		ID int64 `json:"id"`
	}
	header, err := c.GetMeta(ctx, url, nil, &data)
	if err != nil {
		return 0, err
	}
	if n, ok := ParseLastPage(header.Get("Link")); ok {
		return n, nil
	}
	return len(data), nil
}

// Readme fetches the raw markdown of the profile README, which lives in the
// repository named after the user. Every failure wraps
// errors.ErrReadmeUnavailable; cancellation additionally matches
// errors.ErrAborted.
func (c *Client) Readme(ctx context.Context, login string) (string, error) {
	escaped := integrations.PathEscape(login)
	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, escaped, escaped)

	text, err := c.GetText(ctx, url, map[string]string{"Accept": rawAccept})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrReadmeUnavailable, err)
	}
	return text, nil
}

// PublicEvents fetches the most recent page of a user's public events.
func (c *Client) PublicEvents(ctx context.Context, login string) ([]Event, error) {
	url := fmt.Sprintf("%s/users/%s/events/public?per_page=%d", c.baseURL, integrations.PathEscape(login), eventsPageSize)

	var data []Event
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	if err := validateRecords("events", data); err != nil {
		return nil, err
	}
	return data, nil
}

// ParseLastPage extracts the page number of the rel="last" entry from an
// RFC 8288 Link header. ok is false when there is no such entry.
func ParseLastPage(link string) (page int, ok bool) {
	if link == "" {
		return 0, false
	}
	m := lastPagePattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
