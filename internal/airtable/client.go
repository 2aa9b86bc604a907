package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// PageSize is the number of records the origin returns for a full page. A
// batch shorter than this signals the last page of a sweep, at which point
// any continuation token is irrelevant.
const PageSize = 100

const (
	defaultBaseURL = "https://api.airtable.com/v0/app3A5kJwYqxMLOgh/Approved%20Projects"
	defaultView    = "Ben - All"
)

// Client reads the approved-projects table, one page at a time.
type Client struct {
	baseURL    string
	view       string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the fixed approved-projects view.
func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		view:    defaultView,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL overrides the origin endpoint, for tests and mirrors.
func NewClientWithBaseURL(token, baseURL, view string) *Client {
	c := NewClient(token)
	if baseURL != "" {
		c.baseURL = baseURL
	}
	if view != "" {
		c.view = view
	}
	return c
}

// FetchPage performs one paginated read. An empty cursor requests the first
// page; otherwise cursor is the opaque token from the previous call, passed
// back verbatim. Returns the raw batch and the next continuation token
// (empty when the origin sent none).
func (c *Client) FetchPage(ctx context.Context, cursor string) ([]Record, string, error) {
	reqURL := c.baseURL + "?view=" + url.QueryEscape(c.view)
	if cursor != "" {
		reqURL += "&offset=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}

	return p.Records, p.Offset, nil
}
