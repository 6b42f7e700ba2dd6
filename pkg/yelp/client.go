// Package yelp is a minimal client for the Yelp Fusion business search API.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.yelp.com/v3"

const (
	// MaxLimit is the largest page size the search endpoint accepts.
	MaxLimit = 50
	// MaxResults is the deepest offset+limit the search endpoint will serve
	// for a single query.
	MaxResults = 1000
)

// Client performs Yelp business search requests.
type Client interface {
	Search(ctx context.Context, p SearchParams) (*SearchResponse, error)
}

// SearchParams identifies one search request. A zero Limit omits both
// limit and offset so the API applies its first-page defaults.
type SearchParams struct {
	Location string
	Term     string
	Limit    int
	Offset   int
}

// SearchResponse is the decoded body of a successful search.
type SearchResponse struct {
	Total      int               `json:"total"`
	Businesses []json.RawMessage `json:"businesses"`

	// URL is the request URL that produced this response.
	URL string `json:"-"`
}

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yelp: unexpected status %d: %s", e.StatusCode, e.Body)
}

// SearchURL builds the search URL for p against baseURL. Values are
// form-encoded and results are sorted by distance.
func SearchURL(baseURL string, p SearchParams) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/businesses/search?")

	if p.Term != "" {
		b.WriteString("term=")
		b.WriteString(url.QueryEscape(p.Term))
		b.WriteByte('&')
	}
	b.WriteString("location=")
	b.WriteString(url.QueryEscape(p.Location))
	b.WriteString("&sort=distance")

	if p.Limit > 0 {
		b.WriteString("&limit=")
		b.WriteString(strconv.Itoa(p.Limit))
		b.WriteString("&offset=")
		b.WriteString(strconv.Itoa(p.Offset))
	}
	return b.String()
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL. An empty value keeps
// the default.
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit paces requests to rps per second. Zero or negative
// disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Yelp API client authenticated with a static API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(5, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "yelp: rate limit wait")
	}

	searchURL := SearchURL(c.baseURL, p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: create request")
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "yelp: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "yelp: unmarshal response")
	}
	result.URL = searchURL

	return &result, nil
}
