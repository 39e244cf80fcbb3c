package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"reelmatch/internal/retry"
	"reelmatch/internal/services"
)

const detailExpansions = "credits,external_ids,alternative_titles"

// Client provides access to the matching provider API.
type Client struct {
	apiKey       string
	baseURL      string
	language     string
	includeAdult bool
	httpClient   *http.Client

	minInterval time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithIncludeAdult toggles the include_adult search flag.
func WithIncludeAdult(include bool) Option {
	return func(c *Client) {
		c.includeAdult = include
	}
}

// WithMinInterval spaces consecutive requests by at least d.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.minInterval = d
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New creates a client. A missing key or base URL is a configuration error.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "base url required", nil)
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		language:     strings.TrimSpace(language),
		includeAdult: true,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchOptions narrows a search.
type SearchOptions struct {
	Year      int
	MediaType MediaType
}

// Search queries the movie or TV collection. A positive Year is sent as
// year (movies) or first_air_date_year (TV).
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	mediaType := opts.MediaType
	if mediaType == "" {
		mediaType = MediaMovie
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))
	if opts.Year > 0 {
		if mediaType == MediaTV {
			params.Set("first_air_date_year", strconv.Itoa(opts.Year))
		} else {
			params.Set("year", strconv.Itoa(opts.Year))
		}
	}
	var payload Response
	if err := c.get(ctx, "/search/"+string(mediaType), params, &payload, "search"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Details fetches the expanded record for id.
func (c *Client) Details(ctx context.Context, id int64, mediaType MediaType) (*Details, error) {
	if id <= 0 {
		return nil, errors.New("id must be positive")
	}
	if mediaType == "" {
		mediaType = MediaMovie
	}
	params := url.Values{}
	params.Set("append_to_response", detailExpansions)
	var payload Details
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), params, &payload, "details"); err != nil {
		return nil, err
	}
	payload.MediaType = mediaType
	return &payload, nil
}

// Ping verifies the key and connectivity against the configuration endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var payload map[string]any
	return c.get(ctx, "/configuration", url.Values{}, &payload, "configuration")
}

// Genres returns the genre list for mediaType.
func (c *Client) Genres(ctx context.Context, mediaType MediaType) ([]Genre, error) {
	if mediaType == "" {
		mediaType = MediaMovie
	}
	var payload struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/"+string(mediaType)+"/list", url.Values{}, &payload, "genres"); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any, operation string) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if err := c.pace(ctx); err != nil {
		return err
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return retry.NewStatusError(resp, fmt.Sprintf("tmdb %s (latency=%v)", operation, latency))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb %s: %w", operation, err)
	}
	return nil
}

// pace blocks until minInterval has elapsed since the previous request.
func (c *Client) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	next := c.lastRequest.Add(c.minInterval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	c.lastRequest = next
	c.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
