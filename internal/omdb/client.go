package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelmatch/internal/logging"
	"reelmatch/internal/ratings"
	"reelmatch/internal/retry"
	"reelmatch/internal/services"
)

// PingID is the title looked up by Ping.
const PingID = "tt0111161"

var (
	errKeyRejected = errors.New("api key rejected")
	errKeyLimited  = errors.New("api key request limit reached")
)

// Client fetches ratings from the secondary provider.
type Client struct {
	ring       *KeyRing
	baseURL    string
	httpClient *http.Client
	retry      retry.Strategy
	logger     *slog.Logger
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

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRetry overrides the per-request retry policy.
func WithRetry(strategy retry.Strategy) Option {
	return func(c *Client) {
		c.retry = strategy
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client over keys. An empty key pool fails immediately.
func New(keys []string, baseURL string, opts ...Option) (*Client, error) {
	ring, err := NewKeyRing(keys)
	if err != nil {
		return nil, err
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "new client", "base url required", nil)
	}
	c := &Client{
		ring:       ring,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      retry.New(3, time.Second, 1.5, nil),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Logger == nil {
		c.retry.Logger = c.logger
	}
	return c, nil
}

// FailedKeys reports keys that were rejected or rate limited.
func (c *Client) FailedKeys() []KeyFailure {
	return c.ring.FailedKeys()
}

// Ping looks up a well-known title.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Ratings(ctx, PingID)
	return err
}

type ratingPayload struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

// Ratings returns the normalized ratings for imdbID. Keys are rotated when
// one is rejected or rate limited, for at most one pass over the pool plus
// one extra attempt.
func (c *Client) Ratings(ctx context.Context, imdbID string) ([]ratings.Entry, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrValidation, "omdb", "ratings", "imdb id required", nil)
	}
	logger := logging.WithContext(ctx, c.logger)

	attempts := c.ring.Len() + 1
	var lastErr error
	allLimited := true
	for attempt := 0; attempt < attempts; attempt++ {
		key := c.ring.Next()
		var payload ratingPayload
		err := c.retry.Execute(ctx, "omdb "+imdbID, func(ctx context.Context) error {
			return c.fetch(ctx, key, imdbID, &payload)
		})
		switch {
		case err == nil:
			return parseRatings(payload, logger), nil
		case errors.Is(err, errKeyRejected), errors.Is(err, errKeyLimited):
			c.ring.MarkFailed(key)
			logging.WarnWithContext(logger, "ratings key failed; rotating",
				"ratings_key_failed",
				logging.String("key", MaskKey(key)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the key or its daily quota"),
				logging.String(logging.FieldImpact, "request retried with the next key"),
			)
			if errors.Is(err, errKeyRejected) {
				allLimited = false
			}
			lastErr = err
		case errors.Is(err, services.ErrNotFound),
			errors.Is(err, services.ErrRetriesExhausted),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			allLimited = false
			lastErr = err
		}
	}
	marker := services.ErrProvider
	if allLimited {
		marker = services.ErrRateLimited
	}
	return nil, services.Wrap(marker, "omdb", "ratings", "exhausted all api keys", lastErr)
}

func (c *Client) fetch(ctx context.Context, key, imdbID string, out *ratingPayload) error {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", key)
	params.Set("i", imdbID)
	params.Set("plot", "short")
	params.Set("r", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: http 401", errKeyRejected)
	}
	if resp.StatusCode != http.StatusOK {
		return retry.NewStatusError(resp, "omdb ratings")
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	if !strings.EqualFold(out.Response, "True") {
		message := strings.TrimSpace(out.Error)
		if message == "" {
			message = "unknown error"
		}
		if strings.Contains(strings.ToLower(message), "limit") {
			return fmt.Errorf("%w: %s", errKeyLimited, message)
		}
		if strings.Contains(strings.ToLower(message), "invalid api key") {
			return fmt.Errorf("%w: %s", errKeyRejected, message)
		}
		return &retry.StatusError{StatusCode: http.StatusNotFound, Message: message}
	}
	return nil
}

func parseRatings(p ratingPayload, logger *slog.Logger) []ratings.Entry {
	var out []ratings.Entry
	if value := strings.TrimSpace(p.IMDbRating); value != "" && !strings.EqualFold(value, "N/A") {
		if score, err := ratings.Normalize(value); err == nil {
			out = append(out, ratings.NewEntry(ratings.SourceIMDb, score, ratings.ParseVotes(p.IMDbVotes)))
		} else {
			logger.Debug("skipping unparseable imdb rating", logging.String("value", value), logging.Error(err))
		}
	}
	for _, r := range p.Ratings {
		var (
			source ratings.Source
			score  float64
			err    error
		)
		switch r.Source {
		case "Rotten Tomatoes":
			source = ratings.SourceRottenTomatoes
			score, err = ratings.ParsePercent(r.Value)
		case "Metacritic":
			source = ratings.SourceMetacritic
			score, err = ratings.ParseOutOf(r.Value)
		default:
			continue
		}
		if err != nil {
			logger.Debug("skipping unparseable rating", logging.String("source", r.Source), logging.String("value", r.Value), logging.Error(err))
			continue
		}
		out = append(out, ratings.NewEntry(source, score, 0))
	}
	return out
}
