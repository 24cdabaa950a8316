// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Endpoint labels used in metrics and errors.
const (
	EndpointGenres  = "genre/movie/list"
	EndpointPopular = "movie/popular"
)

// ErrRateLimited is returned when 429 persists past the retry budget.
var ErrRateLimited = errors.New("tmdb: rate limit exceeded")

// maxErrorBodySize bounds how much of an error response is read.
const maxErrorBodySize = 64 * 1024

// APIError is a non-2xx TMDB response.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb %s request failed with status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// API is implemented by Client and CircuitBreakerClient.
type API interface {
	GetGenres(ctx context.Context) (*GenreList, error)
	GetPopular(ctx context.Context, page int) (*PopularPage, error)
}

// Client talks to the TMDB v3 REST API.
type Client struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int           // Maximum retries for HTTP 429
	retryBaseDelay time.Duration // Base delay for exponential backoff
}

// NewClient creates a TMDB client.
//
// The client is configured with:
//   - TMDB_TIMEOUT HTTP timeout (30s default)
//   - 5 maximum retries for rate limiting, 1s base delay
//   - a token bucket of TMDB_REQUESTS_PER_SECOND with TMDB_BURST
func NewClient(cfg *config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

// GetGenres fetches the movie genre list.
func (c *Client) GetGenres(ctx context.Context) (*GenreList, error) {
	var out GenreList
	if err := c.makeRequest(ctx, EndpointGenres, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPopular fetches one page (1-based) of popular movies.
func (c *Client) GetPopular(ctx context.Context, page int) (*PopularPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var out PopularPage
	if err := c.makeRequest(ctx, EndpointPopular, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// makeRequest builds {base}/{endpoint}?api_key=..., runs it and decodes the
// JSON body into result.
func (c *Client) makeRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		metrics.RecordTMDBRequest(endpoint, "error", time.Since(start))
		return fmt.Errorf("failed to make %s request: %w", endpoint, scrubKey(err, c.apiKey))
	}
	defer resp.Body.Close()
	metrics.RecordTMDBRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit waits on the limiter, then performs the GET,
// retrying HTTP 429 with exponential backoff (1s, 2s, 4s, 8s, 16s).
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w after %d retries (HTTP 429)", ErrRateLimited, c.maxRetries)
}

// errorMessage extracts status_message from a TMDB error body, falling back
// to the raw (bounded) body.
func errorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.StatusMessage != "" {
		return eb.StatusMessage
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "\n... (truncated)"
	}
	return string(body)
}

// scrubKey removes the api key from transport errors, which embed the URL.
func scrubKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &scrubbedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }
