// Package client provides a typed Go SDK for the dietinsights REST API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the top-level dietinsights API client.
type Client struct {
	rc *resty.Client

	Stats   *StatsService
	Recipes *RecipeService
	Ingest  *IngestService
}

type settings struct {
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	userAgent  string
}

// Option configures a Client.
type Option func(*settings)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithRetries sets how many times idempotent requests are retried on
// transport errors and 5xx responses.
func WithRetries(n int) Option {
	return func(s *settings) { s.retries = n }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// New creates a client for the given base URL (e.g. "http://localhost:3030").
func New(baseURL string, opts ...Option) *Client {
	s := settings{timeout: 60 * time.Second, retries: 2, userAgent: "dietinsights-go"}
	for _, o := range opts {
		o(&s)
	}

	rc := resty.New()
	if s.httpClient != nil {
		rc = resty.NewWithClient(s.httpClient)
	}

	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(s.timeout).
		SetHeader("User-Agent", s.userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(s.retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r != nil && r.Request != nil && r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
		})

	c := &Client{rc: rc}
	c.Stats = &StatsService{c: c}
	c.Recipes = &RecipeService{c: c}
	c.Ingest = &IngestService{c: c}

	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ready returns the readiness check response. A not-ready server yields an
// *APIError with status 503.
func (c *Client) Ready(ctx context.Context) (*ReadyResponse, error) {
	var resp ReadyResponse
	if err := c.get(ctx, "/api/v1/ready", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get issues a GET with query parameters and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req := c.rc.R().SetContext(ctx).SetResult(result)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	resp, err := req.Get(path)
	return checkResponse(resp, err)
}

// checkResponse turns transport failures and error statuses into errors.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		return parseAPIError(resp.StatusCode(), resp.Body())
	}

	return nil
}
