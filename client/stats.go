package client

import (
	"context"
	"net/url"
	"strconv"
)

// StatsService reads aggregate stats.
type StatsService struct {
	c *Client
}

// Get returns the stored aggregate. Before the first ingestion it returns an
// *APIError for which IsNotFound is true.
func (s *StatsService) Get(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := s.c.get(ctx, "/api/v1/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Compute recomputes stats from the raw dataset on the server.
func (s *StatsService) Compute(ctx context.Context, opts ComputeOptions) (*StatsResponse, error) {
	params := url.Values{}
	if opts.MinProtein > 0 {
		params.Set("min_protein", strconv.FormatFloat(opts.MinProtein, 'f', -1, 64))
	}
	if opts.Persist {
		params.Set("persist", "true")
	}

	var resp StatsResponse
	if err := s.c.get(ctx, "/api/v1/stats/compute", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
