package client

import (
	"context"
	"net/url"
	"strconv"
)

// RecipeService searches persisted recipes.
type RecipeService struct {
	c *Client
}

// Search returns one page of recipes whose name contains query. An empty
// query matches every recipe.
func (s *RecipeService) Search(ctx context.Context, query string, opts *SearchOptions) ([]RecipeRecord, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if opts != nil {
		if opts.Diet != "" {
			params.Set("diet", opts.Diet)
		}
		if opts.Page > 0 {
			params.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	var recs []RecipeRecord
	if err := s.c.get(ctx, "/api/v1/recipes", params, &recs); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []RecipeRecord{}
	}
	return recs, nil
}
