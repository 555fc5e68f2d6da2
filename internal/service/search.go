package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/models"
)

// SearchService runs paginated recipe searches.
type SearchService struct {
	store RecipeStore
	log   *logrus.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(store RecipeStore, log *logrus.Logger) *SearchService {
	return &SearchService{store: store, log: log}
}

// Search returns at most q.Limit records matching q, skipping
// (q.Page-1)*q.Limit. The offset uses the requested limit; only the number
// of rows returned is capped. Pages past the offset cap return no records.
func (s *SearchService) Search(ctx context.Context, q models.SearchQuery) ([]models.RecipeRecord, error) {
	if q.Page < 1 || q.Limit < 1 {
		return nil, fmt.Errorf("%w: page and limit must be at least 1", models.ErrInvalidSearch)
	}

	if q.Page-1 > models.MaxSearchOffset/q.Limit {
		return []models.RecipeRecord{}, nil
	}

	offset := (q.Page - 1) * q.Limit
	if offset > models.MaxSearchOffset {
		return []models.RecipeRecord{}, nil
	}

	limit := min(q.Limit, models.MaxSearchLimit)

	filter := models.RecipeFilter{Term: q.Term, DietType: q.Diet}
	if strings.TrimSpace(filter.Term) == "" {
		filter.Term = ""
	}

	recs, err := s.store.QueryRecipes(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}

	if recs == nil {
		recs = []models.RecipeRecord{}
	}

	return recs, nil
}
