package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/persistorai/dietinsights/internal/models"
)

var errNoSource = errors.New("source store is empty")

// copyPageSize is the number of recipes read from the source per query.
const copyPageSize = 500

type source interface {
	GetStats(ctx context.Context, key string) (*models.StatsDocument, error)
	QueryRecipes(ctx context.Context, filter models.RecipeFilter, offset, limit int) ([]models.RecipeRecord, error)
}

type target interface {
	PutStats(ctx context.Context, doc *models.StatsDocument) error
	PutRecipes(ctx context.Context, recs []models.RecipeRecord) (int, error)
}

// discard is the dry-run target: it accepts everything and stores nothing.
type discard struct{}

func (discard) PutStats(context.Context, *models.StatsDocument) error { return nil }

func (discard) PutRecipes(_ context.Context, recs []models.RecipeRecord) (int, error) {
	return len(recs), nil
}

// copyStore moves the stats document and every recipe, in insertion order,
// from src to dst and fills in r's counters. The stats document is written
// first so a partially copied target still serves stats.
func copyStore(ctx context.Context, src source, dst target, r *report) error {
	doc, err := src.GetStats(ctx, models.DefaultStatsKey)
	switch {
	case errors.Is(err, models.ErrStatsNotFound):
	case err != nil:
		return fmt.Errorf("read stats: %w", err)
	default:
		r.StatsRead = 1
		if err := dst.PutStats(ctx, doc); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
		r.StatsWritten = 1
	}

	for offset := 0; ; offset += copyPageSize {
		page, err := src.QueryRecipes(ctx, models.RecipeFilter{}, offset, copyPageSize)
		if err != nil {
			return fmt.Errorf("read recipes at %d: %w", offset, err)
		}
		r.RecipesRead += len(page)

		n, err := dst.PutRecipes(ctx, page)
		r.RecipesWritten += n
		if err != nil {
			return fmt.Errorf("write recipes at %d: %w", offset, err)
		}

		if len(page) < copyPageSize {
			break
		}
	}

	if r.StatsRead == 0 && r.RecipesRead == 0 {
		return errNoSource
	}

	return nil
}
