package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/persistorai/dietinsights/internal/models"
)

var recipeColumns = []string{
	"id", "ingest_id", "row_index", "diet_type", "recipe_name", "cuisine_type",
	"protein_g", "carbs_g", "fat_g", "calories", "calories_derived", "created_at",
}

var recipeInsertColumns = append(append([]string{}, recipeColumns...), "recipe_name_lower")

// recipeRow mirrors the recipes table; SQLite has no native time type.
type recipeRow struct {
	ID              string  `db:"id"`
	IngestID        string  `db:"ingest_id"`
	RowIndex        int     `db:"row_index"`
	DietType        string  `db:"diet_type"`
	RecipeName      string  `db:"recipe_name"`
	CuisineType     string  `db:"cuisine_type"`
	ProteinG        float64 `db:"protein_g"`
	CarbsG          float64 `db:"carbs_g"`
	FatG            float64 `db:"fat_g"`
	Calories        float64 `db:"calories"`
	CaloriesDerived bool    `db:"calories_derived"`
	CreatedAt       string  `db:"created_at"`
}

func (r *recipeRow) record() (models.RecipeRecord, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.RecipeRecord{}, err
	}

	return models.RecipeRecord{
		ID:              r.ID,
		IngestID:        r.IngestID,
		RowIndex:        r.RowIndex,
		DietType:        r.DietType,
		RecipeName:      r.RecipeName,
		CuisineType:     r.CuisineType,
		ProteinG:        r.ProteinG,
		CarbsG:          r.CarbsG,
		FatG:            r.FatG,
		Calories:        r.Calories,
		CaloriesDerived: r.CaloriesDerived,
		CreatedAt:       created,
	}, nil
}

// PutRecipe inserts a single record.
func (s *Store) PutRecipe(ctx context.Context, rec *models.RecipeRecord) error {
	_, err := s.PutRecipes(ctx, []models.RecipeRecord{*rec})
	return err
}

// PutRecipes inserts records in batches, one statement per batch, and
// returns how many were written before the first failure.
func (s *Store) PutRecipes(ctx context.Context, recs []models.RecipeRecord) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	written := 0

	for i := 0; i < len(recs); i += maxBatchSize {
		end := min(i+maxBatchSize, len(recs))

		q := sq.Insert("recipes").Columns(recipeInsertColumns...)
		for j := i; j < end; j++ {
			r := &recs[j]
			q = q.Values(r.ID, r.IngestID, r.RowIndex, r.DietType, r.RecipeName, r.CuisineType,
				r.ProteinG, r.CarbsG, r.FatG, r.Calories, r.CaloriesDerived, formatTime(r.CreatedAt),
				strings.ToLower(r.RecipeName))
		}

		query, args, err := q.ToSql()
		if err != nil {
			return written, fmt.Errorf("%w: building recipe insert: %w", models.ErrStoreWrite, err)
		}

		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return written, fmt.Errorf("%w: inserting recipes %d-%d: %w", models.ErrStoreWrite, i, end-1, err)
		}

		written = end
	}

	return written, nil
}

// QueryRecipes returns matching records in insertion order.
func (s *Store) QueryRecipes(
	ctx context.Context,
	filter models.RecipeFilter,
	offset, limit int,
) ([]models.RecipeRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	q := sq.Select(recipeColumns...).From("recipes")
	if filter.Term != "" {
		// recipe_name_lower is folded in Go; SQLite's lower() is ASCII only.
		q = q.Where("instr(recipe_name_lower, ?) > 0", strings.ToLower(filter.Term))
	}

	if filter.DietType != "" {
		q = q.Where(sq.Eq{"diet_type": filter.DietType})
	}

	q = q.OrderBy("seq").Limit(uint64(limit)).Offset(uint64(offset)) //nolint:gosec // validated by the search service.

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building recipe query: %w", models.ErrStoreRead, err)
	}

	var rows []recipeRow
	if err := sqlscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: querying recipes: %w", models.ErrStoreRead, err)
	}

	recs := make([]models.RecipeRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].record()
		if err != nil {
			return nil, fmt.Errorf("%w: decoding recipe %s: %w", models.ErrStoreRead, rows[i].ID, err)
		}
		recs = append(recs, rec)
	}

	return recs, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
