package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/persistorai/dietinsights/internal/models"
)

// maxBulkBatchSize limits the number of rows per INSERT statement to avoid
// exceeding PostgreSQL's parameter limit (65535 params).
const maxBulkBatchSize = 500

var recipeInsertColumns = []string{
	"id", "ingest_id", "row_index", "diet_type", "recipe_name", "cuisine_type",
	"protein_g", "carbs_g", "fat_g", "calories", "calories_derived", "created_at",
}

var recipeSelectColumns = []string{
	"id::text AS id", "ingest_id::text AS ingest_id", "row_index", "diet_type",
	"recipe_name", "cuisine_type", "protein_g", "carbs_g", "fat_g", "calories",
	"calories_derived", "created_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RecipeStore persists individual recipe records.
type RecipeStore struct {
	Base
}

// NewRecipeStore creates a RecipeStore with the given shared base.
func NewRecipeStore(base Base) *RecipeStore {
	return &RecipeStore{Base: base}
}

// PutRecipe inserts a single record.
func (s *RecipeStore) PutRecipe(ctx context.Context, rec *models.RecipeRecord) error {
	_, err := s.PutRecipes(ctx, []models.RecipeRecord{*rec})
	return err
}

// PutRecipes inserts records in multi-row batches. Each batch is its own
// statement; on failure it returns the number of records written by the
// earlier batches. Nothing is rolled back.
func (s *RecipeStore) PutRecipes(ctx context.Context, recs []models.RecipeRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	written := 0

	for i := 0; i < len(recs); i += maxBulkBatchSize {
		end := min(i+maxBulkBatchSize, len(recs))

		q := psql.Insert("recipes").Columns(recipeInsertColumns...)
		for j := range recs[i:end] {
			r := &recs[i+j]
			q = q.Values(r.ID, r.IngestID, r.RowIndex, r.DietType, r.RecipeName, r.CuisineType,
				r.ProteinG, r.CarbsG, r.FatG, r.Calories, r.CaloriesDerived, r.CreatedAt)
		}

		query, args, err := q.ToSql()
		if err != nil {
			return written, fmt.Errorf("%w: building recipe insert: %w", models.ErrStoreWrite, err)
		}

		if _, err := s.DB.Exec(ctx, query, args...); err != nil {
			return written, fmt.Errorf("%w: inserting recipes %d-%d: %w", models.ErrStoreWrite, i, end-1, err)
		}

		written = end
	}

	return written, nil
}

// QueryRecipes returns records matching filter in insertion order, skipping
// offset and returning at most limit. The result is never nil.
func (s *RecipeStore) QueryRecipes(
	ctx context.Context,
	filter models.RecipeFilter,
	offset, limit int,
) ([]models.RecipeRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	q := psql.Select(recipeSelectColumns...).From("recipes")
	if filter.Term != "" {
		q = q.Where("strpos(lower(recipe_name), lower(?)) > 0", filter.Term)
	}

	if filter.DietType != "" {
		q = q.Where(sq.Eq{"diet_type": filter.DietType})
	}

	q = q.OrderBy("seq").Limit(uint64(limit)).Offset(uint64(offset)) //nolint:gosec // validated by the search service.

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building recipe query: %w", models.ErrStoreRead, err)
	}

	recs := []models.RecipeRecord{}
	if err := pgxscan.Select(ctx, s.DB, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("%w: querying recipes: %w", models.ErrStoreRead, err)
	}

	return recs, nil
}
