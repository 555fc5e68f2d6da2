// Package memory implements the stats and recipe stores in process memory.
// It backs tests and throwaway local runs; nothing survives a restart.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/persistorai/dietinsights/internal/models"
)

// Store is a concurrency-safe in-memory store.
type Store struct {
	mu      sync.RWMutex
	stats   map[string]models.StatsDocument
	recipes []models.RecipeRecord
	ids     map[string]struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		stats: make(map[string]models.StatsDocument),
		ids:   make(map[string]struct{}),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// PutStats replaces the document stored under doc.ID.
func (s *Store) PutStats(_ context.Context, doc *models.StatsDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats[doc.ID] = cloneDoc(doc)

	return nil
}

// GetStats returns a copy of the document stored under key.
func (s *Store) GetStats(_ context.Context, key string) (*models.StatsDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.stats[key]
	if !ok {
		return nil, models.ErrStatsNotFound
	}

	out := cloneDoc(&doc)

	return &out, nil
}

// PutRecipe appends one record.
func (s *Store) PutRecipe(ctx context.Context, rec *models.RecipeRecord) error {
	_, err := s.PutRecipes(ctx, []models.RecipeRecord{*rec})
	return err
}

// PutRecipes appends records in order, stopping at the first duplicate id.
func (s *Store) PutRecipes(_ context.Context, recs []models.RecipeRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range recs {
		if _, dup := s.ids[recs[i].ID]; dup {
			return i, &duplicateError{id: recs[i].ID}
		}

		s.ids[recs[i].ID] = struct{}{}
		s.recipes = append(s.recipes, recs[i])
	}

	return len(recs), nil
}

// QueryRecipes returns matching records in insertion order.
func (s *Store) QueryRecipes(
	_ context.Context,
	filter models.RecipeFilter,
	offset, limit int,
) ([]models.RecipeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(filter.Term)
	out := []models.RecipeRecord{}
	skipped := 0

	for _, r := range s.recipes {
		if len(out) >= limit {
			break
		}

		if term != "" && !strings.Contains(strings.ToLower(r.RecipeName), term) {
			continue
		}

		if filter.DietType != "" && r.DietType != filter.DietType {
			continue
		}

		if skipped < offset {
			skipped++
			continue
		}

		out = append(out, r)
	}

	return out, nil
}

type duplicateError struct{ id string }

func (e *duplicateError) Error() string {
	return models.ErrStoreWrite.Error() + ": duplicate recipe id " + e.id
}

func (e *duplicateError) Unwrap() error { return models.ErrStoreWrite }

func cloneDoc(doc *models.StatsDocument) models.StatsDocument {
	out := *doc
	out.MacrosByDiet = append([]models.MacroAverage(nil), doc.MacrosByDiet...)
	out.CaloriesByDiet = append([]models.CalorieAverage(nil), doc.CaloriesByDiet...)
	out.Trend = append([]models.TrendPoint(nil), doc.Trend...)

	return out
}
