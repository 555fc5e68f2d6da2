package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/persistorai/dietinsights/internal/models"
)

const upsertStatsSQL = `INSERT INTO diet_stats (key, document, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

const selectStatsSQL = `SELECT document, updated_at FROM diet_stats WHERE key = $1`

// StatsStore persists the aggregate stats document, one row per key.
type StatsStore struct {
	Base
}

// NewStatsStore creates a StatsStore with the given shared base.
func NewStatsStore(base Base) *StatsStore {
	return &StatsStore{Base: base}
}

type statsRow struct {
	Document  []byte    `db:"document"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PutStats replaces the document stored under doc.ID. Concurrent writers
// resolve last-writer-wins.
func (s *StatsStore) PutStats(ctx context.Context, doc *models.StatsDocument) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encoding stats document: %w", models.ErrStoreWrite, err)
	}

	err = s.withRetry(ctx, "put_stats", func(ctx context.Context) error {
		_, err := s.DB.Exec(ctx, upsertStatsSQL, doc.ID, body, doc.UpdatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: upserting stats %s: %w", models.ErrStoreWrite, doc.ID, err)
	}

	s.notify(ctx, map[string]any{
		"type":         "stats.updated",
		"key":          doc.ID,
		"ingest_id":    doc.IngestID,
		"record_count": doc.RecordCount,
		"updated_at":   doc.UpdatedAt,
	})

	return nil
}

// GetStats returns the document stored under key or models.ErrStatsNotFound.
func (s *StatsStore) GetStats(ctx context.Context, key string) (*models.StatsDocument, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var row statsRow

	err := s.withRetry(ctx, "get_stats", func(ctx context.Context) error {
		return pgxscan.Get(ctx, s.DB, &row, selectStatsSQL, key)
	})
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrStatsNotFound
		}

		return nil, fmt.Errorf("%w: reading stats %s: %w", models.ErrStoreRead, key, err)
	}

	var doc models.StatsDocument
	if err := json.Unmarshal(row.Document, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding stats %s: %w", models.ErrStoreRead, key, err)
	}

	doc.ID = key
	doc.UpdatedAt = row.UpdatedAt

	return &doc, nil
}
