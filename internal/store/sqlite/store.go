// Package sqlite implements the stats and recipe stores on an embedded
// SQLite database for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/persistorai/dietinsights/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultQueryTimeout = 30 * time.Second

// maxBatchSize bounds the rows per INSERT (SQLite allows 32766 variables).
const maxBatchSize = 500

// Store persists stats documents and recipe records in one SQLite file.
type Store struct {
	db   *sql.DB
	path string
	log  *logrus.Logger
}

// Open opens (creating if needed) the database at path and applies all
// pending migrations.
func Open(ctx context.Context, path string, log *logrus.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, log: log}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, sub)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		s.log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"duration": r.Duration,
		}).Info("sqlite migration applied")
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// PutStats replaces the document stored under doc.ID.
func (s *Store) PutStats(ctx context.Context, doc *models.StatsDocument) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encoding stats document: %w", models.ErrStoreWrite, err)
	}

	const q = `INSERT INTO diet_stats (key, document, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, q, doc.ID, string(body), formatTime(doc.UpdatedAt)); err != nil {
		return fmt.Errorf("%w: upserting stats %s: %w", models.ErrStoreWrite, doc.ID, err)
	}

	return nil
}

// GetStats returns the document stored under key or models.ErrStatsNotFound.
func (s *Store) GetStats(ctx context.Context, key string) (*models.StatsDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var body, updated string

	err := s.db.QueryRowContext(ctx, `SELECT document, updated_at FROM diet_stats WHERE key = ?`, key).
		Scan(&body, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrStatsNotFound
		}
		return nil, fmt.Errorf("%w: reading stats %s: %w", models.ErrStoreRead, key, err)
	}

	var doc models.StatsDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding stats %s: %w", models.ErrStoreRead, key, err)
	}

	doc.ID = key
	if doc.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("%w: decoding stats %s: %w", models.ErrStoreRead, key, err)
	}

	return &doc, nil
}
