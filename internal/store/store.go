// Package store provides the PostgreSQL adapters for the aggregate stats
// document and the recipe records.
//
// Each store owns one table and embeds shared helpers (DB handle, logger)
// via the Base struct.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

const defaultQueryTimeout = 30 * time.Second

// notifyChannel carries stats change notifications to every instance.
const notifyChannel = "diet_changes"

// Retry policy for connection-class failures.
var (
	retryBaseDelay = 100 * time.Millisecond
	maxRetries     = uint64(3)
)

// DB is the subset of a pgx pool used by the stores. *dbpool.Pool and
// pgxmock pools satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	DB  DB
	Log *logrus.Logger
}

// Ping verifies the database is reachable.
func (b *Base) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return b.DB.Ping(ctx)
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// withRetry runs fn, retrying with exponential backoff while it fails with
// a transient error. Other errors are returned immediately.
func (b *Base) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBaseDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && isTransient(err) {
			b.Log.WithError(err).WithField("op", op).Warn("transient database error, retrying")

			return retry.RetryableError(err)
		}

		return err
	})
}

// isTransient reports whether err is a connection-class failure worth
// retrying.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "40001" || pgErr.Code == "57P03"
	}

	return pgconn.SafeToRetry(err)
}

// notify sends a pg_notify on the diet_changes channel (best-effort).
func (b *Base) notify(ctx context.Context, payload map[string]any) {
	body, _ := json.Marshal(payload) //nolint:errcheck // plain map of strings and times.
	if _, err := b.DB.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, string(body)); err != nil {
		b.Log.WithError(err).Warn("failed to send stats notification")
	}
}
