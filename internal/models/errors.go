package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for stats and dataset lookups.
var (
	ErrStatsNotFound     = errors.New("stats not found")
	ErrSourceNotFound    = errors.New("source dataset not found")
	ErrEmptyDataset      = errors.New("dataset is empty")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Sentinel errors for backing store failures. Adapters wrap the driver error
// with one of these so callers can classify without knowing the backend.
var (
	ErrStoreRead  = errors.New("store read failed")
	ErrStoreWrite = errors.New("store write failed")
)

// Sentinel errors for request validation.
var (
	ErrInvalidSearch   = errors.New("invalid search query")
	ErrInvalidFilter   = errors.New("invalid stats filter")
	ErrPersistFiltered = errors.New("filtered stats cannot be persisted")
)

// SchemaResolutionError reports a required canonical field with no matching
// source column. Ingestion aborts before anything is aggregated or written.
type SchemaResolutionError struct {
	Field   Field
	Headers []string
}

// Error implements the error interface.
func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("schema resolution: no column for canonical field %s (headers: %s)",
		e.Field, strings.Join(e.Headers, ", "))
}

// PartialBatchWriteError reports a recipe batch that stopped after Written of
// Total records were persisted. Written records are not rolled back.
type PartialBatchWriteError struct {
	Written int
	Total   int
	Err     error
}

// Error implements the error interface.
func (e *PartialBatchWriteError) Error() string {
	return fmt.Sprintf("partial batch write: %d of %d recipes written: %v", e.Written, e.Total, e.Err)
}

// Unwrap returns the underlying store error.
func (e *PartialBatchWriteError) Unwrap() error { return e.Err }

// CoercionWarning records a cell that failed numeric coercion. It is never
// fatal; Action says whether the value was zero-filled or excluded.
type CoercionWarning struct {
	Row    int    `json:"row"`
	Field  Field  `json:"field"`
	Raw    string `json:"raw"`
	Action string `json:"action"`
}

// String renders the warning for log output.
func (w CoercionWarning) String() string {
	return fmt.Sprintf("row %d: %s=%q %s", w.Row, w.Field, w.Raw, w.Action)
}
