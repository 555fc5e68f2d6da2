package models

import "time"

// WarningSummary condenses the coercion warnings of one run.
type WarningSummary struct {
	Total   int               `json:"total"`
	ByField map[Field]int     `json:"by_field,omitempty"`
	Samples []CoercionWarning `json:"samples,omitempty"`
}

// IngestReport describes a completed (or partially completed) ingestion run.
type IngestReport struct {
	IngestID        string         `json:"ingest_id"`
	Source          string         `json:"source"`
	Rows            int            `json:"rows"`
	RecipesWritten  int            `json:"recipes_written"`
	CaloriesDerived bool           `json:"calories_derived"`
	Warnings        WarningSummary `json:"warnings"`
	DurationMS      float64        `json:"duration_ms"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
