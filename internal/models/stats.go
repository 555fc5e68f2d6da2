package models

import "time"

// DefaultStatsKey is the fixed key of the aggregate stats document.
const DefaultStatsKey = "global_stats"

// CachedRecords is the meta.records value of a stored aggregate.
const CachedRecords = "Cached"

// MacroAverage is the per-diet mean of the three macronutrients.
type MacroAverage struct {
	DietType string  `json:"diet_type"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// CalorieAverage is the per-diet mean of calories, real or derived.
type CalorieAverage struct {
	DietType string  `json:"diet_type"`
	Calories float64 `json:"calories"`
}

// TrendPoint is one row of a diet's ordered series. Index is the 0-based
// position of the row within its diet group.
type TrendPoint struct {
	DietType string  `json:"diet_type"`
	Index    int     `json:"index"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
}

// Charts holds the three chart-ready views.
type Charts struct {
	MacrosByDiet   []MacroAverage   `json:"macros_by_diet"`
	CaloriesByDiet []CalorieAverage `json:"calories_by_diet"`
	Trend          []TrendPoint     `json:"trend"`
}

// StatsDocument is the aggregate persisted after each ingestion run. It is
// replaced wholesale on every write.
type StatsDocument struct {
	ID string `json:"id"`
	Charts
	RecordCount int       `json:"record_count"`
	IngestID    string    `json:"ingest_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatsFilters echoes the filters applied by an on-demand computation.
type StatsFilters struct {
	MinProtein float64 `json:"min_protein"`
}

// StatsMeta describes where a stats response came from. Records is the
// string "Cached" for stored aggregates and the row count otherwise.
type StatsMeta struct {
	Records   any           `json:"records"`
	Msg       string        `json:"msg,omitempty"`
	Filters   *StatsFilters `json:"filters,omitempty"`
	ExecMS    float64       `json:"exec_ms,omitempty"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// StatsResponse is the payload of the stats endpoints.
type StatsResponse struct {
	Meta   StatsMeta `json:"meta"`
	Charts Charts    `json:"charts"`
}

// ComputeOptions controls an on-demand stats computation.
type ComputeOptions struct {
	MinProtein float64
	Persist    bool
}
