package client

import "time"

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Store         string  `json:"store"`
	StoreBackend  string  `json:"store_backend"`
	SchemaVersion int     `json:"schema_version,omitempty"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is returned by GET /api/v1/ready.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// MacroAverage is the per-diet mean of the three macronutrients.
type MacroAverage struct {
	DietType string  `json:"diet_type"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// CalorieAverage is the per-diet mean of calories.
type CalorieAverage struct {
	DietType string  `json:"diet_type"`
	Calories float64 `json:"calories"`
}

// TrendPoint is one row of a diet's ordered series.
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

// StatsFilters echoes the filters applied by an on-demand computation.
type StatsFilters struct {
	MinProtein float64 `json:"min_protein"`
}

// StatsMeta describes where a stats response came from. Records is the
// string "Cached" for stored aggregates and a row count otherwise.
type StatsMeta struct {
	Records   any           `json:"records"`
	Msg       string        `json:"msg,omitempty"`
	Filters   *StatsFilters `json:"filters,omitempty"`
	ExecMS    float64       `json:"exec_ms,omitempty"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// StatsResponse is returned by the stats endpoints.
type StatsResponse struct {
	Meta   StatsMeta `json:"meta"`
	Charts Charts    `json:"charts"`
}

// ComputeOptions controls an on-demand stats computation.
type ComputeOptions struct {
	MinProtein float64
	Persist    bool
}

// RecipeRecord is one persisted recipe.
type RecipeRecord struct {
	ID              string    `json:"id"`
	IngestID        string    `json:"ingest_id"`
	RowIndex        int       `json:"row_index"`
	DietType        string    `json:"diet_type"`
	RecipeName      string    `json:"recipe_name,omitempty"`
	CuisineType     string    `json:"cuisine_type,omitempty"`
	ProteinG        float64   `json:"protein_g"`
	CarbsG          float64   `json:"carbs_g"`
	FatG            float64   `json:"fat_g"`
	Calories        float64   `json:"calories"`
	CaloriesDerived bool      `json:"calories_derived"`
	CreatedAt       time.Time `json:"created_at"`
}

// SearchOptions restricts a recipe search. Zero values use server defaults.
type SearchOptions struct {
	Diet  string
	Page  int
	Limit int
}

// CoercionWarning records a cell that failed numeric coercion.
type CoercionWarning struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Raw    string `json:"raw"`
	Action string `json:"action"`
}

// WarningSummary condenses the coercion warnings of one run.
type WarningSummary struct {
	Total   int               `json:"total"`
	ByField map[string]int    `json:"by_field,omitempty"`
	Samples []CoercionWarning `json:"samples,omitempty"`
}

// IngestReport describes a completed ingestion run.
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
