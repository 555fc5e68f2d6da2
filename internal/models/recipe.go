package models

import "time"

// RecipeRecord is one persisted recipe, created during ingestion and never
// modified afterwards.
type RecipeRecord struct {
	ID              string    `json:"id" db:"id"`
	IngestID        string    `json:"ingest_id" db:"ingest_id"`
	RowIndex        int       `json:"row_index" db:"row_index"`
	DietType        string    `json:"diet_type" db:"diet_type"`
	RecipeName      string    `json:"recipe_name,omitempty" db:"recipe_name"`
	CuisineType     string    `json:"cuisine_type,omitempty" db:"cuisine_type"`
	ProteinG        float64   `json:"protein_g" db:"protein_g"`
	CarbsG          float64   `json:"carbs_g" db:"carbs_g"`
	FatG            float64   `json:"fat_g" db:"fat_g"`
	Calories        float64   `json:"calories" db:"calories"`
	CaloriesDerived bool      `json:"calories_derived" db:"calories_derived"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// RecipeFilter restricts a recipe query. Empty fields do not filter.
type RecipeFilter struct {
	Term     string
	DietType string
}

// SearchQuery is a paginated recipe search request.
type SearchQuery struct {
	Term  string
	Diet  string
	Page  int
	Limit int
}

// Search defaults and caps.
const (
	DefaultSearchPage  = 1
	DefaultSearchLimit = 10
	MaxSearchLimit     = 1000
	MaxSearchOffset    = 100000
)
