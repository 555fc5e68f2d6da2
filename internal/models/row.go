package models

// Field names a canonical column of the normalized schema.
type Field string

// Canonical fields.
const (
	FieldDietType    Field = "diet_type"
	FieldProtein     Field = "protein_g"
	FieldCarbs       Field = "carbs_g"
	FieldFat         Field = "fat_g"
	FieldCalories    Field = "calories"
	FieldRecipeName  Field = "recipe_name"
	FieldCuisineType Field = "cuisine_type"
)

// DefaultDietType is assigned to rows with no diet column or an empty value.
const DefaultDietType = "Unknown"

// MissingSet flags measures that failed coercion under the exclude policy.
type MissingSet uint8

// Measure flags.
const (
	MissingProtein MissingSet = 1 << iota
	MissingCarbs
	MissingFat
)

// Has reports whether every flag in f is set.
func (s MissingSet) Has(f MissingSet) bool { return s&f == f }

// RawTable is a header row plus data rows exactly as read from the source.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// CanonicalRow is one normalized input row. Measures are finite and
// non-negative; a macro flagged in Missing holds zero and is excluded from
// that field's mean. Calories are always present, either read or derived.
type CanonicalRow struct {
	Index           int
	DietType        string
	RecipeName      string
	CuisineType     string
	ProteinG        float64
	CarbsG          float64
	FatG            float64
	Calories        float64
	CaloriesDerived bool
	Missing         MissingSet
}
