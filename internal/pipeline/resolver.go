package pipeline

import (
	"strings"

	"github.com/persistorai/dietinsights/internal/models"
)

// AliasTable maps each canonical field to its accepted source headers in
// priority order. Matching ignores case and surrounding whitespace.
type AliasTable map[models.Field][]string

// DefaultAliases returns the alias table used when none is configured.
func DefaultAliases() AliasTable {
	return AliasTable{
		models.FieldDietType:    {"diet_type", "diet"},
		models.FieldProtein:     {"protein(g)", "protein", "protein_g"},
		models.FieldCarbs:       {"carbs(g)", "carbohydrates", "carbs", "carbs_g"},
		models.FieldFat:         {"fat(g)", "fat", "fat_g"},
		models.FieldCalories:    {"calories", "kcal", "calories_kcal"},
		models.FieldRecipeName:  {"recipe_name", "recipe", "name"},
		models.FieldCuisineType: {"cuisine_type", "cuisine"},
	}
}

// requiredFields abort resolution when unmatched, checked in this order.
var requiredFields = []models.Field{models.FieldProtein, models.FieldCarbs, models.FieldFat}

var resolvableFields = []models.Field{
	models.FieldDietType,
	models.FieldProtein,
	models.FieldCarbs,
	models.FieldFat,
	models.FieldCalories,
	models.FieldRecipeName,
	models.FieldCuisineType,
}

// Resolution is the outcome of matching a header row against an AliasTable.
type Resolution struct {
	Columns         map[models.Field]int
	CaloriesDerived bool
}

// Column returns the source column index for field.
func (r Resolution) Column(field models.Field) (int, bool) {
	i, ok := r.Columns[field]
	return i, ok
}

// Resolve maps headers onto the canonical schema. The first alias in
// priority order wins; when several headers normalize to the same name the
// leftmost one is used. A missing calories column marks calories derivable.
// A missing protein, carbs or fat column returns *models.SchemaResolutionError.
func Resolve(headers []string, aliases AliasTable) (Resolution, error) {
	if aliases == nil {
		aliases = DefaultAliases()
	}

	byName := make(map[string]int, len(headers))
	for i, h := range headers {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, seen := byName[name]; !seen {
			byName[name] = i
		}
	}

	res := Resolution{Columns: make(map[models.Field]int, len(resolvableFields))}
	for _, field := range resolvableFields {
		for _, alias := range aliases[field] {
			if i, ok := byName[normalizeHeader(alias)]; ok {
				res.Columns[field] = i
				break
			}
		}
	}

	for _, field := range requiredFields {
		if _, ok := res.Columns[field]; !ok {
			return Resolution{}, &models.SchemaResolutionError{Field: field, Headers: headers}
		}
	}

	_, hasCalories := res.Columns[models.FieldCalories]
	res.CaloriesDerived = !hasCalories

	return res, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
