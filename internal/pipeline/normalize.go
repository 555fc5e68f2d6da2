package pipeline

import (
	"strings"

	"github.com/persistorai/dietinsights/internal/models"
)

// Options configures normalization. Zero values select the default alias
// table and ZeroFill.
type Options struct {
	Aliases AliasTable
	Policy  CoercionPolicy
}

// Result is the output of Normalize.
type Result struct {
	Rows       []models.CanonicalRow
	Resolution Resolution
	Warnings   []models.CoercionWarning
}

// Normalize resolves the table schema and converts every non-blank row into
// a CanonicalRow. Schema errors are returned before any row is examined.
func Normalize(table *models.RawTable, opts Options) (*Result, error) {
	policy := opts.Policy
	if policy == "" {
		policy = ZeroFill
	}

	res, err := Resolve(table.Headers, opts.Aliases)
	if err != nil {
		return nil, err
	}

	n := &normalizer{res: res, policy: policy}
	out := &Result{Resolution: res, Rows: make([]models.CanonicalRow, 0, len(table.Rows))}

	for i, raw := range table.Rows {
		if isBlank(raw) {
			continue
		}
		out.Rows = append(out.Rows, n.row(raw, i+1, len(out.Rows)))
	}
	out.Warnings = n.warnings

	return out, nil
}

// FilterMinProtein keeps rows whose protein is present and at least min.
// A min of zero or less keeps every row.
func FilterMinProtein(rows []models.CanonicalRow, minProtein float64) []models.CanonicalRow {
	if minProtein <= 0 {
		return rows
	}

	kept := make([]models.CanonicalRow, 0, len(rows))
	for _, r := range rows {
		if r.Missing.Has(models.MissingProtein) || r.ProteinG < minProtein {
			continue
		}
		kept = append(kept, r)
	}

	return kept
}

type normalizer struct {
	res      Resolution
	policy   CoercionPolicy
	warnings []models.CoercionWarning
}

// row converts one raw row. line is the 1-based data row number used in
// warnings; index is the position among kept rows.
func (n *normalizer) row(raw []string, line, index int) models.CanonicalRow {
	row := models.CanonicalRow{
		Index:       index,
		DietType:    models.DefaultDietType,
		RecipeName:  n.text(raw, models.FieldRecipeName),
		CuisineType: n.text(raw, models.FieldCuisineType),
	}
	if diet := n.text(raw, models.FieldDietType); diet != "" {
		row.DietType = diet
	}

	row.ProteinG = n.measure(raw, line, models.FieldProtein, models.MissingProtein, &row)
	row.CarbsG = n.measure(raw, line, models.FieldCarbs, models.MissingCarbs, &row)
	row.FatG = n.measure(raw, line, models.FieldFat, models.MissingFat, &row)

	if cal, ok := n.calories(raw, line); ok {
		row.Calories = cal
	} else {
		row.Calories = DeriveCalories(row.ProteinG, row.CarbsG, row.FatG)
		row.CaloriesDerived = true
	}

	return row
}

// calories returns the source calories when the column exists and the cell
// coerces. A failed cell is derived from macros rather than zero-filled.
func (n *normalizer) calories(raw []string, line int) (float64, bool) {
	i, ok := n.res.Column(models.FieldCalories)
	if !ok {
		return 0, false
	}

	var cell string
	if i < len(raw) {
		cell = raw[i]
	}

	v, ok := coerce(cell)
	if !ok {
		n.warnings = append(n.warnings, models.CoercionWarning{
			Row:    line,
			Field:  models.FieldCalories,
			Raw:    cell,
			Action: "derived",
		})
	}

	return v, ok
}

func (n *normalizer) text(raw []string, field models.Field) string {
	i, ok := n.res.Column(field)
	if !ok || i >= len(raw) {
		return ""
	}
	return strings.TrimSpace(raw[i])
}

func (n *normalizer) measure(raw []string, line int, field models.Field, flag models.MissingSet, row *models.CanonicalRow) float64 {
	var cell string
	if i, ok := n.res.Column(field); ok && i < len(raw) {
		cell = raw[i]
	}

	v, ok := coerce(cell)
	if ok {
		return v
	}

	n.warnings = append(n.warnings, models.CoercionWarning{
		Row:    line,
		Field:  field,
		Raw:    cell,
		Action: n.policy.action(),
	})
	if n.policy == Exclude {
		row.Missing |= flag
	}

	return 0
}

func isBlank(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
