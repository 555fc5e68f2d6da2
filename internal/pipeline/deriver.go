package pipeline

// Atwater energy factors, kcal per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// DeriveCalories estimates calories from macronutrients. Callers pass zero
// for any macro that failed coercion; a missing macro never makes the
// result missing.
func DeriveCalories(proteinG, carbsG, fatG float64) float64 {
	return proteinG*kcalPerGramProtein + carbsG*kcalPerGramCarbs + fatG*kcalPerGramFat
}
