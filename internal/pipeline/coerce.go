package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoercionPolicy decides what happens to a measure that is not a finite
// non-negative number.
type CoercionPolicy string

// Coercion policies.
const (
	ZeroFill CoercionPolicy = "zero_fill"
	Exclude  CoercionPolicy = "exclude"
)

// ParseCoercionPolicy validates a policy name. Empty selects ZeroFill.
func ParseCoercionPolicy(s string) (CoercionPolicy, error) {
	switch CoercionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ZeroFill:
		return ZeroFill, nil
	case Exclude:
		return Exclude, nil
	default:
		return "", fmt.Errorf("unknown coercion policy %q (want zero_fill or exclude)", s)
	}
}

func (p CoercionPolicy) action() string {
	if p == Exclude {
		return "excluded"
	}
	return "zero-filled"
}

// coerce parses a raw cell. Empty, non-numeric, NaN, infinite and negative
// values fail.
func coerce(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}

	return v, true
}
