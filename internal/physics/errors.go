package physics

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for formula evaluation.
var (
	// ErrDomain indicates an argument outside the formula's real domain,
	// such as a negative radicand or a negative base under a fractional power.
	ErrDomain = errors.New("physics: argument outside formula domain")

	// ErrSingularity indicates a division by zero.
	ErrSingularity = errors.New("physics: formula singularity (division by zero)")

	// ErrNonFinite indicates a NaN or Inf argument or result.
	ErrNonFinite = errors.New("physics: non-finite value")
)

// FormulaError wraps a domain error with the formula that raised it.
type FormulaError struct {
	Formula string
	Detail  string
	Wrapped error
}

func (e *FormulaError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Formula, e.Wrapped)
	}
	return fmt.Sprintf("%s: %v: %s", e.Formula, e.Wrapped, e.Detail)
}

func (e *FormulaError) Unwrap() error {
	return e.Wrapped
}

func formulaErr(formula string, wrapped error, format string, args ...any) error {
	return &FormulaError{Formula: formula, Detail: fmt.Sprintf(format, args...), Wrapped: wrapped}
}

// checkFinite reports the first NaN or Inf among the named arguments.
func checkFinite(formula string, names []string, vals ...float64) error {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return formulaErr(formula, ErrNonFinite, "%s=%v", names[i], v)
		}
	}
	return nil
}
