package scoring

import (
	"errors"
	"strings"
)

// Sentinel errors returned (wrapped) by the engine internals. Compute never
// returns them directly; it folds them into types.Result.
var (
	ErrValidation       = errors.New("invalid input")
	ErrUnknownScoreType = errors.New("unknown score type")
	ErrComputation      = errors.New("computation failed")
)

// FieldProblem describes a declared field whose value could not be coerced.
type FieldProblem struct {
	Label  string
	Reason string
}

// ValidationError carries every offending field found in one validation
// pass. It is never partial.
type ValidationError struct {
	Missing []string // labels of absent required fields
	Invalid []FieldProblem
	Unknown []string // names not declared by the schema
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		items := make([]string, 0, len(e.Invalid))
		for _, p := range e.Invalid {
			items = append(items, p.Label+" ("+p.Reason+")")
		}
		parts = append(parts, "invalid values: "+strings.Join(items, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.Unknown, ", "))
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Fields lists every offending field: missing labels first, then invalid
// labels, then unknown names.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid)+len(e.Unknown))
	out = append(out, e.Missing...)
	for _, p := range e.Invalid {
		out = append(out, p.Label)
	}
	return append(out, e.Unknown...)
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0 && len(e.Unknown) == 0
}

func (e *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Missing = append(e.Missing, other.Missing...)
	e.Invalid = append(e.Invalid, other.Invalid...)
	e.Unknown = append(e.Unknown, other.Unknown...)
}
