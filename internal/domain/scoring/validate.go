package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RawInput is the loosely typed field map a caller submits.
type RawInput map[string]any

// Reserved input keys carrying patient context rather than measurements.
const (
	KeyAgeInMonths = "ageInMonths"
	KeyAgeCategory = "ageCategory"
)

// Record is a validated input: every value has the type its Field declares.
type Record struct {
	values map[string]any
	notes  []string
}

// Has reports whether a field has a value (given or defaulted).
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Number returns a numeric field.
func (r Record) Number(name string) (float64, bool) {
	v, ok := r.values[name].(float64)
	return v, ok
}

// NumberOr returns a numeric field or def when absent.
func (r Record) NumberOr(name string, def float64) float64 {
	if v, ok := r.Number(name); ok {
		return v
	}
	return def
}

// Flag returns a boolean field; absent flags are false.
func (r Record) Flag(name string) bool {
	v, _ := r.values[name].(bool)
	return v
}

// Enum returns an enumerated field, or "" when absent.
func (r Record) Enum(name string) string {
	v, _ := r.values[name].(string)
	return v
}

// Notes are non-fatal remarks raised during validation.
func (r Record) Notes() []string { return r.notes }

// NewRecord builds a Record from already typed values. It is meant for tests
// and callers that bypass raw input.
func NewRecord(values map[string]any) Record {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Record{values: cp}
}

type outcome int

const (
	present outcome = iota
	missing
	invalid
)

// Normalize validates raw against the schema. It reports every missing,
// invalid and unknown field at once; it never clamps.
func (s Schema) Normalize(raw RawInput) (Record, error) {
	rec := Record{values: make(map[string]any, len(s.Fields))}
	verr := &ValidationError{}
	declared := make(map[string]struct{}, len(s.Fields))

	for _, f := range s.Fields {
		declared[f.Name] = struct{}{}
		v, res, reason := f.coerce(raw[f.Name])
		switch res {
		case present:
			rec.values[f.Name] = v
			if note := f.rangeNote(v); note != "" {
				rec.notes = append(rec.notes, note)
			}
		case invalid:
			verr.Invalid = append(verr.Invalid, FieldProblem{Label: f.Label, Reason: reason})
		case missing:
			if f.Required {
				verr.Missing = append(verr.Missing, f.Label)
			} else if f.Default != nil {
				rec.values[f.Name] = f.Default
			}
		}
	}

	for name := range raw {
		if name == KeyAgeInMonths || name == KeyAgeCategory {
			continue
		}
		if _, ok := declared[name]; !ok {
			verr.Unknown = append(verr.Unknown, name)
		}
	}
	sort.Strings(verr.Unknown)

	if !verr.empty() {
		return Record{}, verr
	}
	return rec, nil
}

func (f Field) coerce(v any) (any, outcome, string) {
	if v == nil {
		return nil, missing, ""
	}
	switch f.Kind {
	case Number:
		if s, ok := v.(string); ok {
			if target, ok := f.aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
				v = target
			}
		}
		return coerceNumber(v)
	case Flag:
		return coerceFlag(v)
	case Enum:
		return f.coerceEnum(v)
	default:
		return nil, invalid, "unsupported field kind"
	}
}

func coerceNumber(v any) (any, outcome, string) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, missing, ""
		}
		n = f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, missing, ""
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, missing, ""
		}
		n = f
	default:
		return nil, invalid, fmt.Sprintf("expected a number, got %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, invalid, "not a finite number"
	}
	return n, present, ""
}

func coerceFlag(v any) (any, outcome, string) {
	switch x := v.(type) {
	case bool:
		return x, present, ""
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "":
			return nil, missing, ""
		case "yes", "y", "true", "1":
			return true, present, ""
		case "no", "n", "false", "0":
			return false, present, ""
		}
		return nil, invalid, fmt.Sprintf("expected yes/no, got %q", x)
	}
	n, res, reason := coerceNumber(v)
	if res != present {
		if res == invalid {
			reason = fmt.Sprintf("expected a flag, got %T", v)
		}
		return nil, res, reason
	}
	switch n.(float64) {
	case 0:
		return false, present, ""
	case 1:
		return true, present, ""
	}
	return nil, invalid, fmt.Sprintf("expected 0 or 1, got %v", n)
}

func (f Field) coerceEnum(v any) (any, outcome, string) {
	s, ok := v.(string)
	if !ok {
		return nil, invalid, fmt.Sprintf("expected one of %s", strings.Join(f.Options, ", "))
	}
	token := strings.ToLower(strings.TrimSpace(s))
	if token == "" {
		return nil, missing, ""
	}
	if target, ok := f.aliases[token]; ok {
		token = target
	}
	for _, opt := range f.Options {
		if token == opt {
			return opt, present, ""
		}
	}
	return nil, invalid, fmt.Sprintf("%q is not one of %s", s, strings.Join(f.Options, ", "))
}

func (f Field) rangeNote(v any) string {
	n, ok := v.(float64)
	if !ok || f.Range == nil {
		return ""
	}
	if n < f.Range.Min || n > f.Range.Max {
		return fmt.Sprintf("%s %g is outside the plausible range %g-%g", f.Label, n, f.Range.Min, f.Range.Max)
	}
	return ""
}
