package scoring

import (
	"fmt"
	"math"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

const (
	labelAgeInMonths = "Age in months"
	labelAgeCategory = "Age category"
)

// liftPatient moves the reserved age keys of raw into pc. Values already set
// on pc win. The returned error is never nil; it is empty when nothing was
// wrong.
func liftPatient(raw RawInput, pc types.PatientContext) (types.PatientContext, *ValidationError) {
	verr := &ValidationError{}
	if v, ok := raw[KeyAgeInMonths]; ok && pc.AgeInMonths == nil {
		n, res, reason := coerceNumber(v)
		switch res {
		case present:
			m := n.(float64)
			pc.AgeInMonths = &m
		case invalid:
			verr.Invalid = append(verr.Invalid, FieldProblem{Label: labelAgeInMonths, Reason: reason})
		}
	}
	if v, ok := raw[KeyAgeCategory]; ok && pc.AgeCategory == "" && v != nil {
		s, isString := v.(string)
		if !isString {
			verr.Invalid = append(verr.Invalid, FieldProblem{Label: labelAgeCategory, Reason: fmt.Sprintf("expected a string, got %T", v)})
		} else {
			pc.AgeCategory = types.AgeCategory(s)
		}
	}
	return pc, verr
}

// resolveAge derives the one canonical age every bucket function is keyed
// on. notes lists the assumptions made on the way.
func (e *Engine) resolveAge(pc types.PatientContext) (reference.Age, []string, *ValidationError) {
	verr := &ValidationError{}

	var category types.AgeCategory
	if pc.AgeCategory != "" {
		c, ok := types.ParseAgeCategory(string(pc.AgeCategory))
		if !ok {
			verr.Invalid = append(verr.Invalid, FieldProblem{
				Label:  labelAgeCategory,
				Reason: fmt.Sprintf("%q is not one of neonate, infant, child, adolescent", pc.AgeCategory),
			})
		}
		category = c
	}

	if pc.AgeInMonths != nil {
		m := *pc.AgeInMonths
		if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
			verr.Invalid = append(verr.Invalid, FieldProblem{Label: labelAgeInMonths, Reason: "must be a finite number of at least 0"})
			return reference.Age{}, nil, verr
		}
		var notes []string
		if category != "" && category != reference.Category(m) {
			notes = append(notes, fmt.Sprintf("Age category %s disagrees with an age of %g months; thresholds use the age in months.", category, m))
		}
		return reference.Age{Months: m}, notes, verr
	}

	if category != "" {
		m, _ := reference.RepresentativeMonths(category)
		return reference.Age{Months: m, Estimated: true},
			[]string{fmt.Sprintf("Only the age category %s was supplied; age-adjusted thresholds assume %g months.", category, m)},
			verr
	}

	return reference.Age{Months: e.defaultAge, Estimated: true},
		[]string{fmt.Sprintf("No patient age supplied; age-adjusted thresholds assume a default of %g months.", e.defaultAge)},
		verr
}
