// Package reference holds the immutable, age-stratified lookup data used by
// the scorers: threshold bands, MAP and creatinine norms, and unit
// conversion rules. Everything here is read-only after package init.
package reference

import (
	"github.com/okian/pediscore/internal/domain/types"
)

// DefaultAgeMonths is assumed when a caller supplies neither an age nor an
// age category (8.5 years).
const DefaultAgeMonths = 102

// Age is the canonical patient age every bucket function is keyed on.
type Age struct {
	Months float64
	// Estimated is set when Months was derived from a category or a default
	// rather than supplied by the caller.
	Estimated bool
}

// Generic category boundaries in months.
const (
	neonateUpperMonths = 1
	infantUpperMonths  = 12
	childUpperMonths   = 144
)

// Category maps months to the coarse category reported back to callers.
func Category(months float64) types.AgeCategory {
	switch {
	case months < neonateUpperMonths:
		return types.Neonate
	case months < infantUpperMonths:
		return types.Infant
	case months < childUpperMonths:
		return types.Child
	default:
		return types.Adolescent
	}
}

// representativeMonths is the age used when only a category is known. Each
// value sits inside the same bucket for every scorer-specific function.
var representativeMonths = map[types.AgeCategory]float64{
	types.Neonate:    0.5,
	types.Infant:     6,
	types.Child:      84,
	types.Adolescent: 180,
}

// RepresentativeMonths returns a stand-in age for a category.
func RepresentativeMonths(c types.AgeCategory) (float64, bool) {
	m, ok := representativeMonths[c]
	return m, ok
}

// Stage is the six-step developmental bucket shared by PELOD-2, SOFA, pSOFA
// and Phoenix tables.
type Stage int

// Stages, youngest first.
const (
	StageNewborn   Stage = iota // < 1 month
	StageInfant                 // 1-11 months
	StageToddler                // 12-23 months
	StagePreschool              // 24-59 months
	StageSchoolAge              // 60-143 months
	StageAdolescent             // 144 months and over
	stageCount
)

var stageUpperMonths = [stageCount - 1]float64{1, 12, 24, 60, 144}

// StageOf returns the developmental stage for an age in months.
func StageOf(months float64) Stage {
	for i, upper := range stageUpperMonths {
		if months < upper {
			return Stage(i)
		}
	}
	return StageAdolescent
}

func (s Stage) String() string {
	switch s {
	case StageNewborn:
		return "<1 month"
	case StageInfant:
		return "1 to 11 months"
	case StageToddler:
		return "1 to <2 years"
	case StagePreschool:
		return "2 to <5 years"
	case StageSchoolAge:
		return "5 to <12 years"
	default:
		return "12 to 17 years"
	}
}

// PrismGroup is the four-group age split PRISM-3 uses.
type PrismGroup int

// PRISM-3 age groups.
const (
	PrismNeonate    PrismGroup = iota // < 1 month
	PrismInfant                       // 1 month to < 2 years
	PrismChild                        // 2 years to < 13 years
	PrismAdolescent                   // 13 years and over
)

const (
	prismInfantUpperMonths = 24
	prismChildUpperMonths  = 156
)

// PrismGroupOf returns the PRISM-3 age group for an age in months.
func PrismGroupOf(months float64) PrismGroup {
	switch {
	case months < neonateUpperMonths:
		return PrismNeonate
	case months < prismInfantUpperMonths:
		return PrismInfant
	case months < prismChildUpperMonths:
		return PrismChild
	default:
		return PrismAdolescent
	}
}
