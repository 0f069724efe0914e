// Package types contains the result contract shared by every scorer, the
// engine, and the adapters that serialize results.
package types

import (
	"strings"
)

// ScoreType identifies one of the supported severity scores.
type ScoreType string

// Supported score types.
const (
	PRISM3   ScoreType = "prism3"
	PELOD2   ScoreType = "pelod2"
	PSOFA    ScoreType = "psofa"
	SOFA     ScoreType = "sofa"
	PIM3     ScoreType = "pim3"
	COMFORTB ScoreType = "comfortb"
	SOSPD    ScoreType = "sospd"
	Phoenix  ScoreType = "phoenix"
)

var scoreTypes = []ScoreType{PRISM3, PELOD2, PSOFA, SOFA, PIM3, COMFORTB, SOSPD, Phoenix}

var displayNames = map[ScoreType]string{
	PRISM3:   "PRISM-3",
	PELOD2:   "PELOD-2",
	PSOFA:    "pSOFA",
	SOFA:     "SOFA (pediatric)",
	PIM3:     "PIM-3",
	COMFORTB: "COMFORT-B",
	SOSPD:    "SOS-PD",
	Phoenix:  "Phoenix Sepsis",
}

// ScoreTypes returns every supported score type in a stable order.
func ScoreTypes() []ScoreType {
	out := make([]ScoreType, len(scoreTypes))
	copy(out, scoreTypes)
	return out
}

// ParseScoreType accepts identifiers case-insensitively and ignores
// separators, so "PRISM-3", "prism_3" and "prism3" are equivalent.
func ParseScoreType(s string) (ScoreType, bool) {
	norm := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
	for _, t := range scoreTypes {
		if string(t) == norm {
			return t, true
		}
	}
	return "", false
}

// DisplayName is the conventional published name of the score.
func (t ScoreType) DisplayName() string {
	if n, ok := displayNames[t]; ok {
		return n
	}
	return string(t)
}

// AgeCategory is the coarse age group reported alongside a result.
type AgeCategory string

// Age categories.
const (
	Neonate    AgeCategory = "neonate"
	Infant     AgeCategory = "infant"
	Child      AgeCategory = "child"
	Adolescent AgeCategory = "adolescent"
)

// ParseAgeCategory validates a category name.
func ParseAgeCategory(s string) (AgeCategory, bool) {
	c := AgeCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case Neonate, Infant, Child, Adolescent:
		return c, true
	default:
		return "", false
	}
}

// PatientContext carries the patient attributes that stratify thresholds.
type PatientContext struct {
	AgeInMonths *float64    `json:"ageInMonths,omitempty" yaml:"ageInMonths,omitempty"`
	AgeCategory AgeCategory `json:"ageCategory,omitempty" yaml:"ageCategory,omitempty"`
}

// ErrorKind classifies why a result carries no score.
type ErrorKind string

// Error kinds.
const (
	KindValidation       ErrorKind = "validation"
	KindUnknownScoreType ErrorKind = "unknown_score_type"
	KindComputation      ErrorKind = "computation"
)

// Result is the outcome of one score computation. Either Error is set and
// nothing else but ScoreType and the error fields is meaningful, or the
// computed fields are populated.
type Result struct {
	ScoreType              ScoreType   `json:"scoreType" yaml:"scoreType"`
	SubScores              SubScores   `json:"subScores" yaml:"subScores"`
	TotalScore             int         `json:"totalScore" yaml:"totalScore"`
	MortalityRisk          *float64    `json:"mortalityRisk,omitempty" yaml:"mortalityRisk,omitempty"`
	MortalityRiskText      string      `json:"mortalityRiskText,omitempty" yaml:"mortalityRiskText,omitempty"`
	Logit                  *float64    `json:"logit,omitempty" yaml:"logit,omitempty"`
	RiskCategory           string      `json:"riskCategory,omitempty" yaml:"riskCategory,omitempty"`
	SeverityCategory       string      `json:"severityCategory,omitempty" yaml:"severityCategory,omitempty"`
	SedationLevel          string      `json:"sedationLevel,omitempty" yaml:"sedationLevel,omitempty"`
	DeliriumPresent        *bool       `json:"deliriumPresent,omitempty" yaml:"deliriumPresent,omitempty"`
	DeliriumType           string      `json:"deliriumType,omitempty" yaml:"deliriumType,omitempty"`
	SepsisStatus           string      `json:"sepsisStatus,omitempty" yaml:"sepsisStatus,omitempty"`
	ClinicalInterpretation string      `json:"clinicalInterpretation,omitempty" yaml:"clinicalInterpretation,omitempty"`
	AgeCategory            AgeCategory `json:"ageCategory,omitempty" yaml:"ageCategory,omitempty"`
	Caveats                []string    `json:"caveats,omitempty" yaml:"caveats,omitempty"`

	Error         string    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind     ErrorKind `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	MissingFields []string  `json:"missingFields,omitempty" yaml:"missingFields,omitempty"`
}

// Failed reports whether the result carries an error instead of a score.
func (r Result) Failed() bool { return r.Error != "" }
