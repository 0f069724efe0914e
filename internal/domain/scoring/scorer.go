// Package scoring implements the pediatric severity scorers and the engine
// that validates input, runs a scorer and folds the outcome into a
// types.Result.
package scoring

import (
	"fmt"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

// Assessment is what a scorer produces before the engine formats it.
type Assessment struct {
	SubScores         types.SubScores
	MortalityRisk     *float64
	MortalityRiskText string
	Logit             *float64
	RiskCategory      string
	SeverityCategory  string
	SedationLevel     string
	DeliriumPresent   *bool
	DeliriumType      string
	SepsisStatus      string
	Interpretation    string
	Caveats           []string
}

// Scorer maps a validated record and a resolved age to an assessment.
// Implementations must be stateless.
type Scorer interface {
	Type() types.ScoreType
	Schema() Schema
	Score(rec Record, age reference.Age) (Assessment, error)
}

// Builtin returns one instance of every bundled scorer.
func Builtin() []Scorer {
	return []Scorer{
		prism3Scorer{},
		pelod2Scorer{},
		psofaScorer{},
		sofaScorer{},
		pim3Scorer{},
		comfortBScorer{},
		sospdScorer{},
		phoenixScorer{},
	}
}

// Normalize validates raw input for a bundled scorer.
func Normalize(t types.ScoreType, raw RawInput) (Record, error) {
	for _, s := range Builtin() {
		if s.Type() == t {
			return s.Schema().Normalize(raw)
		}
	}
	return Record{}, fmt.Errorf("%w: %q", ErrUnknownScoreType, t)
}

func ptr[T any](v T) *T { return &v }
