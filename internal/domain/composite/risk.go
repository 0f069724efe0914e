package composite

import (
	"math"
	"time"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

// Risk values assigned to scores without a mortality estimate.
const (
	comfortHighTotal     = 12
	comfortModerateTotal = 8
	comfortHighRisk      = 30
	comfortModerateRisk  = 15
	deliriumRisk         = 40
)

// SOFA reports mortality as a band; the band's lower bound is used.
var sofaBandFloor = map[string]float64{
	"<10%":   0,
	"15-20%": 15,
	"40-50%": 40,
	"50-60%": 50,
	">80%":   80,
}

// Contribution is the latest assessment of one score type and its share in
// the composite.
type Contribution struct {
	ScoreType    types.ScoreType `json:"scoreType"`
	AssessmentID string          `json:"assessmentId"`
	RiskValue    float64         `json:"riskValue"`
	Weight       float64         `json:"weight"`
	AssessedAt   time.Time       `json:"assessedAt"`
}

// Summary is the composite risk of a patient. Score is nil when no score
// type contributed.
type Summary struct {
	Score         *float64       `json:"score,omitempty"`
	Contributions []Contribution `json:"contributions"`
}

// Risk combines the latest assessment of each weighted score type into a
// weighted mean rounded to one decimal.
func Risk(history []model.Assessment, w Weights) Summary {
	latest := make(map[types.ScoreType]model.Assessment)
	for _, a := range chronological(history) {
		latest[a.ScoreType] = a
	}

	sum := Summary{Contributions: []Contribution{}}
	var weighted, weights float64
	for _, t := range types.ScoreTypes() {
		a, ok := latest[t]
		weight := w[t]
		if !ok || weight <= 0 {
			continue
		}
		v := riskValue(a.Result)
		sum.Contributions = append(sum.Contributions, Contribution{
			ScoreType:    t,
			AssessmentID: a.ID,
			RiskValue:    v,
			Weight:       weight,
			AssessedAt:   a.CreatedAt,
		})
		weighted += v * weight
		weights += weight
	}
	if weights > 0 {
		score := math.Round(weighted/weights*10) / 10
		sum.Score = &score
	}
	return sum
}

func riskValue(r types.Result) float64 {
	switch r.ScoreType {
	case types.SOFA:
		return sofaBandFloor[r.MortalityRiskText]
	case types.COMFORTB:
		switch {
		case r.TotalScore >= comfortHighTotal:
			return comfortHighRisk
		case r.TotalScore >= comfortModerateTotal:
			return comfortModerateRisk
		}
		return 0
	case types.SOSPD:
		if r.DeliriumPresent != nil && *r.DeliriumPresent {
			return deliriumRisk
		}
		return 0
	}
	if r.MortalityRisk != nil {
		return *r.MortalityRisk
	}
	return 0
}
