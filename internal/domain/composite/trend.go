package composite

import (
	"time"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

// Direction summarizes how a series moved between its first and last point.
type Direction string

// Trend directions. Higher values are worse for every bundled score.
const (
	Improving    Direction = "improving"
	Worsening    Direction = "worsening"
	Stable       Direction = "stable"
	Insufficient Direction = "insufficient_data"
)

// Point is one assessment in a trend series.
type Point struct {
	AssessmentID  string    `json:"assessmentId"`
	AssessedAt    time.Time `json:"assessedAt"`
	TotalScore    int       `json:"totalScore"`
	MortalityRisk *float64  `json:"mortalityRisk,omitempty"`
	Value         float64   `json:"value"`
}

// Series is the chronological trend of one score type.
type Series struct {
	ScoreType types.ScoreType `json:"scoreType"`
	Metric    string          `json:"metric"`
	Points    []Point         `json:"points"`
	Delta     *float64        `json:"delta,omitempty"`
	Direction Direction       `json:"direction"`
}

// Trend builds the series of t from history. PIM-3 has no total, so its
// series follows mortality risk; every other type follows the total score.
func Trend(history []model.Assessment, t types.ScoreType) Series {
	s := Series{ScoreType: t, Metric: "totalScore", Points: []Point{}, Direction: Insufficient}
	if t == types.PIM3 {
		s.Metric = "mortalityRisk"
	}

	for _, a := range chronological(history) {
		if a.ScoreType != t {
			continue
		}
		p := Point{
			AssessmentID:  a.ID,
			AssessedAt:    a.CreatedAt,
			TotalScore:    a.Result.TotalScore,
			MortalityRisk: a.Result.MortalityRisk,
			Value:         float64(a.Result.TotalScore),
		}
		if t == types.PIM3 && a.Result.MortalityRisk != nil {
			p.Value = *a.Result.MortalityRisk
		}
		s.Points = append(s.Points, p)
	}

	if len(s.Points) < 2 {
		return s
	}
	delta := s.Points[len(s.Points)-1].Value - s.Points[0].Value
	s.Delta = &delta
	switch {
	case delta > 0:
		s.Direction = Worsening
	case delta < 0:
		s.Direction = Improving
	default:
		s.Direction = Stable
	}
	return s
}
