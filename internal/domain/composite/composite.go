// Package composite derives patient-level views from assessment history:
// a weighted risk across score types and per-type trends.
package composite

import (
	"sort"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

// Weights maps a score type to its share in the composite risk. Types with a
// weight of zero or less are left out.
type Weights map[types.ScoreType]float64

// DefaultWeights returns the stock weighting: mortality models count most,
// sedation least.
func DefaultWeights() Weights {
	return Weights{
		types.PRISM3:   1.5,
		types.PELOD2:   1.5,
		types.PIM3:     1.5,
		types.SOFA:     1.2,
		types.PSOFA:    1.2,
		types.COMFORTB: 0.8,
		types.SOSPD:    1.0,
		types.Phoenix:  1.3,
	}
}

// Merge returns a copy of w with overrides applied. Unknown score types in
// overrides are ignored.
func (w Weights) Merge(overrides map[string]float64) Weights {
	out := make(Weights, len(w))
	for t, v := range w {
		out[t] = v
	}
	for name, v := range overrides {
		if t, ok := types.ParseScoreType(name); ok {
			out[t] = v
		}
	}
	return out
}

// chronological returns the scored assessments of history oldest first.
// Failed assessments carry no score and are skipped.
func chronological(history []model.Assessment) []model.Assessment {
	out := make([]model.Assessment, 0, len(history))
	for _, a := range history {
		if a.Scored() {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
