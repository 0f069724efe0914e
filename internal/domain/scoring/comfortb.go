package scoring

import (
	"fmt"
	"math"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

const (
	comfortItemMin = 1
	comfortItemMax = 5
)

var comfortItems = []struct{ name, label string }{
	{"alertness", "Alertness"},
	{"calmness", "Calmness/agitation"},
	{"respiratoryResponse", "Respiratory response (ventilated) or crying"},
	{"movement", "Physical movement"},
	{"muscleTone", "Muscle tone"},
	{"facialTension", "Facial tension"},
}

// Upper bounds (exclusive) of the sedation bands; totals are integers so
// "at most 17" is "below 18".
const (
	comfortOverSedatedUpper = 10
	comfortAdequateUpper    = 18
	comfortMildUpper        = 23
	comfortModerateUpper    = 28
)

var comfortSedation = reference.Tiers{
	{Upper: comfortOverSedatedUpper, Label: "Over-sedation"},
	{Upper: comfortAdequateUpper, Label: "Adequate sedation"},
	{Upper: comfortMildUpper, Label: "Mild distress"},
	{Upper: comfortModerateUpper, Label: "Moderate distress"},
	{Upper: reference.Open, Label: "Severe distress"},
}

var comfortAdvice = map[string]string{
	"Over-sedation":     "Patient is over-sedated. Consider reducing sedative medications.",
	"Adequate sedation": "Patient has adequate sedation level. Continue current sedation regimen and reassess regularly.",
	"Mild distress":     "Patient shows mild distress. Consider non-pharmacological comfort measures and reassess.",
	"Moderate distress": "Patient shows moderate distress. Consider additional analgesia or sedation.",
	"Severe distress":   "Patient shows severe distress. Immediate intervention required for pain/distress management.",
}

var comfortBSchema = func() Schema {
	s := Schema{Type: types.COMFORTB, Name: types.COMFORTB.DisplayName()}
	for _, item := range comfortItems {
		s.Fields = append(s.Fields, num(item.name, item.label, "points", comfortItemMin, comfortItemMax).required())
	}
	s.Fields = append(s.Fields, flag("isVentilated", "Mechanically ventilated"))
	return s
}()

type comfortBScorer struct{}

func (comfortBScorer) Type() types.ScoreType { return types.COMFORTB }
func (comfortBScorer) Schema() Schema        { return comfortBSchema }

func (comfortBScorer) Score(rec Record, _ reference.Age) (Assessment, error) {
	subs := make(types.SubScores, 0, len(comfortItems))
	var caveats []string
	for _, item := range comfortItems {
		raw := rec.NumberOr(item.name, comfortItemMin)
		points := int(math.Trunc(math.Min(math.Max(raw, comfortItemMin), comfortItemMax)))
		if float64(points) != raw {
			caveats = append(caveats, fmt.Sprintf("%s value %g scored as %d.", item.label, raw, points))
		}
		subs = append(subs, domain(item.name, points, comfortItemMax))
	}
	total := subs.Total()
	level := comfortSedation.Label(float64(total))

	interpretation := comfortAdvice[level]
	if rec.Flag("isVentilated") {
		interpretation += " Respiratory response was scored against the ventilator."
	} else {
		interpretation += " Crying was scored in place of respiratory response."
	}

	return Assessment{
		SubScores:      subs,
		SedationLevel:  level,
		Interpretation: interpretation,
		Caveats:        caveats,
	}, nil
}
