package scoring

import (
	"fmt"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

// PELOD-2 model constants and domain ceilings.
const (
	pelodBeta0             = -6.61
	pelodBeta1             = 0.47
	pelodNeurologicalMax   = 10
	pelodCardiovascularMax = 6
	pelodRenalMax          = 5
	pelodRespiratoryMax    = 6
	pelodHematologicalMax  = 3
	pelodHypotension       = 4
	pelodVentilated        = 1
)

// Upper bounds (exclusive) of the PELOD-2 severity bands.
const (
	pelodMildUpper     = 7
	pelodModerateUpper = 14
	pelodSevereUpper   = 21
)

var pelodSeverity = reference.Tiers{
	{Upper: pelodMildUpper, Label: "Mild organ dysfunction"},
	{Upper: pelodModerateUpper, Label: "Moderate organ dysfunction"},
	{Upper: pelodSevereUpper, Label: "Severe organ dysfunction"},
	{Upper: reference.Open, Label: "Very severe organ dysfunction"},
}

var pelod2Schema = Schema{
	Type: types.PELOD2,
	Name: types.PELOD2.DisplayName(),
	Fields: []Field{
		num("gcs", "Glasgow Coma Scale", "", 3, 15).required(),
		pupilField("pupillaryReaction"),
		num("lactate", "Lactate", "mmol/L", 0, 30),
		num("meanArterialPressure", "Mean arterial pressure", "mmHg", 0, 200).required(),
		num("creatinine", "Creatinine", "mg/dL", 0, 2000).required(),
		unitField("creatinineUnit", "Creatinine unit"),
		num("pao2fio2", "PaO2/FiO2 ratio", "mmHg", 0, 700),
		num("paco2", "PaCO2", "mmHg", 0, 200),
		flag("invasiveVentilation", "Invasive ventilation"),
		num("wbc", "White blood cell count", "x10^3/uL", 0, 200).required(),
		num("platelets", "Platelets", "x10^3/uL", 0, 2000).required(),
	},
}

type pelod2Scorer struct{}

func (pelod2Scorer) Type() types.ScoreType { return types.PELOD2 }
func (pelod2Scorer) Schema() Schema        { return pelod2Schema }

func (pelod2Scorer) Score(rec Record, age reference.Age) (Assessment, error) {
	stage := reference.StageOf(age.Months)

	neuro := pelodNeurologicalMax
	if rec.Enum("pupillaryReaction") != pupilsBothFixed {
		neuro = bandOf(rec, "gcs", reference.PelodGCS)
	}

	cardio := bandOf(rec, "lactate", reference.PelodLactate)
	if m, ok := rec.Number("meanArterialPressure"); ok && m < reference.PelodMAPThreshold(stage) {
		cardio = max(cardio, pelodHypotension)
	}

	renal := 0
	if v, ok := rec.Number("creatinine"); ok {
		renal = reference.PelodCreatinine(stage).Points(reference.CreatinineMgDL(v, unitOf(rec, "creatinineUnit")))
	}

	ventilated := rec.Flag("invasiveVentilation")
	resp := bandOf(rec, "paco2", reference.PelodPaCO2)
	if ventilated {
		resp = max(resp, pelodVentilated, bandOf(rec, "pao2fio2", reference.PelodPaO2FiO2))
	}

	hema := max(bandOf(rec, "wbc", reference.PelodWBC), bandOf(rec, "platelets", reference.PelodPlatelets))

	subs := types.SubScores{
		domain("neurological", neuro, pelodNeurologicalMax),
		domain("cardiovascular", cardio, pelodCardiovascularMax),
		domain("renal", renal, pelodRenalMax),
		domain("respiratory", resp, pelodRespiratoryMax),
		domain("hematological", hema, pelodHematologicalMax),
	}
	total := subs.Total()
	risk := Percent(Logistic(pelodBeta0, pelodBeta1, float64(total)))
	severity := pelodSeverity.Label(float64(total))

	return Assessment{
		SubScores:        subs,
		MortalityRisk:    &risk,
		SeverityCategory: severity,
		Interpretation:   fmt.Sprintf("PELOD-2 score %d: %s, predicted mortality %.1f%%.", total, severity, risk),
	}, nil
}
