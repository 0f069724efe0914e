package scoring

import (
	"fmt"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

const sofaDomainMax = 4

// Vasopressor dose cut-offs (mcg/kg/min) shared by SOFA and pSOFA.
const (
	dopamineHigh      = 15
	dopamineModerate  = 5
	catecholamineHigh = 0.1
)

func vasoactiveFields() []Field {
	return []Field{
		num("dopamine", "Dopamine", "mcg/kg/min", 0, 50).withDefault(0.0),
		num("dobutamine", "Dobutamine", "mcg/kg/min", 0, 50).withDefault(0.0),
		num("epinephrine", "Epinephrine", "mcg/kg/min", 0, 5).withDefault(0.0),
		num("norepinephrine", "Norepinephrine", "mcg/kg/min", 0, 5).withDefault(0.0),
	}
}

// sofaCardiovascular grades support worst-first: high-dose catecholamines,
// then any catecholamine or moderate dopamine, then low-dose dopamine or
// dobutamine, then hypotension alone.
func sofaCardiovascular(rec Record, mapThreshold float64) int {
	dopamine := rec.NumberOr("dopamine", 0)
	dobutamine := rec.NumberOr("dobutamine", 0)
	epinephrine := rec.NumberOr("epinephrine", 0)
	norepinephrine := rec.NumberOr("norepinephrine", 0)

	switch {
	case dopamine > dopamineHigh || epinephrine > catecholamineHigh || norepinephrine > catecholamineHigh:
		return 4
	case dopamine > dopamineModerate || epinephrine > 0 || norepinephrine > 0:
		return 3
	case dopamine > 0 || dobutamine > 0:
		return 2
	}
	if m, ok := rec.Number("meanArterialPressure"); ok && m < mapThreshold {
		return 1
	}
	return 0
}

// Upper bounds (exclusive) of the SOFA severity and mortality bands.
const (
	sofaMildUpper       = 6
	sofaModerateUpper   = 10
	sofaSevereUpper     = 15
	sofaVerySevereUpper = 20
)

var sofaSeverity = reference.Tiers{
	{Upper: sofaMildUpper, Label: "Mild organ dysfunction"},
	{Upper: sofaModerateUpper, Label: "Moderate organ dysfunction"},
	{Upper: sofaSevereUpper, Label: "Severe organ dysfunction"},
	{Upper: reference.Open, Label: "Very severe organ dysfunction"},
}

var sofaMortality = reference.Tiers{
	{Upper: sofaMildUpper, Label: "<10%"},
	{Upper: sofaModerateUpper, Label: "15-20%"},
	{Upper: sofaSevereUpper, Label: "40-50%"},
	{Upper: sofaVerySevereUpper, Label: "50-60%"},
	{Upper: reference.Open, Label: ">80%"},
}

var sofaSchema = Schema{
	Type: types.SOFA,
	Name: types.SOFA.DisplayName(),
	Fields: append([]Field{
		num("pao2fio2", "PaO2/FiO2 ratio", "mmHg", 0, 700).required(),
		flag("isVentilated", "Mechanical ventilation"),
		num("platelets", "Platelets", "x10^3/uL", 0, 2000).required(),
		num("bilirubin", "Bilirubin", "umol/L", 0, 1000).required(),
		unitField("bilirubinUnit", "Bilirubin unit"),
		num("meanArterialPressure", "Mean arterial pressure", "mmHg", 0, 200).required(),
		num("gcs", "Glasgow Coma Scale", "", 3, 15).required(),
		num("creatinine", "Creatinine", "mg/dL", 0, 2000).required(),
		unitField("creatinineUnit", "Creatinine unit"),
		num("urineOutput", "Urine output", "mL/day", 0, 10000),
	}, vasoactiveFields()...),
}

type sofaScorer struct{}

func (sofaScorer) Type() types.ScoreType { return types.SOFA }
func (sofaScorer) Schema() Schema        { return sofaSchema }

func (sofaScorer) Score(rec Record, age reference.Age) (Assessment, error) {
	stage := reference.StageOf(age.Months)

	oxygenation := reference.SofaOxygenationUnsupported
	if rec.Flag("isVentilated") {
		oxygenation = reference.SofaOxygenationVentilated
	}
	resp := bandOf(rec, "pao2fio2", oxygenation)

	liver := 0
	if v, ok := rec.Number("bilirubin"); ok {
		liver = reference.SofaBilirubin.Points(reference.BilirubinMicromolar(v, unitOf(rec, "bilirubinUnit")))
	}

	renal := bandOf(rec, "urineOutput", reference.SofaUrineOutput)
	if v, ok := rec.Number("creatinine"); ok {
		mg := reference.CreatinineMgDL(v, unitOf(rec, "creatinineUnit"))
		renal = max(renal, reference.SofaCreatinine(stage).Points(mg))
	}

	subs := types.SubScores{
		domain("respiratory", resp, sofaDomainMax),
		domain("coagulation", bandOf(rec, "platelets", reference.PlateletsSOFA), sofaDomainMax),
		domain("liver", liver, sofaDomainMax),
		domain("cardiovascular", sofaCardiovascular(rec, reference.PelodMAPThreshold(stage)), sofaDomainMax),
		domain("neurological", bandOf(rec, "gcs", reference.GCSSevere), sofaDomainMax),
		domain("renal", renal, sofaDomainMax),
	}
	total := float64(subs.Total())
	severity := sofaSeverity.Label(total)
	mortality := sofaMortality.Label(total)

	return Assessment{
		SubScores:         subs,
		MortalityRiskText: mortality,
		SeverityCategory:  severity,
		Interpretation:    fmt.Sprintf("SOFA score %d: %s, expected mortality %s.", subs.Total(), severity, mortality),
	}, nil
}
