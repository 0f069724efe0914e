package scoring

import (
	"fmt"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

// PRISM-3 model constants.
const (
	prismBeta0          = -6.5
	prismBeta1          = 0.36
	prismNeurologicMax  = 8
	prismNonNeuroMax    = 55
	prismOneFixedPupils = 2
)

// Pupil reaction tokens shared by PRISM-3, PELOD-2 and PIM-3.
const (
	pupilsReactive  = "both_reactive"
	pupilsOneFixed  = "one_fixed"
	pupilsBothFixed = "both_fixed"
)

func pupilField(name string) Field {
	return enum(name, "Pupillary reaction", pupilsReactive, pupilsReactive, pupilsOneFixed, pupilsBothFixed).
		alias("normal", pupilsReactive, "reactive", pupilsReactive, "both reactive", pupilsReactive,
			"one fixed", pupilsOneFixed, "both fixed", pupilsBothFixed, "fixed", pupilsBothFixed)
}

var prism3Schema = Schema{
	Type: types.PRISM3,
	Name: types.PRISM3.DisplayName(),
	Fields: []Field{
		num("gcs", "Glasgow Coma Scale", "", 3, 15).required(),
		pupilField("pupillaryReflexes"),
		num("systolicBP", "Systolic blood pressure", "mmHg", 0, 250).required(),
		num("heartRate", "Heart rate", "bpm", 0, 300).required(),
		num("temperature", "Temperature", "°C", 25, 45).required(),
		num("pH", "pH", "", 6.5, 8),
		num("totalCO2", "Total CO2", "mmol/L", 0, 60),
		num("paO2", "PaO2", "mmHg", 0, 600),
		num("pCO2", "PCO2", "mmHg", 0, 200),
		num("glucose", "Glucose", "mmol/L", 0, 60),
		num("potassium", "Potassium", "mmol/L", 0, 12),
		num("creatinine", "Creatinine", "mg/dL", 0, 2000),
		unitField("creatinineUnit", "Creatinine unit"),
		num("urea", "Urea", "mmol/L", 0, 100),
		num("wbc", "White blood cell count", "x10^3/uL", 0, 200),
		num("pt", "Prothrombin time", "s", 0, 200),
		num("ptt", "Partial thromboplastin time", "s", 0, 300),
		num("platelets", "Platelets", "x10^3/uL", 0, 2000),
	},
}

type prism3Scorer struct{}

func (prism3Scorer) Type() types.ScoreType { return types.PRISM3 }
func (prism3Scorer) Schema() Schema        { return prism3Schema }

func (prism3Scorer) Score(rec Record, age reference.Age) (Assessment, error) {
	group := reference.PrismGroupOf(age.Months)

	neuro := prismNeurologic(rec)

	nonNeuro := bandOf(rec, "systolicBP", reference.PrismSystolicBP(group)) +
		bandOf(rec, "heartRate", reference.PrismHeartRate(group)) +
		bandOf(rec, "temperature", reference.PrismTemperature) +
		max(bandOf(rec, "pH", reference.PrismPH), bandOf(rec, "totalCO2", reference.PrismTotalCO2)) +
		bandOf(rec, "paO2", reference.PrismPaO2) +
		bandOf(rec, "pCO2", reference.PrismPCO2) +
		bandOf(rec, "glucose", reference.PrismGlucose) +
		bandOf(rec, "potassium", reference.PrismPotassium) +
		bandOf(rec, "urea", reference.PrismUrea) +
		bandOf(rec, "wbc", reference.PrismWBC) +
		bandOf(rec, "pt", reference.PrismPT) +
		bandOf(rec, "ptt", reference.PrismPTT) +
		bandOf(rec, "platelets", reference.PrismPlatelets)
	if v, ok := rec.Number("creatinine"); ok {
		mg := reference.CreatinineMgDL(v, unitOf(rec, "creatinineUnit"))
		nonNeuro += reference.PrismCreatinine(group).Points(mg)
	}

	subs := types.SubScores{
		domain("neurologic", neuro, prismNeurologicMax),
		domain("nonNeurologic", min(nonNeuro, prismNonNeuroMax), prismNonNeuroMax),
	}
	total := subs.Total()
	risk := Percent(Logistic(prismBeta0, prismBeta1, float64(total)))
	tier := RiskTier(risk)

	return Assessment{
		SubScores:     subs,
		MortalityRisk: &risk,
		RiskCategory:  tier,
		Interpretation: fmt.Sprintf("PRISM-3 score %d (neurologic %d, non-neurologic %d): predicted mortality %.1f%%, %s.",
			total, subs[0].Points, subs[1].Points, risk, tier),
	}, nil
}

// prismNeurologic applies the pupil override before the GCS bands: bilateral
// fixed pupils force the domain maximum whatever the GCS.
func prismNeurologic(rec Record) int {
	pupils := rec.Enum("pupillaryReflexes")
	if pupils == pupilsBothFixed {
		return prismNeurologicMax
	}
	points := bandOf(rec, "gcs", reference.GCSSevere)
	if pupils == pupilsOneFixed {
		points += prismOneFixedPupils
	}
	return min(points, prismNeurologicMax)
}
