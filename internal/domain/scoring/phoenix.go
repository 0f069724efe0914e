package scoring

import (
	"fmt"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

// Phoenix domain ceilings.
const (
	phoenixRespiratoryMax    = 3
	phoenixCardiovascularMax = 6
	phoenixCoagulationMax    = 2
	phoenixNeurologicalMax   = 2
	phoenixSepsisThreshold   = 2
)

// Coagulation cut-offs.
const (
	phoenixPlateletsBelow  = 100
	phoenixINRAbove        = 1.3
	phoenixDDimerAbove     = 2
	phoenixFibrinogenBelow = 100
	phoenixGCSAtMost       = 10
)

// Respiratory support tokens.
const (
	supportNone   = "none"
	supportNonIMV = "non_imv"
	supportIMV    = "imv"
)

// Sepsis statuses.
const (
	sepsisAbsent  = "No Sepsis"
	sepsisPresent = "Sepsis Present"
	septicShock   = "Septic Shock Present"
)

var phoenixAdvice = map[string]string{
	sepsisAbsent:  "The patient does not meet Phoenix criteria for sepsis.",
	sepsisPresent: "The patient meets criteria for sepsis due to a score ≥ 2 with confirmed or suspected infection.",
	septicShock:   "The patient meets criteria for septic shock due to sepsis with cardiovascular dysfunction and vasoactive medication use.",
}

type phoenixBand struct {
	from int
	risk float64
}

// Highest band first.
var phoenixMortality = []phoenixBand{
	{from: 8, risk: 30},
	{from: 5, risk: 15},
	{from: 2, risk: 5},
}

func phoenixRisk(total int) float64 {
	for _, b := range phoenixMortality {
		if total >= b.from {
			return b.risk
		}
	}
	return 0
}

var phoenixSchema = Schema{
	Type: types.Phoenix,
	Name: types.Phoenix.DisplayName(),
	Fields: append([]Field{
		flag("systemicInfection", "Confirmed or suspected infection").required(),
		enum("respiratorySupport", "Respiratory support", "", supportNone, supportNonIMV, supportIMV).
			alias("None", supportNone, "IMV", supportIMV, "invasive", supportIMV,
				"Any, excluding IMV", supportNonIMV, "any excluding imv", supportNonIMV, "non-imv", supportNonIMV).
			required(),
	}, append(oxygenationFields(),
		num("vasoactiveMedications", "Vasoactive medications (count)", "", 0, 10).
			alias("None", "0", "≥2", "2", ">=2", "2", "2+", "2").
			required(),
		num("lactate", "Lactate", "mmol/L", 0, 30),
		num("meanArterialPressure", "Mean arterial pressure", "mmHg", 0, 200),
		num("platelets", "Platelets", "x10^3/uL", 0, 2000),
		num("inr", "INR", "", 0, 20),
		num("dDimer", "D-dimer", "mg/L FEU", 0, 100),
		num("fibrinogen", "Fibrinogen", "mg/dL", 0, 1000),
		num("gcs", "Glasgow Coma Scale", "", 3, 15),
		flag("pupilsFixed", "Bilaterally fixed pupils"),
	)...),
}

type phoenixScorer struct{}

func (phoenixScorer) Type() types.ScoreType { return types.Phoenix }
func (phoenixScorer) Schema() Schema        { return phoenixSchema }

func (phoenixScorer) Score(rec Record, age reference.Age) (Assessment, error) {
	stage := reference.StageOf(age.Months)

	resp := 0
	ratio, measured, err := oxygenationRatio(rec)
	if err != nil {
		return Assessment{}, err
	}
	if measured {
		switch rec.Enum("respiratorySupport") {
		case supportIMV:
			resp = reference.PhoenixInvasive.Points(ratio)
		case supportNonIMV:
			resp = reference.PhoenixNonInvasive.Points(ratio)
		default:
			resp = reference.PhoenixUnsupported.Points(ratio)
		}
	}

	vasoactive := rec.NumberOr("vasoactiveMedications", 0)
	cardio := reference.PhoenixVasoactive.Points(vasoactive) + bandOf(rec, "lactate", reference.PhoenixLactate)
	if m, ok := rec.Number("meanArterialPressure"); ok && m < reference.PhoenixMAPThreshold(stage) {
		cardio++
	}
	cardio = min(cardio, phoenixCardiovascularMax)

	coag := 0
	if v, ok := rec.Number("platelets"); ok && v < phoenixPlateletsBelow {
		coag++
	}
	if v, ok := rec.Number("inr"); ok && v > phoenixINRAbove {
		coag++
	}
	if v, ok := rec.Number("dDimer"); ok && v > phoenixDDimerAbove {
		coag++
	}
	if v, ok := rec.Number("fibrinogen"); ok && v < phoenixFibrinogenBelow {
		coag++
	}
	coag = min(coag, phoenixCoagulationMax)

	neuro := 0
	if v, ok := rec.Number("gcs"); ok && v <= phoenixGCSAtMost {
		neuro = 1
	}
	if rec.Flag("pupilsFixed") {
		neuro = phoenixNeurologicalMax
	}

	subs := types.SubScores{
		domain("respiratory", resp, phoenixRespiratoryMax),
		domain("cardiovascular", cardio, phoenixCardiovascularMax),
		domain("coagulation", coag, phoenixCoagulationMax),
		domain("neurological", neuro, phoenixNeurologicalMax),
	}
	total := subs.Total()

	status := sepsisAbsent
	if rec.Flag("systemicInfection") && total >= phoenixSepsisThreshold {
		status = sepsisPresent
		if cardio >= 1 && vasoactive > 0 {
			status = septicShock
		}
	}
	risk := phoenixRisk(total)

	return Assessment{
		SubScores:     subs,
		MortalityRisk: &risk,
		SepsisStatus:  status,
		Interpretation: fmt.Sprintf("%s Phoenix score %d, estimated mortality %g%%.",
			phoenixAdvice[status], total, risk),
	}, nil
}
