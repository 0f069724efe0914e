package scoring

import (
	"fmt"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

const (
	defaultFiO2Percent = 21
	oxygenPaO2         = "pao2"
	oxygenSpO2         = "spo2"
)

type psofaBand struct {
	upTo  int // inclusive
	risk  float64
	label string
}

var psofaBands = []psofaBand{
	{upTo: 4, risk: 2, label: "Low"},
	{upTo: 8, risk: 10, label: "Moderate"},
	{upTo: 12, risk: 25, label: "High"},
	{upTo: 6 * sofaDomainMax, risk: 50, label: "Very High"},
}

func psofaBandOf(total int) psofaBand {
	for _, b := range psofaBands {
		if total <= b.upTo {
			return b
		}
	}
	return psofaBands[len(psofaBands)-1]
}

func oxygenationFields() []Field {
	return []Field{
		enum("oxygenMeasurement", "Oxygenation measurement", oxygenPaO2, oxygenPaO2, oxygenSpO2).
			alias("PaO2", oxygenPaO2, "SpO2", oxygenSpO2),
		num("pao2", "PaO2", "mmHg", 0, 600),
		num("spo2", "SpO2", "%", 0, 100),
		num("fio2", "FiO2", "%", 0, 100).withDefault(float64(defaultFiO2Percent)),
	}
}

// oxygenationRatio returns PaO2 (or SpO2) over FiO2 as a fraction. FiO2 is
// accepted as a percent or, when at most 1, as a fraction. ok is false when
// no oxygenation value was measured.
func oxygenationRatio(rec Record) (ratio float64, ok bool, err error) {
	name := oxygenPaO2
	if rec.Enum("oxygenMeasurement") == oxygenSpO2 {
		name = oxygenSpO2
	}
	value, measured := rec.Number(name)
	if !measured {
		return 0, false, nil
	}
	fio2 := rec.NumberOr("fio2", defaultFiO2Percent)
	if fio2 <= 0 {
		return 0, false, fmt.Errorf("%w: FiO2 must be positive, got %g", ErrComputation, fio2)
	}
	fraction := fio2 / 100
	if fio2 <= 1 {
		fraction = fio2
	}
	ratio = value / fraction
	if err := finite("oxygenation ratio", ratio); err != nil {
		return 0, false, err
	}
	return ratio, true, nil
}

var psofaSchema = Schema{
	Type: types.PSOFA,
	Name: types.PSOFA.DisplayName(),
	Fields: append(append(oxygenationFields(),
		num("platelets", "Platelets", "x10^3/uL", 0, 2000).required(),
		num("bilirubin", "Bilirubin", "mg/dL", 0, 1000).required(),
		unitField("bilirubinUnit", "Bilirubin unit"),
		num("meanArterialPressure", "Mean arterial pressure", "mmHg", 0, 200).required(),
		num("gcs", "Glasgow Coma Scale", "", 3, 15).required(),
		num("creatinine", "Creatinine", "mg/dL", 0, 2000).required(),
		unitField("creatinineUnit", "Creatinine unit"),
	), vasoactiveFields()...),
}

type psofaScorer struct{}

func (psofaScorer) Type() types.ScoreType { return types.PSOFA }
func (psofaScorer) Schema() Schema        { return psofaSchema }

func (psofaScorer) Score(rec Record, age reference.Age) (Assessment, error) {
	stage := reference.StageOf(age.Months)

	resp := 0
	ratio, measured, err := oxygenationRatio(rec)
	if err != nil {
		return Assessment{}, err
	}
	var caveats []string
	if measured {
		resp = reference.PSofaOxygenation.Points(ratio)
	} else {
		caveats = append(caveats, "No oxygenation measurement supplied; respiratory domain scored 0.")
	}

	liver := 0
	if v, ok := rec.Number("bilirubin"); ok {
		liver = reference.PSofaBilirubin.Points(reference.BilirubinMgDL(v, unitOf(rec, "bilirubinUnit")))
	}
	renal := 0
	if v, ok := rec.Number("creatinine"); ok {
		renal = reference.PSofaCreatinine(stage).Points(reference.CreatinineMgDL(v, unitOf(rec, "creatinineUnit")))
	}

	subs := types.SubScores{
		domain("respiratory", resp, sofaDomainMax),
		domain("coagulation", bandOf(rec, "platelets", reference.PlateletsSOFA), sofaDomainMax),
		domain("liver", liver, sofaDomainMax),
		domain("cardiovascular", sofaCardiovascular(rec, reference.PSofaMAPThreshold(stage)), sofaDomainMax),
		domain("neurological", bandOf(rec, "gcs", reference.PSofaGCS), sofaDomainMax),
		domain("renal", renal, sofaDomainMax),
	}
	total := subs.Total()
	band := psofaBandOf(total)
	risk := band.risk

	return Assessment{
		SubScores:        subs,
		MortalityRisk:    &risk,
		SeverityCategory: band.label,
		Interpretation: fmt.Sprintf("pSOFA score %d (age group %s): %s organ dysfunction burden, estimated mortality %g%%.",
			total, stage, band.label, risk),
		Caveats: caveats,
	}, nil
}
