package scoring

import (
	"fmt"
	"math"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

const noDiagnosis = "none"

var pim3Schema = Schema{
	Type: types.PIM3,
	Name: types.PIM3.DisplayName(),
	Fields: []Field{
		// 0 records cardiac arrest, a negative value shock with an
		// unmeasurable pressure.
		num("systolicBP", "Systolic blood pressure", "mmHg", -1, 250).required(),
		pupilField("pupillaryReaction").required(),
		num("fio2", "FiO2", "fraction or %", 0, 100),
		num("pao2", "PaO2", "mmHg", 0, 600),
		num("baseExcess", "Base excess", "mmol/L", -40, 40).required(),
		flag("isVentilated", "Mechanical ventilation").required(),
		flag("isElectiveAdmission", "Elective admission").required(),
		flag("isRecoveryFromSurgery", "Recovery from surgery or procedure"),
		flag("isCardiacBypass", "Cardiac bypass"),
		enum("highRiskDiagnosis", "High-risk diagnosis", noDiagnosis,
			append([]string{noDiagnosis}, sortedKeys(reference.Pim3HighRisk)...)...),
		enum("lowRiskDiagnosis", "Low-risk diagnosis", noDiagnosis,
			append([]string{noDiagnosis}, sortedKeys(reference.Pim3LowRisk)...)...),
	},
}

type pim3Scorer struct{}

func (pim3Scorer) Type() types.ScoreType { return types.PIM3 }
func (pim3Scorer) Schema() Schema        { return pim3Schema }

// Score evaluates the PIM-3 logit. The model has no domains: SubScores stays
// empty and the total is 0.
func (pim3Scorer) Score(rec Record, _ reference.Age) (Assessment, error) {
	logit := reference.Pim3Intercept
	var caveats []string

	if sbp, ok := rec.Number("systolicBP"); ok {
		switch {
		case sbp == 0:
			logit += reference.Pim3CardiacArrestBP
		case sbp < 0:
			logit += reference.Pim3UnmeasurableBP
		}
	}

	switch rec.Enum("pupillaryReaction") {
	case pupilsBothFixed:
		logit += reference.Pim3PupilsBothFixed
	case pupilsOneFixed:
		logit += reference.Pim3PupilsOneFixed
	}

	ventilated := rec.Flag("isVentilated")
	if ventilated {
		logit += reference.Pim3Ventilation
		term, err := pim3Oxygenation(rec)
		if err != nil {
			return Assessment{}, err
		}
		if term == nil {
			caveats = append(caveats, "FiO2 or PaO2 not supplied for a ventilated patient; oxygenation term omitted.")
		} else {
			logit += *term
		}
	}

	logit += reference.Pim3BaseExcessFactor * math.Abs(rec.NumberOr("baseExcess", 0))

	if rec.Flag("isElectiveAdmission") {
		logit += reference.Pim3ElectiveAdmission
	}
	if rec.Flag("isRecoveryFromSurgery") {
		logit += reference.Pim3RecoveryFromSurgery
	}
	if rec.Flag("isCardiacBypass") {
		logit += reference.Pim3CardiacBypass
	}
	logit += reference.Pim3HighRisk[rec.Enum("highRiskDiagnosis")]
	logit -= reference.Pim3LowRisk[rec.Enum("lowRiskDiagnosis")]

	if err := finite("PIM-3 logit", logit); err != nil {
		return Assessment{}, err
	}
	risk := Percent(Probability(logit))
	tier := RiskTier(risk)
	rounded := math.Round(logit*1e4) / 1e4

	return Assessment{
		SubScores:      types.SubScores{},
		Logit:          &rounded,
		MortalityRisk:  &risk,
		RiskCategory:   tier,
		Interpretation: fmt.Sprintf("PIM-3 predicted mortality %.1f%% (logit %.4f), %s.", risk, rounded, tier),
		Caveats:        caveats,
	}, nil
}

// pim3Oxygenation returns 0.2888 x (FiO2 x 100 / PaO2), or nil when either
// value is absent. FiO2 above 1 is read as a percent.
func pim3Oxygenation(rec Record) (*float64, error) {
	fio2, okF := rec.Number("fio2")
	pao2, okP := rec.Number("pao2")
	if !okF || !okP {
		return nil, nil
	}
	if fio2 > 1 {
		fio2 /= 100
	}
	if fio2 <= 0 || pao2 <= 0 {
		return nil, fmt.Errorf("%w: FiO2 and PaO2 must be positive (FiO2 %g, PaO2 %g)", ErrComputation, fio2, pao2)
	}
	term := reference.Pim3OxygenationFactor * (fio2 * 100 / pao2)
	if err := finite("FiO2/PaO2 term", term); err != nil {
		return nil, err
	}
	return &term, nil
}
