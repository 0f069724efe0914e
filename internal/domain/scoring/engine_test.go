package scoring_test

import (
	"math"
	"strings"
	"testing"

	reference "github.com/okian/pediscore/internal/domain/reference"
	scoring "github.com/okian/pediscore/internal/domain/scoring"
	types "github.com/okian/pediscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type panickyScorer struct{}

func (panickyScorer) Type() types.ScoreType { return types.COMFORTB }

func (panickyScorer) Schema() scoring.Schema {
	s, _ := scoring.New().Schema(types.COMFORTB)
	return s
}

func (panickyScorer) Score(scoring.Record, reference.Age) (scoring.Assessment, error) {
	panic("table index out of range")
}

type overflowScorer struct{ panickyScorer }

func (overflowScorer) Score(scoring.Record, reference.Age) (scoring.Assessment, error) {
	inf := math.Inf(1)
	return scoring.Assessment{
		SubScores:     types.SubScores{{Domain: "alertness", Points: 9, Max: 5}},
		MortalityRisk: &inf,
	}, nil
}

func TestEngineCompute(t *testing.T) {
	engine := scoring.New()

	Convey("Given an unknown score type", t, func() {
		r := engine.Compute("apache2", scoring.RawInput{}, months(24))

		Convey("Then the result should carry only the error kind", func() {
			So(r.Failed(), ShouldBeTrue)
			So(r.ErrorKind, ShouldEqual, types.KindUnknownScoreType)
			So(r.SubScores, ShouldBeNil)
		})
	})

	Convey("Given a score type spelled loosely", t, func() {
		r := engine.Compute("PRISM-3", prismNormal, months(84))

		Convey("Then the canonical identifier should be reported", func() {
			So(r.Failed(), ShouldBeFalse)
			So(r.ScoreType, ShouldEqual, types.PRISM3)
		})
	})

	Convey("Given empty PRISM-3 input", t, func() {
		r := engine.Compute(types.PRISM3, scoring.RawInput{}, months(84))

		Convey("Then every missing label should be listed", func() {
			So(r.ErrorKind, ShouldEqual, types.KindValidation)
			So(r.MissingFields, ShouldHaveLength, 4)
			So(r.MissingFields[0], ShouldEqual, "Glasgow Coma Scale")
		})
	})

	Convey("Given no patient age", t, func() {
		r := engine.Compute(types.PRISM3, prismNormal, types.PatientContext{})

		Convey("Then the default age should be assumed and flagged", func() {
			So(r.Failed(), ShouldBeFalse)
			So(r.AgeCategory, ShouldEqual, types.Child)
			So(r.Caveats, ShouldNotBeEmpty)
			So(r.Caveats[0], ShouldContainSubstring, "102 months")
			So(r.ClinicalInterpretation, ShouldContainSubstring, "Caveat:")
		})
	})

	Convey("Given only an age category", t, func() {
		r := engine.Compute(types.PRISM3, with(prismNormal, "systolicBP", 50),
			types.PatientContext{AgeCategory: types.Neonate})

		Convey("Then the representative age of the category should drive thresholds", func() {
			So(r.AgeCategory, ShouldEqual, types.Neonate)
			So(points(r, "nonNeurologic"), ShouldEqual, 3)
			So(r.Caveats[0], ShouldContainSubstring, "0.5 months")
		})
	})

	Convey("Given an age category that disagrees with the age", t, func() {
		m := 84.0
		r := engine.Compute(types.PRISM3, prismNormal, types.PatientContext{AgeInMonths: &m, AgeCategory: types.Neonate})

		Convey("Then the age in months should win with a note", func() {
			So(r.AgeCategory, ShouldEqual, types.Child)
			So(r.Caveats, ShouldHaveLength, 1)
		})
	})

	Convey("Given the age inside the raw input", t, func() {
		r := engine.Compute(types.PRISM3, with(prismNormal, "ageInMonths", 6), types.PatientContext{})

		Convey("Then it should be lifted into the patient context", func() {
			So(r.AgeCategory, ShouldEqual, types.Infant)
			So(r.Caveats, ShouldBeEmpty)
			So(r.ClinicalInterpretation, ShouldNotContainSubstring, "Caveat:")
		})
	})

	Convey("Given a negative age alongside a missing field", t, func() {
		raw := with(prismNormal)
		delete(raw, "gcs")
		r := engine.Compute(types.PRISM3, raw, months(-3))

		Convey("Then both problems should be reported together", func() {
			So(r.ErrorKind, ShouldEqual, types.KindValidation)
			So(r.MissingFields, ShouldResemble, []string{"Glasgow Coma Scale", "Age in months"})
		})
	})

	Convey("Given an unrecognised age category", t, func() {
		r := engine.Compute(types.PRISM3, prismNormal, types.PatientContext{AgeCategory: "toddler"})
		So(r.ErrorKind, ShouldEqual, types.KindValidation)
		So(r.MissingFields, ShouldContain, "Age category")
	})

	Convey("Given identical requests", t, func() {
		a := engine.Compute(types.PELOD2, pelodNormal, months(30))
		b := engine.Compute(types.PELOD2, pelodNormal, months(30))

		Convey("Then the results should be identical", func() {
			So(a, ShouldResemble, b)
		})
	})
}

func TestEngineOptions(t *testing.T) {
	Convey("Given a custom default age", t, func() {
		engine := scoring.New(scoring.WithDefaultAgeMonths(6))
		r := engine.Compute(types.PRISM3, prismNormal, types.PatientContext{})
		So(r.AgeCategory, ShouldEqual, types.Infant)

		Convey("And an invalid default should be ignored", func() {
			engine := scoring.New(scoring.WithDefaultAgeMonths(-1))
			r := engine.Compute(types.PRISM3, prismNormal, types.PatientContext{})
			So(r.AgeCategory, ShouldEqual, types.Child)
		})
	})

	Convey("Given a scorer that panics", t, func() {
		engine := scoring.New(scoring.WithScorer(panickyScorer{}))
		r := engine.Compute(types.COMFORTB, comfort(3), months(24))

		Convey("Then the panic should become a computation error", func() {
			So(r.ErrorKind, ShouldEqual, types.KindComputation)
			So(r.Error, ShouldContainSubstring, "table index out of range")
			So(engine.Types(), ShouldHaveLength, len(types.ScoreTypes()))
		})
	})

	Convey("Given a scorer that returns out-of-range values", t, func() {
		engine := scoring.New(scoring.WithScorer(overflowScorer{}))
		r := engine.Compute(types.COMFORTB, comfort(3), months(24))

		Convey("Then a non-finite risk should be a computation error", func() {
			So(r.ErrorKind, ShouldEqual, types.KindComputation)
		})
	})
}

func TestEngineInvariants(t *testing.T) {
	engine := scoring.New()

	inputs := []struct {
		st  types.ScoreType
		raw scoring.RawInput
	}{
		{types.PRISM3, with(prismNormal, "gcs", 3, "pupillaryReflexes", "both_fixed", "systolicBP", 30,
			"heartRate", 250, "temperature", 30, "pH", 6.9, "paO2", 30, "pCO2", 90, "glucose", 30,
			"potassium", 8, "creatinine", 3, "urea", 20, "wbc", 1, "pt", 30, "ptt", 80, "platelets", 20)},
		{types.PELOD2, with(pelodNormal, "gcs", 3, "lactate", 15, "meanArterialPressure", 20, "creatinine", 5,
			"invasiveVentilation", 1, "pao2fio2", 40, "paco2", 100, "wbc", 1, "platelets", 10)},
		{types.PSOFA, with(psofaNormal, "pao2", 40, "platelets", 5, "bilirubin", 20, "epinephrine", 1, "gcs", 3, "creatinine", 6)},
		{types.SOFA, with(sofaNormal, "pao2fio2", 40, "isVentilated", 1, "platelets", 5, "bilirubin", 400,
			"dopamine", 20, "gcs", 3, "creatinine", 9, "urineOutput", 50)},
		{types.COMFORTB, comfort(5)},
		{types.Phoenix, with(phoenixBase, "systemicInfection", 1, "pao2", 40, "vasoactiveMedications", 3, "lactate", 15,
			"meanArterialPressure", 10, "platelets", 10, "inr", 5, "dDimer", 10, "fibrinogen", 50, "gcs", 3, "pupilsFixed", 1)},
	}

	Convey("Given worst-case input for every domain scorer", t, func() {
		for _, in := range inputs {
			r := engine.Compute(in.st, in.raw, months(84))

			Convey("Then "+string(in.st)+" sub-scores should stay within their ceilings", func() {
				So(r.Failed(), ShouldBeFalse)
				sum := 0
				for _, d := range r.SubScores {
					So(d.Points, ShouldBeGreaterThanOrEqualTo, 0)
					So(d.Points, ShouldBeLessThanOrEqualTo, d.Max)
					sum += d.Points
				}
				So(r.TotalScore, ShouldEqual, sum)
				if r.MortalityRisk != nil {
					So(*r.MortalityRisk, ShouldBeBetweenOrEqual, 0, 100)
				}
			})
		}
	})

	Convey("Given a result for every registered type", t, func() {
		Convey("Then the interpretation should never be empty", func() {
			for _, in := range inputs {
				r := engine.Compute(in.st, in.raw, months(84))
				So(strings.TrimSpace(r.ClinicalInterpretation), ShouldNotBeEmpty)
			}
		})
	})
}
