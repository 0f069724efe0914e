package scoring_test

import (
	"encoding/json"
	"errors"
	"testing"

	scoring "github.com/okian/pediscore/internal/domain/scoring"
	types "github.com/okian/pediscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given the PRISM-3 schema", t, func() {
		Convey("When no field is supplied", func() {
			_, err := scoring.Normalize(types.PRISM3, scoring.RawInput{})

			Convey("Then every required label should be reported at once", func() {
				var verr *scoring.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
				So(verr.Missing, ShouldResemble, []string{
					"Glasgow Coma Scale", "Systolic blood pressure", "Heart rate", "Temperature",
				})
			})
		})

		Convey("When values arrive as strings, json numbers and ints", func() {
			rec, err := scoring.Normalize(types.PRISM3, scoring.RawInput{
				"gcs":         "14",
				"systolicBP":  json.Number("98.5"),
				"heartRate":   120,
				"temperature": 37.2,
			})

			Convey("Then they should be coerced to numbers", func() {
				So(err, ShouldBeNil)
				gcs, ok := rec.Number("gcs")
				So(ok, ShouldBeTrue)
				So(gcs, ShouldEqual, 14)
				sbp, _ := rec.Number("systolicBP")
				So(sbp, ShouldEqual, 98.5)
				hr, _ := rec.Number("heartRate")
				So(hr, ShouldEqual, 120)
			})

			Convey("And optional fields should take their defaults or stay absent", func() {
				So(rec.Enum("pupillaryReflexes"), ShouldEqual, "both_reactive")
				So(rec.Has("pH"), ShouldBeFalse)
			})
		})

		Convey("When a numeric string is empty or unparseable", func() {
			_, err := scoring.Normalize(types.PRISM3, scoring.RawInput{
				"gcs":         "",
				"systolicBP":  "n/a",
				"heartRate":   90,
				"temperature": 37,
			})

			Convey("Then it should count as missing", func() {
				var verr *scoring.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Missing, ShouldResemble, []string{"Glasgow Coma Scale", "Systolic blood pressure"})
				So(verr.Invalid, ShouldBeEmpty)
			})
		})

		Convey("When a field has the wrong type and an undeclared field is present", func() {
			_, err := scoring.Normalize(types.PRISM3, scoring.RawInput{
				"gcs":               true,
				"systolicBP":        100,
				"heartRate":         90,
				"temperature":       37,
				"pupillaryReflexes": "sluggish",
				"respiratoryRate":   30,
				"ageInMonths":       12,
			})

			Convey("Then both should be reported and the reserved age key ignored", func() {
				var verr *scoring.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Missing, ShouldBeEmpty)
				So(verr.Invalid, ShouldHaveLength, 2)
				So(verr.Unknown, ShouldResemble, []string{"respiratoryRate"})
				So(verr.Fields(), ShouldResemble, []string{"Glasgow Coma Scale", "Pupillary reaction", "respiratoryRate"})
				So(err.Error(), ShouldContainSubstring, "unknown fields: respiratoryRate")
			})
		})

		Convey("When a value is outside its plausible range", func() {
			rec, err := scoring.Normalize(types.PRISM3, scoring.RawInput{
				"gcs": 15, "systolicBP": 100, "heartRate": 90, "temperature": 52,
			})

			Convey("Then it should be kept as given with a note", func() {
				So(err, ShouldBeNil)
				temp, _ := rec.Number("temperature")
				So(temp, ShouldEqual, 52)
				So(rec.Notes(), ShouldHaveLength, 1)
				So(rec.Notes()[0], ShouldContainSubstring, "Temperature")
			})
		})
	})

	Convey("Given flag and enum coercion", t, func() {
		Convey("Then yes/no, 0/1 and booleans should all be accepted", func() {
			for _, v := range []any{"yes", "Y", "true", 1, true, "1"} {
				rec, err := scoring.Normalize(types.SOSPD, scoring.RawInput{"anxiety": v})
				So(err, ShouldBeNil)
				So(rec.Flag("anxiety"), ShouldBeTrue)
			}
			for _, v := range []any{"no", "false", 0, false, "0"} {
				rec, err := scoring.Normalize(types.SOSPD, scoring.RawInput{"anxiety": v})
				So(err, ShouldBeNil)
				So(rec.Flag("anxiety"), ShouldBeFalse)
			}
		})

		Convey("And other numbers should be rejected for flags", func() {
			_, err := scoring.Normalize(types.SOSPD, scoring.RawInput{"anxiety": 2})
			So(errors.Is(err, scoring.ErrValidation), ShouldBeTrue)
		})

		Convey("And enum aliases should resolve to their canonical token", func() {
			rec, err := scoring.Normalize(types.Phoenix, scoring.RawInput{
				"systemicInfection":     "yes",
				"respiratorySupport":    "Any, excluding IMV",
				"vasoactiveMedications": 0,
			})
			So(err, ShouldBeNil)
			So(rec.Enum("respiratorySupport"), ShouldEqual, "non_imv")

			rec, err = scoring.Normalize(types.Phoenix, scoring.RawInput{
				"systemicInfection":     0,
				"respiratorySupport":    "IMV",
				"vasoactiveMedications": "2",
			})
			So(err, ShouldBeNil)
			So(rec.Enum("respiratorySupport"), ShouldEqual, "imv")
		})
	})

	Convey("Given an unknown score type", t, func() {
		_, err := scoring.Normalize("apache2", scoring.RawInput{})
		So(errors.Is(err, scoring.ErrUnknownScoreType), ShouldBeTrue)
	})
}

func TestSchemas(t *testing.T) {
	Convey("Given every bundled scorer", t, func() {
		for _, s := range scoring.Builtin() {
			schema := s.Schema()

			Convey("Then the "+string(s.Type())+" schema should be well formed", func() {
				So(schema.Type, ShouldEqual, s.Type())
				So(schema.Name, ShouldNotBeEmpty)
				seen := map[string]bool{}
				for _, f := range schema.Fields {
					So(seen[f.Name], ShouldBeFalse)
					seen[f.Name] = true
					So(f.Label, ShouldNotBeEmpty)
					if f.Required {
						So(f.Default, ShouldBeNil)
					}
					if f.Kind == scoring.Enum {
						So(f.Options, ShouldNotBeEmpty)
					}
				}
			})
		}
	})

	Convey("Given a schema serialized for clients", t, func() {
		schema, err := scoring.New().Schema(types.COMFORTB)
		So(err, ShouldBeNil)
		data, err := json.Marshal(schema)
		So(err, ShouldBeNil)

		Convey("Then kinds should be rendered by name", func() {
			So(string(data), ShouldContainSubstring, `"kind":"number"`)
			So(string(data), ShouldContainSubstring, `"kind":"flag"`)
			So(schema.Required(), ShouldHaveLength, 6)
		})
	})
}
