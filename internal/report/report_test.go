package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
	"github.com/okian/pediscore/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReport(t *testing.T) {
	risk := 0.2
	scored := types.Result{
		ScoreType:              types.PRISM3,
		SubScores:              types.SubScores{{Domain: "neurologic", Points: 0, Max: 15}, {Domain: "nonNeurologic", Points: 3, Max: 59}},
		TotalScore:             3,
		MortalityRisk:          &risk,
		RiskCategory:           "Low Risk",
		ClinicalInterpretation: "PRISM-3 score 3.",
		AgeCategory:            types.Child,
		Caveats:                []string{"Temperature outside the usual range."},
	}

	Convey("Given a scored result", t, func() {
		var buf bytes.Buffer
		So(report.Result(&buf, scored), ShouldBeNil)
		out := buf.String()

		Convey("Then the Markdown should list domains, total and facts", func() {
			So(out, ShouldStartWith, "## PRISM-3")
			So(out, ShouldContainSubstring, "| nonNeurologic | 3 | 59 |")
			So(out, ShouldContainSubstring, "**3**")
			So(out, ShouldContainSubstring, "Predicted mortality: 0.2%")
			So(out, ShouldContainSubstring, "Risk category: Low Risk")
			So(out, ShouldContainSubstring, "### Caveats")
		})

		Convey("And the HTML should contain a rendered table", func() {
			page, err := report.HTML("PRISM-3 <report>", buf.Bytes())
			So(err, ShouldBeNil)
			So(string(page), ShouldContainSubstring, "<table>")
			So(string(page), ShouldContainSubstring, "<title>PRISM-3 &lt;report&gt;</title>")
			So(string(page), ShouldContainSubstring, "<blockquote>")
		})
	})

	Convey("Given a failed result", t, func() {
		var buf bytes.Buffer
		failed := types.Result{ScoreType: types.COMFORTB, Error: "invalid input", ErrorKind: types.KindValidation, MissingFields: []string{"Alertness"}}
		So(report.Result(&buf, failed), ShouldBeNil)

		Convey("Then only the error should be reported", func() {
			So(buf.String(), ShouldContainSubstring, "**Not scored** (validation)")
			So(buf.String(), ShouldContainSubstring, "- Alertness")
			So(buf.String(), ShouldNotContainSubstring, "| Domain |")
		})
	})

	Convey("Given a stored assessment", t, func() {
		var buf bytes.Buffer
		a := model.Assessment{
			ID: "a-1", RequestID: "r-1", PatientID: "bed-3",
			CreatedAt: time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
			Result:    scored,
		}
		So(report.Assessment(&buf, a), ShouldBeNil)

		Convey("Then the header should identify it", func() {
			So(buf.String(), ShouldStartWith, "# Assessment a-1")
			So(buf.String(), ShouldContainSubstring, "- Patient: bed-3")
			So(buf.String(), ShouldContainSubstring, "2025-05-01T09:30:00Z")
			So(buf.String(), ShouldContainSubstring, "- Request: r-1")
		})
	})
}
