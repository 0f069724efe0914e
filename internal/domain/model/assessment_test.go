package model_test

import (
	"testing"
	"time"

	model "github.com/okian/pediscore/internal/domain/model"
	types "github.com/okian/pediscore/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestScoreJob(t *testing.T) {
	convey.Convey("Given a queued score job", t, func() {
		age := 30.0
		at := time.Date(2025, 4, 3, 10, 15, 0, 0, time.UTC)
		job := model.ScoreJob{
			AssessmentID: "a-1",
			RequestID:    "req-1",
			PatientID:    "p-1",
			ScoreType:    "PRISM-3",
			Input:        map[string]any{"gcs": 15},
			Patient:      types.PatientContext{AgeInMonths: &age},
			SubmittedAt:  at,
		}

		convey.Convey("When it is completed with a computed result", func() {
			a := job.Assessment(types.Result{ScoreType: types.PRISM3, TotalScore: 4})

			convey.Convey("Then the canonical score type and submission time should be kept", func() {
				convey.So(a.ID, convey.ShouldEqual, "a-1")
				convey.So(a.RequestID, convey.ShouldEqual, "req-1")
				convey.So(a.PatientID, convey.ShouldEqual, "p-1")
				convey.So(a.ScoreType, convey.ShouldEqual, types.PRISM3)
				convey.So(a.CreatedAt, convey.ShouldEqual, at)
				convey.So(*a.Patient.AgeInMonths, convey.ShouldEqual, 30)
				convey.So(a.Scored(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When it is completed with a failure", func() {
			a := job.Assessment(types.Result{ScoreType: types.PRISM3, Error: "missing", ErrorKind: types.KindValidation})

			convey.Convey("Then it should not count as scored", func() {
				convey.So(a.Scored(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestScoreRequest(t *testing.T) {
	convey.Convey("Given a score request", t, func() {
		req := model.ScoreRequest{RequestID: "r", PatientID: "p", ScoreType: types.SOSPD, Input: map[string]any{"anxiety": 1}}
		at := time.Date(2025, 4, 3, 10, 15, 0, 0, time.UTC)

		convey.Convey("Then its job should carry every field and the given id", func() {
			j := req.Job("a-9", at)
			convey.So(j.AssessmentID, convey.ShouldEqual, "a-9")
			convey.So(j.RequestID, convey.ShouldEqual, "r")
			convey.So(j.PatientID, convey.ShouldEqual, "p")
			convey.So(j.ScoreType, convey.ShouldEqual, types.SOSPD)
			convey.So(j.SubmittedAt, convey.ShouldEqual, at)
			convey.So(j.Input["anxiety"], convey.ShouldEqual, 1)
		})
	})
}
