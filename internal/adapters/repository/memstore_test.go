package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

func assessment(id, patient string, st types.ScoreType, minute int) model.Assessment {
	return model.Assessment{
		ID:        id,
		PatientID: patient,
		ScoreType: st,
		Result:    types.Result{ScoreType: st},
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := NewMemStore(ctx, WithShardCount(4))
		defer s.Close()

		Convey("Then it should report nothing stored", func() {
			So(s.Count(ctx), ShouldEqual, 0)
			So(s.Patients(ctx), ShouldEqual, 0)
			h, err := s.History(ctx, "p-1", "")
			So(err, ShouldBeNil)
			So(h, ShouldBeEmpty)
		})

		Convey("When getting an unknown assessment", func() {
			_, err := s.Get(ctx, "missing")

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When saving an assessment without a patient", func() {
			err := s.Save(ctx, model.Assessment{ID: "a-1"})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, ErrInvalidAssessment), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When assessments arrive out of order", func() {
			So(s.Save(ctx, assessment("a-3", "p-1", types.SOFA, 30)), ShouldBeNil)
			So(s.Save(ctx, assessment("a-1", "p-1", types.PRISM3, 10)), ShouldBeNil)
			So(s.Save(ctx, assessment("a-2", "p-1", types.PRISM3, 20)), ShouldBeNil)
			So(s.Save(ctx, assessment("b-1", "p-2", types.PRISM3, 5)), ShouldBeNil)

			Convey("Then history should be chronological and filterable", func() {
				all, _ := s.History(ctx, "p-1", "")
				So(all, ShouldHaveLength, 3)
				So(all[0].ID, ShouldEqual, "a-1")
				So(all[2].ID, ShouldEqual, "a-3")

				prism, _ := s.History(ctx, "p-1", types.PRISM3)
				So(prism, ShouldHaveLength, 2)

				So(s.Count(ctx), ShouldEqual, 4)
				So(s.Patients(ctx), ShouldEqual, 2)
			})

			Convey("And each assessment should be retrievable by id", func() {
				a, err := s.Get(ctx, "b-1")
				So(err, ShouldBeNil)
				So(a.PatientID, ShouldEqual, "p-2")
			})

			Convey("And saving an existing id should replace it", func() {
				updated := assessment("a-2", "p-1", types.PRISM3, 20)
				updated.Result.TotalScore = 9
				So(s.Save(ctx, updated), ShouldBeNil)

				a, _ := s.Get(ctx, "a-2")
				So(a.Result.TotalScore, ShouldEqual, 9)
				So(s.Count(ctx), ShouldEqual, 4)
			})

			Convey("And moving an id to another patient should leave one copy", func() {
				So(s.Save(ctx, assessment("a-3", "p-2", types.SOFA, 30)), ShouldBeNil)

				p1, _ := s.History(ctx, "p-1", "")
				p2, _ := s.History(ctx, "p-2", "")
				So(p1, ShouldHaveLength, 2)
				So(p2, ShouldHaveLength, 2)
				So(s.Count(ctx), ShouldEqual, 4)
			})
		})

		Convey("When a returned history is modified", func() {
			So(s.Save(ctx, assessment("a-1", "p-1", types.PRISM3, 0)), ShouldBeNil)
			h, _ := s.History(ctx, "p-1", "")
			h[0].ID = "tampered"

			Convey("Then the store should be unaffected", func() {
				_, err := s.Get(ctx, "a-1")
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a store with a history limit", t, func() {
		s := NewMemStore(ctx, WithHistoryLimit(3))
		defer s.Close()
		for i := 0; i < 5; i++ {
			So(s.Save(ctx, assessment(fmt.Sprintf("a-%d", i), "p-1", types.COMFORTB, i)), ShouldBeNil)
		}

		Convey("Then only the newest assessments should be kept", func() {
			h, _ := s.History(ctx, "p-1", "")
			So(h, ShouldHaveLength, 3)
			So(h[0].ID, ShouldEqual, "a-2")
			So(s.Count(ctx), ShouldEqual, 3)

			_, err := s.Get(ctx, "a-0")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemStoreConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given concurrent writers and readers", t, func() {
		s := NewMemStore(ctx, WithHistoryLimit(0), WithMetricsUpdateInterval(time.Millisecond))
		defer s.Close()

		const writers, perWriter = 8, 50
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				patient := fmt.Sprintf("p-%d", w%4)
				for i := 0; i < perWriter; i++ {
					_ = s.Save(ctx, assessment(fmt.Sprintf("a-%d-%d", w, i), patient, types.PSOFA, i))
					_, _ = s.History(ctx, patient, types.PSOFA)
				}
			}(w)
		}
		wg.Wait()

		Convey("Then every assessment should be stored exactly once", func() {
			So(s.Count(ctx), ShouldEqual, writers*perWriter)
			So(s.Patients(ctx), ShouldEqual, 4)
		})
	})

	Convey("Given a store whose context is cancelled", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		s := NewMemStore(cctx, WithMetricsUpdateInterval(time.Millisecond))
		cancel()

		Convey("Then Close should return promptly", func() {
			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
		})
	})
}
