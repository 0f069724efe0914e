package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/pediscore/internal/adapters/mq/queue"
	worker "github.com/okian/pediscore/internal/adapters/mq/worker"
	model "github.com/okian/pediscore/internal/domain/model"
	scoring "github.com/okian/pediscore/internal/domain/scoring"
	types "github.com/okian/pediscore/internal/domain/types"
	logging "github.com/okian/pediscore/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

func (mq *mockQueue) add(j queue.Job) { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	mq.jobs <- j
}

type mockSaver struct {
	mu     sync.RWMutex
	saved  map[string]model.Assessment
	errFor map[string]error
}

func newMockSaver() *mockSaver {
	return &mockSaver{
		saved:  make(map[string]model.Assessment),
		errFor: make(map[string]error),
	}
}

func (ms *mockSaver) Save(ctx context.Context, a model.Assessment) error { //nolint:gocritic // hugeParam: interface signature
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err, ok := ms.errFor[a.ID]; ok {
		return err
	}
	ms.saved[a.ID] = a
	return nil
}

func (ms *mockSaver) get(id string) (model.Assessment, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	a, ok := ms.saved[id]
	return a, ok
}

func (ms *mockSaver) count() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.saved)
}

func comfortJob(id string, value int) queue.Job {
	months := 24.0
	return queue.Job{
		AssessmentID: id,
		RequestID:    "req-" + id,
		PatientID:    "patient-1",
		ScoreType:    types.COMFORTB,
		Input: map[string]any{
			"alertness": value, "calmness": value, "respiratoryResponse": value,
			"movement": value, "muscleTone": value, "facialTension": value,
		},
		Patient:     types.PatientContext{AgeInMonths: &months},
		SubmittedAt: time.Now(),
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		engine := scoring.New()
		saver := newMockSaver()

		convey.Convey("When creating a worker with options", func() {
			w := worker.NewInMemoryWorker(q, engine, saver,
				worker.WithName("test-worker"),
				worker.WithLogger(nil),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
				convey.So(w.Processed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a valid job is queued", func() {
			w := worker.NewInMemoryWorker(q, engine, saver)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.add(comfortJob("a1", 3))

			convey.Convey("Then the scored assessment should be saved", func() {
				convey.So(waitFor(func() bool { return saver.count() == 1 }), convey.ShouldBeTrue)
				a, ok := saver.get("a1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(a.Scored(), convey.ShouldBeTrue)
				convey.So(a.Result.TotalScore, convey.ShouldEqual, 18)
				convey.So(a.PatientID, convey.ShouldEqual, "patient-1")
				convey.So(a.RequestID, convey.ShouldEqual, "req-a1")
				convey.So(waitFor(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an invalid job is queued", func() {
			w := worker.NewInMemoryWorker(q, engine, saver)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			j := comfortJob("a2", 3)
			j.Input = map[string]any{"alertness": 3}
			q.add(j)

			convey.Convey("Then the failure should be stored for the submitter", func() {
				convey.So(waitFor(func() bool { return saver.count() == 1 }), convey.ShouldBeTrue)
				a, _ := saver.get("a2")
				convey.So(a.Scored(), convey.ShouldBeFalse)
				convey.So(a.Result.ErrorKind, convey.ShouldEqual, types.KindValidation)
				convey.So(a.Result.MissingFields, convey.ShouldHaveLength, 5)
			})
		})

		convey.Convey("When saving fails", func() {
			saver.errFor["a3"] = errors.New("disk full")
			w := worker.NewInMemoryWorker(q, engine, saver)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.add(comfortJob("a3", 2))
			q.add(comfortJob("a4", 2))

			convey.Convey("Then the worker should keep going", func() {
				convey.So(waitFor(func() bool { return saver.count() == 1 }), convey.ShouldBeTrue)
				_, ok := saver.get("a4")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(waitFor(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			w := worker.NewInMemoryWorker(q, engine, saver)
			go w.Run(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			convey.Convey("Then it should stop without error and tolerate a second call", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			w := worker.NewInMemoryWorker(q, engine, saver)
			done := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(done)
			}()
			_ = q.Close()

			convey.Convey("Then Run should return", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("worker did not stop after queue close")
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool on a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		saver := newMockSaver()
		pool := worker.NewPool(4, q, scoring.New(), saver)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many jobs are enqueued and the pool is shut down", func() {
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, comfortJob(fmt.Sprintf("j%d", i), i%5+1)), convey.ShouldBeNil)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued job should be drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(saver.count(), convey.ShouldEqual, 50)
				convey.So(pool.Processed(), convey.ShouldEqual, 50)
				convey.So(pool.Active(), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), scoring.New(), newMockSaver())

		convey.Convey("Then a CPU based default should be used", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given the outcome recorder", t, func() {
		convey.Convey("Then it should accept successes and failures", func() {
			worker.RecordOutcome(types.Result{ScoreType: types.SOSPD}, time.Millisecond)
			worker.RecordOutcome(scoring.Failure(types.SOSPD, scoring.ErrValidation), time.Millisecond)
		})
	})
}
