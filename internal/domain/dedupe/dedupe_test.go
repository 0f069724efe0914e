package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dedupe "github.com/okian/pediscore/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording requests", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the request is new", func() {
				id, seen := d.SeenAndRecord(ctx, "req-1", "assessment-1")

				Convey("Then it should return the new assessment id", func() {
					So(seen, ShouldBeFalse)
					So(id, ShouldEqual, "assessment-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the request was already seen", func() {
				d.SeenAndRecord(ctx, "req-1", "assessment-1")
				id, seen := d.SeenAndRecord(ctx, "req-1", "assessment-2")

				Convey("Then it should return the original assessment id", func() {
					So(seen, ShouldBeTrue)
					So(id, ShouldEqual, "assessment-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording requests", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the request exists", func() {
				d.SeenAndRecord(ctx, "req-1", "assessment-1")
				d.Unrecord(ctx, "req-1")

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					id, seen := d.SeenAndRecord(ctx, "req-1", "assessment-2")
					So(seen, ShouldBeFalse)
					So(id, ShouldEqual, "assessment-2")
				})
			})

			Convey("And the request doesn't exist", func() {
				d.Unrecord(ctx, "nonexistent")

				Convey("Then it should not affect the size", func() {
					So(d.Size(), ShouldEqual, 0)
				})
			})

			Convey("And a middle entry is removed", func() {
				for i := 1; i <= 3; i++ {
					d.SeenAndRecord(ctx, fmt.Sprintf("req-%d", i), fmt.Sprintf("a-%d", i))
				}
				d.Unrecord(ctx, "req-2")

				Convey("Then the others should survive", func() {
					So(d.Size(), ShouldEqual, 2)
					_, seen1 := d.SeenAndRecord(ctx, "req-1", "x")
					_, seen3 := d.SeenAndRecord(ctx, "req-3", "x")
					So(seen1, ShouldBeTrue)
					So(seen3, ShouldBeTrue)
				})
			})
		})

		Convey("When using bounded mode with eviction", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 1; i <= 3; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("req-%d", i), fmt.Sprintf("a-%d", i))
			}
			_, seen := d.SeenAndRecord(ctx, "req-4", "a-4")

			Convey("Then the oldest request should be evicted", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)

				_, seen4 := d.SeenAndRecord(ctx, "req-4", "x")
				So(seen4, ShouldBeTrue)
				_, seen2 := d.SeenAndRecord(ctx, "req-2", "x")
				So(seen2, ShouldBeTrue)

				id, seen1 := d.SeenAndRecord(ctx, "req-1", "a-1b")
				So(seen1, ShouldBeFalse)
				So(id, ShouldEqual, "a-1b")
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("req-%d", i), "a")
			}

			Convey("Then nothing should be evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				_, seen := d.SeenAndRecord(ctx, "req-0", "a")
				So(seen, ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const numGoroutines = 10
		const perGoroutine = 100

		Convey("When multiple goroutines record requests concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("req-%d-%d", g, j), "a")
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every request should be recorded", func() {
				So(d.Size(), ShouldEqual, int64(numGoroutines*perGoroutine))
			})
		})

		Convey("When many goroutines race on one request id", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
				ids   = map[string]bool{}
			)
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					id, seen := d.SeenAndRecord(context.Background(), "req-shared", fmt.Sprintf("a-%d", g))
					mu.Lock()
					defer mu.Unlock()
					if !seen {
						fresh++
					}
					ids[id] = true
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one should win and all should agree on its id", func() {
				So(fresh, ShouldEqual, 1)
				So(ids, ShouldHaveLength, 1)
			})
		})
	})
}

func TestDedupeEdgeCases(t *testing.T) {
	Convey("Given a deduper with edge cases", t, func() {
		Convey("When recording very long ids", func() {
			d := dedupe.NewInMemoryDeduper()
			long := strings.Repeat("a", 10000)
			d.SeenAndRecord(context.Background(), long, "a-1")

			Convey("Then they should be matched exactly", func() {
				id, seen := d.SeenAndRecord(context.Background(), long, "a-2")
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "a-1")
			})
		})

		Convey("When using a max size of one", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1))
			d.SeenAndRecord(context.Background(), "req-1", "a-1")
			d.SeenAndRecord(context.Background(), "req-2", "a-2")

			Convey("Then only the newest request should be kept", func() {
				So(d.Size(), ShouldEqual, 1)
				_, seen := d.SeenAndRecord(context.Background(), "req-2", "x")
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When using nil context", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should not panic", func() {
				So(func() { d.SeenAndRecord(nil, "req-1", "a-1") }, ShouldNotPanic) //nolint:staticcheck // nil context is part of the contract under test
				So(func() { d.Unrecord(nil, "req-1") }, ShouldNotPanic)             //nolint:staticcheck // nil context is part of the contract under test
			})
		})
	})
}
