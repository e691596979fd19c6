package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/sves-daq/backend/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given an in-memory deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("A new key is recorded", func() {
			So(d.SeenAndRecord(ctx, "req-1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)

			Convey("And the same key is reported as seen", func() {
				So(d.SeenAndRecord(ctx, "req-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("The oldest key is evicted once the bound is reached", func() {
			for i := 1; i <= 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("req-%d", i))
			}
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "req-4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "req-1"), ShouldBeFalse)
		})

		Convey("Unrecord allows a key to be used again", func() {
			d.SeenAndRecord(ctx, "req-9")
			d.Unrecord(ctx, "req-9")
			So(d.Size(), ShouldEqual, 0)
			So(d.SeenAndRecord(ctx, "req-9"), ShouldBeFalse)

			Convey("And unknown keys are ignored", func() {
				d.Unrecord(ctx, "never-seen")
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestUnboundedDeduper(t *testing.T) {
	Convey("Given an unbounded deduper under concurrent use", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i%50)) {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Each distinct key is fresh exactly once", func() {
			So(fresh, ShouldEqual, 50)
			So(d.Size(), ShouldEqual, 50)
		})
	})
}
