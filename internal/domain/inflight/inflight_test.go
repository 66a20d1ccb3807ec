package inflight_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
	inflight "github.com/okian/enso/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGate(t *testing.T) {
	Convey("Given a fresh gate", t, func() {
		g := inflight.NewGate()
		ctx := context.Background()
		day := challenge.DayOf(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
		key := inflight.Key{UserID: 42, Day: day}

		Convey("When acquiring a free pair", func() {
			ok := g.Acquire(ctx, key)

			Convey("Then the pair is held", func() {
				So(ok, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And a second acquire for the same pair is refused", func() {
				So(g.Acquire(ctx, key), ShouldBeFalse)
				So(g.Size(), ShouldEqual, 1)
			})

			Convey("And the same user on another day is unaffected", func() {
				other := inflight.Key{UserID: 42, Day: day.Next()}
				So(g.Acquire(ctx, other), ShouldBeTrue)
				So(g.Size(), ShouldEqual, 2)
			})

			Convey("And another user on the same day is unaffected", func() {
				other := inflight.Key{UserID: 7, Day: day}
				So(g.Acquire(ctx, other), ShouldBeTrue)
			})
		})

		Convey("When releasing a held pair", func() {
			g.Acquire(ctx, key)
			g.Release(ctx, key)

			Convey("Then it can be acquired again", func() {
				So(g.Size(), ShouldEqual, 0)
				So(g.Acquire(ctx, key), ShouldBeTrue)
			})
		})

		Convey("When releasing a pair that was never held", func() {
			g.Release(ctx, key)

			Convey("Then nothing changes", func() {
				So(g.Size(), ShouldEqual, 0)
			})
		})

		Convey("When many goroutines race for one pair", func() {
			const racers = 64
			var wins atomic.Int64
			var wg sync.WaitGroup

			wg.Add(racers)
			for i := 0; i < racers; i++ {
				go func() {
					defer wg.Done()
					if g.Acquire(ctx, key) {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(wins.Load(), ShouldEqual, 1)
				So(g.Size(), ShouldEqual, 1)
			})
		})
	})
}
