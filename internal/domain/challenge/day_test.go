package challenge_test

import (
	"testing"
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDayOf(t *testing.T) {
	Convey("Given instants around a UTC midnight", t, func() {
		Convey("When the instant is just before midnight UTC", func() {
			d := challenge.DayOf(time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC))

			Convey("Then it belongs to the earlier day", func() {
				So(d.String(), ShouldEqual, "2025-03-09")
			})
		})

		Convey("When the instant is exactly midnight UTC", func() {
			d := challenge.DayOf(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

			Convey("Then it belongs to the new day", func() {
				So(d.String(), ShouldEqual, "2025-03-10")
			})
		})

		Convey("When the instant carries a non-UTC location", func() {
			// 23:30 in UTC-5 is 04:30 the next day in UTC.
			loc := time.FixedZone("UTC-5", -5*60*60)
			d := challenge.DayOf(time.Date(2025, 3, 9, 23, 30, 0, 0, loc))

			Convey("Then the day is derived from the UTC view of the instant", func() {
				So(d.String(), ShouldEqual, "2025-03-10")
			})
		})

		Convey("When two instants fall within the same UTC day", func() {
			a := challenge.DayOf(time.Date(2025, 3, 9, 0, 0, 1, 0, time.UTC))
			b := challenge.DayOf(time.Date(2025, 3, 9, 18, 45, 0, 0, time.UTC))

			Convey("Then the days compare equal", func() {
				So(a, ShouldResemble, b)
				So(a == b, ShouldBeTrue)
			})
		})
	})
}

func TestParseDay(t *testing.T) {
	Convey("Given the canonical day layout", t, func() {
		Convey("When parsing a well-formed day", func() {
			d, err := challenge.ParseDay("2025-12-31")

			Convey("Then it round-trips through String", func() {
				So(err, ShouldBeNil)
				So(d.String(), ShouldEqual, "2025-12-31")
			})
		})

		Convey("When parsing garbage", func() {
			_, err := challenge.ParseDay("31/12/2025")

			Convey("Then it reports a malformed day", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "malformed challenge day")
			})
		})

		Convey("When parsing an empty string", func() {
			d, err := challenge.ParseDay("")

			Convey("Then it fails and the day is zero", func() {
				So(err, ShouldNotBeNil)
				So(d.IsZero(), ShouldBeTrue)
			})
		})
	})
}

func TestDayArithmetic(t *testing.T) {
	Convey("Given a day at a month boundary", t, func() {
		d, err := challenge.ParseDay("2025-01-31")
		So(err, ShouldBeNil)

		Convey("When taking the next day", func() {
			n := d.Next()

			Convey("Then it rolls into the next month", func() {
				So(n.String(), ShouldEqual, "2025-02-01")
				So(d.Before(n), ShouldBeTrue)
				So(n.Before(d), ShouldBeFalse)
			})
		})

		Convey("When reading the start instant", func() {
			So(d.Start(), ShouldEqual, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
		})
	})
}

func TestToday(t *testing.T) {
	Convey("Given a fixed clock", t, func() {
		clk := fixedClock{at: time.Date(2025, 6, 15, 13, 37, 0, 0, time.UTC)}

		Convey("When asking for today", func() {
			So(challenge.Today(clk).String(), ShouldEqual, "2025-06-15")
		})
	})

	Convey("Given the production clock", t, func() {
		Convey("When asking for now", func() {
			now := challenge.UTCClock{}.Now()

			Convey("Then the instant is pinned to UTC", func() {
				So(now.Location(), ShouldEqual, time.UTC)
			})
		})
	})
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }
