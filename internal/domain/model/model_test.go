package model_test

import (
	"testing"
	"time"

	challenge "github.com/okian/enso/internal/domain/challenge"
	model "github.com/okian/enso/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSubmission(t *testing.T) {
	convey.Convey("Given a Submission struct", t, func() {
		convey.Convey("When creating a new submission", func() {
			now := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)
			day := challenge.DayOf(now)

			sub := model.Submission{
				UserID:      42,
				Day:         day,
				Score:       96.5,
				SubmittedAt: now,
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(sub.UserID, convey.ShouldEqual, 42)
				convey.So(sub.Day, convey.ShouldResemble, day)
				convey.So(sub.Score, convey.ShouldEqual, 96.5)
				convey.So(sub.SubmittedAt, convey.ShouldEqual, now)
			})
		})

		convey.Convey("When creating a submission with zero values", func() {
			sub := model.Submission{}

			convey.Convey("Then it should have default values", func() {
				convey.So(sub.UserID, convey.ShouldEqual, 0)
				convey.So(sub.Day.IsZero(), convey.ShouldBeTrue)
				convey.So(sub.Score, convey.ShouldEqual, 0.0)
				convey.So(sub.SubmittedAt, convey.ShouldEqual, time.Time{})
			})
		})
	})
}

func TestJob(t *testing.T) {
	convey.Convey("Given a Job struct", t, func() {
		now := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)

		convey.Convey("When creating a job with a buffered result channel", func() {
			job := model.Job{
				ID:         "sub-abc",
				UserID:     42,
				Day:        challenge.DayOf(now),
				Image:      []byte{0x89, 0x50, 0x4e, 0x47},
				ReceivedAt: now,
				Result:     make(chan model.Outcome, 1),
			}

			convey.Convey("Then the resolver never blocks on the reply", func() {
				job.Result <- model.Outcome{
					Submission: model.Submission{UserID: 42, Score: 91.0},
				}

				out := <-job.Result
				convey.So(out.Err, convey.ShouldBeNil)
				convey.So(out.Submission.UserID, convey.ShouldEqual, 42)
				convey.So(out.Submission.Score, convey.ShouldEqual, 91.0)
			})
		})
	})
}
