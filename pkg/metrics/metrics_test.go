package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the manager should register its metric families", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				// Vec metrics only appear after first use; plain gauges and
				// histograms register with zero values immediately.
				So(names["enso_challenge_queue_depth"], ShouldBeTrue)
				So(names["enso_challenge_worker_count"], ShouldBeTrue)
				So(names["enso_challenge_scoring_duration_seconds"], ShouldBeTrue)
				So(names["enso_challenge_score_distribution"], ShouldBeTrue)
			})
		})

		Convey("When creating with custom namespace and subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("custom"),
				WithSubsystem("sub"),
			)

			Convey("Then metric names should carry the custom prefix", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "custom_sub_queue_depth" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		Convey("Then recording through them should not panic", func() {
			So(func() {
				RecordSubmission("accepted")
				RecordSubmission("duplicate")
				RecordScoringDuration(0.042)
				ObserveScore(93.7)
				UpdateQueueDepth(3, 256)
				RecordQueueRejection("full")
				UpdateWorkerCount(4)
				UpdateInflightPairs(2)
				UpdateLedgerSize(100, 7)
				RecordAnnouncement("sent")
				RecordHTTPRequest("submissions", "POST", "201")
				RecordHTTPRequestDuration("submissions", "POST", "201", 12.5)
				RecordRateLimited()
			}, ShouldNotPanic)
		})

		Convey("Then the global registry should be reachable", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
