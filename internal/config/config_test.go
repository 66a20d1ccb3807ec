package config_test

import (
	"testing"

	"github.com/okian/enso/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewDefaults(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New()

		Convey("Then core fields should carry sensible defaults", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DBPath, ShouldEqual, "enso.db")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.QueueSize, ShouldBeGreaterThan, 0)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.MaxImageBytes, ShouldEqual, int64(8<<20))
			So(cfg.LuminanceThreshold, ShouldEqual, 127)
			So(cfg.LeaderboardDefaultLimit, ShouldEqual, 10)
			So(cfg.LeaderboardMaxLimit, ShouldEqual, 100)
			So(cfg.AnnounceTimezone, ShouldEqual, "UTC")
			So(cfg.AnnounceWebhookURL, ShouldEqual, "")
		})

		Convey("Then it should validate cleanly", func() {
			So(cfg.Validate(), ShouldBeNil)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given configurations with hard errors", t, func() {
		Convey("An empty addr should be rejected", func() {
			cfg := config.New()
			cfg.Addr = ""
			So(cfg.Validate(), ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("An empty db_path should be rejected", func() {
			cfg := config.New()
			cfg.DBPath = ""
			So(cfg.Validate(), ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("An unknown timezone should be rejected", func() {
			cfg := config.New()
			cfg.AnnounceTimezone = "Mars/Olympus_Mons"
			So(cfg.Validate(), ShouldWrap, config.ErrInvalidConfig)
		})
	})

	Convey("Given configurations with soft errors", t, func() {
		Convey("Out-of-range limits should be clamped, not rejected", func() {
			cfg := config.New()
			cfg.QueueSize = -1
			cfg.LeaderboardDefaultLimit = 0
			cfg.LeaderboardMaxLimit = 1
			cfg.SubmitRateBurst = -5

			So(cfg.Validate(), ShouldBeNil)
			So(cfg.QueueSize, ShouldBeGreaterThan, 0)
			So(cfg.LeaderboardDefaultLimit, ShouldBeGreaterThan, 0)
			So(cfg.LeaderboardMaxLimit, ShouldBeGreaterThanOrEqualTo, cfg.LeaderboardDefaultLimit)
			So(cfg.SubmitRateBurst, ShouldBeGreaterThan, 0)
		})
	})
}

func TestLocation(t *testing.T) {
	Convey("Given announcer timezones", t, func() {
		Convey("A valid zone should resolve", func() {
			cfg := config.New()
			cfg.AnnounceTimezone = "Europe/Berlin"
			So(cfg.Location().String(), ShouldEqual, "Europe/Berlin")
		})

		Convey("A broken zone should fall back to UTC", func() {
			cfg := config.New()
			cfg.AnnounceTimezone = "Nowhere/Nothing"
			So(cfg.Location().String(), ShouldEqual, "UTC")
		})
	})
}
