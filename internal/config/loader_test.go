package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/enso/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaultsOnly(t *testing.T) {
	Convey("Given no config file and no env overrides", t, func() {
		ctx := context.Background()
		cfg, err := config.Load(ctx)

		Convey("Then loading should yield the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.LeaderboardMaxLimit, ShouldEqual, 100)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENSO_ADDR", ":8181")
	t.Setenv("ENSO_QUEUE_SIZE", "64")
	t.Setenv("ENSO_WORKER_COUNT", "3")
	t.Setenv("ENSO_ANNOUNCE_TIMEZONE", "Europe/Berlin")

	Convey("Given ENSO_ environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env values should win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8181")
			So(cfg.QueueSize, ShouldEqual, 64)
			So(cfg.WorkerCount, ShouldEqual, 3)
			So(cfg.AnnounceTimezone, ShouldEqual, "Europe/Berlin")
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enso.yaml")
	yamlBody := []byte(`
addr: ":7070"
db_path: "/tmp/enso-test.db"
queue_size: 32
leaderboard_default_limit: 5
announce_webhook_url: "https://example.test/hook"
`)
	if err := os.WriteFile(path, yamlBody, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("ENSO_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values should win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.DBPath, ShouldEqual, "/tmp/enso-test.db")
			So(cfg.QueueSize, ShouldEqual, 32)
			So(cfg.LeaderboardDefaultLimit, ShouldEqual, 5)
			So(cfg.AnnounceWebhookURL, ShouldEqual, "https://example.test/hook")
		})
	})
}

func TestLoadFilePlusEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enso.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("ENSO_CONFIG", path)
	t.Setenv("ENSO_ADDR", ":6060")

	Convey("Given both a config file and an env override", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env should win over the file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("ENSO_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	Convey("Given a config path that does not exist", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then loading should fail with a load error", func() {
			So(cfg, ShouldBeNil)
			So(err, ShouldWrap, config.ErrLoadConfig)
		})
	})
}

func TestWatchWithoutFile(t *testing.T) {
	Convey("Given no ENSO_CONFIG file", t, func() {
		err := config.Watch(context.Background(), func(*config.Config, error) {
			t.Error("callback must not fire without a config file")
		})

		Convey("Then Watch should be a no-op", func() {
			So(err, ShouldBeNil)
		})
	})
}

func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enso.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("ENSO_CONFIG", path)

	reloaded := make(chan *config.Config, 4)
	if err := config.Watch(context.Background(), func(cfg *config.Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite config file: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LogLevel != "debug" {
			t.Errorf("expected reloaded log_level debug, got %q", cfg.LogLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config reload did not fire")
	}
}
