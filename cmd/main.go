package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/enso/internal/adapters/http/api"
	"github.com/okian/enso/internal/adapters/http/docs"
	"github.com/okian/enso/internal/adapters/http/site"
	"github.com/okian/enso/internal/announce"
	app "github.com/okian/enso/internal/app"
	"github.com/okian/enso/internal/config"
	"github.com/okian/enso/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the service registry carries its own gauges.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Logger isn't available yet, write straight to stderr
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// The announcer is wired even without a webhook so it can be enabled
	// later through a config reload.
	announcer := announce.New(
		announce.WithWebhookURL(cfg.AnnounceWebhookURL),
		announce.WithTimezone(cfg.AnnounceTimezone),
		announce.WithMention(cfg.AnnounceMention),
		announce.WithLogger(loggerInstance.Named("announce")),
	)

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithDBPath(cfg.DBPath),
		app.WithQueueSize(cfg.QueueSize),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithLuminanceThreshold(cfg.LuminanceThreshold),
		app.WithMaxImagePixels(cfg.MaxImagePixels),
		app.WithAnnouncer(announcer),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Re-apply the dynamic subset of configuration on file change.
	if err := config.Watch(ctx, func(next *config.Config, err error) {
		if err != nil {
			loggerInstance.Warn(ctx, "config reload failed", logger.Error(err))
			return
		}
		applyDynamicConfig(ctx, svc, next)
	}); err != nil {
		loggerInstance.Warn(ctx, "config watch unavailable", logger.Error(err))
	}

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Landing page at /, API reference under /api-docs.
	site.Register(ctx, mux)
	docs.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc,
		api.WithMaxImageBytes(cfg.MaxImageBytes),
		api.WithLeaderboardLimits(cfg.LeaderboardDefaultLimit, cfg.LeaderboardMaxLimit),
		api.WithRateLimiter(api.NewRateLimiter(cfg.SubmitRatePerSecond, cfg.SubmitRateBurst)),
		api.WithVersion(version),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// applyDynamicConfig pushes the reloadable settings into running components.
// Listen address, database path and pipeline sizing stay fixed until restart.
func applyDynamicConfig(ctx context.Context, svc *app.Service, cfg *config.Config) {
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "reload kept previous log level", logger.String("log_level", cfg.LogLevel))
	}

	if err := svc.UpdateAnnouncerSettings(cfg.AnnounceWebhookURL, cfg.AnnounceTimezone, cfg.AnnounceMention); err != nil {
		log.Warn(ctx, "reload kept previous announcer settings", logger.Error(err))
	}

	log.Info(ctx, "configuration reloaded", logger.String("log_level", cfg.LogLevel))
}

// startServiceMetricsUpdater refreshes the service gauges on a fixed cadence
// so queue depth and ledger size stay current between submissions.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the gauges as a side effect.
			_ = svc.GetStats(ctx)
		}
	}
}
