package drawtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/enso/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	drawingPermission   = 0600
)

// Run executes the complete drawing test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting enso drawing test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("drawings", config.NumDrawings),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.String("shape", config.Shape),
		logger.String("logFile", config.LogFile),
		logger.Any("verify", config.Verify),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate drawings
	drawings, err := generateDrawings(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("drawing generation failed: %w", err)
	}

	// Step 3: Submit drawings concurrently
	scores, err := submitDrawings(ctx, config, drawings, stats)
	if err != nil {
		return fmt.Errorf("drawing submission failed: %w", err)
	}

	// Step 4: Give queued work a moment to drain
	logger.Get().Info(ctx, "waiting for submissions to settle")
	time.Sleep(ProcessingDelay)

	// Step 5: Get leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 6: Verify results
	if config.Verify {
		if err := verifyResults(ctx, config, drawings, scores, leaderboard); err != nil {
			return fmt.Errorf("result verification failed: %w", err)
		}
	}

	// Step 7: Save drawings to disk
	if config.OutputDir != "" {
		if err := saveDrawings(ctx, config, drawings); err != nil {
			logger.Get().Warn(ctx, "failed to save drawings", logger.Error(err))
		}
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveDrawings writes the generated PNGs to the output directory.
func saveDrawings(ctx context.Context, config *Config, drawings []Drawing) error {
	if len(drawings) == 0 {
		return fmt.Errorf("no drawings to save")
	}

	if err := os.MkdirAll(config.OutputDir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, d := range drawings {
		name := d.Shape + "_" + strconv.FormatInt(d.UserID, 10) + ".png"
		path := filepath.Join(config.OutputDir, name)
		if err := os.WriteFile(path, d.PNG, drawingPermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	logger.Get().Info(ctx, "drawings saved",
		logger.String("dir", config.OutputDir), logger.Int("count", len(drawings)))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, drawingsPerSecond float64

	if stats.DrawingsSubmitted > 0 {
		acceptRate = float64(stats.DrawingsAccepted) / float64(stats.DrawingsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		drawingsPerSecond = float64(stats.DrawingsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("drawingsGenerated", stats.DrawingsGenerated),
		logger.Int("drawingsSubmitted", stats.DrawingsSubmitted),
		logger.Int("drawingsAccepted", stats.DrawingsAccepted),
		logger.Int("drawingsDuplicate", stats.DrawingsDuplicate),
		logger.Int("drawingsRejected", stats.DrawingsRejected),
		logger.Int("drawingsFailed", stats.DrawingsFailed),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("drawingsPerSecond", drawingsPerSecond))
}
