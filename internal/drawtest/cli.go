package drawtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/enso/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "drawtest_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the drawing test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Enso Drawing Test Tool
======================

A concurrent tool for exercising the enso circle-scoring service with
synthetic drawings.

Usage:
  go run cmd/drawtest/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -n int
        Number of drawings to generate and submit (default 200)
  -top int
        Number of top entries to fetch from the leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -day string
        Leaderboard day to query, YYYY-MM-DD (default: today)
  -shape string
        Force one shape family: disk, ellipse, ring, line, blob (default: mixed)
  -output string
        Directory to save generated drawings (default: not saved)
  -log string
        Log file for test output (default: drawtest_TIMESTAMP.log)
  -verify
        Verify leaderboard ordering and expected score bands
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Smoke test with default settings
  go run cmd/drawtest/main.go

  # Heavier run against a remote instance
  go run cmd/drawtest/main.go -n 2000 -workers 16 -url http://enso.internal:9080

  # Only near-perfect circles, with verification
  go run cmd/drawtest/main.go -shape disk -verify
`)
}
