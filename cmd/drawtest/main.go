package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/enso/internal/drawtest"
)

// Default configuration constants.
const (
	defaultNumDrawings = 200
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numDrawings = flag.Int("n", defaultNumDrawings, "Number of drawings to generate and submit")
		topN        = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		day         = flag.String("day", "", "Leaderboard day to query, YYYY-MM-DD (default: today)")
		shape       = flag.String("shape", "", "Force one shape family: disk, ellipse, ring, line, blob")
		outputDir   = flag.String("output", "", "Directory to save generated drawings (default: not saved)")
		logFile     = flag.String("log", "", "Log file for test output (default: drawtest_TIMESTAMP.log)")
		verify      = flag.Bool("verify", false, "Verify leaderboard ordering and expected score bands")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		drawtest.ShowHelp()
		return
	}

	// Setup logging
	if err := drawtest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &drawtest.Config{
		BaseURL:     *baseURL,
		NumDrawings: *numDrawings,
		TopN:        *topN,
		Workers:     *workers,
		Timeout:     *timeout,
		Day:         *day,
		Shape:       *shape,
		OutputDir:   *outputDir,
		LogFile:     *logFile,
		Verbose:     *verbose,
		Verify:      *verify,
	}

	// Run the test
	if err := drawtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
