package drawtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// PostDrawing submits one drawing as multipart/form-data.
func (c *HTTPClient) PostDrawing(ctx context.Context, url string, d Drawing) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("user_id", strconv.FormatInt(d.UserID, 10)); err != nil {
		return nil, fmt.Errorf("failed to write user_id field: %w", err)
	}
	part, err := mw.CreateFormFile("image", "drawing.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(d.PNG); err != nil {
		return nil, fmt.Errorf("failed to write image bytes: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitResult is the outcome of one submission from the tool's view.
type submitResult struct {
	kind  string // accepted, duplicate, rejected, failed
	score float64
}

// submitDrawings submits drawings concurrently using worker pools
func submitDrawings(ctx context.Context, config *Config, drawings []Drawing, stats *Stats) (map[int64]float64, error) {
	log.Printf("📤 Submitting %d drawings with %d workers...", len(drawings), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/submissions"

	// Counters for statistics
	var (
		accepted  int64
		duplicate int64
		rejected  int64
		failed    int64
		submitted int64
	)

	// Accepted scores keyed by user, for later leaderboard verification.
	var scoresMu sync.Mutex
	scores := make(map[int64]float64, len(drawings))

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	drawingChan := make(chan Drawing, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for d := range drawingChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleDrawing(ctx, client, url, d)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result.kind {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
						scoresMu.Lock()
						scores[d.UserID] = result.score
						scoresMu.Unlock()
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "rejected":
						atomic.AddInt64(&rejected, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						acc := atomic.LoadInt64(&accepted)
						dup := atomic.LoadInt64(&duplicate)
						rej := atomic.LoadInt64(&rejected)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (accepted: %d, duplicate: %d, rejected: %d, failed: %d)",
								total, len(drawings), acc, dup, rej, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (accepted: %d, duplicate: %d, rejected: %d, failed: %d)",
								total, len(drawings), acc, dup, rej, fail)
						}
					}
				}
			}
		}()
	}

	// Send drawings to workers
	go func() {
		defer close(drawingChan)
		for _, d := range drawings {
			select {
			case <-ctx.Done():
				return
			case drawingChan <- d:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.DrawingsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.DrawingsAccepted = int(atomic.LoadInt64(&accepted))
	stats.DrawingsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.DrawingsRejected = int(atomic.LoadInt64(&rejected))
	stats.DrawingsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Drawing submission completed:
   Accepted: %d
   Duplicate: %d
   Rejected: %d
   Failed: %d
`, stats.DrawingsAccepted, stats.DrawingsDuplicate, stats.DrawingsRejected, stats.DrawingsFailed)

	return scores, nil
}

// submitSingleDrawing submits a single drawing and classifies the reply.
func submitSingleDrawing(ctx context.Context, client *HTTPClient, url string, d Drawing) submitResult {
	resp, err := client.PostDrawing(ctx, url, d)
	if err != nil {
		return submitResult{kind: "failed"}
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return submitResult{kind: "failed"}
	}

	switch resp.StatusCode {
	case StatusCreated:
		var sr SubmissionResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return submitResult{kind: "accepted"}
		}
		return submitResult{kind: "accepted", score: sr.Score}
	case http.StatusConflict:
		return submitResult{kind: "duplicate"}
	case http.StatusUnprocessableEntity:
		return submitResult{kind: "rejected"}
	default:
		return submitResult{kind: "failed"}
	}
}

// getLeaderboard fetches the ranked entries for the configured day.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/api/v1/leaderboard?limit=" + strconv.Itoa(config.TopN)
	if config.Day != "" {
		url += "&day=" + config.Day
	}

	log.Printf("🏅 Fetching top %d leaderboard entries...", config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("leaderboard request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("leaderboard request returned status %d", resp.StatusCode)
	}

	var board LeaderboardResponse
	if err := json.Unmarshal(body, &board); err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard response: %w", err)
	}

	stats.LeaderboardEntries = len(board.Entries)
	log.Printf("🏅 Retrieved %d leaderboard entries for %s", len(board.Entries), board.Day)

	return board.Entries, nil
}
