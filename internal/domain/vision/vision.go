// Package vision scores how circular the largest drawn shape in an image is.
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	// Decoders for the formats chat clients attach drawings in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Default scorer configuration constants.
const (
	defaultLuminanceThreshold = 127
	defaultMaxPixels          = 16 << 20 // 4096x4096
	fullScale                 = 100
)

// Option applies a configuration option to the CircularityScorer.
type Option func(*CircularityScorer)

// WithLuminanceThreshold sets the ink cutoff: pixels with luminance at or
// below the threshold count as drawn ink, everything brighter is canvas.
func WithLuminanceThreshold(threshold int) Option {
	return func(s *CircularityScorer) {
		if threshold >= 0 && threshold <= math.MaxUint8 {
			s.threshold = uint8(threshold)
		}
	}
}

// WithMaxPixels bounds the decoded image area. Images whose header declares
// more pixels are rejected before any pixel work happens, which keeps
// decode bombs from exhausting memory.
func WithMaxPixels(px int) Option {
	return func(s *CircularityScorer) {
		if px > 0 {
			s.maxPixels = px
		}
	}
}

// WithClampToScale caps scores at 100 instead of letting geometric
// artifacts push slightly past the scale.
func WithClampToScale(clamp bool) Option {
	return func(s *CircularityScorer) {
		s.clamp = clamp
	}
}

// Result describes a successful scoring run.
type Result struct {
	Score    float64 // circularity on the 0..100 scale
	Area     float64 // polygon area of the winning contour, in px^2
	Circle   Circle  // minimum enclosing circle of the winning contour
	Contours int     // number of candidate shapes considered
}

// Scorer computes a circularity score from raw image bytes.
// Implementations must be deterministic for identical input and safe for
// concurrent use.
type Scorer interface {
	// Score returns the circularity of the largest shape in data, honoring
	// ctx for cancellation. Unusable payloads fail with ErrDecodeFailed or
	// ErrNoShapeFound; both are distinct from a low score.
	Score(ctx context.Context, data []byte) (Result, error)
}

// CircularityScorer implements Scorer: decode, grayscale, threshold, trace
// external contours, then compare the largest shape's area against its
// minimum enclosing circle.
type CircularityScorer struct {
	threshold uint8
	maxPixels int
	clamp     bool
}

// New creates a CircularityScorer with configuration options.
func New(opts ...Option) *CircularityScorer {
	s := &CircularityScorer{
		threshold: defaultLuminanceThreshold,
		maxPixels: defaultMaxPixels,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score runs the scoring pipeline on data.
func (s *CircularityScorer) Score(ctx context.Context, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("scoring cancelled: %w", err)
	}

	// Reject oversized images from the header alone; a full decode of a
	// hostile payload could allocate far more than the byte count suggests.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if px := cfg.Width * cfg.Height; px <= 0 || px > s.maxPixels {
		return Result{}, fmt.Errorf("%w: %dx%d exceeds the %d pixel budget", ErrDecodeFailed, cfg.Width, cfg.Height, s.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("scoring cancelled: %w", err)
	}

	contours := findExternalContours(binarize(img, s.threshold))
	if len(contours) == 0 {
		return Result{}, ErrNoShapeFound
	}

	// Largest shape wins; earlier raster-scan discovery breaks ties.
	best := contours[0]
	bestArea := polygonArea(best)
	for _, c := range contours[1:] {
		if a := polygonArea(c); a > bestArea {
			best, bestArea = c, a
		}
	}

	circle := minEnclosingCircle(best)

	// Degenerate shapes (single pixels, hairlines) score zero rather than
	// dividing by a zero-area circle.
	score := 0.0
	if circleArea := circle.Area(); bestArea > 0 && circleArea > 0 {
		score = fullScale * bestArea / circleArea
	}
	if s.clamp {
		score = math.Max(0, math.Min(fullScale, score))
	}

	return Result{
		Score:    score,
		Area:     bestArea,
		Circle:   circle,
		Contours: len(contours),
	}, nil
}
