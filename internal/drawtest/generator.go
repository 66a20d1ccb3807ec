package drawtest

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/big"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/okian/enso/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	shapeFamilyDivisor = 5
)

// Canvas dimensions. Shapes are rendered at renderSize and downscaled to
// canvasSize so edges come out antialiased like a real drawing.
const (
	renderSize = 512
	canvasSize = 256
)

// Shape family names.
const (
	shapeDisk    = "disk"
	shapeEllipse = "ellipse"
	shapeRing    = "ring"
	shapeLine    = "line"
	shapeBlob    = "blob"
)

// Constants for shape family cases.
const (
	caseDisk    = 0
	caseEllipse = 1
	caseRing    = 2
	caseLine    = 3
	caseBlob    = 4
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateDrawings creates the specified number of drawings with unique user IDs.
func generateDrawings(ctx context.Context, config *Config, stats *Stats) ([]Drawing, error) {
	logger.Get().Info(ctx, "generating drawings with unique user IDs",
		logger.Int("numDrawings", config.NumDrawings), logger.String("shape", config.Shape))

	drawings := make([]Drawing, config.NumDrawings)

	// User IDs are derived from the wall clock so repeated runs against a
	// long-lived instance never collide on the daily uniqueness rule.
	baseUserID := time.Now().Unix() * 100000

	type drawResult struct {
		index   int
		drawing Drawing
		err     error
	}

	resultChan := make(chan drawResult, config.NumDrawings)

	// Use worker pool for drawing generation
	workerCount := minInt(config.Workers, config.NumDrawings)
	perWorker := config.NumDrawings / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumDrawings // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- drawResult{index: i, err: ctx.Err()}
					return
				default:
					d, err := generateSingleDrawing(baseUserID+int64(i), config.Shape)
					resultChan <- drawResult{index: i, drawing: d, err: err}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumDrawings; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during drawing generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate drawing %d: %w", result.index, result.err)
			}
			drawings[result.index] = result.drawing
		}
	}

	stats.DrawingsGenerated = len(drawings)
	logger.Get().Info(ctx, "generated drawings successfully", logger.Int("count", len(drawings)))

	return drawings, nil
}

// generateSingleDrawing renders one shape for the given user.
func generateSingleDrawing(userID int64, forcedShape string) (Drawing, error) {
	shape := forcedShape
	if shape == "" {
		shape = pickShapeFamily()
	}

	img := renderShape(shape)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Drawing{}, fmt.Errorf("failed to encode drawing: %w", err)
	}

	return Drawing{UserID: userID, Shape: shape, PNG: buf.Bytes()}, nil
}

// pickShapeFamily chooses a shape family with a distribution skewed toward
// circle-like drawings, which is what real players mostly produce.
func pickShapeFamily() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(shapeFamilyDivisor))
	switch n.Int64() {
	case caseDisk:
		return shapeDisk
	case caseEllipse:
		return shapeEllipse
	case caseRing:
		return shapeRing
	case caseLine:
		return shapeLine
	case caseBlob:
		return shapeBlob
	default:
		return shapeDisk
	}
}

// renderShape paints black ink on a white canvas and downscales the result.
func renderShape(shape string) image.Image {
	canvas := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	for y := 0; y < renderSize; y++ {
		for x := 0; x < renderSize; x++ {
			canvas.Set(x, y, color.White)
		}
	}

	cx, cy := float64(renderSize)/2, float64(renderSize)/2
	maxR := float64(renderSize) * 0.4

	switch shape {
	case shapeDisk:
		r := maxR * (0.6 + 0.4*getRandomFloat())
		paint(canvas, func(x, y float64) bool {
			dx, dy := x-cx, y-cy
			return dx*dx+dy*dy <= r*r
		})
	case shapeEllipse:
		rx := maxR * (0.7 + 0.3*getRandomFloat())
		ry := rx * (0.35 + 0.3*getRandomFloat())
		paint(canvas, func(x, y float64) bool {
			dx, dy := (x-cx)/rx, (y-cy)/ry
			return dx*dx+dy*dy <= 1
		})
	case shapeRing:
		r := maxR * (0.6 + 0.4*getRandomFloat())
		stroke := 4.0 + 6.0*getRandomFloat()
		paint(canvas, func(x, y float64) bool {
			d := math.Hypot(x-cx, y-cy)
			return d >= r-stroke && d <= r
		})
	case shapeLine:
		angle := getRandomFloat() * math.Pi
		length := maxR * (1.2 + 0.6*getRandomFloat())
		stroke := 3.0 + 4.0*getRandomFloat()
		ax, ay := math.Cos(angle), math.Sin(angle)
		paint(canvas, func(x, y float64) bool {
			dx, dy := x-cx, y-cy
			along := dx*ax + dy*ay
			across := math.Abs(-dx*ay + dy*ax)
			return math.Abs(along) <= length/2 && across <= stroke/2
		})
	case shapeBlob:
		// A wobbly radius makes an irregular but closed shape.
		base := maxR * (0.5 + 0.3*getRandomFloat())
		wobble := base * (0.2 + 0.3*getRandomFloat())
		phase := getRandomFloat() * 2 * math.Pi
		lobes := 3 + int(getRandomFloat()*3)
		paint(canvas, func(x, y float64) bool {
			dx, dy := x-cx, y-cy
			theta := math.Atan2(dy, dx)
			r := base + wobble*math.Sin(float64(lobes)*theta+phase)
			return math.Hypot(dx, dy) <= r
		})
	default:
		paint(canvas, func(x, y float64) bool {
			dx, dy := x-cx, y-cy
			return dx*dx+dy*dy <= maxR*maxR
		})
	}

	small := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)
	return small
}

// paint sets every pixel whose center satisfies inside to black ink.
func paint(img *image.RGBA, inside func(x, y float64) bool) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if inside(float64(x)+0.5, float64(y)+0.5) {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
