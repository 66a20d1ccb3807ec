package vision

import (
	"image"
	"image/color"
)

// bitmap is a binarized view of the source image. true marks foreground
// (drawn ink); pixels are laid out row-major from the image origin.
type bitmap struct {
	w, h int
	pix  []bool
}

// at reports whether (x, y) is a foreground pixel, treating everything
// outside the image as background.
func (b *bitmap) at(x, y int) bool {
	return x >= 0 && x < b.w && y >= 0 && y < b.h && b.pix[y*b.w+x]
}

// luminance is the Rec. 601 integer approximation used for grayscale.
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// binarize converts img to 8-bit grayscale and thresholds it: luminance
// above the cutoff is canvas, everything at or below it is ink. Typed fast
// paths cover the pixel formats the stdlib and x/image decoders produce;
// alpha is dropped rather than composited.
func binarize(img image.Image, threshold uint8) *bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	bm := &bitmap{w: w, h: h, pix: make([]bool, w*h)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := bounds.Min.X+x, bounds.Min.Y+y

			var lum uint8
			switch src := img.(type) {
			case *image.Gray:
				lum = src.GrayAt(sx, sy).Y
			case *image.YCbCr:
				// The Y plane already carries BT.601 luma.
				lum = src.Y[src.YOffset(sx, sy)]
			case *image.NRGBA:
				c := src.NRGBAAt(sx, sy)
				lum = luminance(c.R, c.G, c.B)
			case *image.RGBA:
				c := src.RGBAAt(sx, sy)
				if c.A == 0xff {
					lum = luminance(c.R, c.G, c.B)
				} else {
					n := color.NRGBAModel.Convert(c).(color.NRGBA)
					lum = luminance(n.R, n.G, n.B)
				}
			default:
				n := color.NRGBAModel.Convert(img.At(sx, sy)).(color.NRGBA)
				lum = luminance(n.R, n.G, n.B)
			}

			bm.pix[y*w+x] = lum <= threshold
		}
	}

	return bm
}

// moore enumerates the 8-neighborhood clockwise starting west. The border
// walk below depends on this exact order.
var moore = [8][2]int{
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
}

const dirWest = 0

// mooreIndex maps a unit step back to its position in moore.
func mooreIndex(dx, dy int) int {
	for i, d := range moore {
		if d[0] == dx && d[1] == dy {
			return i
		}
	}
	return dirWest
}

// findExternalContours returns the outer boundary of every 8-connected
// foreground component in raster-scan discovery order. Holes and nested
// shapes inside a component produce no contour of their own.
func findExternalContours(bm *bitmap) [][]Point {
	var contours [][]Point
	visited := make([]bool, len(bm.pix))

	for y := 0; y < bm.h; y++ {
		for x := 0; x < bm.w; x++ {
			idx := y*bm.w + x
			if !bm.pix[idx] || visited[idx] {
				continue
			}
			// The first unvisited pixel of a component in raster order sits
			// on its outer boundary with a background west neighbor, which
			// is exactly the starting state the border walk needs.
			contours = append(contours, traceBoundary(bm, x, y))
			fillComponent(bm, visited, x, y)
		}
	}

	return contours
}

// traceBoundary walks the outer boundary of the component containing
// (sx, sy) using Moore neighbor tracing. The walk closes when it stands on
// the start pixel about to repeat its first step (Jacob's stopping
// criterion), which keeps thin diagonal shapes from terminating early.
func traceBoundary(bm *bitmap, sx, sy int) []Point {
	contour := []Point{{X: float64(sx), Y: float64(sy)}}

	firstDir, ok := nextBoundaryStep(bm, sx, sy, dirWest)
	if !ok {
		// Isolated pixel.
		return contour
	}

	cx, cy := sx, sy
	backtrack := dirWest
	for steps := 0; steps < 8*len(bm.pix); steps++ {
		dir, ok := nextBoundaryStep(bm, cx, cy, backtrack)
		if !ok {
			break
		}
		if steps > 0 && cx == sx && cy == sy && dir == firstDir {
			break
		}

		// The neighbor swept just before dir is background and becomes the
		// backtrack reference of the next pixel.
		prev := (dir + 7) % 8
		backtrack = mooreIndex(moore[prev][0]-moore[dir][0], moore[prev][1]-moore[dir][1])
		cx += moore[dir][0]
		cy += moore[dir][1]
		contour = append(contour, Point{X: float64(cx), Y: float64(cy)})
	}

	return contour
}

// nextBoundaryStep sweeps the neighbors of (x, y) clockwise starting just
// past the backtrack direction and returns the first foreground one.
func nextBoundaryStep(bm *bitmap, x, y, backtrack int) (int, bool) {
	for i := 1; i <= 8; i++ {
		d := (backtrack + i) % 8
		if bm.at(x+moore[d][0], y+moore[d][1]) {
			return d, true
		}
	}
	return 0, false
}

// fillComponent marks every pixel 8-connected to (sx, sy) as visited so the
// raster scan never starts a second trace inside the same shape.
func fillComponent(bm *bitmap, visited []bool, sx, sy int) {
	start := sy*bm.w + sx
	visited[start] = true
	stack := []int{start}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%bm.w, idx/bm.w

		for _, d := range moore {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= bm.w || ny < 0 || ny >= bm.h {
				continue
			}
			nidx := ny*bm.w + nx
			if bm.pix[nidx] && !visited[nidx] {
				visited[nidx] = true
				stack = append(stack, nidx)
			}
		}
	}
}
