package vision

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want float64
	}{
		{"empty", nil, 0},
		{"single point", []Point{{1, 1}}, 0},
		{"two points", []Point{{0, 0}, {3, 4}}, 0},
		{"unit square", []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, 1},
		{"triangle", []Point{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"counterclockwise triangle", []Point{{0, 0}, {0, 3}, {4, 0}}, 6},
		{"closed square with repeated endpoint", []Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, 4},
		{"collinear", []Point{{0, 0}, {1, 0}, {2, 0}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := polygonArea(tt.pts); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("polygonArea = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinEnclosingCircle(t *testing.T) {
	tests := []struct {
		name       string
		pts        []Point
		wantCenter Point
		wantRadius float64
	}{
		{"single point", []Point{{3, 4}}, Point{3, 4}, 0},
		{"two points", []Point{{0, 0}, {4, 0}}, Point{2, 0}, 2},
		{"square corners", []Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, Point{1, 1}, math.Sqrt2},
		{"collinear", []Point{{0, 0}, {2, 0}, {4, 0}}, Point{2, 0}, 2},
		{"interior point ignored", []Point{{0, 0}, {4, 0}, {2, 1}}, Point{2, 0}, 2},
		// Acute triangle: the minimum enclosing circle is the circumcircle.
		{"acute triangle", []Point{{0, 0}, {4, 0}, {2, 3}}, Point{2, 5.0 / 6.0}, 13.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := minEnclosingCircle(tt.pts)
			if math.Abs(got.Center.X-tt.wantCenter.X) > 1e-6 ||
				math.Abs(got.Center.Y-tt.wantCenter.Y) > 1e-6 {
				t.Errorf("center = %+v, want %+v", got.Center, tt.wantCenter)
			}
			if math.Abs(got.Radius-tt.wantRadius) > 1e-6 {
				t.Errorf("radius = %v, want %v", got.Radius, tt.wantRadius)
			}
		})
	}

	t.Run("covers every input point", func(t *testing.T) {
		pts := []Point{{0, 0}, {10, 2}, {5, 9}, {1, 7}, {8, 8}, {3, 3}, {9, 1}}
		c := minEnclosingCircle(pts)
		for _, p := range pts {
			if d := dist(p, c.Center); d > c.Radius+1e-9 {
				t.Errorf("point %+v at distance %v outside radius %v", p, d, c.Radius)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := minEnclosingCircle(nil); got.Radius != 0 {
			t.Errorf("radius = %v, want 0", got.Radius)
		}
	})
}

func bitmapFromRows(rows ...string) *bitmap {
	h := len(rows)
	w := len(rows[0])
	bm := &bitmap{w: w, h: h, pix: make([]bool, w*h)}
	for y, row := range rows {
		for x := 0; x < w; x++ {
			bm.pix[y*w+x] = row[x] == '#'
		}
	}
	return bm
}

func TestFindExternalContours(t *testing.T) {
	t.Run("blank bitmap has no contours", func(t *testing.T) {
		bm := bitmapFromRows("....", "....", "....")
		if got := findExternalContours(bm); len(got) != 0 {
			t.Fatalf("contours = %d, want 0", len(got))
		}
	})

	t.Run("isolated pixel traces a single point", func(t *testing.T) {
		bm := bitmapFromRows("...", ".#.", "...")
		got := findExternalContours(bm)
		if len(got) != 1 {
			t.Fatalf("contours = %d, want 1", len(got))
		}
		if len(got[0]) != 1 || got[0][0] != (Point{1, 1}) {
			t.Errorf("contour = %v, want single point (1,1)", got[0])
		}
	})

	t.Run("solid block encloses the pixel-center square", func(t *testing.T) {
		bm := bitmapFromRows("##", "##")
		got := findExternalContours(bm)
		if len(got) != 1 {
			t.Fatalf("contours = %d, want 1", len(got))
		}
		if area := polygonArea(got[0]); math.Abs(area-1) > 1e-9 {
			t.Errorf("area = %v, want 1", area)
		}
	})

	t.Run("ring yields only its outer boundary", func(t *testing.T) {
		bm := bitmapFromRows(
			"#####",
			"#...#",
			"#...#",
			"#...#",
			"#####",
		)
		got := findExternalContours(bm)
		if len(got) != 1 {
			t.Fatalf("contours = %d, want 1 (hole must not count)", len(got))
		}
		// The outer boundary spans pixel centers (0,0)..(4,4).
		if area := polygonArea(got[0]); math.Abs(area-16) > 1e-9 {
			t.Errorf("area = %v, want 16", area)
		}
	})

	t.Run("separate components come back in raster order", func(t *testing.T) {
		bm := bitmapFromRows(
			"##....",
			"##....",
			"....##",
			"....##",
		)
		got := findExternalContours(bm)
		if len(got) != 2 {
			t.Fatalf("contours = %d, want 2", len(got))
		}
		if got[0][0] != (Point{0, 0}) {
			t.Errorf("first contour starts at %v, want (0,0)", got[0][0])
		}
		if got[1][0] != (Point{4, 2}) {
			t.Errorf("second contour starts at %v, want (4,2)", got[1][0])
		}
	})

	t.Run("diagonal pixels stay one 8-connected component", func(t *testing.T) {
		bm := bitmapFromRows(
			"#..",
			".#.",
			"..#",
		)
		got := findExternalContours(bm)
		if len(got) != 1 {
			t.Fatalf("contours = %d, want 1", len(got))
		}
		if area := polygonArea(got[0]); area != 0 {
			t.Errorf("area = %v, want 0 for a hairline", area)
		}
	})

	t.Run("thin pair closes without looping", func(t *testing.T) {
		bm := bitmapFromRows("##")
		got := findExternalContours(bm)
		if len(got) != 1 {
			t.Fatalf("contours = %d, want 1", len(got))
		}
		if len(got[0]) > 4 {
			t.Errorf("contour has %d points, trace did not terminate tightly", len(got[0]))
		}
	})
}

func TestBinarize(t *testing.T) {
	t.Run("threshold splits grays", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 2, 1))
		img.Pix[0] = 127 // ink: at the threshold
		img.Pix[1] = 128 // canvas: one past it
		bm := binarize(img, 127)
		if !bm.at(0, 0) {
			t.Error("luminance 127 should be foreground")
		}
		if bm.at(1, 0) {
			t.Error("luminance 128 should be background")
		}
	})

	t.Run("rec601 weights drive color luminance", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		// Pure blue is dark (luminance 29), pure green is bright (149).
		img.SetNRGBA(0, 0, color.NRGBA{B: 255, A: 255})
		img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
		bm := binarize(img, 127)
		if !bm.at(0, 0) {
			t.Error("blue should land below the threshold")
		}
		if bm.at(1, 0) {
			t.Error("green should land above the threshold")
		}
	})

	t.Run("subimage bounds are respected", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 4, 4))
		for i := range img.Pix {
			img.Pix[i] = 255
		}
		img.SetGray(2, 2, color.Gray{}) // one ink pixel
		sub := img.SubImage(image.Rect(1, 1, 4, 4)).(*image.Gray)
		bm := binarize(sub, 127)
		if bm.w != 3 || bm.h != 3 {
			t.Fatalf("bitmap is %dx%d, want 3x3", bm.w, bm.h)
		}
		if !bm.at(1, 1) {
			t.Error("ink pixel lost when translating subimage bounds")
		}
	})

	t.Run("out of bounds reads are background", func(t *testing.T) {
		bm := bitmapFromRows("#")
		if bm.at(-1, 0) || bm.at(0, -1) || bm.at(1, 0) || bm.at(0, 1) {
			t.Error("outside pixels must read as background")
		}
	})
}
