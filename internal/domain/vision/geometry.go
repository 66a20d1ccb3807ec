package vision

import (
	"math"
	"math/rand"
)

// Geometry tuning constants.
const (
	welzlSeed    = 42 // fixed shuffle seed so identical input scores identically
	welzlEps     = 1e-12
	collinearEps = 1e-9
)

// Point is a pixel-space coordinate. Y grows downward, matching image
// memory layout.
type Point struct {
	X float64
	Y float64
}

// Circle is a center and radius in pixel space.
type Circle struct {
	Center Point
	Radius float64
}

// Area returns the circle's area.
func (c Circle) Area() float64 {
	return math.Pi * c.Radius * c.Radius
}

// contains reports whether p lies inside the circle, with a relative
// epsilon to absorb floating point noise on boundary points.
func (c Circle) contains(p Point) bool {
	dx := p.X - c.Center.X
	dy := p.Y - c.Center.Y
	rr := c.Radius * c.Radius
	return dx*dx+dy*dy <= rr+welzlEps*(rr+1)
}

// polygonArea computes the absolute shoelace area of the closed polygon
// through pts. Fewer than three points enclose nothing. A repeated closing
// point contributes a zero-length edge and is harmless.
func polygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}

	var twice float64
	for i := range pts {
		j := (i + 1) % len(pts)
		twice += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}

	return math.Abs(twice) / 2
}

// minEnclosingCircle returns the smallest circle covering every point,
// using Welzl's incremental construction over a shuffled copy. The minimum
// enclosing circle is unique, so the shuffle only bounds the running time;
// seeding it keeps results bit-for-bit reproducible.
func minEnclosingCircle(pts []Point) Circle {
	if len(pts) == 0 {
		return Circle{}
	}

	work := make([]Point, len(pts))
	copy(work, pts)
	rng := rand.New(rand.NewSource(welzlSeed)) //nolint:gosec // deterministic seed for reproducible scoring
	rng.Shuffle(len(work), func(i, j int) { work[i], work[j] = work[j], work[i] })

	c := Circle{Center: work[0]}
	for i := 1; i < len(work); i++ {
		if c.contains(work[i]) {
			continue
		}
		c = circleWithBoundary(work[:i], work[i])
	}

	return c
}

// circleWithBoundary finds the minimum circle over pts knowing p sits on
// its boundary.
func circleWithBoundary(pts []Point, p Point) Circle {
	c := Circle{Center: p}
	for i := range pts {
		if c.contains(pts[i]) {
			continue
		}
		c = circleWithTwoBoundary(pts[:i], p, pts[i])
	}

	return c
}

// circleWithTwoBoundary finds the minimum circle over pts knowing p and q
// both sit on its boundary.
func circleWithTwoBoundary(pts []Point, p, q Point) Circle {
	c := diametral(p, q)
	for i := range pts {
		if c.contains(pts[i]) {
			continue
		}
		c = circumcircle(p, q, pts[i])
	}

	return c
}

// diametral is the circle with segment pq as its diameter.
func diametral(p, q Point) Circle {
	center := Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
	return Circle{Center: center, Radius: dist(center, p)}
}

// circumcircle passes through all three points. Collinear triples have no
// circumcircle; the widest diametral circle of the pairs covers them.
func circumcircle(a, b, c Point) Circle {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < collinearEps {
		widest := diametral(a, b)
		if bc := diametral(b, c); bc.Radius > widest.Radius {
			widest = bc
		}
		if ca := diametral(c, a); ca.Radius > widest.Radius {
			widest = ca
		}
		return widest
	}

	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	center := Point{
		X: (aa*(b.Y-c.Y) + bb*(c.Y-a.Y) + cc*(a.Y-b.Y)) / d,
		Y: (aa*(c.X-b.X) + bb*(a.X-c.X) + cc*(b.X-a.X)) / d,
	}

	return Circle{Center: center, Radius: dist(center, a)}
}

func dist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}
