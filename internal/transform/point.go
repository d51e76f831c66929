package transform

import (
	"fmt"
	"math"
)

// Point is a Cartesian (X, Y) point, used for glyph origins and bounding
// box corners throughout the layout analyzer.
type Point struct {
	X float64
	Y float64
}

// NewPoint returns a Point at (x, y).
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Set mutates p to (x, y).
func (p *Point) Set(x, y float64) {
	p.X, p.Y = x, y
}

// Transform mutates p by the affine transform a b c d tx ty.
func (p *Point) Transform(a, b, c, d, tx, ty float64) {
	m := NewMatrix(a, b, c, d, tx, ty)
	p.X, p.Y = m.Transform(p.X, p.Y)
}

// Displace returns a new Point at p + delta.
func (p Point) Displace(delta Point) Point {
	return Point{p.X + delta.X, p.Y + delta.Y}
}

// Distance returns the Euclidean distance between a and b, the core metric
// behind the layout analyzer's density-based glyph clustering (
// Stage A/B epsilon thresholds).
func (a Point) Distance(b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Interpolate does linear interpolation between a and b for t in [0,1].
func (a Point) Interpolate(b Point, t float64) Point {
	return Point{
		X: (1-t)*a.X + t*b.X,
		Y: (1-t)*a.Y + t*b.Y,
	}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}
