package plot

import (
	"math"
	"time"
)

// Point is a position in pixel space, y-up.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis-aligned rectangle in pixel space. (X, Y) is the
// bottom-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// MaxX returns the right edge of r.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the top edge of r.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return !(r.Width > 0) || !(r.Height > 0) }

// Contains reports whether p lies in r. Edges are inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Projector maps between data space and the pixel space of one plot
// rectangle.
type Projector struct {
	Rect  Rect
	Range DataRange
}

// NewProjector returns a Projector for the given plot rectangle and range.
func NewProjector(rect Rect, rng DataRange) Projector {
	return Projector{Rect: rect, Range: rng}
}

// X returns the horizontal pixel position of t.
func (p Projector) X(t time.Time) float64 {
	ratio := float64(t.Sub(p.Range.MinTime)) / float64(p.Range.TimeSpan)
	return p.Rect.X + ratio*p.Rect.Width
}

// Y returns the vertical pixel position of v.
func (p Projector) Y(v float64) float64 {
	ratio := (v - p.Range.MinValue) / p.Range.ValueSpan
	return p.Rect.Y + ratio*p.Rect.Height
}

// Point projects a single observation.
func (p Projector) Point(pp PricePoint) Point {
	return Point{X: p.X(pp.Time), Y: p.Y(pp.Value)}
}

// Points projects every observation in s, in order.
func (p Projector) Points(s Series) []Point {
	out := make([]Point, len(s))
	for i, pp := range s {
		out[i] = p.Point(pp)
	}
	return out
}

// Index resolves the horizontal pixel position px to the index of a series
// with n points. The position within the plot is mapped uniformly onto the
// index range rather than onto time, so the result is the nearest index,
// which is the nearest sample only when samples are evenly spaced in time.
// Index returns -1 when n is zero.
func (p Projector) Index(px float64, n int) int {
	if n <= 0 {
		return -1
	}
	if n == 1 || !(p.Rect.Width > 0) {
		return 0
	}
	ratio := clamp((px-p.Rect.X)/p.Rect.Width, 0, 1)
	return clamp(int(math.Round(ratio*float64(n-1))), 0, n-1)
}
