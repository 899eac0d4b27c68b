// Package geom provides the pure geometry used by the window manager:
// rectangles, edge-zone classification, anchor-preserving resize math and
// the layouts used for maximize and minimize.
package geom

import "math"

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a window box: top-left corner plus size.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point { return Point{r.Left, r.Top} }

// Center returns the centre point.
func (r Rect) Center() Point {
	return Point{r.Left + r.Width/2, r.Top + r.Height/2}
}

// Offset returns r translated by p.
func (r Rect) Offset(p Point) Rect {
	r.Left += p.X
	r.Top += p.Y
	return r
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Clamp limits v to [lo, hi]. When hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// MaximizedRect returns the full-width, top-anchored layout of a maximized
// window in an area of the given size, leaving margin pixels at the bottom
// for the dock.
func MaximizedRect(area Size, margin float64) Rect {
	return Rect{
		Left:   0,
		Top:    0,
		Width:  area.Width,
		Height: math.Max(0, area.Height-margin),
	}
}

// MinimizeOrigin returns the transform origin, relative to the window's own
// top-left corner, that makes a shrink animation converge on target.
// All inputs are in the same coordinate space.
func MinimizeOrigin(window Rect, target Point) Point {
	return target.Sub(window.TopLeft())
}

// DockFallback is the minimize target used when no dock icon exists: the
// horizontal centre of the viewport at its bottom edge.
func DockFallback(viewport Size) Point {
	return Point{viewport.Width / 2, viewport.Height}
}
