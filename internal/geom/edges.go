package geom

import "math"

// Direction is a set of window edges, combined for corners.
type Direction uint8

const (
	North Direction = 1 << iota
	South
	East
	West
)

// None is the empty direction.
const None Direction = 0

// String returns the canonical letters: vertical edge first, then
// horizontal ("n", "se", "nw"). The empty direction renders as "".
func (d Direction) String() string {
	var b []byte
	if d&North != 0 {
		b = append(b, 'n')
	}
	if d&South != 0 {
		b = append(b, 's')
	}
	if d&East != 0 {
		b = append(b, 'e')
	}
	if d&West != 0 {
		b = append(b, 'w')
	}
	return string(b)
}

// Has reports whether all edges of e are part of d.
func (d Direction) Has(e Direction) bool { return d&e == e && e != None }

// ParseDirection parses letters from "nsew" in any order. Unknown letters
// are ignored.
func ParseDirection(s string) Direction {
	var d Direction
	for _, c := range s {
		switch c {
		case 'n':
			d |= North
		case 's':
			d |= South
		case 'e':
			d |= East
		case 'w':
			d |= West
		}
	}
	return d
}

// Classify returns the edges of r that p is within threshold pixels of.
// Points outside r never classify. This is the single edge predicate shared
// by resize classification and cursor hinting.
func Classify(p Point, r Rect, threshold float64) Direction {
	if !r.Contains(p) {
		return None
	}
	var d Direction
	if p.Y-r.Top < threshold {
		d |= North
	} else if r.Bottom()-p.Y < threshold {
		d |= South
	}
	if r.Right()-p.X < threshold {
		d |= East
	} else if p.X-r.Left < threshold {
		d |= West
	}
	return d
}

// CursorFor maps a direction to a CSS resize cursor.
func CursorFor(d Direction) string {
	if d == None {
		return "default"
	}
	return d.String() + "-resize"
}

// CursorHint is the cursor suggestion for pointer p over a window box r.
func CursorHint(p Point, r Rect, threshold float64) string {
	return CursorFor(Classify(p, r, threshold))
}

// ResizeRect applies a pointer displacement (dx, dy) to start for the edges
// in d, never going below minSize. West and north resizes keep the opposite edge
// anchored by moving the origin along with the size.
func ResizeRect(start Rect, d Direction, dx, dy float64, minSize Size) Rect {
	r := start
	if d&East != 0 {
		r.Width = math.Max(minSize.Width, start.Width+dx)
	}
	if d&South != 0 {
		r.Height = math.Max(minSize.Height, start.Height+dy)
	}
	if d&West != 0 {
		r.Width = math.Max(minSize.Width, start.Width-dx)
		r.Left = start.Left + (start.Width - r.Width)
	}
	if d&North != 0 {
		r.Height = math.Max(minSize.Height, start.Height-dy)
		r.Top = start.Top + (start.Height - r.Height)
	}
	return r
}
