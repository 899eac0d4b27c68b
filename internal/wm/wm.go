// Package wm is the window manager core: the registry of open windows, the
// z-order and focus policy, the drag and resize gestures and the window
// lifecycle (close, minimize, restore, maximize).
//
// A Manager is single-writer. Every method, and every callback it schedules,
// must run on the same goroutine. Presentation layers receive their effects
// through the Surface and Dock interfaces and apply them verbatim.
package wm

import (
	"errors"

	"github.com/Gaurav-Gosain/webdesk/internal/geom"
)

// MonitorID is the reserved id of the system monitor window. Closing it
// stops the manager's periodic monitor task.
const MonitorID = "monitor"

// ErrDuplicateWindow is returned by Register when the id is already open.
var ErrDuplicateWindow = errors.New("window already registered")

// State is a visual state flag applied to a window surface.
type State string

// Visual states.
const (
	StateDragging  State = "dragging"
	StateResizing  State = "resizing"
	StateMinimized State = "minimized"
	StateMaximized State = "maximized"
	StateActive    State = "active"
	StateClosing   State = "closing"
)

// Surface is the presentation handle of one window. The manager never
// creates or destroys surfaces; it only tells them what to show.
type Surface interface {
	// Bounds is the geometry the presentation laid the window out at,
	// relative to the desktop area. It is read once, at registration.
	Bounds() geom.Rect
	SetGeometry(r geom.Rect)
	SetState(s State, on bool)
	SetZIndex(z int)
	// SetTransformOrigin sets the point, relative to the window's top-left
	// corner, that a minimize animation shrinks towards.
	SetTransformOrigin(p geom.Point)
	// ClearTransition drops the inline animation effects left over from a
	// minimize/restore pair.
	ClearTransition()
	SetCursor(cursor string)
	// Remove tears the surface down. It is called at most once.
	Remove()
}

// Dock is the launcher strip holding one icon per app.
type Dock interface {
	// IconRect returns the icon of id in client coordinates.
	IconRect(id string) (geom.Rect, bool)
	SetIndicator(id string, on bool)
}

// WindowConfig is the creation-time configuration of a window. The manager
// stores it and hands it back, nothing more.
type WindowConfig struct {
	Title  string
	Kind   string
	Width  float64
	Height float64
}

// Source identifies where a pointer event came from.
type Source uint8

// Event sources.
const (
	SourceMouse Source = iota
	SourceTouch
)

func (s Source) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "mouse"
}

// Region is the part of a window a pointer-down landed on.
type Region uint8

// Window regions.
const (
	RegionBody Region = iota
	RegionHeader
)

// Event is a pointer or touch event in client coordinates.
type Event struct {
	Source  Source
	Client  geom.Point
	Touches []geom.Point
}

// MouseAt returns a mouse event at (x, y).
func MouseAt(x, y float64) Event {
	return Event{Source: SourceMouse, Client: geom.Point{X: x, Y: y}}
}

// TouchAt returns a single-finger touch event at (x, y).
func TouchAt(x, y float64) Event {
	p := geom.Point{X: x, Y: y}
	return Event{Source: SourceTouch, Client: p, Touches: []geom.Point{p}}
}

// Contact normalises the event to a single point: the client position for
// mouse events and the first touch for touch events. A touch event with no
// touches has no contact.
func (e Event) Contact() (geom.Point, bool) {
	if e.Source == SourceTouch {
		if len(e.Touches) == 0 {
			return geom.Point{}, false
		}
		return e.Touches[0], true
	}
	return e.Client, true
}

// Viewport describes the visible page: its size and the client position of
// the desktop area that window geometry is relative to. The area extends to
// the bottom-right corner of the viewport.
type Viewport struct {
	Width  float64
	Height float64
	Origin geom.Point
}

// Size returns the viewport size.
func (v Viewport) Size() geom.Size { return geom.Size{Width: v.Width, Height: v.Height} }

// Area returns the size of the desktop area.
func (v Viewport) Area() geom.Size {
	return geom.Size{
		Width:  max(0, v.Width-v.Origin.X),
		Height: max(0, v.Height-v.Origin.Y),
	}
}

// Gesture is the kind of interaction holding the slot.
type Gesture uint8

// Gestures.
const (
	GestureNone Gesture = iota
	GestureDrag
	GestureResize
)

func (g Gesture) String() string {
	switch g {
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	default:
		return "none"
	}
}

// WindowInfo is a read-only snapshot of a window record.
type WindowInfo struct {
	ID        string
	Config    WindowConfig
	Rect      geom.Rect
	PrevRect  *geom.Rect
	Z         int
	Active    bool
	Maximized bool
	Minimized bool
	Closing   bool
	Cursor    string
}
