package desktop

import (
	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
)

// batch collects presentation ops until the session flushes them.
type batch struct {
	ops []Op
}

func (b *batch) add(op Op) { b.ops = append(b.ops, op) }

func (b *batch) take() []Op {
	ops := b.ops
	b.ops = nil
	return ops
}

// surface is the wm.Surface of one window. It records every effect as a
// patch op.
type surface struct {
	id     string
	out    *batch
	bounds geom.Rect
	states map[wm.State]bool
}

func newSurface(id string, r geom.Rect, out *batch) *surface {
	return &surface{id: id, out: out, bounds: r, states: make(map[wm.State]bool)}
}

func (s *surface) Bounds() geom.Rect { return s.bounds }

func (s *surface) SetGeometry(r geom.Rect) {
	s.bounds = r
	s.out.add(Op{Op: OpGeometry, ID: s.id, Rect: &r})
}

func (s *surface) SetState(st wm.State, on bool) {
	if s.states[st] == on {
		return
	}
	s.states[st] = on
	s.out.add(Op{Op: OpState, ID: s.id, State: string(st), On: &on})
}

func (s *surface) SetZIndex(z int) {
	s.out.add(Op{Op: OpZ, ID: s.id, Z: z})
}

func (s *surface) SetTransformOrigin(p geom.Point) {
	s.out.add(Op{Op: OpOrigin, ID: s.id, Origin: &p})
}

func (s *surface) ClearTransition() {
	s.out.add(Op{Op: OpClearTransition, ID: s.id})
}

func (s *surface) SetCursor(cursor string) {
	s.out.add(Op{Op: OpCursor, ID: s.id, Cursor: cursor})
}

func (s *surface) Remove() {
	s.out.add(Op{Op: OpRemove, ID: s.id})
}

// dock tracks the icon boxes the client last reported and the running
// indicators.
type dock struct {
	out        *batch
	icons      map[string]geom.Rect
	indicators map[string]bool
}

func newDock(out *batch) *dock {
	return &dock{out: out, icons: make(map[string]geom.Rect), indicators: make(map[string]bool)}
}

func (d *dock) IconRect(id string) (geom.Rect, bool) {
	r, ok := d.icons[id]
	return r, ok
}

func (d *dock) SetIndicator(id string, on bool) {
	if d.indicators[id] == on {
		return
	}
	d.indicators[id] = on
	d.out.add(Op{Op: OpDock, ID: id, On: &on})
}

func (d *dock) setIcons(icons map[string]geom.Rect) {
	if icons == nil {
		return
	}
	d.icons = icons
}
