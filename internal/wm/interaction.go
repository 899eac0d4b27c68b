package wm

import (
	"math"

	"github.com/Gaurav-Gosain/webdesk/internal/geom"
)

// There is one interaction slot for the whole manager. A drag or resize
// that starts while the slot is held is rejected, and the slot is freed on
// pointer release or when its window closes, minimizes or maximizes.

// clientRect returns the window box in client coordinates.
func (m *Manager) clientRect(w *window) geom.Rect {
	return w.rect.Offset(m.viewport.Origin)
}

// gestureTarget returns the record for id if a gesture may start on it.
func (m *Manager) gestureTarget(kind Gesture, id string) *window {
	w := m.live(id)
	switch {
	case w == nil:
		m.log.Debug("gesture rejected", "gesture", kind, "id", id, "reason", "no such window")
	case w.maximized:
		m.log.Debug("gesture rejected", "gesture", kind, "id", id, "reason", "maximized")
	case w.minimized:
		m.log.Debug("gesture rejected", "gesture", kind, "id", id, "reason", "minimized")
	case m.slot.kind != GestureNone:
		m.log.Debug("gesture rejected", "gesture", kind, "id", id, "reason", "busy", "holder", m.slot.id)
	default:
		return w
	}
	return nil
}

// StartDrag begins moving id. Mouse contacts in the top resize zone of the
// window are left to resize. It reports whether the drag started.
func (m *Manager) StartDrag(ev Event, id string) bool {
	w := m.gestureTarget(GestureDrag, id)
	if w == nil {
		return false
	}
	p, ok := ev.Contact()
	if !ok {
		return false
	}
	box := m.clientRect(w)
	if ev.Source != SourceTouch && geom.Classify(p, box, m.opts.EdgeThreshold).Has(geom.North) {
		return false
	}

	m.slot = interaction{
		kind:   GestureDrag,
		id:     id,
		offset: p.Sub(box.TopLeft()),
	}
	w.surface.SetState(StateDragging, true)
	m.BringToFront(id)
	return true
}

// StartResize begins resizing id from the edges the contact is near. It
// reports whether the resize started.
func (m *Manager) StartResize(ev Event, id string) bool {
	p, ok := ev.Contact()
	if !ok {
		return false
	}
	w, ok := m.windows[id]
	if !ok {
		return false
	}
	dir := geom.Classify(p, m.clientRect(w), m.opts.EdgeThreshold)
	if dir == geom.None {
		return false
	}
	if m.gestureTarget(GestureResize, id) == nil {
		return false
	}

	m.slot = interaction{
		kind:         GestureResize,
		id:           id,
		dir:          dir,
		startRect:    w.rect,
		startPointer: p,
	}
	w.surface.SetState(StateResizing, true)
	return true
}

// PointerDown routes a press on window id: a press on the header tries a
// drag, anything else tries a resize, and the window is raised either way.
func (m *Manager) PointerDown(ev Event, id string, region Region) Gesture {
	if region == RegionHeader && m.StartDrag(ev, id) {
		return GestureDrag
	}
	started := m.StartResize(ev, id)
	m.BringToFront(id)
	if started {
		return GestureResize
	}
	return GestureNone
}

// PointerMove applies the held gesture to its window.
func (m *Manager) PointerMove(ev Event) {
	if m.slot.kind == GestureNone {
		return
	}
	p, ok := ev.Contact()
	if !ok {
		return
	}
	w, ok := m.windows[m.slot.id]
	if !ok {
		m.slot = interaction{}
		return
	}

	switch m.slot.kind {
	case GestureDrag:
		origin := m.viewport.Origin
		w.rect.Left = p.X - m.slot.offset.X - origin.X
		w.rect.Top = math.Max(0, p.Y-m.slot.offset.Y-origin.Y)
	case GestureResize:
		d := p.Sub(m.slot.startPointer)
		w.rect = geom.ResizeRect(m.slot.startRect, m.slot.dir, d.X, d.Y, m.opts.MinSize)
	}
	w.surface.SetGeometry(w.rect)
}

// PointerUp ends the held gesture, wherever the pointer is.
func (m *Manager) PointerUp() {
	m.release()
}

func (m *Manager) release() {
	if m.slot.kind == GestureNone {
		return
	}
	if w, ok := m.windows[m.slot.id]; ok {
		switch m.slot.kind {
		case GestureDrag:
			w.surface.SetState(StateDragging, false)
		case GestureResize:
			w.surface.SetState(StateResizing, false)
		}
	}
	m.slot = interaction{}
}

// UpdateCursorHint sets the cursor of id for a pointer hovering at ev and
// returns it. Windows that cannot be resized always get the default
// cursor. While a gesture is held the cursor is left as it is.
func (m *Manager) UpdateCursorHint(ev Event, id string) string {
	w, ok := m.windows[id]
	if !ok {
		return geom.CursorFor(geom.None)
	}
	if m.slot.kind != GestureNone {
		return w.cursor
	}

	cursor := geom.CursorFor(geom.None)
	if p, ok := ev.Contact(); ok && !w.closing && !w.maximized && !w.minimized {
		cursor = geom.CursorHint(p, m.clientRect(w), m.opts.EdgeThreshold)
	}
	if cursor != w.cursor {
		w.cursor = cursor
		w.surface.SetCursor(cursor)
	}
	return cursor
}
