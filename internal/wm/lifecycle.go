package wm

import (
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/geom"
)

// CloseWindow starts the exit animation of id and removes it once the close
// delay has elapsed. The dock indicator is cleared at once, and closing the
// monitor window stops the monitor task. Repeated calls are no-ops.
func (m *Manager) CloseWindow(id string) {
	w := m.live(id)
	if w == nil {
		return
	}
	w.closing = true
	w.surface.SetState(StateClosing, true)
	if m.opts.Dock != nil {
		m.opts.Dock.SetIndicator(id, false)
	}
	if m.slot.kind != GestureNone && m.slot.id == id {
		m.release()
	}
	if m.active == id {
		m.active = ""
	}
	if w.cleanup != nil {
		w.cleanup.Stop()
		w.cleanup = nil
	}
	if id == MonitorID {
		m.StopMonitor()
	}

	m.sched.AfterFunc(m.opts.CloseDelay, func() {
		// A window re-opened under the same id after an Unregister is a
		// different record.
		if m.windows[id] != w {
			return
		}
		delete(m.windows, id)
		w.surface.Remove()
		m.log.Debug("window removed", "id", id)
	})
}

// MinimizeWindow hides id with a shrink animation aimed at its dock icon,
// or at the bottom centre of the viewport when it has none.
func (m *Manager) MinimizeWindow(id string) {
	w := m.live(id)
	if w == nil || w.minimized {
		return
	}
	if m.slot.kind != GestureNone && m.slot.id == id {
		m.release()
	}

	w.surface.SetTransformOrigin(m.minimizeOrigin(w))
	w.minimized = true
	w.surface.SetState(StateMinimized, true)
	if m.active == id {
		m.active = ""
	}
	w.surface.SetState(StateActive, false)

	w.settle++
	if w.cleanup != nil {
		w.cleanup.Stop()
		w.cleanup = nil
	}
}

// minimizeOrigin is the dock target relative to the window's own top-left
// corner, both expressed in client coordinates.
func (m *Manager) minimizeOrigin(w *window) geom.Point {
	target := geom.DockFallback(m.viewport.Size())
	if m.opts.Dock != nil {
		if icon, ok := m.opts.Dock.IconRect(w.id); ok {
			target = icon.Center()
		}
	}
	return geom.MinimizeOrigin(w.rect.Offset(m.viewport.Origin), target)
}

// RestoreWindow brings id back from the dock and raises it. An id with no
// record is handed to open instead. The restore animation's leftovers are
// cleared after the settle delay unless the window was minimized again in
// the meantime.
func (m *Manager) RestoreWindow(id string, open func(id string)) {
	w, ok := m.windows[id]
	if !ok {
		if open != nil {
			open(id)
		}
		return
	}
	if w.closing {
		return
	}

	w.minimized = false
	w.surface.SetState(StateMinimized, false)
	m.BringToFront(id)

	w.settle++
	gen := w.settle
	if w.cleanup != nil {
		w.cleanup.Stop()
	}
	w.cleanup = m.sched.AfterFunc(m.opts.SettleDelay, func() {
		if m.windows[id] != w || w.settle != gen || w.minimized {
			return
		}
		w.cleanup = nil
		w.surface.ClearTransition()
	})
}

// ToggleMaximize switches id between its normal geometry and the full-area
// layout. Restoring puts back exactly the geometry it had before.
func (m *Manager) ToggleMaximize(id string) {
	w := m.live(id)
	if w == nil {
		return
	}

	if w.maximized {
		w.rect = *w.prevRect
		w.prevRect = nil
		w.maximized = false
		w.surface.SetGeometry(w.rect)
		w.surface.SetState(StateMaximized, false)
		return
	}

	if m.slot.kind != GestureNone && m.slot.id == id {
		m.release()
	}
	prev := w.rect
	w.prevRect = &prev
	w.maximized = true
	w.rect = m.maximizedRect()
	w.surface.SetGeometry(w.rect)
	w.surface.SetState(StateMaximized, true)
	if w.cursor != geom.CursorFor(geom.None) {
		w.cursor = geom.CursorFor(geom.None)
		w.surface.SetCursor(w.cursor)
	}
}

func (m *Manager) maximizedRect() geom.Rect {
	margin := m.opts.DesktopDockMargin
	if m.viewport.Width <= m.opts.MobileBreakpoint {
		margin = m.opts.MobileDockMargin
	}
	return geom.MaximizedRect(m.viewport.Area(), margin)
}

// StartMonitor runs tick every interval until StopMonitor or until the
// monitor window closes. A running monitor task is stopped first, so there
// is never more than one.
func (m *Manager) StartMonitor(interval time.Duration, tick func()) {
	m.StopMonitor()
	m.monitor = m.sched.Every(interval, tick)
	m.log.Debug("monitor started", "interval", interval)
}

// StopMonitor stops the monitor task if one is running.
func (m *Manager) StopMonitor() {
	if m.monitor == nil {
		return
	}
	m.monitor.Stop()
	m.monitor = nil
	m.log.Debug("monitor stopped")
}

// MonitorRunning reports whether the monitor task is scheduled.
func (m *Manager) MonitorRunning() bool { return m.monitor != nil }
