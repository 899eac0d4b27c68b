package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
	"github.com/charmbracelet/x/ansi"
)

// Header buttons, counted in columns from the window's right edge.
const (
	closeButtonCol    = 2
	maximizeButtonCol = 4
	minimizeButtonCol = 6
)

// dockItem is one app on the dock row.
type dockItem struct {
	id    string
	label string
	x     int
	width int
}

// layoutDock places one item per app on the bottom row, centred.
func (m *Model) layoutDock() []dockItem {
	apps := m.desk.Catalog().Apps()
	items := make([]dockItem, len(apps))
	total := 0
	for i, a := range apps {
		label := " " + a.Icon + " " + a.Title + " "
		items[i] = dockItem{id: a.ID, label: label, width: ansi.StringWidth(label)}
		total += items[i].width
	}
	total += len(items) - 1 // Space between items

	x := max((m.width-total)/2, 0)
	for i := range items {
		items[i].x = x
		x += items[i].width + 1
	}
	return items
}

// handleMouseClick handles mouse click events
func (m *Model) handleMouseClick(msg tea.MouseClickMsg) tea.Cmd {
	mouse := msg.Mouse()
	if mouse.Button != tea.MouseLeft {
		return nil
	}
	x, y := mouse.X, mouse.Y

	// Check if click is in the dock row
	if y == m.height-1 {
		if id := m.findDockItemClicked(x); id != "" {
			m.command("open", id)
		}
		return nil
	}

	id, r := m.findClickedWindow(x, y)
	if id == "" {
		return nil
	}

	// Header row: buttons on the right
	if y == r.Y+1 {
		right := r.X + r.W
		switch x {
		case right - closeButtonCol:
			m.command("close", id)
			return nil
		case right - maximizeButtonCol:
			m.command("maximize", id)
			return nil
		case right - minimizeButtonCol:
			m.command("minimize", id)
			return nil
		}
	}

	if m.readOnly {
		return nil
	}
	region := wm.RegionBody
	if y == r.Y+1 {
		region = wm.RegionHeader
	}
	p := pointAt(x, y)
	m.desk.Manager().PointerDown(wm.MouseAt(p.X, p.Y), id, region)
	return nil
}

// handleMouseMotion drives a held gesture or updates the cursor hint.
func (m *Model) handleMouseMotion(msg tea.MouseMotionMsg) tea.Cmd {
	mouse := msg.Mouse()
	p := pointAt(mouse.X, mouse.Y)
	ev := wm.MouseAt(p.X, p.Y)

	if g, _ := m.desk.Manager().Interaction(); g != wm.GestureNone {
		m.desk.Manager().PointerMove(ev)
		return nil
	}

	m.hint = ""
	if id, _ := m.findClickedWindow(mouse.X, mouse.Y); id != "" {
		if cursor := m.desk.Manager().UpdateCursorHint(ev, id); cursor != "default" {
			m.hint = cursor
		}
	}
	return nil
}

// handleMouseRelease ends any gesture.
func (m *Model) handleMouseRelease(tea.MouseReleaseMsg) tea.Cmd {
	m.desk.Manager().PointerUp()
	return nil
}

// Hit testing helpers

// findClickedWindow finds the topmost visible window at the given cell.
func (m *Model) findClickedWindow(x, y int) (string, cellRect) {
	windows := m.desk.Manager().Windows()
	// Windows are ordered bottom to top.
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if w.Minimized || w.Closing {
			continue
		}
		r := toCells(w.Rect)
		if r.contains(x, y) {
			return w.ID, r
		}
	}
	return "", cellRect{}
}

// findDockItemClicked finds which dock item was clicked
func (m *Model) findDockItemClicked(x int) string {
	for _, it := range m.layoutDock() {
		if x >= it.x && x < it.x+it.width {
			return it.id
		}
	}
	return ""
}
