package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/sysinfo"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

func newTestModel(t *testing.T, readOnly bool) *Model {
	t.Helper()
	m := New(desktop.Options{
		Logger: log.New(io.Discard),
		Probe: func(context.Context) (sysinfo.Snapshot, error) {
			return sysinfo.Snapshot{CPU: 10, MemTotal: 1 << 30}, nil
		},
		ReadOnly: readOnly,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func click(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func motion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func release(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func rectOf(t *testing.T, m *Model, id string) geom.Rect {
	t.Helper()
	w, ok := m.Desktop().Manager().Window(id)
	if !ok {
		t.Fatalf("window %q not registered", id)
	}
	return w.Rect
}

func TestResizeSetsViewport(t *testing.T) {
	m := newTestModel(t, false)
	v := m.Desktop().Manager().Viewport()
	if v.Width != 960 || v.Height != 640 || v.Origin.Y != CellHeight {
		t.Errorf("viewport = %+v", v)
	}
}

func TestKeysOpenApps(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("4"))

	want := geom.Rect{Left: 40, Top: 32, Width: 360, Height: 240}
	if got := rectOf(t, m, "about"); got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
	if m.Desktop().Manager().Active() != "about" {
		t.Errorf("active = %q", m.Desktop().Manager().Active())
	}

	// Out of range digits are ignored.
	m.Update(key("9"))
	if n := m.Desktop().Manager().Len(); n != 1 {
		t.Errorf("windows = %d, want 1", n)
	}
}

func TestKeysActOnActiveWindow(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		check func(t *testing.T, m *Model)
	}{
		{
			name: "minimize",
			key:  "m",
			check: func(t *testing.T, m *Model) {
				if w, _ := m.Desktop().Manager().Window("about"); !w.Minimized {
					t.Error("window not minimized")
				}
			},
		},
		{
			name: "maximize",
			key:  "f",
			check: func(t *testing.T, m *Model) {
				if w, _ := m.Desktop().Manager().Window("about"); !w.Maximized {
					t.Error("window not maximized")
				}
			},
		},
		{
			name: "close",
			key:  "x",
			check: func(t *testing.T, m *Model) {
				if w, _ := m.Desktop().Manager().Window("about"); !w.Closing {
					t.Error("window not closing")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, false)
			m.Update(key("4"))
			m.Update(key(tt.key))
			tt.check(t, m)
		})
	}
}

func TestTickRemovesClosedWindow(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("4"))
	m.Update(key("x"))

	start := time.Now()
	m.Update(tickMsg(start))
	m.Update(tickMsg(start.Add(100 * time.Millisecond)))
	if _, ok := m.Desktop().Manager().Window("about"); !ok {
		t.Fatal("window removed before the close delay")
	}
	m.Update(tickMsg(start.Add(300 * time.Millisecond)))
	if _, ok := m.Desktop().Manager().Window("about"); ok {
		t.Error("window still registered after the close delay")
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("3"))
	m.Update(key("4"))
	if m.Desktop().Manager().Active() != "about" {
		t.Fatalf("active = %q", m.Desktop().Manager().Active())
	}
	m.Update(key("tab"))
	if got := m.Desktop().Manager().Active(); got != "projects" {
		t.Errorf("active after tab = %q, want projects", got)
	}
}

func TestDockClickOpensApp(t *testing.T) {
	m := newTestModel(t, false)
	items := m.layoutDock()
	m.Update(click(items[2].x+1, m.height-1))

	if _, ok := m.Desktop().Manager().Window("projects"); !ok {
		t.Fatal("projects not opened")
	}
	if !m.Desktop().Indicator("projects") {
		t.Error("dock indicator not set")
	}
}

func TestHeaderDragMovesWindow(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("3")) // projects at cells x 5, y 3

	m.Update(click(20, 4))
	m.Update(motion(30, 8))
	m.Update(release(30, 8))

	want := geom.Rect{Left: 120, Top: 96, Width: 520, Height: 368}
	if got := rectOf(t, m, "projects"); got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
	if g, _ := m.Desktop().Manager().Interaction(); g != wm.GestureNone {
		t.Errorf("gesture = %v after release", g)
	}
}

func TestCornerResizesWindow(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("3"))
	r := toCells(rectOf(t, m, "projects"))

	corner := func(dx, dy int) (int, int) { return r.X + r.W - 1 + dx, r.Y + r.H - 1 + dy }
	m.Update(click(corner(0, 0)))
	m.Update(motion(corner(2, 1)))
	m.Update(release(corner(2, 1)))

	want := geom.Rect{Left: 40, Top: 32, Width: 536, Height: 384}
	if got := rectOf(t, m, "projects"); got != want {
		t.Errorf("rect = %+v, want %+v", got, want)
	}
}

func TestHoverSetsHint(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("4")) // about at cells x 5..49, y 3..17

	m.Update(motion(49, 10))
	if m.hint != "e-resize" {
		t.Errorf("hint at right edge = %q, want e-resize", m.hint)
	}
	m.Update(motion(20, 10))
	if m.hint != "" {
		t.Errorf("hint inside = %q, want none", m.hint)
	}
}

func TestHeaderButtons(t *testing.T) {
	tests := []struct {
		name  string
		col   int
		check func(w wm.WindowInfo) bool
	}{
		{"close", closeButtonCol, func(w wm.WindowInfo) bool { return w.Closing }},
		{"maximize", maximizeButtonCol, func(w wm.WindowInfo) bool { return w.Maximized }},
		{"minimize", minimizeButtonCol, func(w wm.WindowInfo) bool { return w.Minimized }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, false)
			m.Update(key("4"))
			r := toCells(rectOf(t, m, "about"))
			m.Update(click(r.X+r.W-tt.col, r.Y+1))

			if w, _ := m.Desktop().Manager().Window("about"); !tt.check(w) {
				t.Errorf("window = %+v", w)
			}
		})
	}
}

func TestReadOnlyIgnoresInput(t *testing.T) {
	m := newTestModel(t, true)
	m.Update(key("4"))
	items := m.layoutDock()
	m.Update(click(items[0].x, m.height-1))

	if n := m.Desktop().Manager().Len(); n != 0 {
		t.Errorf("windows = %d, want 0", n)
	}
	if !strings.Contains(ansi.Strip(m.View().Content), "read-only") {
		t.Error("top bar does not show read-only")
	}
}

func TestViewShowsWindows(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("4"))

	view := m.View()
	if !view.AltScreen {
		t.Error("view not on the alt screen")
	}
	out := ansi.Strip(view.Content)
	for _, want := range []string{"webdesk", "About", "Terminal", "×"} {
		if !strings.Contains(out, want) {
			t.Errorf("view does not contain %q", want)
		}
	}

	lines := strings.Split(out, "\n")
	if len(lines) != m.height {
		t.Errorf("view has %d lines, want %d", len(lines), m.height)
	}
}

func TestQuitStopsDesktop(t *testing.T) {
	m := newTestModel(t, false)
	m.Update(key("2"))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.View().Content != "" {
		t.Error("view not empty after quit")
	}
}
