// Package tui runs the desktop in a terminal. Windows, gestures and the dock
// behave as in the browser; every terminal cell stands for a block of
// pixels so the same window manager drives both.
package tui

import (
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/sched"
	"github.com/Gaurav-Gosain/webdesk/internal/theme"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
)

// tickInterval drives the desktop's timers and the monitor refresh.
const tickInterval = 50 * time.Millisecond

type tickMsg time.Time

// Model is the Bubble Tea model of a terminal desktop.
type Model struct {
	desk     *desktop.Desktop
	queue    *sched.Queue
	readOnly bool
	width    int
	height   int
	last     time.Time
	hint     string
	quitting bool
	styles   styles
}

// New creates a terminal desktop. opts.Scheduler is replaced by one driven
// by the model's tick and new windows snap to whole cells.
func New(opts desktop.Options) *Model {
	q := sched.NewQueue()
	opts.Scheduler = q
	opts.Snap = geom.Size{Width: CellWidth, Height: CellHeight}
	return &Model{
		desk:     desktop.New(opts),
		queue:    q,
		readOnly: opts.ReadOnly,
		width:    80,
		height:   24,
		styles:   newStyles(theme.Default()),
	}
}

// SetPalette changes the colors of the desktop.
func (m *Model) SetPalette(p theme.Palette) {
	m.styles = newStyles(p)
}

// Desktop returns the model's desktop.
func (m *Model) Desktop() *desktop.Desktop { return m.desk }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the tick.
func (m *Model) Init() tea.Cmd {
	m.resize(m.width, m.height)
	return tick()
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.queue.Advance(now.Sub(m.last))
		}
		m.last = now
		cmd = tick()
	case tea.KeyPressMsg:
		cmd = m.handleKey(msg)
	case tea.MouseClickMsg:
		cmd = m.handleMouseClick(msg)
	case tea.MouseMotionMsg:
		cmd = m.handleMouseMotion(msg)
	case tea.MouseReleaseMsg:
		cmd = m.handleMouseRelease(msg)
	}
	// The terminal renders from the manager's state, so patch ops are
	// dropped.
	m.desk.Flush()
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.desk.SetViewport(viewport(width, height, m.layoutDock()))
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		m.desk.Close()
		return tea.Quit
	case "esc":
		m.desk.Manager().PointerUp()
		return nil
	case "tab":
		m.focusNext()
		return nil
	}

	active := m.desk.Manager().Active()
	switch key {
	case "x":
		m.command("close", active)
	case "m":
		m.command("minimize", active)
	case "f":
		m.command("maximize", active)
	default:
		if n, err := strconv.Atoi(key); err == nil {
			apps := m.desk.Catalog().Apps()
			if n >= 1 && n <= len(apps) {
				m.command("open", apps[n-1].ID)
			}
		}
	}
	return nil
}

// command applies a window command the way a client message would, so
// read-only mode is honoured.
func (m *Model) command(action, id string) {
	if id == "" {
		return
	}
	_ = m.desk.Handle(desktop.CommandMessage{Action: action, ID: id})
}

// focusNext raises the lowest visible window, cycling through the stack.
func (m *Model) focusNext() {
	for _, w := range m.desk.Manager().Windows() {
		if !w.Minimized && !w.Closing {
			m.command("focus", w.ID)
			return
		}
	}
}

// visible returns the windows to draw, bottom to top.
func (m *Model) visible() []wm.WindowInfo {
	all := m.desk.Manager().Windows()
	out := all[:0]
	for _, w := range all {
		if !w.Minimized {
			out = append(out, w)
		}
	}
	return out
}
