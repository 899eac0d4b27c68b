package wm

import (
	"io"
	"sort"
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/sched"
	"github.com/charmbracelet/log"
)

// Default tuning values.
const (
	DefaultEdgeThreshold     = 10
	DefaultMinWidth          = 300
	DefaultMinHeight         = 200
	DefaultCloseDelay        = 250 * time.Millisecond
	DefaultSettleDelay       = 450 * time.Millisecond
	DefaultMobileBreakpoint  = 768
	DefaultMobileDockMargin  = 60
	DefaultDesktopDockMargin = 80
)

// Options configures a Manager. Zero fields take the defaults above.
type Options struct {
	Logger *log.Logger
	// Scheduler runs delayed effects. It must deliver callbacks on the
	// goroutine that drives the manager. Defaults to a sched.Queue, which
	// only fires when advanced.
	Scheduler sched.Scheduler
	Dock      Dock

	// EdgeThreshold is the resize zone along every edge. A mouse press on
	// the header inside the top zone resizes rather than drags.
	EdgeThreshold float64
	MinSize       geom.Size
	CloseDelay    time.Duration
	SettleDelay   time.Duration

	MobileBreakpoint  float64
	MobileDockMargin  float64
	DesktopDockMargin float64
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Scheduler == nil {
		o.Scheduler = sched.NewQueue()
	}
	if o.EdgeThreshold <= 0 {
		o.EdgeThreshold = DefaultEdgeThreshold
	}
	if o.MinSize.Width <= 0 {
		o.MinSize.Width = DefaultMinWidth
	}
	if o.MinSize.Height <= 0 {
		o.MinSize.Height = DefaultMinHeight
	}
	if o.CloseDelay <= 0 {
		o.CloseDelay = DefaultCloseDelay
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.MobileBreakpoint <= 0 {
		o.MobileBreakpoint = DefaultMobileBreakpoint
	}
	if o.MobileDockMargin <= 0 {
		o.MobileDockMargin = DefaultMobileDockMargin
	}
	if o.DesktopDockMargin <= 0 {
		o.DesktopDockMargin = DefaultDesktopDockMargin
	}
}

type window struct {
	id        string
	surface   Surface
	config    WindowConfig
	rect      geom.Rect
	prevRect  *geom.Rect
	z         int
	maximized bool
	minimized bool
	closing   bool
	cursor    string

	// settle is bumped by every minimize and restore; a restore cleanup
	// only applies if it still matches.
	settle  uint64
	cleanup sched.Task
}

// interaction is the single gesture slot shared by drag and resize.
type interaction struct {
	kind         Gesture
	id           string
	offset       geom.Point
	dir          geom.Direction
	startRect    geom.Rect
	startPointer geom.Point
}

// Manager owns the window registry and every operation that mutates it.
type Manager struct {
	opts     Options
	log      *log.Logger
	sched    sched.Scheduler
	windows  map[string]*window
	z        int
	active   string
	slot     interaction
	viewport Viewport
	monitor  sched.Task
}

// New returns an empty manager.
func New(opts Options) *Manager {
	opts.setDefaults()
	return &Manager{
		opts:    opts,
		log:     opts.Logger,
		sched:   opts.Scheduler,
		windows: make(map[string]*window),
	}
}

// Options returns the effective options.
func (m *Manager) Options() Options { return m.opts }

// Register adds a window in the open state. Its geometry is read from the
// surface. Registering an id that is already present is a caller defect: it
// is logged and the registry is left unchanged.
func (m *Manager) Register(id string, s Surface, cfg WindowConfig) error {
	if _, ok := m.windows[id]; ok {
		m.log.Warn("duplicate window registration", "id", id)
		return ErrDuplicateWindow
	}
	m.windows[id] = &window{
		id:      id,
		surface: s,
		config:  cfg,
		rect:    s.Bounds(),
		cursor:  geom.CursorFor(geom.None),
	}
	m.log.Debug("window registered", "id", id, "kind", cfg.Kind)
	return nil
}

// Unregister removes a window record without touching its surface.
func (m *Manager) Unregister(id string) {
	w, ok := m.windows[id]
	if !ok {
		return
	}
	if m.slot.id == id {
		m.release()
	}
	if m.active == id {
		m.active = ""
	}
	if w.cleanup != nil {
		w.cleanup.Stop()
		w.cleanup = nil
	}
	delete(m.windows, id)
}

// live returns the record for id unless it is absent or closing.
func (m *Manager) live(id string) *window {
	w, ok := m.windows[id]
	if !ok || w.closing {
		return nil
	}
	return w
}

// BringToFront raises id above every other window and makes it the only
// active one.
func (m *Manager) BringToFront(id string) {
	w := m.live(id)
	if w == nil {
		return
	}
	m.z++
	w.z = m.z
	w.surface.SetZIndex(w.z)

	if m.active != id {
		if prev, ok := m.windows[m.active]; ok {
			prev.surface.SetState(StateActive, false)
		}
		m.active = id
	}
	w.surface.SetState(StateActive, true)
}

// Window returns a snapshot of id.
func (m *Manager) Window(id string) (WindowInfo, bool) {
	w, ok := m.windows[id]
	if !ok {
		return WindowInfo{}, false
	}
	return m.info(w), true
}

// Windows returns every window ordered bottom to top.
func (m *Manager) Windows() []WindowInfo {
	out := make([]WindowInfo, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, m.info(w))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Active returns the id of the active window, or "".
func (m *Manager) Active() string { return m.active }

// Len returns the number of registered windows, closing ones included.
func (m *Manager) Len() int { return len(m.windows) }

// Interaction reports the gesture holding the slot and its target.
func (m *Manager) Interaction() (Gesture, string) {
	return m.slot.kind, m.slot.id
}

// Viewport returns the last viewport passed to SetViewport.
func (m *Manager) Viewport() Viewport { return m.viewport }

// SetViewport records the page geometry and re-lays out maximized windows
// for the new size.
func (m *Manager) SetViewport(v Viewport) {
	m.viewport = v
	full := m.maximizedRect()
	for _, w := range m.windows {
		if w.maximized && !w.closing && w.rect != full {
			w.rect = full
			w.surface.SetGeometry(full)
		}
	}
}

func (m *Manager) info(w *window) WindowInfo {
	info := WindowInfo{
		ID:        w.id,
		Config:    w.config,
		Rect:      w.rect,
		Z:         w.z,
		Active:    m.active == w.id,
		Maximized: w.maximized,
		Minimized: w.minimized,
		Closing:   w.closing,
		Cursor:    w.cursor,
	}
	if w.prevRect != nil {
		prev := *w.prevRect
		info.PrevRect = &prev
	}
	return info
}
