// Package desktop binds the window manager to a presentation: it owns the
// app catalog and dock, turns client messages into window manager calls and
// records the resulting effects as patch ops for the client to apply.
package desktop

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Gaurav-Gosain/webdesk/internal/config"
	"github.com/Gaurav-Gosain/webdesk/internal/geom"
	"github.com/Gaurav-Gosain/webdesk/internal/sched"
	"github.com/Gaurav-Gosain/webdesk/internal/sysinfo"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
	"github.com/charmbracelet/log"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "desktop",
	})
}

// SetLogLevel sets the logging level for the desktop package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// cascadeOrigin is where the first window of a cascade opens.
const cascadeOrigin = 40

// cascadeLength is the number of windows before the cascade wraps.
const cascadeLength = 8

// sampleTimeout bounds a single monitor sample.
const sampleTimeout = 2 * time.Second

// Options configures a Desktop.
type Options struct {
	Logger *log.Logger
	// Scheduler must deliver callbacks on the goroutine that drives the
	// desktop. Defaults to a sched.Queue.
	Scheduler sched.Scheduler
	Catalog   *Catalog
	Settings  config.DesktopConfig
	Monitor   config.MonitorConfig
	// Probe samples the host for the monitor window. Defaults to
	// sysinfo.HostProbe.
	Probe    sysinfo.Probe
	ReadOnly bool
	// Snap, when set, aligns new windows to a grid of this cell size.
	Snap geom.Size
}

// Desktop is one user's desktop. Like the window manager it wraps, it is
// single-writer.
type Desktop struct {
	opts    Options
	log     *log.Logger
	out     *batch
	dock    *dock
	wm      *wm.Manager
	catalog *Catalog
	sampler *sysinfo.Sampler
	content map[string][]string
	cascade int
}

// New creates an empty desktop.
func New(opts Options) *Desktop {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Scheduler == nil {
		opts.Scheduler = sched.NewQueue()
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	zero := config.DesktopConfig{}
	if opts.Settings == zero {
		opts.Settings = config.DefaultConfig().Desktop
	}
	if opts.Monitor.IntervalMS <= 0 {
		opts.Monitor.IntervalMS = config.DefaultConfig().Monitor.IntervalMS
	}

	out := &batch{}
	d := &Desktop{
		opts:    opts,
		log:     opts.Logger,
		out:     out,
		dock:    newDock(out),
		catalog: opts.Catalog,
		sampler: sysinfo.NewSampler(opts.Monitor.History, opts.Probe),
		content: make(map[string][]string),
	}
	s := opts.Settings
	d.wm = wm.New(wm.Options{
		Logger:            opts.Logger,
		Scheduler:         opts.Scheduler,
		Dock:              d.dock,
		EdgeThreshold:     s.EdgeThreshold,
		MinSize:           geom.Size{Width: s.MinWidth, Height: s.MinHeight},
		CloseDelay:        s.CloseDelay(),
		SettleDelay:       s.SettleDelay(),
		MobileBreakpoint:  s.MobileBreakpoint,
		MobileDockMargin:  s.MobileDockMargin,
		DesktopDockMargin: s.DesktopDockMargin,
	})
	return d
}

// Manager returns the window manager.
func (d *Desktop) Manager() *wm.Manager { return d.wm }

// Catalog returns the app catalog.
func (d *Desktop) Catalog() *Catalog { return d.catalog }

// Hello returns the options sent to a client when its session starts.
func (d *Desktop) Hello() OptionsMessage {
	apps := d.catalog.Apps()
	info := make([]AppInfo, len(apps))
	for i, a := range apps {
		info[i] = AppInfo{ID: a.ID, Title: a.Title, Icon: a.Icon}
	}
	return OptionsMessage{
		ReadOnly:      d.opts.ReadOnly,
		Apps:          info,
		EdgeThreshold: d.wm.Options().EdgeThreshold,
	}
}

// Content returns the body lines of window id.
func (d *Desktop) Content(id string) []string { return d.content[id] }

// Indicator reports whether the dock shows id as running.
func (d *Desktop) Indicator(id string) bool { return d.dock.indicators[id] }

// Flush returns and clears the ops recorded since the last flush.
func (d *Desktop) Flush() []Op { return d.out.take() }

// SetViewport records the page layout.
func (d *Desktop) SetViewport(v ViewportMessage) {
	d.dock.setIcons(v.Icons)
	d.wm.SetViewport(v.Viewport())
}

// Open shows app id: a minimized window is restored, an open one raised,
// and an absent one launched.
func (d *Desktop) Open(id string) error {
	app, err := d.catalog.Lookup(id)
	if err != nil {
		return err
	}
	d.wm.RestoreWindow(id, func(string) { d.launch(app) })
	return nil
}

// Handle applies a decoded client message. Read-only desktops only accept
// viewport updates.
func (d *Desktop) Handle(msg Message) error {
	switch m := msg.(type) {
	case ViewportMessage:
		d.SetViewport(m)
	case PointerMessage:
		if d.opts.ReadOnly {
			return nil
		}
		d.pointer(m)
	case CommandMessage:
		if d.opts.ReadOnly {
			return nil
		}
		return d.command(m)
	}
	return nil
}

func (d *Desktop) pointer(m PointerMessage) {
	ev := m.Event()
	switch m.Kind {
	case "down":
		d.wm.PointerDown(ev, m.ID, m.WindowRegion())
	case "move":
		d.wm.PointerMove(ev)
	case "up":
		d.wm.PointerUp()
	case "hover":
		d.wm.UpdateCursorHint(ev, m.ID)
	default:
		d.log.Debug("unknown pointer kind", "kind", m.Kind)
	}
}

func (d *Desktop) command(m CommandMessage) error {
	switch m.Action {
	case "open", "restore":
		return d.Open(m.ID)
	case "close":
		d.wm.CloseWindow(m.ID)
	case "minimize":
		d.wm.MinimizeWindow(m.ID)
	case "maximize":
		d.wm.ToggleMaximize(m.ID)
	case "focus":
		d.wm.BringToFront(m.ID)
	default:
		return fmt.Errorf("unknown command %q", m.Action)
	}
	return nil
}

// launch creates the window of app, cascading it from the previous one.
func (d *Desktop) launch(app App) {
	r := d.place(app)
	s := newSurface(app.ID, r, d.out)
	d.out.add(Op{Op: OpCreate, ID: app.ID, Title: app.Title, Kind: app.ID, Rect: &r})
	if err := d.wm.Register(app.ID, s, app.Config()); err != nil {
		d.log.Warn("failed to open window", "id", app.ID, "err", err)
		return
	}

	if app.Content != nil {
		d.setContent(app.ID, app.Content())
	}
	d.wm.BringToFront(app.ID)
	d.dock.SetIndicator(app.ID, true)

	if app.ID == wm.MonitorID {
		d.sampleMonitor()
		d.wm.StartMonitor(d.opts.Monitor.Interval(), d.sampleMonitor)
	}
	d.log.Debug("window opened", "id", app.ID, "rect", r)
}

// place sizes the window to fit the desktop area and offsets it along the
// cascade.
func (d *Desktop) place(app App) geom.Rect {
	area := d.wm.Viewport().Area()
	r := geom.Rect{Width: app.Width, Height: app.Height}
	if area.Width > 0 {
		r.Width = min(r.Width, area.Width)
	}
	if area.Height > 0 {
		r.Height = min(r.Height, area.Height)
	}

	offset := cascadeOrigin + float64(d.cascade%cascadeLength)*d.opts.Settings.CascadeStep
	d.cascade++
	r.Left, r.Top = offset, offset
	if area.Width > 0 {
		r.Left = geom.Clamp(r.Left, 0, area.Width-r.Width)
	}
	if area.Height > 0 {
		r.Top = geom.Clamp(r.Top, 0, area.Height-r.Height)
	}
	if snap := d.opts.Snap; snap.Width > 0 && snap.Height > 0 {
		r.Left = math.Floor(r.Left/snap.Width) * snap.Width
		r.Width = math.Floor(r.Width/snap.Width) * snap.Width
		r.Top = math.Floor(r.Top/snap.Height) * snap.Height
		r.Height = math.Floor(r.Height/snap.Height) * snap.Height
	}
	return r
}

func (d *Desktop) setContent(id string, lines []string) {
	d.content[id] = lines
	d.out.add(Op{Op: OpContent, ID: id, Lines: lines})
}

func (d *Desktop) sampleMonitor() {
	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()
	if _, err := d.sampler.Sample(ctx); err != nil {
		d.log.Debug("partial monitor sample", "err", err)
	}
	d.setContent(wm.MonitorID, d.sampler.Lines())
}

// Close stops the desktop's periodic work.
func (d *Desktop) Close() {
	d.wm.StopMonitor()
}
