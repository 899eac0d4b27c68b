package desktop

import (
	"errors"
	"fmt"

	"github.com/Gaurav-Gosain/webdesk/internal/wm"
	"github.com/agnivade/levenshtein"
)

// ErrUnknownApp is returned when an app id is not in the catalog.
var ErrUnknownApp = errors.New("unknown app")

// App is a launchable window type.
type App struct {
	ID     string
	Title  string
	Icon   string
	Width  float64
	Height float64
	// Content returns the static body of the window. Nil for apps whose
	// content is produced elsewhere, such as the monitor.
	Content func() []string
}

// Config returns the window configuration for the app.
func (a App) Config() wm.WindowConfig {
	return wm.WindowConfig{Title: a.Title, Kind: a.ID, Width: a.Width, Height: a.Height}
}

// Catalog is an ordered set of apps. The order is the dock order.
type Catalog struct {
	apps  []App
	index map[string]int
}

// NewCatalog builds a catalog. Later duplicates replace earlier ones in
// place.
func NewCatalog(apps ...App) *Catalog {
	c := &Catalog{index: make(map[string]int, len(apps))}
	for _, a := range apps {
		if i, ok := c.index[a.ID]; ok {
			c.apps[i] = a
			continue
		}
		c.index[a.ID] = len(c.apps)
		c.apps = append(c.apps, a)
	}
	return c
}

// DefaultCatalog returns the built-in apps.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		App{ID: "terminal", Title: "Terminal", Icon: ">_", Width: 640, Height: 400, Content: terminalContent},
		App{ID: wm.MonitorID, Title: "System Monitor", Icon: "◔", Width: 420, Height: 300},
		App{ID: "projects", Title: "Projects", Icon: "▤", Width: 520, Height: 380, Content: projectsContent},
		App{ID: "about", Title: "About", Icon: "ⓘ", Width: 360, Height: 240, Content: aboutContent},
	)
}

// Apps returns the apps in dock order.
func (c *Catalog) Apps() []App {
	out := make([]App, len(c.apps))
	copy(out, c.apps)
	return out
}

// Lookup returns the app with the given id. Unknown ids return an error
// wrapping ErrUnknownApp that names the closest match, if any.
func (c *Catalog) Lookup(id string) (App, error) {
	if i, ok := c.index[id]; ok {
		return c.apps[i], nil
	}
	if s := c.Suggest(id); s != "" {
		return App{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownApp, id, s)
	}
	return App{}, fmt.Errorf("%w %q", ErrUnknownApp, id)
}

// Suggest returns the app id closest to id, or "" when nothing is within
// two edits.
func (c *Catalog) Suggest(id string) string {
	best, bestDist := "", 3
	for _, a := range c.apps {
		if d := levenshtein.ComputeDistance(id, a.ID); d < bestDist {
			best, bestDist = a.ID, d
		}
	}
	return best
}

func terminalContent() []string {
	return []string{
		"webdesk terminal",
		"",
		"$ echo $SHELL",
		"/bin/sh",
		"$ _",
	}
}

func projectsContent() []string {
	return []string{
		"Projects",
		"",
		"  webdesk     browser desktop window manager",
		"  geom        edge zones and resize math",
		"  sched       cancellable timers on one loop",
	}
}

func aboutContent() []string {
	return []string{
		"webdesk",
		"",
		"Drag a window by its title bar.",
		"Resize from any edge or corner.",
		"Double-click the title bar to maximize.",
	}
}
