// Package theme provides the colors of the terminal desktop. Without a theme
// the built-in palette is used; with one, the colors come from a bubbletint
// terminal theme.
package theme

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"
)

// ErrUnknownTheme is returned for a theme id missing from the registry.
var ErrUnknownTheme = errors.New("unknown theme")

var registryOnce sync.Once

func registry() {
	registryOnce.Do(func() { tint.NewDefaultRegistry() })
}

// Palette holds the colors of the desktop chrome.
type Palette struct {
	BorderActive   color.Color
	BorderInactive color.Color
	Bar            color.Color
	BarText        color.Color
	Dock           color.Color
	DockText       color.Color
	Hint           color.Color
}

// Default returns the built-in palette.
func Default() Palette {
	return Palette{
		BorderActive:   lipgloss.Color("#89b4fa"),
		BorderInactive: lipgloss.Color("#585b70"),
		Bar:            lipgloss.Color("#181825"),
		BarText:        lipgloss.Color("#cdd6f4"),
		Dock:           lipgloss.Color("#313244"),
		DockText:       lipgloss.Color("#cdd6f4"),
		Hint:           lipgloss.Color("#f9e2af"),
	}
}

// Load returns the palette of theme id. An empty id selects the built-in
// palette.
func Load(id string) (Palette, error) {
	if id == "" {
		return Default(), nil
	}
	registry()
	if !tint.SetTintID(id) {
		return Default(), fmt.Errorf("%w %q", ErrUnknownTheme, id)
	}
	return fromTint(tint.Current()), nil
}

// IDs lists the available theme ids.
func IDs() []string {
	registry()
	return tint.TintIDs()
}

func fromTint(t *tint.Tint) Palette {
	return Palette{
		BorderActive:   t.BrightCyan,
		BorderInactive: t.BrightBlack,
		Bar:            t.Bg,
		BarText:        t.Fg,
		Dock:           t.Black,
		DockText:       t.White,
		Hint:           t.Yellow,
	}
}
