package tui

import (
	"math"

	"github.com/Gaurav-Gosain/webdesk/internal/desktop"
	"github.com/Gaurav-Gosain/webdesk/internal/geom"
)

// The desktop works in pixels. A terminal cell stands for a fixed block of
// pixels and a pointer in a cell is reported at the block's centre.
const (
	CellWidth  = 8
	CellHeight = 16
)

// topBarRows is the number of rows above the desktop area.
const topBarRows = 1

// cellRect is a window box in cells.
type cellRect struct {
	X, Y, W, H int
}

func (r cellRect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// pointAt returns the client pixel position of cell (x, y).
func pointAt(x, y int) geom.Point {
	return geom.Point{
		X: float64(x*CellWidth + CellWidth/2),
		Y: float64(y*CellHeight + CellHeight/2),
	}
}

// toCells converts a window rect, relative to the desktop area, to screen
// cells.
func toCells(r geom.Rect) cellRect {
	return cellRect{
		X: int(math.Round(r.Left / CellWidth)),
		Y: int(math.Round(r.Top/CellHeight)) + topBarRows,
		W: max(int(math.Round(r.Width/CellWidth)), 2),
		H: max(int(math.Round(r.Height/CellHeight)), 3),
	}
}

// viewport describes a cols x rows terminal to the desktop, with the dock
// items laid out on the bottom row.
func viewport(cols, rows int, items []dockItem) desktop.ViewportMessage {
	icons := make(map[string]geom.Rect, len(items))
	for _, it := range items {
		icons[it.id] = geom.Rect{
			Left:   float64(it.x * CellWidth),
			Top:    float64((rows - 1) * CellHeight),
			Width:  float64(it.width * CellWidth),
			Height: CellHeight,
		}
	}
	return desktop.ViewportMessage{
		Width:  float64(cols * CellWidth),
		Height: float64(rows * CellHeight),
		AreaY:  topBarRows * CellHeight,
		Icons:  icons,
	}
}
