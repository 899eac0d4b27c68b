package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/webdesk/internal/theme"
	"github.com/Gaurav-Gosain/webdesk/internal/wm"
	"github.com/charmbracelet/x/ansi"
)

// Z index of the chrome above every window.
const zChrome = 1 << 30

// styles are the lipgloss styles of the desktop chrome.
type styles struct {
	activeBorder   lipgloss.Style
	inactiveBorder lipgloss.Style
	closing        lipgloss.Style
	title          lipgloss.Style
	bar            lipgloss.Style
	dock           lipgloss.Style
	running        lipgloss.Style
	hint           lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	dock := lipgloss.NewStyle().Background(p.Dock).Foreground(p.DockText)
	return styles{
		activeBorder:   lipgloss.NewStyle().Foreground(p.BorderActive),
		inactiveBorder: lipgloss.NewStyle().Foreground(p.BorderInactive),
		closing:        lipgloss.NewStyle().Faint(true),
		title:          lipgloss.NewStyle().Bold(true),
		bar:            lipgloss.NewStyle().Background(p.Bar).Foreground(p.BarText),
		dock:           dock,
		running:        dock.Bold(true).Underline(true),
		hint:           lipgloss.NewStyle().Foreground(p.Hint),
	}
}

// View renders the desktop.
func (m *Model) View() tea.View {
	var view tea.View
	if m.quitting {
		return view
	}
	view.SetContent(lipgloss.Sprint(m.canvas().Render()))
	view.AltScreen = true
	view.MouseMode = tea.MouseModeAllMotion
	return view
}

func (m *Model) canvas() *lipgloss.Canvas {
	var layers []*lipgloss.Layer
	for _, w := range m.visible() {
		r := toCells(w.Rect)
		layers = append(layers, lipgloss.NewLayer(m.renderWindow(w, r)).X(r.X).Y(r.Y).Z(w.Z).ID(w.ID))
	}
	layers = append(layers,
		lipgloss.NewLayer(m.renderTopBar()).X(0).Y(0).Z(zChrome),
		lipgloss.NewLayer(m.renderDock()).X(0).Y(m.height-1).Z(zChrome),
	)

	canvas := lipgloss.NewCanvas(m.width, m.height)
	canvas.Compose(lipgloss.NewCompositor(layers...))
	return canvas
}

// renderWindow draws a window box: a top border, a header row with the
// title and buttons, the content and a bottom border.
func (m *Model) renderWindow(w wm.WindowInfo, r cellRect) string {
	border := m.styles.inactiveBorder
	if w.Active {
		border = m.styles.activeBorder
	}
	inner := max(r.W-2, 0)

	lines := make([]string, 0, r.H)
	lines = append(lines, border.Render("╭"+strings.Repeat("─", inner)+"╮"))

	buttons := "_ □ ×"
	titleWidth := max(inner-ansi.StringWidth(buttons)-1, 0)
	title := ansi.Truncate(" "+w.Config.Title, titleWidth, "…")
	title += strings.Repeat(" ", titleWidth-ansi.StringWidth(title))
	header := m.styles.title.Render(title) + " " + buttons
	if inner < ansi.StringWidth(buttons)+1 {
		header = ansi.Truncate(" "+w.Config.Title, inner, "")
		header += strings.Repeat(" ", inner-ansi.StringWidth(header))
	}
	lines = append(lines, border.Render("│")+header+border.Render("│"))

	content := m.desk.Content(w.ID)
	for i := 0; i < r.H-3; i++ {
		line := ""
		if i < len(content) {
			line = " " + content[i]
		}
		line = ansi.Truncate(line, inner, "")
		line += strings.Repeat(" ", inner-ansi.StringWidth(line))
		lines = append(lines, border.Render("│")+line+border.Render("│"))
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", inner)+"╯"))

	box := strings.Join(lines, "\n")
	if w.Closing {
		box = m.styles.closing.Render(box)
	}
	return box
}

func (m *Model) renderTopBar() string {
	left := " webdesk"
	if active, ok := m.desk.Manager().Window(m.desk.Manager().Active()); ok {
		left += " │ " + active.Config.Title
	}
	right := "1-4 open  tab focus  f max  m min  x close  q quit "
	if m.readOnly {
		right = "read-only  q quit "
	}
	if m.hint != "" {
		right = m.styles.hint.Render(m.hint) + "  " + right
	}
	gap := max(m.width-ansi.StringWidth(left)-ansi.StringWidth(right), 1)
	return m.styles.bar.Render(ansi.Truncate(left+strings.Repeat(" ", gap)+right, m.width, ""))
}

func (m *Model) renderDock() string {
	var b strings.Builder
	col := 0
	for i, it := range m.layoutDock() {
		if i == 0 {
			b.WriteString(m.styles.dock.Render(strings.Repeat(" ", it.x)))
		} else {
			b.WriteString(m.styles.dock.Render(" "))
		}
		style := m.styles.dock
		if m.desk.Indicator(it.id) {
			style = m.styles.running
		}
		b.WriteString(style.Render(it.label))
		col = it.x + it.width
	}
	if rest := m.width - col; rest > 0 {
		b.WriteString(m.styles.dock.Render(strings.Repeat(" ", rest)))
	}
	return ansi.Truncate(b.String(), m.width, "")
}
