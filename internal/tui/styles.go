package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	docStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// sourceColors tags each documentation source.
var sourceColors = map[docs.Source]lipgloss.Color{
	docs.SourceMan:      lipgloss.Color("42"),
	docs.SourceHelp:     lipgloss.Color("214"),
	docs.SourceFallback: lipgloss.Color("241"),
	docs.SourceOnline:   lipgloss.Color("33"),
}

// renderSourceBadge renders the documentation source tag.
func renderSourceBadge(source docs.Source) string {
	if source == "" {
		return ""
	}
	color, ok := sourceColors[source]
	if !ok {
		color = lipgloss.Color("250")
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(color).
		Padding(0, 1).
		Render(string(source))
}

// renderTitleBar renders the app name and source tag.
func renderTitleBar(app string, source docs.Source, width int) string {
	if app == "" {
		app = "waiting for focus"
	}
	row := titleStyle.Render(app)
	if badge := renderSourceBadge(source); badge != "" {
		row = lipgloss.JoinHorizontal(lipgloss.Top, row, " ", badge)
	}
	return lipgloss.NewStyle().Width(width).Render(row)
}

// renderStatusBar renders the daemon connection and dock state.
func renderStatusBar(connected bool, side dock.Side, auto bool, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected"}
		if side != "" {
			parts = append(parts, "side:"+string(side))
		}
		if auto {
			parts = append(parts, "auto")
		} else {
			parts = append(parts, "pinned")
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "t/b/l/r: dock side  a: auto  p: pin  /: look up  o: online  v: hide  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
