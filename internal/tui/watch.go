// Package tui holds wingman's terminal interfaces: the panel renderer
// behind `wingman watch` and the settings form behind `wingman config edit`.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/panel"
)

// Daemon is the part of the IPC client the panel renderer uses.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Watch(ctx context.Context, fn func(panel.Event)) error
	SetSide(side dock.Side) (*ipc.PreferenceData, error)
	ToggleAuto() (*ipc.PreferenceData, error)
	DragStart() (*ipc.PreferenceData, error)
	Lookup(name string, online bool) (*ipc.LookupData, error)
	ToggleVisible() (*ipc.VisibleData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Messages fed into the model.
type (
	eventMsg      panel.Event
	streamEndMsg  struct{ err error }
	statusMsg     *ipc.StatusData
	preferenceMsg *ipc.PreferenceData
	errMsg        struct{ err error }
)

// watchModel renders the panel from the daemon's event stream.
type watchModel struct {
	daemon Daemon

	app       string
	text      string
	source    docs.Source
	side      dock.Side
	auto      bool
	visible   bool
	connected bool
	lastError string

	viewport  viewport.Model
	input     textinput.Model
	searching bool

	width  int
	height int
}

func newWatchModel(d Daemon) watchModel {
	ti := textinput.New()
	ti.Placeholder = "command name, e.g. tar"
	ti.Prompt = "look up: "
	ti.CharLimit = 128

	return watchModel{
		daemon:   d,
		side:     dock.Top,
		auto:     true,
		visible:  true,
		viewport: viewport.New(0, 0),
		input:    ti,
	}
}

// Init implements tea.Model.
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(panel.Title), m.fetchStatus)
}

func (m watchModel) fetchStatus() tea.Msg {
	status, err := m.daemon.GetStatus()
	if err != nil {
		return errMsg{err}
	}
	return statusMsg(status)
}

// prefCmd runs a preference-changing call off the UI goroutine.
func prefCmd(call func() (*ipc.PreferenceData, error)) tea.Cmd {
	return func() tea.Msg {
		pref, err := call()
		if err != nil {
			return errMsg{err}
		}
		return preferenceMsg(pref)
	}
}

func (m watchModel) lookupCmd(name string, online bool) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.daemon.Lookup(name, online); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m watchModel) toggleVisibleCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.daemon.ToggleVisible(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// Update implements tea.Model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case eventMsg:
		m.connected = true
		m.apply(panel.Event(msg))
		return m, nil

	case statusMsg:
		m.connected = true
		m.side = msg.Side
		m.auto = msg.AutoPosition
		m.visible = msg.Visible
		return m, nil

	case preferenceMsg:
		m.side = msg.Side
		m.auto = msg.AutoPosition
		m.lastError = ""
		return m, nil

	case errMsg:
		m.lastError = msg.err.Error()
		return m, nil

	case streamEndMsg:
		m.connected = false
		if msg.err != nil {
			m.lastError = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearching(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "t":
			return m, prefCmd(func() (*ipc.PreferenceData, error) { return m.daemon.SetSide(dock.Top) })
		case "b":
			return m, prefCmd(func() (*ipc.PreferenceData, error) { return m.daemon.SetSide(dock.Bottom) })
		case "l":
			return m, prefCmd(func() (*ipc.PreferenceData, error) { return m.daemon.SetSide(dock.Left) })
		case "r":
			return m, prefCmd(func() (*ipc.PreferenceData, error) { return m.daemon.SetSide(dock.Right) })
		case "a":
			return m, prefCmd(m.daemon.ToggleAuto)
		case "p":
			return m, prefCmd(m.daemon.DragStart)
		case "o":
			return m, m.lookupCmd(m.app, true)
		case "v":
			return m, m.toggleVisibleCmd()
		case "/":
			m.searching = true
			m.input.Reset()
			return m, m.input.Focus()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m watchModel) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		m.searching = false
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		return m, m.lookupCmd(name, false)
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply folds one surface command into the model.
func (m *watchModel) apply(ev panel.Event) {
	switch ev.Kind {
	case panel.EventApp:
		m.app = ev.App
	case panel.EventDocumentation:
		m.text = ev.Text
		m.source = ev.Source
		m.setContent()
		m.viewport.GotoTop()
	case panel.EventMove:
		if ev.Side != "" {
			m.side = ev.Side
		}
	case panel.EventVisible:
		if ev.Visible != nil {
			m.visible = *ev.Visible
		}
	}
}

// Fixed rows: title, status, help, and the doc box border.
const chromeHeight = 5

func (m *watchModel) resize() {
	m.viewport.Width = max(m.width-2, 1)
	m.viewport.Height = max(m.height-chromeHeight, 1)
	m.input.Width = max(m.width-len(m.input.Prompt)-2, 1)
	m.setContent()
}

func (m *watchModel) setContent() {
	text := m.text
	if text == "" {
		text = dimStyle.Render("No documentation yet.")
	}
	if m.viewport.Width > 0 {
		text = lipgloss.NewStyle().Width(m.viewport.Width).Render(text)
	}
	m.viewport.SetContent(text)
}

// View implements tea.Model.
func (m watchModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	title := renderTitleBar(m.app, m.source, m.width)

	var body string
	if m.visible {
		body = docStyle.Width(m.width - 2).Render(m.viewport.View())
	} else {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.viewport.Height+2).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("panel hidden (v to show)")
	}

	var bottom string
	switch {
	case m.searching:
		bottom = m.input.View()
	case m.lastError != "":
		bottom = errStyle.Render(fmt.Sprintf(" %s", m.lastError))
	default:
		bottom = renderHelpBar(m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		renderStatusBar(m.connected, m.side, m.auto, m.width),
		bottom,
	)
}

// RunWatch renders the panel in the current terminal until the user quits
// or ctx is cancelled.
func RunWatch(ctx context.Context, d Daemon) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(d), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		err := d.Watch(ctx, func(ev panel.Event) {
			p.Send(eventMsg(ev))
		})
		if ctx.Err() == nil {
			p.Send(streamEndMsg{err: err})
		}
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Cancelled from outside; not a renderer failure.
		return nil
	}
	return err
}
