package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/panel"
)

type fakeDaemon struct {
	sides   []dock.Side
	lookups []string
	online  []bool
	auto    bool
	hidden  bool
	err     error
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{Side: dock.Left, AutoPosition: false, Visible: true, DaemonRunning: true}, nil
}

func (f *fakeDaemon) Watch(context.Context, func(panel.Event)) error { return nil }

func (f *fakeDaemon) SetSide(side dock.Side) (*ipc.PreferenceData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sides = append(f.sides, side)
	return &ipc.PreferenceData{Side: side, AutoPosition: true}, nil
}

func (f *fakeDaemon) ToggleAuto() (*ipc.PreferenceData, error) {
	f.auto = !f.auto
	return &ipc.PreferenceData{Side: dock.Top, AutoPosition: f.auto}, nil
}

func (f *fakeDaemon) DragStart() (*ipc.PreferenceData, error) {
	return &ipc.PreferenceData{Side: dock.Top, AutoPosition: false}, nil
}

func (f *fakeDaemon) Lookup(name string, online bool) (*ipc.LookupData, error) {
	f.lookups = append(f.lookups, name)
	f.online = append(f.online, online)
	return &ipc.LookupData{ID: "x", App: name}, nil
}

func (f *fakeDaemon) ToggleVisible() (*ipc.VisibleData, error) {
	f.hidden = !f.hidden
	return &ipc.VisibleData{Visible: !f.hidden}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to the model and runs any command it returns once.
func step(t *testing.T, m watchModel, msg tea.Msg) watchModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(watchModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, batch := out.(tea.BatchMsg); !batch {
				next, _ = m.Update(out)
				m = next.(watchModel)
			}
		}
	}
	return m
}

func sized(t *testing.T, d Daemon) watchModel {
	m := newWatchModel(d)
	// A blinking cursor would hand back a blocking blink command.
	m.input.Cursor.SetMode(cursor.CursorStatic)
	return step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func TestWatchModelRendersEvents(t *testing.T) {
	m := sized(t, &fakeDaemon{})
	assert.Contains(t, m.View(), "waiting for focus")
	assert.Contains(t, m.View(), "No documentation yet.")

	m = step(t, m, eventMsg(panel.Event{Kind: panel.EventApp, App: "curl"}))
	m = step(t, m, eventMsg(panel.Event{Kind: panel.EventDocumentation, Text: "curl - transfer a URL", Source: docs.SourceMan}))

	view := m.View()
	assert.Contains(t, view, "curl")
	assert.Contains(t, view, "transfer a URL")
	assert.Contains(t, view, "man")
	assert.Contains(t, view, "daemon connected")

	hidden := false
	m = step(t, m, eventMsg(panel.Event{Kind: panel.EventVisible, Visible: &hidden}))
	assert.Contains(t, m.View(), "panel hidden")

	m = step(t, m, eventMsg(panel.Event{Kind: panel.EventMove, Side: dock.Right}))
	assert.Equal(t, dock.Right, m.side)
}

func TestWatchModelStatus(t *testing.T) {
	m := sized(t, &fakeDaemon{})
	m = step(t, m, m.fetchStatus())
	assert.Equal(t, dock.Left, m.side)
	assert.False(t, m.auto)
	assert.Contains(t, m.View(), "pinned")

	bad := sized(t, &fakeDaemon{err: errors.New("failed to connect to daemon")})
	bad = step(t, bad, bad.fetchStatus())
	assert.Contains(t, bad.View(), "failed to connect to daemon")
	assert.Contains(t, bad.View(), "daemon not running")
}

func TestWatchModelDockKeys(t *testing.T) {
	d := &fakeDaemon{}
	m := sized(t, d)

	for _, k := range []string{"t", "b", "l", "r"} {
		m = step(t, m, key(k))
	}
	assert.Equal(t, []dock.Side{dock.Top, dock.Bottom, dock.Left, dock.Right}, d.sides)
	assert.Equal(t, dock.Right, m.side)
	assert.True(t, m.auto)

	m = step(t, m, key("p"))
	assert.False(t, m.auto)
	m = step(t, m, key("a"))
	assert.True(t, m.auto)

	m = step(t, m, key("v"))
	assert.True(t, d.hidden)
}

func TestWatchModelLookup(t *testing.T) {
	d := &fakeDaemon{}
	m := sized(t, d)
	m = step(t, m, eventMsg(panel.Event{Kind: panel.EventApp, App: "vim"}))

	m = step(t, m, key("o"))
	assert.Equal(t, []string{"vim"}, d.lookups)
	assert.Equal(t, []bool{true}, d.online)

	m = step(t, m, key("/"))
	require.True(t, m.searching)
	// Keys go to the input while searching.
	for _, r := range "tar" {
		m = step(t, m, key(string(r)))
	}
	assert.Empty(t, d.sides, "t typed into the input, not a dock command")
	m = step(t, m, key("enter"))
	assert.False(t, m.searching)
	assert.Equal(t, []string{"vim", "tar"}, d.lookups)

	m = step(t, m, key("/"))
	m = step(t, m, key("esc"))
	assert.False(t, m.searching)
	assert.Len(t, d.lookups, 2)
}

func TestWatchModelQuit(t *testing.T) {
	m := sized(t, &fakeDaemon{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWatchModelStreamEnd(t *testing.T) {
	m := sized(t, &fakeDaemon{})
	m = step(t, m, eventMsg(panel.Event{Kind: panel.EventApp, App: "vim"}))
	m = step(t, m, streamEndMsg{err: errors.New("watch stream: EOF")})
	assert.False(t, m.connected)
	assert.Contains(t, m.View(), "watch stream")
}

func TestSettingsApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := newSettingsValues(cfg)
	assert.Equal(t, "top", v.side)
	assert.Equal(t, "100ms", v.pollInterval)

	v.side = "left"
	v.auto = false
	v.minWidth = "300"
	v.maxWidth = "abc"
	v.gap = "0"
	v.height = "0"
	v.pollInterval = "250ms"
	v.threshold = "5"
	v.onlineURL = "https://example.com/no-placeholder"
	v.hotkey = "  "
	v.exceptions = " htop, ,btop "
	v.apply(cfg)

	assert.Equal(t, dock.Preference{Side: dock.Left, AutoPosition: false}, cfg.Dock)
	assert.Equal(t, 300, cfg.Panel.MinWidth)
	assert.Equal(t, 800, cfg.Panel.MaxWidth, "unparsable value keeps the old one")
	assert.Equal(t, 200, cfg.Panel.Height, "zero height rejected")
	assert.Equal(t, 0, cfg.Panel.Gap)
	assert.Equal(t, 250*time.Millisecond, cfg.Tracker.PollInterval)
	assert.Equal(t, 5, cfg.Tracker.StableThreshold)
	assert.Equal(t, docs.DefaultOnlineURL, cfg.Docs.OnlineURL)
	assert.Equal(t, "Control-space", cfg.ToggleHotkey)
	assert.Equal(t, []string{"htop", "btop"}, cfg.Filter.Exceptions)
}

func TestSettingsValidators(t *testing.T) {
	assert.NoError(t, validatePositive("4"))
	assert.Error(t, validatePositive("0"))
	assert.NoError(t, validateNonNegative("0"))
	assert.Error(t, validateNonNegative("-1"))
	assert.NoError(t, validateDuration("1s"))
	assert.Error(t, validateDuration("soon"))
	assert.NoError(t, validateURL("https://x/?q={query}"))
	assert.Error(t, validateURL("https://x/"))

	// The form builds for the defaults without panicking.
	assert.NotNil(t, newSettingsValues(config.DefaultConfig()).form())
}
