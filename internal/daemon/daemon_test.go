package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/logging"
	"github.com/wingman-panel/wingman/internal/platform"
)

type fakeBackend struct {
	mu   sync.Mutex
	snap platform.Snapshot
	err  error
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) set(name string, r platform.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = platform.Snapshot{ProcessName: name, PID: 42, Geometry: r}
	b.err = nil
}

func (b *fakeBackend) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *fakeBackend) ActiveWindow(context.Context) (platform.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return platform.Snapshot{}, b.err
	}
	return b.snap, nil
}

func (b *fakeBackend) Displays(context.Context) ([]platform.Display, error) {
	return nil, errors.New("no displays")
}

type fakeLookup struct{}

func (fakeLookup) Get(_ context.Context, app string) docs.Result {
	return docs.Result{Text: app + " manual", Source: docs.SourceMan}
}

func (fakeLookup) Online(_ context.Context, app string) docs.Result {
	return docs.Result{Text: app + " online", Source: docs.SourceOnline}
}

type move struct {
	Rect platform.Rect
	Side dock.Side
}

type recorder struct {
	mu      sync.Mutex
	apps    []string
	docs    []docs.Result
	moves   []move
	visible []bool
}

func (r *recorder) SetAppName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps = append(r.apps, name)
}

func (r *recorder) SetDocumentation(text string, source docs.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, docs.Result{Text: text, Source: source})
}

func (r *recorder) Move(rect platform.Rect, side dock.Side) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, move{rect, side})
}

func (r *recorder) SetVisible(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = append(r.visible, v)
}

func (r *recorder) Apps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.apps...)
}

func (r *recorder) Docs() []docs.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]docs.Result(nil), r.docs...)
}

func (r *recorder) Moves() []move {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]move(nil), r.moves...)
}

type harness struct {
	d       *Daemon
	backend *fakeBackend
	surface *recorder
	saved   chan dock.Preference
	cancel  context.CancelFunc
	done    chan error
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tracker.PollInterval = 5 * time.Millisecond
	return cfg
}

func start(t *testing.T, cfg *config.Config, load func() (*config.Config, error)) *harness {
	t.Helper()
	h := &harness{
		backend: &fakeBackend{err: platform.ErrNoActiveWindow},
		surface: &recorder{},
		saved:   make(chan dock.Preference, 16),
		done:    make(chan error, 1),
	}
	h.d = New(cfg, Deps{
		Backend: h.backend,
		Lookup:  fakeLookup{},
		Surface: h.surface,
		Logger:  logging.Nop(),
		Load:    load,
		Save: func(c *config.Config) error {
			h.saved <- c.Dock
			return nil
		},
		Watchers: func() int { return 2 },
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Error("daemon did not stop")
		}
	})
	return h
}

func (h *harness) call(t *testing.T, cmd ipc.CommandType, payload any, out any) {
	t.Helper()
	req := &ipc.Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		req.Payload = raw
	}
	resp := h.d.Handle(context.Background(), req)
	require.Equal(t, ipc.StatusOK, resp.Status, resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
}

const wait = 2 * time.Second
const poll = 5 * time.Millisecond

var window = platform.Rect{X: 100, Y: 200, Width: 300, Height: 400}

func TestFocusDrivesDocsAndDock(t *testing.T) {
	h := start(t, testConfig(), nil)
	h.backend.set("curl", window)

	require.Eventually(t, func() bool { return len(h.surface.Moves()) == 1 }, wait, poll)
	assert.Equal(t, move{platform.Rect{X: 50, Y: 0, Width: 400, Height: 200}, dock.Top}, h.surface.Moves()[0])

	require.Eventually(t, func() bool { return len(h.surface.Docs()) == 1 }, wait, poll)
	assert.Equal(t, docs.Result{Text: "curl manual", Source: docs.SourceMan}, h.surface.Docs()[0])
	assert.Equal(t, []string{"curl"}, h.surface.Apps())

	// The same geometry is not re-sent.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, h.surface.Moves(), 1)

	var status ipc.StatusData
	h.call(t, ipc.CommandGetStatus, nil, &status)
	assert.Equal(t, "fake", status.Backend)
	assert.Equal(t, "curl", status.App)
	assert.Equal(t, "curl", status.DocApp)
	assert.Equal(t, docs.SourceMan, status.DocSource)
	require.NotNil(t, status.Geometry)
	assert.Equal(t, window, *status.Geometry)
	require.NotNil(t, status.PanelRect)
	assert.Equal(t, 2, status.Watchers)
	assert.True(t, status.Visible)
	assert.True(t, status.DaemonRunning)
}

func TestFilteredAndSelfFocus(t *testing.T) {
	h := start(t, testConfig(), nil)

	h.backend.set("python3.12", window)
	require.Eventually(t, func() bool { return len(h.surface.Moves()) == 1 }, wait, poll)
	assert.Empty(t, h.surface.Apps(), "interpreters never trigger a lookup")

	h.backend.set("wingman", platform.Rect{X: 0, Y: 0, Width: 400, Height: 200})
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, h.surface.Moves(), 1, "focusing the panel must not move it")
	assert.Empty(t, h.surface.Docs())
}

func TestBackendErrorsHoldPosition(t *testing.T) {
	h := start(t, testConfig(), nil)
	h.backend.set("curl", window)
	require.Eventually(t, func() bool { return len(h.surface.Moves()) == 1 }, wait, poll)

	h.backend.fail(platform.ErrBackendUnavailable)
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, h.surface.Moves(), 1)
}

func TestDragSuppressesDockUntilSideSelected(t *testing.T) {
	h := start(t, testConfig(), nil)
	h.backend.set("curl", window)
	require.Eventually(t, func() bool { return len(h.surface.Moves()) == 1 }, wait, poll)

	var pref ipc.PreferenceData
	h.call(t, ipc.CommandDragStart, nil, &pref)
	assert.False(t, pref.AutoPosition)
	assert.Equal(t, dock.Preference{Side: dock.Top, AutoPosition: false}, <-h.saved)
	h.call(t, ipc.CommandDragEnd, nil, &pref)
	assert.False(t, pref.AutoPosition)

	h.backend.set("curl", platform.Rect{X: 500, Y: 500, Width: 300, Height: 300})
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, h.surface.Moves(), 1)

	h.call(t, ipc.CommandSetSide, ipc.SetSidePayload{Side: dock.Bottom}, &pref)
	assert.Equal(t, ipc.PreferenceData{Side: dock.Bottom, AutoPosition: true}, pref)
	assert.Equal(t, dock.Preference{Side: dock.Bottom, AutoPosition: true}, <-h.saved)

	moves := h.surface.Moves()
	require.Len(t, moves, 2, "selecting a side re-docks at once")
	assert.Equal(t, dock.Bottom, moves[1].Side)
	assert.Equal(t, 800, moves[1].Rect.Y)
}

func TestSetSideRejectsInvalid(t *testing.T) {
	h := start(t, testConfig(), nil)
	resp := h.d.Handle(context.Background(), &ipc.Request{
		Command: ipc.CommandSetSide,
		Payload: json.RawMessage(`{"side":"middle"}`),
	})
	assert.Equal(t, ipc.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "invalid dock side")
}

func TestToggleAuto(t *testing.T) {
	h := start(t, testConfig(), nil)
	var pref ipc.PreferenceData
	h.call(t, ipc.CommandToggleAuto, nil, &pref)
	assert.False(t, pref.AutoPosition)
	h.call(t, ipc.CommandToggleAuto, nil, &pref)
	assert.True(t, pref.AutoPosition)
	assert.Equal(t, dock.Top, pref.Side)
	assert.Len(t, h.saved, 2)
}

func TestLookupAndToggleVisible(t *testing.T) {
	h := start(t, testConfig(), nil)

	resp := h.d.Handle(context.Background(), &ipc.Request{
		Command: ipc.CommandLookup,
		Payload: json.RawMessage(`{"name":"  "}`),
	})
	assert.Equal(t, ipc.StatusError, resp.Status)

	var data ipc.LookupData
	h.call(t, ipc.CommandLookup, ipc.LookupPayload{Name: "tar"}, &data)
	assert.Equal(t, "tar", data.App)
	assert.NotEmpty(t, data.ID)
	require.Eventually(t, func() bool { return len(h.surface.Docs()) == 1 }, wait, poll)

	// An empty name repeats the lookup for the app shown, here online.
	h.call(t, ipc.CommandLookup, ipc.LookupPayload{Online: true}, &data)
	assert.Equal(t, "tar", data.App)
	require.Eventually(t, func() bool { return len(h.surface.Docs()) == 2 }, wait, poll)
	assert.Equal(t, docs.SourceOnline, h.surface.Docs()[1].Source)

	var vis ipc.VisibleData
	h.call(t, ipc.CommandToggleVisible, nil, &vis)
	assert.False(t, vis.Visible)
	h.d.ToggleVisible(context.Background())
	h.call(t, ipc.CommandGetStatus, nil, nil)
	h.surface.mu.Lock()
	assert.Equal(t, []bool{false, true}, h.surface.visible)
	h.surface.mu.Unlock()
}

func TestStaleDeliveryDropped(t *testing.T) {
	h := start(t, testConfig(), nil)
	err := h.d.Post(context.Background(), func() {
		h.d.worker.Request("old", false)
		h.d.worker.Request("new", false)
		h.d.deliver(docs.Delivery{App: "old", Result: docs.Result{Text: "stale", Source: docs.SourceMan}})
	})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(h.surface.Docs()) == 1 }, wait, poll)
	assert.Equal(t, "new manual", h.surface.Docs()[0].Text)
}

func TestReloadAppliesDockPreference(t *testing.T) {
	reloaded := testConfig()
	reloaded.Dock = dock.Preference{Side: dock.Left, AutoPosition: true}
	h := start(t, testConfig(), func() (*config.Config, error) { return reloaded, nil })

	h.backend.set("curl", window)
	require.Eventually(t, func() bool { return len(h.surface.Moves()) == 1 }, wait, poll)

	h.call(t, ipc.CommandReload, nil, nil)
	moves := h.surface.Moves()
	require.Len(t, moves, 2)
	assert.Equal(t, dock.Left, moves[1].Side)

	var status ipc.StatusData
	h.call(t, ipc.CommandGetStatus, nil, &status)
	assert.Equal(t, dock.Left, status.Side)
}

func TestReloadFailureKeepsConfig(t *testing.T) {
	h := start(t, testConfig(), func() (*config.Config, error) { return nil, errors.New("disk on fire") })
	resp := h.d.Handle(context.Background(), &ipc.Request{Command: ipc.CommandReload})
	assert.Equal(t, ipc.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "disk on fire")

	// Watcher-triggered reloads only log.
	h.d.RequestReload()
	h.d.RequestReload()
	h.call(t, ipc.CommandGetStatus, nil, nil)
}

func TestUnknownCommand(t *testing.T) {
	h := start(t, testConfig(), nil)
	resp := h.d.Handle(context.Background(), &ipc.Request{Command: "DANCE"})
	assert.Equal(t, ipc.StatusError, resp.Status)
}

func TestQuitStopsRun(t *testing.T) {
	h := start(t, testConfig(), nil)
	h.call(t, ipc.CommandQuit, nil, nil)

	select {
	case err := <-h.done:
		assert.NoError(t, err)
		h.done <- err
	case <-time.After(wait):
		t.Fatal("daemon did not stop after QUIT")
	}

	err := h.d.Post(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}
