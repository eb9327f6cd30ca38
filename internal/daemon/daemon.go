// Package daemon runs the wingman event loop. One goroutine owns the focus
// tracker, the dock controller and the panel state; IPC requests, hotkeys
// and config reloads reach it as closures on a channel, and documentation
// lookups come back from the docs worker as deliveries.
package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/appfilter"
	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/focus"
	"github.com/wingman-panel/wingman/internal/panel"
	"github.com/wingman-panel/wingman/internal/platform"
	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned to callers posting work after the loop exited.
var ErrStopped = errors.New("daemon stopped")

// Deps are the collaborators the loop drives.
type Deps struct {
	// Backend answers focus and display queries. It should already be
	// wrapped with terminal resolution.
	Backend platform.Backend
	Lookup  docs.Lookup
	Surface panel.Surface
	Logger  zerolog.Logger

	// Load re-reads the configuration for RELOAD. Nil disables reloads.
	Load func() (*config.Config, error)
	// Save persists the configuration after a preference change. Nil
	// disables persistence.
	Save func(*config.Config) error
	// Terminals receives the terminal list after a reload. Optional.
	Terminals interface{ UpdateTerminals([]string) }
	// Watchers reports how many external renderers are attached. Optional.
	Watchers func() int

	Now func() time.Time
}

// Daemon is the event loop and the state it owns.
type Daemon struct {
	deps    Deps
	logger  zerolog.Logger
	cfg     *config.Config
	tracker *focus.Tracker
	ctrl    *dock.Controller
	filter  appfilter.Filter
	worker  *docs.Worker

	commands chan func()
	reloads  chan struct{}
	stopped  chan struct{}
	cancel   context.CancelFunc
	ticker   *time.Ticker

	started     time.Time
	visible     bool
	lastSettled *focus.Event
	panelRect   *platform.Rect
	docApp      string
	docSource   docs.Source
}

// New builds a daemon from cfg. cfg is owned by the daemon afterwards.
func New(cfg *config.Config, deps Deps) *Daemon {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Surface == nil {
		deps.Surface = panel.LogSurface{Logger: deps.Logger}
	}
	return &Daemon{
		deps:     deps,
		logger:   deps.Logger,
		cfg:      cfg,
		tracker:  focus.NewTracker(deps.Backend, cfg.Tracker.PollInterval, cfg.Tracker.StableThreshold, deps.Logger),
		ctrl:     dock.NewController(cfg.Dock, cfg.PanelSize()),
		filter:   cfg.AppFilter(),
		worker:   docs.NewWorker(deps.Lookup),
		commands: make(chan func()),
		reloads:  make(chan struct{}, 1),
		stopped:  make(chan struct{}),
		visible:  true,
	}
}

// Run starts the docs worker and the loop and blocks until ctx is cancelled
// or a QUIT request arrives. A clean shutdown returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.cancel = cancel
	d.started = d.deps.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := d.worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer close(d.stopped)
		return d.loop(gctx)
	})
	return g.Wait()
}

func (d *Daemon) loop(ctx context.Context) error {
	d.ticker = time.NewTicker(d.tracker.Interval())
	defer d.ticker.Stop()

	d.logger.Info().
		Str("backend", d.deps.Backend.Name()).
		Str("side", string(d.ctrl.Preference().Side)).
		Bool("auto_position", d.ctrl.Preference().AutoPosition).
		Dur("interval", d.tracker.Interval()).
		Msg("daemon loop started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("daemon loop stopped")
			return nil
		case <-d.ticker.C:
			d.tick(ctx)
		case fn := <-d.commands:
			fn()
		case del := <-d.worker.Results():
			d.deliver(del)
		case <-d.reloads:
			d.reload()
		}
	}
}

// tick polls the backend once and reacts to what changed.
func (d *Daemon) tick(ctx context.Context) {
	// A bad backend reply must not take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error().Interface("panic", err).Msg("focus tick panic recovered")
		}
	}()

	out := d.tracker.Tick(ctx)
	if out.AppChanged {
		d.onAppChanged(out.AppName)
	}
	if out.Settled != nil {
		d.onSettled(ctx, *out.Settled)
	}
}

func (d *Daemon) onAppChanged(app string) {
	if !d.filter.ShouldTrigger(app) {
		d.logger.Debug().Str("app", app).Msg("focus change ignored by filter")
		return
	}
	d.deps.Surface.SetAppName(app)
	id := d.worker.Request(app, false)
	d.logger.Debug().Str("app", app).Str("request", id.String()).Msg("documentation requested")
}

func (d *Daemon) onSettled(ctx context.Context, ev focus.Event) {
	// The panel itself getting focus must not move it.
	if appfilter.IsSelf(ev.AppName) {
		return
	}
	d.lastSettled = &ev
	d.dock(ctx, ev)
}

// dock moves the panel next to ev's window when the controller asks for it.
func (d *Daemon) dock(ctx context.Context, ev focus.Event) {
	displays, err := d.deps.Backend.Displays(ctx)
	if err != nil {
		// Unknown monitors only disable clamping.
		d.logger.Debug().Err(err).Msg("display query failed")
		displays = nil
	}
	rect, ok := d.ctrl.OnSettled(ev, displays)
	if !ok {
		return
	}
	d.panelRect = &rect
	d.deps.Surface.Move(rect, d.ctrl.Preference().Side)
}

// redock re-applies the dock to the last settled window after the
// preference changed.
func (d *Daemon) redock() {
	if d.lastSettled == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.dock(ctx, *d.lastSettled)
}

func (d *Daemon) deliver(del docs.Delivery) {
	if !d.worker.IsCurrent(del) {
		d.logger.Debug().Str("app", del.App).Msg("stale documentation dropped")
		return
	}
	d.docApp = del.App
	d.docSource = del.Result.Source
	d.deps.Surface.SetDocumentation(del.Result.Text, del.Result.Source)
	d.logger.Debug().Str("app", del.App).Str("source", string(del.Result.Source)).Msg("documentation delivered")
}

// preferenceChanged persists the controller's preference.
func (d *Daemon) preferenceChanged() {
	pref := d.ctrl.Preference()
	d.cfg.Dock = pref
	d.logger.Info().Str("side", string(pref.Side)).Bool("auto_position", pref.AutoPosition).Msg("dock preference changed")
	if d.deps.Save == nil {
		return
	}
	if err := d.deps.Save(d.cfg); err != nil {
		d.logger.Warn().Err(err).Msg("failed to save dock preference")
	}
}

// RequestReload schedules a config reload. Repeated requests before the
// loop gets to it collapse into one.
func (d *Daemon) RequestReload() {
	select {
	case d.reloads <- struct{}{}:
	default:
	}
}

func (d *Daemon) reload() {
	if err := d.applyReload(); err != nil {
		d.logger.Warn().Err(err).Msg("config reload failed")
	}
}

func (d *Daemon) applyReload() error {
	if d.deps.Load == nil {
		return errors.New("reload not supported")
	}
	cfg, err := d.deps.Load()
	if err != nil {
		return err
	}

	old := d.cfg
	d.cfg = cfg
	d.filter = cfg.AppFilter()
	d.tracker.SetThreshold(cfg.Tracker.StableThreshold)
	if cfg.Tracker.PollInterval > 0 && cfg.Tracker.PollInterval != old.Tracker.PollInterval && d.ticker != nil {
		d.ticker.Reset(cfg.Tracker.PollInterval)
	}
	if d.deps.Terminals != nil {
		d.deps.Terminals.UpdateTerminals(cfg.Terminals)
	}
	if old.Docs != cfg.Docs {
		d.logger.Info().Msg("docs settings change on restart")
	}

	redock := false
	if cfg.PanelSize() != d.ctrl.Size() {
		d.ctrl.SetSize(cfg.PanelSize())
		redock = true
	}
	if cfg.Dock != d.ctrl.Preference() {
		d.ctrl = dock.NewController(cfg.Dock, d.ctrl.Size())
		redock = true
	}
	if redock {
		d.redock()
	}

	d.logger.Info().Msg("configuration reloaded")
	return nil
}

// Post runs fn on the loop and waits for it to finish.
func (d *Daemon) Post(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case d.commands <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		// fn may have been the one to stop the loop.
		select {
		case <-done:
			return nil
		default:
		}
		return ErrStopped
	}
}

// toggleVisible flips panel visibility on the loop.
func (d *Daemon) toggleVisible() bool {
	d.visible = !d.visible
	d.deps.Surface.SetVisible(d.visible)
	return d.visible
}

// ToggleVisible shows or hides the panel. It is the hotkey entry point.
func (d *Daemon) ToggleVisible(ctx context.Context) {
	if err := d.Post(ctx, func() { d.toggleVisible() }); err != nil {
		d.logger.Debug().Err(err).Msg("toggle visibility dropped")
	}
}
