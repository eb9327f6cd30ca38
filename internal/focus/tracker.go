package focus

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/platform"
)

// DefaultPollInterval is the time between active-window queries.
const DefaultPollInterval = 100 * time.Millisecond

// Tracker polls a backend and steps a State with each result.
type Tracker struct {
	backend  platform.Backend
	interval time.Duration
	logger   zerolog.Logger

	state   State
	lastErr error
}

// NewTracker creates a tracker. Non-positive values select the defaults.
func NewTracker(backend platform.Backend, interval time.Duration, threshold int, logger zerolog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		backend:  backend,
		interval: interval,
		logger:   logger,
		state:    NewState(threshold),
	}
}

// Interval returns the polling period.
func (t *Tracker) Interval() time.Duration { return t.interval }

// State returns a copy of the current state.
func (t *Tracker) State() State { return t.state }

// SetThreshold changes the stability threshold, keeping the debounce
// progress within the new bound.
func (t *Tracker) SetThreshold(threshold int) {
	if threshold < 1 {
		threshold = DefaultStableThreshold
	}
	t.state.Threshold = threshold
	t.state.Debounce.Repeat = min(t.state.Debounce.Repeat, threshold)
}

// Tick performs one poll. Backend errors are logged once per distinct
// error kind and otherwise skip the tick.
func (t *Tracker) Tick(ctx context.Context) Output {
	snap, err := t.backend.ActiveWindow(ctx)
	t.noteError(err)

	var out Output
	t.state, out = t.state.Step(snap, err)
	return out
}

// Run polls until ctx is done, calling fn for every non-empty output.
func (t *Tracker) Run(ctx context.Context, fn func(Output)) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if out := t.Tick(ctx); !out.Empty() {
				fn(out)
			}
		}
	}
}

func (t *Tracker) noteError(err error) {
	prev := t.lastErr
	t.lastErr = err
	if err == nil {
		if prev != nil {
			t.logger.Debug().Msg("active window query recovered")
		}
		return
	}
	if prev != nil && sameKind(prev, err) {
		return
	}
	if errors.Is(err, platform.ErrNoActiveWindow) {
		t.logger.Debug().Msg("no active window")
		return
	}
	t.logger.Warn().Err(err).Str("backend", t.backend.Name()).Msg("active window query failed")
}

func sameKind(a, b error) bool {
	for _, kind := range []error{platform.ErrNoActiveWindow, platform.ErrBackendUnavailable} {
		if errors.Is(a, kind) && errors.Is(b, kind) {
			return true
		}
	}
	return false
}
