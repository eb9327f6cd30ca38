// Package focus turns raw active-window polls into focus events: an
// immediate app-change notification and a debounced "settled" event once
// the window geometry has stopped moving.
package focus

import (
	"github.com/wingman-panel/wingman/internal/platform"
)

// DefaultStableThreshold is the number of identical consecutive polls that
// count as a settled window.
const DefaultStableThreshold = 3

// Event is a confirmed, stable focus observation.
type Event struct {
	AppName  string        `json:"app_name"`
	Geometry platform.Rect `json:"geometry"`
}

// Debounce tracks consecutive identical geometries. Repeat never exceeds
// the threshold and is cleared after an emission.
type Debounce struct {
	Last   *platform.Rect
	Repeat int
}

// Output is what a single poll produced. Both fields may be set in the
// same step.
type Output struct {
	// AppChanged is true when the focused process name differs from the
	// previously observed one; AppName carries the new name.
	AppChanged bool
	AppName    string
	// Settled is set once per stable geometry per app.
	Settled *Event
}

// Empty reports whether the step produced nothing.
func (o Output) Empty() bool {
	return !o.AppChanged && o.Settled == nil
}

// State is the tracker's value-typed state. Step never mutates its receiver.
type State struct {
	Threshold int
	Debounce  Debounce

	app     string
	emitted *platform.Rect
}

// NewState creates a state with the given stability threshold.
func NewState(threshold int) State {
	if threshold < 1 {
		threshold = DefaultStableThreshold
	}
	return State{Threshold: threshold}
}

// App returns the last observed process name.
func (s State) App() string { return s.app }

// Step folds one poll result into the state. A failed poll leaves the state
// untouched and produces nothing.
func (s State) Step(snap platform.Snapshot, err error) (State, Output) {
	var out Output
	if err != nil {
		return s, out
	}

	threshold := s.Threshold
	if threshold < 1 {
		threshold = DefaultStableThreshold
	}

	geom := snap.Geometry
	if s.Debounce.Last != nil && *s.Debounce.Last == geom {
		s.Debounce.Repeat = min(s.Debounce.Repeat+1, threshold)
	} else {
		s.Debounce = Debounce{Last: &geom, Repeat: 1}
	}

	if snap.ProcessName != s.app {
		s.app = snap.ProcessName
		s.emitted = nil
		out.AppChanged = true
		out.AppName = snap.ProcessName
	}

	if s.Debounce.Repeat >= threshold && (s.emitted == nil || *s.emitted != geom) {
		settled := geom
		s.emitted = &settled
		s.Debounce.Repeat = 0
		out.Settled = &Event{AppName: s.app, Geometry: geom}
	}

	return s, out
}
