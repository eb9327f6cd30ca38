// Package platform queries the display server for the focused window.
//
// One Backend is chosen at startup by Select; the rest of wingman only ever
// sees the interface.
package platform

import (
	"context"
	"errors"
)

var (
	// ErrBackendUnavailable means the display server or query tool could not
	// be reached. Callers skip the current poll.
	ErrBackendUnavailable = errors.New("window backend unavailable")
	// ErrNoActiveWindow means nothing currently has focus.
	ErrNoActiveWindow = errors.New("no active window")
)

// Rect describes a rectangular region in absolute screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the centre point of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Display describes a physical monitor and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Snapshot is the result of one active-window query. PID is 0 when the
// backend could not determine the owning process.
type Snapshot struct {
	ProcessName string
	PID         int
	Geometry    Rect
}

// Backend abstracts the active-window queries of one display server.
type Backend interface {
	// Name identifies the backend for logs and status output.
	Name() string
	// ActiveWindow returns the focused window, frame-corrected.
	ActiveWindow(ctx context.Context) (Snapshot, error)
	// Displays lists the active monitors.
	Displays(ctx context.Context) ([]Display, error)
}

// DisplayFor returns the display containing the centre of r, falling back to
// the one containing its origin. ok is false when neither matches.
func DisplayFor(displays []Display, r Rect) (Display, bool) {
	cx, cy := r.Center()
	for _, d := range displays {
		if d.Bounds.Contains(cx, cy) {
			return d, true
		}
	}
	for _, d := range displays {
		if d.Bounds.Contains(r.X, r.Y) {
			return d, true
		}
	}
	return Display{}, false
}

// Unavailable is the backend used when no display server could be reached.
// Every query fails with ErrBackendUnavailable so the tracker idles.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) ActiveWindow(context.Context) (Snapshot, error) {
	return Snapshot{}, u.err()
}

func (u Unavailable) Displays(context.Context) ([]Display, error) {
	return nil, u.err()
}

func (u Unavailable) err() error {
	if u.Reason == nil {
		return ErrBackendUnavailable
	}
	return errors.Join(ErrBackendUnavailable, u.Reason)
}
