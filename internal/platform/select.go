package platform

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/procexec"
)

// Probe is one candidate backend tried during selection.
type Probe struct {
	Name string
	// Wayland probes are only tried inside a Wayland session.
	Wayland bool
	Open    func() (Backend, error)
}

// DefaultProbes returns the probe order used at startup: swaymsg, then
// hyprctl, then X11 (which also covers XWayland sessions).
func DefaultProbes(runner procexec.Runner) []Probe {
	return []Probe{
		{Name: "sway", Wayland: true, Open: func() (Backend, error) { return NewSwayBackend(runner), nil }},
		{Name: "hyprland", Wayland: true, Open: func() (Backend, error) { return NewHyprlandBackend(runner), nil }},
		{Name: "x11", Open: openX11},
	}
}

// Select picks the backend for the process lifetime. A probe is accepted
// when its first active-window query succeeds or reports that nothing has
// focus. When every probe fails an Unavailable backend is returned, so
// callers never need a nil check.
func Select(ctx context.Context, getenv func(string) string, probes []Probe, logger zerolog.Logger) Backend {
	if getenv == nil {
		getenv = os.Getenv
	}
	wayland := getenv("WAYLAND_DISPLAY") != ""

	var errs []error
	for _, p := range probes {
		if p.Wayland && !wayland {
			continue
		}
		b, err := p.Open()
		if err != nil {
			logger.Debug().Err(err).Str("backend", p.Name).Msg("backend probe failed")
			errs = append(errs, err)
			continue
		}
		if _, err := b.ActiveWindow(ctx); err != nil && !errors.Is(err, ErrNoActiveWindow) {
			logger.Debug().Err(err).Str("backend", p.Name).Msg("backend probe failed")
			errs = append(errs, err)
			if d, ok := b.(interface{ Disconnect() }); ok {
				d.Disconnect()
			}
			continue
		}
		logger.Info().Str("backend", b.Name()).Msg("window backend selected")
		return b
	}

	reason := errors.Join(errs...)
	logger.Warn().Err(reason).Msg("no window backend available")
	return Unavailable{Reason: reason}
}
