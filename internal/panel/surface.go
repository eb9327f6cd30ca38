// Package panel defines the rendering collaborator the daemon drives and the
// implementations that fan its commands out to renderers and window movers.
package panel

import (
	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/platform"
)

// Title is the window title renderers set so the panel window can be found
// and moved, and so the focus tracker can recognise it.
const Title = "wingman-panel"

// Surface receives fire-and-forget commands from the daemon loop. Calls
// must not block.
type Surface interface {
	SetAppName(name string)
	SetDocumentation(text string, source docs.Source)
	Move(rect platform.Rect, side dock.Side)
	SetVisible(visible bool)
}

// Multi forwards every call to each surface in order.
type Multi []Surface

var _ Surface = Multi(nil)

func (m Multi) SetAppName(name string) {
	for _, s := range m {
		s.SetAppName(name)
	}
}

func (m Multi) SetDocumentation(text string, source docs.Source) {
	for _, s := range m {
		s.SetDocumentation(text, source)
	}
}

func (m Multi) Move(rect platform.Rect, side dock.Side) {
	for _, s := range m {
		s.Move(rect, side)
	}
}

func (m Multi) SetVisible(visible bool) {
	for _, s := range m {
		s.SetVisible(visible)
	}
}

// LogSurface records surface commands in the log.
type LogSurface struct {
	Logger zerolog.Logger
}

var _ Surface = LogSurface{}

func (l LogSurface) SetAppName(name string) {
	l.Logger.Info().Str("app", name).Msg("app changed")
}

func (l LogSurface) SetDocumentation(text string, source docs.Source) {
	l.Logger.Debug().Str("source", string(source)).Int("bytes", len(text)).Msg("documentation updated")
}

func (l LogSurface) Move(rect platform.Rect, side dock.Side) {
	l.Logger.Debug().
		Int("x", rect.X).Int("y", rect.Y).
		Int("width", rect.Width).Int("height", rect.Height).
		Str("side", string(side)).
		Msg("panel moved")
}

func (l LogSurface) SetVisible(visible bool) {
	l.Logger.Debug().Bool("visible", visible).Msg("panel visibility changed")
}
