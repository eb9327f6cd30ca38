package panel

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/platform"
	"github.com/wingman-panel/wingman/internal/procexec"
	"github.com/wingman-panel/wingman/internal/x11"
)

// MoveFunc repositions the panel window.
type MoveFunc func(ctx context.Context, rect platform.Rect) error

// Mover is a Surface that repositions the panel window through the display
// server. Move only records the target; Run applies the latest one, so a
// burst of moves collapses to the last.
type Mover struct {
	name    string
	move    MoveFunc
	pending chan platform.Rect
	logger  zerolog.Logger
}

var _ Surface = (*Mover)(nil)

// NewMover creates a mover around move.
func NewMover(name string, move MoveFunc, logger zerolog.Logger) *Mover {
	return &Mover{
		name:    name,
		move:    move,
		pending: make(chan platform.Rect, 1),
		logger:  logger,
	}
}

// Name identifies the mover for logs.
func (m *Mover) Name() string { return m.name }

func (m *Mover) Move(rect platform.Rect, _ dock.Side) {
	for {
		select {
		case m.pending <- rect:
			return
		default:
		}
		// Replace the target that has not been applied yet.
		select {
		case <-m.pending:
		default:
		}
	}
}

func (m *Mover) SetAppName(string)                    {}
func (m *Mover) SetDocumentation(string, docs.Source) {}
func (m *Mover) SetVisible(bool)                      {}

// Run applies queued moves until ctx is done.
func (m *Mover) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case rect := <-m.pending:
			if err := m.move(ctx, rect); err != nil {
				m.logger.Debug().Err(err).Str("mover", m.name).Msg("panel move failed")
			}
		}
	}
}

// NewX11Mover moves the window titled Title with EWMH requests.
func NewX11Mover(conn *x11.Connection, logger zerolog.Logger) *Mover {
	return NewMover("x11", func(_ context.Context, rect platform.Rect) error {
		win, ok := conn.FindWindowByTitle(Title)
		if !ok {
			return fmt.Errorf("no window titled %q", Title)
		}
		if err := conn.KeepAbove(win); err != nil {
			logger.Debug().Err(err).Msg("keep-above request failed")
		}
		return conn.MoveResizeWindow(win, x11.Geometry{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height})
	}, logger)
}

// SwayCommand builds the swaymsg invocation that floats and places the
// panel window.
func SwayCommand(rect platform.Rect) procexec.Command {
	return procexec.Command{Name: "swaymsg", Args: []string{fmt.Sprintf(
		`[title="^%s$"] floating enable, sticky enable, move absolute position %d %d, resize set %d %d`,
		Title, rect.X, rect.Y, rect.Width, rect.Height,
	)}}
}

// HyprlandCommand builds the hyprctl batch that floats and places the panel
// window.
func HyprlandCommand(rect platform.Rect) procexec.Command {
	target := "title:^(" + Title + ")$"
	batch := "dispatch setfloating " + target +
		" ; dispatch pin " + target +
		" ; dispatch movewindowpixel exact " + strconv.Itoa(rect.X) + " " + strconv.Itoa(rect.Y) + "," + target +
		" ; dispatch resizewindowpixel exact " + strconv.Itoa(rect.Width) + " " + strconv.Itoa(rect.Height) + "," + target
	return procexec.Command{Name: "hyprctl", Args: []string{"--batch", batch}}
}

// NewCommandMover moves the panel by running the command build returns.
func NewCommandMover(name string, runner procexec.Runner, build func(platform.Rect) procexec.Command, logger zerolog.Logger) *Mover {
	return NewMover(name, func(ctx context.Context, rect platform.Rect) error {
		_, err := runner.Run(ctx, build(rect))
		return err
	}, logger)
}

// MoverFor returns the mover matching the selected backend, or nil when the
// backend cannot place windows.
func MoverFor(b platform.Backend, runner procexec.Runner, logger zerolog.Logger) *Mover {
	switch b := b.(type) {
	case *platform.X11Backend:
		if conn := b.Connection(); conn != nil {
			return NewX11Mover(conn, logger)
		}
	case *platform.SwayBackend:
		return NewCommandMover("sway", runner, SwayCommand, logger)
	case *platform.HyprlandBackend:
		return NewCommandMover("hyprland", runner, HyprlandCommand, logger)
	}
	return nil
}
