package platform

import (
	"context"
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/wingman-panel/wingman/internal/x11"
)

// X11Backend wraps an X11 connection behind the Backend interface.
type X11Backend struct {
	conn   *x11.Connection
	lookup NameLookup
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend creates an X11 backend from an existing connection.
func NewX11Backend(conn *x11.Connection) *X11Backend {
	return &X11Backend{conn: conn, lookup: defaultNameLookup()}
}

// NewX11BackendFromDisplay opens a fresh connection to $DISPLAY.
func NewX11BackendFromDisplay() (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewX11Backend(conn), nil
}

func (b *X11Backend) Name() string { return "x11" }

// Connection exposes the underlying connection for X11-only features such
// as hotkeys and moving the panel window.
func (b *X11Backend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *X11Backend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *X11Backend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Disconnect closes the underlying X11 connection.
func (b *X11Backend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// ActiveWindow reads _NET_ACTIVE_WINDOW and returns its decorated geometry.
func (b *X11Backend) ActiveWindow(ctx context.Context) (Snapshot, error) {
	conn, err := b.connection()
	if err != nil {
		return Snapshot{}, err
	}

	wid, err := conn.ActiveWindow()
	if err != nil || wid == 0 {
		return Snapshot{}, ErrNoActiveWindow
	}

	g, err := conn.FrameGeometry(wid)
	if err != nil {
		// The window can vanish between the two queries.
		return Snapshot{}, fmt.Errorf("%w: %v", ErrNoActiveWindow, err)
	}

	pid := conn.WindowPID(wid)
	return Snapshot{
		ProcessName: appName(ctx, b.lookup, pid, conn.WindowClass(wid)),
		PID:         pid,
		Geometry:    Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height},
	}, nil
}

// Displays returns all active RandR monitors.
func (b *X11Backend) Displays(context.Context) ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.Monitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectFromGeometry(m.Bounds),
			Usable: rectFromGeometry(m.Usable),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

func (b *X11Backend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("%w: x11 connection is nil", ErrBackendUnavailable)
	}
	return b.conn, nil
}

func rectFromGeometry(g x11.Geometry) Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

func openX11() (Backend, error) {
	return NewX11BackendFromDisplay()
}
