package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X, Y, Width, Height int
}

// FrameExtents holds the decoration sizes reported by _NET_FRAME_EXTENTS.
type FrameExtents struct {
	Left, Right, Top, Bottom int
}

// Outer grows a client geometry by the frame decorations around it.
func (e FrameExtents) Outer(g Geometry) Geometry {
	return Geometry{
		X:      g.X - e.Left,
		Y:      g.Y - e.Top,
		Width:  g.Width + e.Left + e.Right,
		Height: g.Height + e.Top + e.Bottom,
	}
}

// ActiveWindow returns the window named by _NET_ACTIVE_WINDOW. A zero
// window means nothing has focus.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// WindowPID returns _NET_WM_PID, or 0 when the client does not set it.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// WindowClass returns the WM_CLASS instance name, lowercased.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(wmClass.Instance)
	if name == "" {
		name = strings.TrimSpace(wmClass.Class)
	}
	return strings.ToLower(name)
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// FrameExtents returns the window decoration sizes. Windows without
// _NET_FRAME_EXTENTS report zero extents.
func (c *Connection) FrameExtents(windowID xproto.Window) FrameExtents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return FrameExtents{}
	}
	return FrameExtents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// ClientGeometry returns the client area of windowID translated to root
// coordinates.
func (c *Connection) ClientGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("translate coordinates: %w", err)
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// FrameGeometry returns the outer geometry of windowID including the
// decorations drawn by the window manager.
func (c *Connection) FrameGeometry(windowID xproto.Window) (Geometry, error) {
	g, err := c.ClientGeometry(windowID)
	if err != nil {
		return Geometry{}, err
	}
	return c.FrameExtents(windowID).Outer(g), nil
}

// FindWindowByTitle returns the first managed client whose title equals
// title exactly.
func (c *Connection) FindWindowByTitle(title string) (xproto.Window, bool) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, false
	}
	for _, windowID := range clients {
		if c.WindowTitle(windowID) == title {
			return windowID, true
		}
	}
	return 0, false
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, g Geometry) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("invalid geometry %dx%d", g.Width, g.Height)
	}

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, g.X, g.Y, g.Width, g.Height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(g.X, g.Y, g.Width, g.Height)
	}
	return nil
}

// KeepAbove asks the window manager to stack windowID above normal windows.
func (c *Connection) KeepAbove(windowID xproto.Window) error {
	return ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateAdd, "_NET_WM_STATE_ABOVE")
}
