package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display. Usable excludes space reserved by
// dock struts on that monitor.
type Monitor struct {
	ID     int
	Name   string
	Bounds Geometry
	Usable Geometry
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		bounds := Geometry{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{ID: i, Name: outputName, Bounds: bounds, Usable: bounds})
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	if rootW, rootH, struts, ok := c.dockStruts(); ok {
		for i := range monitors {
			monitors[i].Usable = UsableArea(monitors[i].Bounds, rootW, rootH, struts)
		}
	}
	return monitors, nil
}

// dockStruts collects the struts of every dock window. Docks that only set
// _NET_WM_STRUT are widened to span the whole root edge.
func (c *Connection) dockStruts() (int, int, []ewmh.WmStrutPartial, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, nil, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, 0, nil, false
	}

	var struts []ewmh.WmStrutPartial
	for _, windowID := range clients {
		if !c.isDock(windowID) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			struts = append(struts, *sp)
			continue
		}
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			struts = append(struts, ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			})
		}
	}
	return rootWidth, rootHeight, struts, len(struts) > 0
}

func (c *Connection) isDock(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// UsableArea shrinks a monitor by the parts of each strut that overlap it.
func UsableArea(mon Geometry, rootWidth, rootHeight int, struts []ewmh.WmStrutPartial) Geometry {
	var left, right, top, bottom int
	monX2 := mon.X + mon.Width
	monY2 := mon.Y + mon.Height

	for _, sp := range struts {
		// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
		if sp.Top > 0 {
			top = max(top, overlap(mon.X, mon.Y, monX2, monY2,
				int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top)).h)
		}
		// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
		if sp.Bottom > 0 {
			bottom = max(bottom, overlap(mon.X, mon.Y, monX2, monY2,
				int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight).h)
		}
		// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
		if sp.Left > 0 {
			left = max(left, overlap(mon.X, mon.Y, monX2, monY2,
				0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1).w)
		}
		// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
		if sp.Right > 0 {
			right = max(right, overlap(mon.X, mon.Y, monX2, monY2,
				rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1).w)
		}
	}

	usable := Geometry{
		X:      mon.X + left,
		Y:      mon.Y + top,
		Width:  max(mon.Width-left-right, 1),
		Height: max(mon.Height-top-bottom, 1),
	}
	return usable
}

type intersection struct {
	w int
	h int
}

func overlap(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
