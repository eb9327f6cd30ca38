package dock

import (
	"github.com/wingman-panel/wingman/internal/platform"
)

// PanelSize bounds the panel geometry.
type PanelSize struct {
	MinWidth int
	MaxWidth int
	Height   int
	// Gap separates the panel from the window edge.
	Gap int
}

// DefaultPanelSize matches the panel's fixed layout.
func DefaultPanelSize() PanelSize {
	return PanelSize{MinWidth: 400, MaxWidth: 800, Height: 200}
}

func (s PanelSize) normalized() PanelSize {
	d := DefaultPanelSize()
	if s.MinWidth <= 0 {
		s.MinWidth = d.MinWidth
	}
	if s.MaxWidth < s.MinWidth {
		s.MaxWidth = max(d.MaxWidth, s.MinWidth)
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.Gap < 0 {
		s.Gap = 0
	}
	return s
}

// Place computes the panel rectangle for a window. Top and bottom panels
// follow the window width within [MinWidth, MaxWidth] and are centred
// horizontally; left and right panels use MinWidth and are centred
// vertically. The result is kept inside the usable area of the display
// holding the window. With no displays the rectangle is returned unclamped.
func Place(side Side, window platform.Rect, size PanelSize, displays []platform.Display) platform.Rect {
	size = size.normalized()

	var r platform.Rect
	switch side {
	case Bottom, Top:
		r.Width = min(max(window.Width, size.MinWidth), size.MaxWidth)
		r.Height = size.Height
		r.X = window.X + (window.Width-r.Width)/2
		if side == Top {
			r.Y = window.Y - size.Gap - r.Height
		} else {
			r.Y = window.Y + window.Height + size.Gap
		}
	case Left, Right:
		r.Width = size.MinWidth
		r.Height = size.Height
		r.Y = window.Y + (window.Height-r.Height)/2
		if side == Left {
			r.X = window.X - size.Gap - r.Width
		} else {
			r.X = window.X + window.Width + size.Gap
		}
	default:
		return Place(Top, window, size, displays)
	}

	if len(displays) == 0 {
		return r
	}
	d, ok := platform.DisplayFor(displays, window)
	if !ok {
		d = displays[0]
	}
	area := d.Usable
	if area.Empty() {
		area = d.Bounds
	}
	return clamp(r, area)
}

// clamp moves r inside area, aligning to the area origin when r is larger.
func clamp(r, area platform.Rect) platform.Rect {
	if r.X+r.Width > area.X+area.Width {
		r.X = area.X + area.Width - r.Width
	}
	if r.X < area.X {
		r.X = area.X
	}
	if r.Y+r.Height > area.Y+area.Height {
		r.Y = area.Y + area.Height - r.Height
	}
	if r.Y < area.Y {
		r.Y = area.Y
	}
	return r
}
