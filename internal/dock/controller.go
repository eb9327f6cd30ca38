package dock

import (
	"github.com/wingman-panel/wingman/internal/focus"
	"github.com/wingman-panel/wingman/internal/platform"
)

// Controller owns the dock preference and turns settled focus events into
// panel moves. It is not safe for concurrent use; the daemon loop owns it.
type Controller struct {
	pref Preference
	size PanelSize
	last *platform.Rect
}

// NewController creates a controller. An invalid side becomes Top.
func NewController(pref Preference, size PanelSize) *Controller {
	if !pref.Side.Valid() {
		pref.Side = Top
	}
	return &Controller{pref: pref, size: size.normalized()}
}

// Preference returns the current preference.
func (c *Controller) Preference() Preference { return c.pref }

// Size returns the panel size bounds.
func (c *Controller) Size() PanelSize { return c.size }

// SetSize replaces the panel size bounds.
func (c *Controller) SetSize(size PanelSize) {
	c.size = size.normalized()
	c.last = nil
}

// OnSettled returns the rectangle to move the panel to, or false when
// auto-positioning is off or the panel is already there.
func (c *Controller) OnSettled(ev focus.Event, displays []platform.Display) (platform.Rect, bool) {
	if !c.pref.AutoPosition {
		return platform.Rect{}, false
	}
	r := Place(c.pref.Side, ev.Geometry, c.size, displays)
	if c.last != nil && *c.last == r {
		return r, false
	}
	c.last = &r
	return r, true
}

// DragStart records a manual drag, which turns auto-positioning off.
// It reports whether the preference changed.
func (c *Controller) DragStart() bool {
	// The panel is no longer where it was last sent.
	c.last = nil
	if !c.pref.AutoPosition {
		return false
	}
	c.pref.AutoPosition = false
	return true
}

// DragEnd ends a manual drag. Auto-positioning stays off.
func (c *Controller) DragEnd() {
	c.last = nil
}

// SelectSide sets the side and re-enables auto-positioning. It reports
// whether the preference changed.
func (c *Controller) SelectSide(side Side) bool {
	if !side.Valid() {
		return false
	}
	changed := c.pref.Side != side || !c.pref.AutoPosition
	c.pref = Preference{Side: side, AutoPosition: true}
	return changed
}

// ToggleAuto flips auto-positioning, keeping the side, and returns the new
// state.
func (c *Controller) ToggleAuto() bool {
	c.pref.AutoPosition = !c.pref.AutoPosition
	return c.pref.AutoPosition
}
