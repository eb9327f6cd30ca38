// Package dock decides where the panel goes relative to the focused window.
package dock

import (
	"fmt"
	"strings"
)

// Side is the edge of the focused window the panel attaches to.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

// Sides lists every valid side in menu order.
var Sides = []Side{Top, Bottom, Left, Right}

// ParseSide parses a side name case-insensitively.
func ParseSide(s string) (Side, error) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	if side.Valid() {
		return side, nil
	}
	return "", fmt.Errorf("invalid dock side %q (valid: top, bottom, left, right)", s)
}

// Valid reports whether s is one of the four sides.
func (s Side) Valid() bool {
	switch s {
	case Top, Bottom, Left, Right:
		return true
	}
	return false
}

// Preference is the user's docking choice.
type Preference struct {
	Side         Side `json:"side" yaml:"side"`
	AutoPosition bool `json:"auto_position" yaml:"auto_position"`
}

// DefaultPreference docks on top with auto-positioning on.
func DefaultPreference() Preference {
	return Preference{Side: Top, AutoPosition: true}
}
