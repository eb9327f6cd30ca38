// Package palette shows wingman's control menu through a dmenu-style
// launcher: rofi, fuzzel, wofi or dmenu.
package palette

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wingman-panel/wingman/internal/procexec"
)

// ErrCancelled is returned when the user closes the launcher without
// choosing anything.
var ErrCancelled = errors.New("palette cancelled")

// ErrNoLauncher is returned when none of the supported launchers is on PATH.
var ErrNoLauncher = errors.New("no launcher found in PATH (looked for: rofi, fuzzel, wofi, dmenu)")

// Launchers lists the supported launchers in detection order.
var Launchers = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// Item is one row of the menu.
type Item struct {
	Label  string
	Action string
	Icon   string
	// IsHeader rows are informational and never returned as a selection.
	IsHeader bool
	// IsActive highlights the row (the current dock side, for example).
	IsActive bool
}

// Backend shows items to the user and returns the chosen one.
type Backend interface {
	Name() string
	Show(ctx context.Context, prompt string, items []Item, message string) (Item, error)
}

// Detect returns the first launcher that available reports as installed.
func Detect(available func(string) bool) (string, error) {
	for _, name := range Launchers {
		if available(name) {
			return name, nil
		}
	}
	return "", ErrNoLauncher
}

// NewBackend returns the launcher called name, or the first one found
// when name is empty or "auto".
func NewBackend(name string, runner procexec.Runner, available func(string) bool) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := Detect(available)
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var kind launcherKind
	switch name {
	case "rofi":
		kind = kindRofi
	case "fuzzel":
		kind = kindFuzzel
	case "wofi":
		kind = kindWofi
	case "dmenu":
		kind = kindDmenu
	default:
		return nil, fmt.Errorf("unknown launcher %q (expected: auto, rofi, fuzzel, wofi, dmenu)", name)
	}
	if !available(name) {
		return nil, fmt.Errorf("launcher %q not found in PATH", name)
	}
	return &launcher{name: name, kind: kind, runner: runner}, nil
}
