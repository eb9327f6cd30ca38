package palette

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/ipc"
)

// Menu actions.
const (
	actionSidePrefix = "side:"
	ActionAuto       = "auto"
	ActionVisible    = "visible"
	ActionOnline     = "online"
	ActionReload     = "reload"
	ActionQuit       = "quit"
)

// Controller is the part of the daemon client the menu drives.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	SetSide(side dock.Side) (*ipc.PreferenceData, error)
	ToggleAuto() (*ipc.PreferenceData, error)
	ToggleVisible() (*ipc.VisibleData, error)
	Lookup(name string, online bool) (*ipc.LookupData, error)
	Reload() error
	Quit() error
}

var _ Controller = (*ipc.Client)(nil)

var sideIcons = map[dock.Side]string{
	dock.Top:    "go-up",
	dock.Bottom: "go-down",
	dock.Left:   "go-previous",
	dock.Right:  "go-next",
}

// Items builds the control menu for the daemon's current state.
func Items(status *ipc.StatusData) []Item {
	app := status.DocApp
	if app == "" {
		app = "no documentation shown"
	}
	items := []Item{{Label: "wingman: " + app, IsHeader: true}}

	for _, side := range dock.Sides {
		items = append(items, Item{
			Label:    "Dock " + string(side),
			Action:   actionSidePrefix + string(side),
			Icon:     sideIcons[side],
			IsActive: status.Side == side,
		})
	}

	auto := "Auto-position: off (turn on)"
	if status.AutoPosition {
		auto = "Auto-position: on (turn off)"
	}
	items = append(items, Item{Label: auto, Action: ActionAuto, Icon: "view-restore"})

	visible := "Show panel"
	if status.Visible {
		visible = "Hide panel"
	}
	items = append(items, Item{Label: visible, Action: ActionVisible, Icon: "view-visible"})

	if status.DocApp != "" {
		items = append(items, Item{
			Label:  "Online docs for " + status.DocApp,
			Action: ActionOnline,
			Icon:   "web-browser",
		})
	}

	return append(items,
		Item{Label: "Reload config", Action: ActionReload, Icon: "view-refresh"},
		Item{Label: "Quit daemon", Action: ActionQuit, Icon: "application-exit"},
	)
}

// Message summarises the daemon state for launchers with a message bar.
func Message(status *ipc.StatusData) string {
	parts := []string{"side: " + string(status.Side)}
	if status.App != "" {
		parts = append([]string{"focused: " + status.App}, parts...)
	}
	if status.DocSource != "" {
		parts = append(parts, "source: "+string(status.DocSource))
	}
	return strings.Join(parts, "  ")
}

// Dispatch performs action against c and returns a one-line result.
func Dispatch(c Controller, status *ipc.StatusData, action string) (string, error) {
	switch {
	case strings.HasPrefix(action, actionSidePrefix):
		side, err := dock.ParseSide(strings.TrimPrefix(action, actionSidePrefix))
		if err != nil {
			return "", err
		}
		pref, err := c.SetSide(side)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("docked %s", pref.Side), nil

	case action == ActionAuto:
		pref, err := c.ToggleAuto()
		if err != nil {
			return "", err
		}
		if pref.AutoPosition {
			return "auto-position on", nil
		}
		return "auto-position off", nil

	case action == ActionVisible:
		v, err := c.ToggleVisible()
		if err != nil {
			return "", err
		}
		if v.Visible {
			return "panel shown", nil
		}
		return "panel hidden", nil

	case action == ActionOnline:
		if _, err := c.Lookup(status.DocApp, true); err != nil {
			return "", err
		}
		return "online lookup for " + status.DocApp, nil

	case action == ActionReload:
		if err := c.Reload(); err != nil {
			return "", err
		}
		return "config reloaded", nil

	case action == ActionQuit:
		if err := c.Quit(); err != nil {
			return "", err
		}
		return "daemon stopping", nil
	}
	return "", fmt.Errorf("unknown menu action %q", action)
}

// Run shows the control menu and performs the chosen action. A cancelled
// menu returns an empty result and no error.
func Run(ctx context.Context, b Backend, c Controller) (string, error) {
	status, err := c.GetStatus()
	if err != nil {
		return "", err
	}
	item, err := b.Show(ctx, "wingman", Items(status), Message(status))
	if errors.Is(err, ErrCancelled) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Dispatch(c, status, item.Action)
}
