package platform

import (
	"context"
	"strings"

	"github.com/wingman-panel/wingman/internal/terminals"
)

// NameLookup resolves a process ID to its kernel name.
type NameLookup func(ctx context.Context, pid int) (string, error)

// appName picks the identity reported for a window: the owning process name
// when pid resolves, otherwise the compositor-supplied class.
func appName(ctx context.Context, lookup NameLookup, pid int, class string) string {
	if pid > 0 && lookup != nil {
		if name, err := lookup(ctx, pid); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	return strings.ToLower(strings.TrimSpace(class))
}

func defaultNameLookup() NameLookup {
	return terminals.ProcessName
}

// ForegroundResolver maps a terminal emulator process to the command
// running inside it.
type ForegroundResolver interface {
	Foreground(ctx context.Context, pid int, name string) (string, bool)
}

// terminalAware replaces terminal emulator names with their foreground
// command.
type terminalAware struct {
	Backend
	resolver ForegroundResolver
}

// WithTerminalResolution wraps b so snapshots of terminal windows report
// the command running inside the terminal.
func WithTerminalResolution(b Backend, r ForegroundResolver) Backend {
	if r == nil {
		return b
	}
	return &terminalAware{Backend: b, resolver: r}
}

func (t *terminalAware) ActiveWindow(ctx context.Context) (Snapshot, error) {
	snap, err := t.Backend.ActiveWindow(ctx)
	if err != nil {
		return snap, err
	}
	if name, ok := t.resolver.Foreground(ctx, snap.PID, snap.ProcessName); ok {
		snap.ProcessName = name
	}
	return snap, nil
}
