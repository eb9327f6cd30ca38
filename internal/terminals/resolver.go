// Package terminals maps a focused terminal emulator to the command running
// inside it.
package terminals

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

// Proc is one entry of the process table.
type Proc struct {
	PID     int32
	Name    string
	Created int64
}

// ProcessTable lists the direct children of a process.
type ProcessTable interface {
	Children(ctx context.Context, pid int32) ([]Proc, error)
}

// Resolver substitutes the foreground command for known terminal emulators.
type Resolver struct {
	procs ProcessTable

	mu        sync.RWMutex
	terminals map[string]bool
}

// NewResolver creates a resolver for the given terminal process names. A nil
// table reads the live process table.
func NewResolver(names []string, procs ProcessTable) *Resolver {
	if procs == nil {
		procs = SystemTable{}
	}
	r := &Resolver{procs: procs}
	r.UpdateTerminals(names)
	return r
}

// UpdateTerminals replaces the set of terminal process names.
func (r *Resolver) UpdateTerminals(names []string) {
	m := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			m[name] = true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminals = m
}

// IsTerminal reports whether name is a known terminal emulator.
func (r *Resolver) IsTerminal(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.terminals[strings.ToLower(name)]
}

// Foreground returns the name of the command running in the terminal owned
// by pid: the newest child of the terminal's newest shell. Processes that
// command starts in turn (a pager, a language server) are not followed. It
// reports false when the terminal only runs an idle shell.
func (r *Resolver) Foreground(ctx context.Context, pid int, name string) (string, bool) {
	if pid <= 0 || !r.IsTerminal(name) {
		return "", false
	}

	shells, err := r.procs.Children(ctx, int32(pid))
	if err != nil || len(shells) == 0 {
		return "", false
	}
	commands, err := r.procs.Children(ctx, newest(shells).PID)
	if err != nil || len(commands) == 0 {
		return "", false
	}
	cmd := newest(commands)
	if cmd.Name == "" {
		return "", false
	}
	return cmd.Name, true
}

func newest(procs []Proc) Proc {
	best := procs[0]
	for _, p := range procs[1:] {
		if p.Created > best.Created || (p.Created == best.Created && p.PID > best.PID) {
			best = p
		}
	}
	return best
}

// SystemTable reads /proc through gopsutil.
type SystemTable struct{}

// Children lists the direct children of pid. A process without children
// yields an empty slice.
func (SystemTable) Children(ctx context.Context, pid int32) ([]Proc, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, err
	}
	children, err := p.ChildrenWithContext(ctx)
	if err != nil {
		if errors.Is(err, process.ErrorNoChildren) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]Proc, 0, len(children))
	for _, c := range children {
		name, err := c.NameWithContext(ctx)
		if err != nil {
			continue
		}
		created, _ := c.CreateTimeWithContext(ctx)
		out = append(out, Proc{PID: c.Pid, Name: name, Created: created})
	}
	return out, nil
}

// ProcessName returns the kernel name of pid.
func ProcessName(ctx context.Context, pid int) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}
