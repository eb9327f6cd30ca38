package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wingman-panel/wingman/internal/procexec"
)

type swayRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r swayRect) rect() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type swayNode struct {
	Type             string     `json:"type"`
	Focused          bool       `json:"focused"`
	PID              int        `json:"pid"`
	AppID            string     `json:"app_id"`
	Rect             swayRect   `json:"rect"`
	Nodes            []swayNode `json:"nodes"`
	FloatingNodes    []swayNode `json:"floating_nodes"`
	WindowProperties *struct {
		Class    string `json:"class"`
		Instance string `json:"instance"`
	} `json:"window_properties"`
}

type swayOutput struct {
	Name   string   `json:"name"`
	Active bool     `json:"active"`
	Rect   swayRect `json:"rect"`
}

// SwayBackend queries sway and other wlroots compositors speaking the
// i3 IPC protocol through swaymsg.
type SwayBackend struct {
	runner procexec.Runner
	lookup NameLookup
}

var _ Backend = (*SwayBackend)(nil)

// NewSwayBackend creates a backend that shells out to swaymsg.
func NewSwayBackend(runner procexec.Runner) *SwayBackend {
	return &SwayBackend{runner: runner, lookup: defaultNameLookup()}
}

func (b *SwayBackend) Name() string { return "sway" }

// ActiveWindow returns the focused view from the layout tree.
func (b *SwayBackend) ActiveWindow(ctx context.Context) (Snapshot, error) {
	out, err := b.runner.Run(ctx, procexec.Command{Name: "swaymsg", Args: []string{"-t", "get_tree", "-r"}})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: swaymsg get_tree: %v", ErrBackendUnavailable, err)
	}

	var root swayNode
	if err := json.Unmarshal(out, &root); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode sway tree: %v", ErrBackendUnavailable, err)
	}

	node := findFocused(&root)
	if node == nil || !isView(node) {
		return Snapshot{}, ErrNoActiveWindow
	}

	class := node.AppID
	if class == "" && node.WindowProperties != nil {
		class = node.WindowProperties.Instance
		if class == "" {
			class = node.WindowProperties.Class
		}
	}

	return Snapshot{
		ProcessName: appName(ctx, b.lookup, node.PID, class),
		PID:         node.PID,
		Geometry:    node.Rect.rect(),
	}, nil
}

// Displays lists the active outputs.
func (b *SwayBackend) Displays(ctx context.Context) ([]Display, error) {
	out, err := b.runner.Run(ctx, procexec.Command{Name: "swaymsg", Args: []string{"-t", "get_outputs", "-r"}})
	if err != nil {
		return nil, fmt.Errorf("%w: swaymsg get_outputs: %v", ErrBackendUnavailable, err)
	}

	var outputs []swayOutput
	if err := json.Unmarshal(out, &outputs); err != nil {
		return nil, fmt.Errorf("%w: decode sway outputs: %v", ErrBackendUnavailable, err)
	}

	displays := make([]Display, 0, len(outputs))
	for i, o := range outputs {
		if !o.Active {
			continue
		}
		displays = append(displays, Display{ID: i, Name: o.Name, Bounds: o.Rect.rect(), Usable: o.Rect.rect()})
	}
	return displays, nil
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused {
		return n
	}
	for i := range n.Nodes {
		if f := findFocused(&n.Nodes[i]); f != nil {
			return f
		}
	}
	for i := range n.FloatingNodes {
		if f := findFocused(&n.FloatingNodes[i]); f != nil {
			return f
		}
	}
	return nil
}

// isView rejects focused workspaces and outputs, which sway reports when
// an empty workspace has focus.
func isView(n *swayNode) bool {
	if n.Type != "con" && n.Type != "floating_con" {
		return false
	}
	return n.PID > 0 || n.AppID != "" || n.WindowProperties != nil
}
