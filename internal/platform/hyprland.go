package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/wingman-panel/wingman/internal/procexec"
)

type hyprWindow struct {
	Address      string `json:"address"`
	At           []int  `json:"at"`
	Size         []int  `json:"size"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	PID          int    `json:"pid"`
}

type hyprMonitor struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Scale    float64 `json:"scale"`
	Reserved []int   `json:"reserved"`
}

// HyprlandBackend queries Hyprland through hyprctl.
type HyprlandBackend struct {
	runner procexec.Runner
	lookup NameLookup
}

var _ Backend = (*HyprlandBackend)(nil)

// NewHyprlandBackend creates a backend that shells out to hyprctl.
func NewHyprlandBackend(runner procexec.Runner) *HyprlandBackend {
	return &HyprlandBackend{runner: runner, lookup: defaultNameLookup()}
}

func (b *HyprlandBackend) Name() string { return "hyprland" }

// ActiveWindow returns the focused client.
func (b *HyprlandBackend) ActiveWindow(ctx context.Context) (Snapshot, error) {
	out, err := b.runner.Run(ctx, procexec.Command{Name: "hyprctl", Args: []string{"activewindow", "-j"}})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: hyprctl activewindow: %v", ErrBackendUnavailable, err)
	}

	// hyprctl prints "{}" or a plain-text notice when nothing has focus.
	out = bytes.TrimSpace(out)
	if len(out) == 0 || out[0] != '{' {
		return Snapshot{}, ErrNoActiveWindow
	}

	var w hyprWindow
	if err := json.Unmarshal(out, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode hyprland window: %v", ErrBackendUnavailable, err)
	}
	if w.Address == "" || len(w.At) != 2 || len(w.Size) != 2 {
		return Snapshot{}, ErrNoActiveWindow
	}

	class := w.Class
	if class == "" {
		class = w.InitialClass
	}

	return Snapshot{
		ProcessName: appName(ctx, b.lookup, w.PID, class),
		PID:         w.PID,
		Geometry:    Rect{X: w.At[0], Y: w.At[1], Width: w.Size[0], Height: w.Size[1]},
	}, nil
}

// Displays lists monitors in logical coordinates. Reserved areas from
// layer-shell bars are removed from the usable rect.
func (b *HyprlandBackend) Displays(ctx context.Context) ([]Display, error) {
	out, err := b.runner.Run(ctx, procexec.Command{Name: "hyprctl", Args: []string{"monitors", "-j"}})
	if err != nil {
		return nil, fmt.Errorf("%w: hyprctl monitors: %v", ErrBackendUnavailable, err)
	}

	var monitors []hyprMonitor
	if err := json.Unmarshal(out, &monitors); err != nil {
		return nil, fmt.Errorf("%w: decode hyprland monitors: %v", ErrBackendUnavailable, err)
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		scale := m.Scale
		if scale <= 0 {
			scale = 1
		}
		bounds := Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  int(math.Round(float64(m.Width) / scale)),
			Height: int(math.Round(float64(m.Height) / scale)),
		}
		usable := bounds
		// reserved is [left, top, right, bottom].
		if len(m.Reserved) == 4 {
			usable.X += m.Reserved[0]
			usable.Y += m.Reserved[1]
			usable.Width -= m.Reserved[0] + m.Reserved[2]
			usable.Height -= m.Reserved[1] + m.Reserved[3]
			if usable.Empty() {
				usable = bounds
			}
		}
		displays = append(displays, Display{ID: m.ID, Name: m.Name, Bounds: bounds, Usable: usable})
	}
	return displays, nil
}
