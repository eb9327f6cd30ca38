package config

import (
	"os/exec"
)

// DetectedTool is a helper program wingman may shell out to.
type DetectedTool struct {
	Name    string
	Purpose string
	Path    string
	Found   bool
}

var knownTools = []DetectedTool{
	{Name: "man", Purpose: "manual pages"},
	{Name: "swaymsg", Purpose: "sway/wlroots window queries"},
	{Name: "hyprctl", Purpose: "Hyprland window queries"},
}

// DetectTools reports which helper programs are on PATH.
func DetectTools() []DetectedTool {
	detected := make([]DetectedTool, 0, len(knownTools))
	for _, tool := range knownTools {
		if path, err := exec.LookPath(tool.Name); err == nil {
			tool.Path = path
			tool.Found = true
		}
		detected = append(detected, tool)
	}
	return detected
}
