package mcp

import "github.com/wingman-panel/wingman/internal/platform"

// GetDocumentationInput is the input for the get_documentation tool.
type GetDocumentationInput struct {
	Name     string `json:"name" jsonschema:"Command name to document (e.g. tar, curl, git)"`
	Online   bool   `json:"online,omitempty" jsonschema:"When true, fetch the configured online page instead of local man/--help output"`
	MaxLines int    `json:"max_lines,omitempty" jsonschema:"Maximum number of lines to return (default: 200, max: 2000)"`
}

// GetDocumentationOutput is the output for the get_documentation tool.
type GetDocumentationOutput struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	Text       string `json:"text"`
	TotalLines int    `json:"total_lines"`
	Truncated  bool   `json:"truncated"`
}

// ActiveWindowInput is the input for the active_window tool.
type ActiveWindowInput struct{}

// ActiveWindowOutput is the output for the active_window tool.
type ActiveWindowOutput struct {
	Backend       string        `json:"backend"`
	App           string        `json:"app"`
	PID           int           `json:"pid,omitempty"`
	Geometry      platform.Rect `json:"geometry"`
	Display       string        `json:"display,omitempty"`
	ShouldTrigger bool          `json:"should_trigger"`
}

// DockStatusInput is the input for the dock_status tool.
type DockStatusInput struct{}

// DockStatusOutput is the output for the dock_status tool.
type DockStatusOutput struct {
	Running       bool           `json:"running"`
	Side          string         `json:"side,omitempty"`
	AutoPosition  bool           `json:"auto_position"`
	Visible       bool           `json:"visible"`
	App           string         `json:"app,omitempty"`
	DocApp        string         `json:"doc_app,omitempty"`
	DocSource     string         `json:"doc_source,omitempty"`
	PanelRect     *platform.Rect `json:"panel_rect,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds,omitempty"`
}
