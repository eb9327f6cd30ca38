package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wingman-panel/wingman/internal/appfilter"
	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/focus"
)

// ErrUnreadable means the config file exists but could not be read or
// parsed. Defaults are used in its place.
var ErrUnreadable = errors.New("config file unreadable")

// PanelConfig bounds the panel geometry.
type PanelConfig struct {
	MinWidth int `yaml:"min_width"`
	MaxWidth int `yaml:"max_width"`
	Height   int `yaml:"height"`
	Gap      int `yaml:"gap"`
}

// TrackerConfig tunes focus polling.
type TrackerConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`
	StableThreshold int           `yaml:"stable_threshold"`
}

// DocsConfig tunes documentation lookups.
type DocsConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	ManWidth  int           `yaml:"man_width"`
	OnlineURL string        `yaml:"online_url"`
}

// FilterConfig lists names that never trigger a lookup.
type FilterConfig struct {
	Interpreters []string `yaml:"interpreters"`
	Exceptions   []string `yaml:"exceptions"`
	// WordBoundary narrows interpreter matching to whole leading words.
	WordBoundary bool `yaml:"word_boundary"`
}

// Config is the wingman configuration file.
type Config struct {
	Dock         dock.Preference `yaml:"dock"`
	Panel        PanelConfig     `yaml:"panel"`
	Tracker      TrackerConfig   `yaml:"tracker"`
	Docs         DocsConfig      `yaml:"docs"`
	Filter       FilterConfig    `yaml:"filter"`
	Terminals    []string        `yaml:"terminals"`
	ToggleHotkey string          `yaml:"toggle_hotkey"`
	LogLevel     string          `yaml:"log_level"`
}

// DefaultTerminals are the terminal emulators whose foreground command is
// reported instead of the emulator itself.
var DefaultTerminals = []string{
	"gnome-terminal-server", "gnome-terminal", "konsole", "xterm", "alacritty",
	"kitty", "foot", "wezterm-gui", "terminator", "tilix", "xfce4-terminal",
	"urxvt", "st",
}

func DefaultConfig() *Config {
	size := dock.DefaultPanelSize()
	return &Config{
		Dock: dock.DefaultPreference(),
		Panel: PanelConfig{
			MinWidth: size.MinWidth,
			MaxWidth: size.MaxWidth,
			Height:   size.Height,
			Gap:      size.Gap,
		},
		Tracker: TrackerConfig{
			PollInterval:    focus.DefaultPollInterval,
			StableThreshold: focus.DefaultStableThreshold,
		},
		Docs: DocsConfig{
			Timeout:   3 * time.Second,
			ManWidth:  docs.DefaultManWidth,
			OnlineURL: docs.DefaultOnlineURL,
		},
		Filter: FilterConfig{
			Interpreters: append([]string(nil), appfilter.DefaultInterpreters...),
			Exceptions:   []string{},
		},
		Terminals:    append([]string(nil), DefaultTerminals...),
		ToggleHotkey: "Control-space",
		LogLevel:     "info",
	}
}

func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "wingman", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wingman", "config.yaml"), nil
}

// PanelSize converts the panel section for the dock controller.
func (c *Config) PanelSize() dock.PanelSize {
	return dock.PanelSize{
		MinWidth: c.Panel.MinWidth,
		MaxWidth: c.Panel.MaxWidth,
		Height:   c.Panel.Height,
		Gap:      c.Panel.Gap,
	}
}

// AppFilter builds the lookup filter from the filter section.
func (c *Config) AppFilter() appfilter.Filter {
	return appfilter.New(c.Filter.Interpreters, c.Filter.Exceptions).WithWordBoundary(c.Filter.WordBoundary)
}

// ValidationError describes one field that was reset to its default.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate resets every invalid field to its default, so the config is
// always usable afterwards, and reports each reset as a *ValidationError.
func (c *Config) Validate() error {
	def := DefaultConfig()
	var errs []error
	reset := func(path string, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Err: fmt.Errorf(format, args...)})
	}

	if side, err := dock.ParseSide(string(c.Dock.Side)); err != nil {
		reset("dock.side", "%v; using %q", err, def.Dock.Side)
		c.Dock.Side = def.Dock.Side
	} else {
		c.Dock.Side = side
	}

	if c.Panel.MinWidth <= 0 {
		reset("panel.min_width", "must be > 0; using %d", def.Panel.MinWidth)
		c.Panel.MinWidth = def.Panel.MinWidth
	}
	if c.Panel.MaxWidth < c.Panel.MinWidth {
		reset("panel.max_width", "must be >= min_width; using %d", max(def.Panel.MaxWidth, c.Panel.MinWidth))
		c.Panel.MaxWidth = max(def.Panel.MaxWidth, c.Panel.MinWidth)
	}
	if c.Panel.Height <= 0 {
		reset("panel.height", "must be > 0; using %d", def.Panel.Height)
		c.Panel.Height = def.Panel.Height
	}
	if c.Panel.Gap < 0 {
		reset("panel.gap", "must be >= 0; using 0")
		c.Panel.Gap = 0
	}

	if c.Tracker.PollInterval < 10*time.Millisecond {
		reset("tracker.poll_interval", "must be >= 10ms; using %s", def.Tracker.PollInterval)
		c.Tracker.PollInterval = def.Tracker.PollInterval
	}
	if c.Tracker.StableThreshold < 1 {
		reset("tracker.stable_threshold", "must be >= 1; using %d", def.Tracker.StableThreshold)
		c.Tracker.StableThreshold = def.Tracker.StableThreshold
	}

	if c.Docs.Timeout <= 0 {
		reset("docs.timeout", "must be > 0; using %s", def.Docs.Timeout)
		c.Docs.Timeout = def.Docs.Timeout
	}
	if c.Docs.ManWidth < 20 {
		reset("docs.man_width", "must be >= 20; using %d", def.Docs.ManWidth)
		c.Docs.ManWidth = def.Docs.ManWidth
	}
	if !strings.Contains(c.Docs.OnlineURL, "{query}") {
		reset("docs.online_url", "must contain {query}; using %q", def.Docs.OnlineURL)
		c.Docs.OnlineURL = def.Docs.OnlineURL
	}

	if c.Filter.Interpreters == nil {
		c.Filter.Interpreters = def.Filter.Interpreters
	}
	if c.Filter.Exceptions == nil {
		c.Filter.Exceptions = []string{}
	}
	if len(c.Terminals) == 0 {
		reset("terminals", "must not be empty; using defaults")
		c.Terminals = def.Terminals
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		reset("log_level", "must be one of: debug, info, warn, error; using %q", def.LogLevel)
		c.LogLevel = def.LogLevel
	}

	return errors.Join(errs...)
}
