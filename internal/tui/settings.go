package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/wingman-panel/wingman/internal/config"
	"github.com/wingman-panel/wingman/internal/dock"
)

// ErrCancelled is returned by EditSettings when the user aborts the form.
var ErrCancelled = errors.New("settings edit cancelled")

// settingsValues holds the form-bound values (strings for huh, converted on
// submit).
type settingsValues struct {
	side         string
	auto         bool
	minWidth     string
	maxWidth     string
	height       string
	gap          string
	pollInterval string
	threshold    string
	manWidth     string
	onlineURL    string
	hotkey       string
	exceptions   string
}

func newSettingsValues(cfg *config.Config) *settingsValues {
	return &settingsValues{
		side:         string(cfg.Dock.Side),
		auto:         cfg.Dock.AutoPosition,
		minWidth:     strconv.Itoa(cfg.Panel.MinWidth),
		maxWidth:     strconv.Itoa(cfg.Panel.MaxWidth),
		height:       strconv.Itoa(cfg.Panel.Height),
		gap:          strconv.Itoa(cfg.Panel.Gap),
		pollInterval: cfg.Tracker.PollInterval.String(),
		threshold:    strconv.Itoa(cfg.Tracker.StableThreshold),
		manWidth:     strconv.Itoa(cfg.Docs.ManWidth),
		onlineURL:    cfg.Docs.OnlineURL,
		hotkey:       cfg.ToggleHotkey,
		exceptions:   strings.Join(cfg.Filter.Exceptions, ", "),
	}
}

func validatePositive(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return errors.New("must be a positive whole number")
	}
	return nil
}

func validateNonNegative(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return errors.New("must be zero or a positive whole number")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return errors.New("must be a duration such as 100ms")
	}
	return nil
}

func validateURL(s string) error {
	if !strings.Contains(s, "{query}") {
		return errors.New("must contain {query}")
	}
	return nil
}

// form builds the settings form bound to v.
func (v *settingsValues) form() *huh.Form {
	sideOpts := make([]huh.Option[string], 0, len(dock.Sides))
	for _, side := range dock.Sides {
		sideOpts = append(sideOpts, huh.NewOption(string(side), string(side)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("side").
				Title("Dock Side").
				Description("Edge of the focused window the panel attaches to").
				Options(sideOpts...).
				Value(&v.side),
			huh.NewConfirm().
				Key("auto_position").
				Title("Auto-position").
				Description("Follow the focused window").
				Value(&v.auto),
			huh.NewInput().
				Key("toggle_hotkey").
				Title("Toggle Hotkey").
				Description("X11 keybinding that shows or hides the panel").
				Value(&v.hotkey),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("min_width").
				Title("Panel Min Width").
				Validate(validatePositive).
				Value(&v.minWidth),
			huh.NewInput().
				Key("max_width").
				Title("Panel Max Width").
				Validate(validatePositive).
				Value(&v.maxWidth),
			huh.NewInput().
				Key("height").
				Title("Panel Height").
				Validate(validatePositive).
				Value(&v.height),
			huh.NewInput().
				Key("gap").
				Title("Gap").
				Description("Pixels between the window and the panel").
				Validate(validateNonNegative).
				Value(&v.gap),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("poll_interval").
				Title("Poll Interval").
				Validate(validateDuration).
				Value(&v.pollInterval),
			huh.NewInput().
				Key("stable_threshold").
				Title("Stable Threshold").
				Description("Identical polls before the panel docks").
				Validate(validatePositive).
				Value(&v.threshold),
			huh.NewInput().
				Key("man_width").
				Title("Man Page Width").
				Validate(validatePositive).
				Value(&v.manWidth),
			huh.NewInput().
				Key("online_url").
				Title("Online URL").
				Validate(validateURL).
				Value(&v.onlineURL),
			huh.NewInput().
				Key("exceptions").
				Title("Ignored Apps").
				Description("Comma-separated names that never trigger a lookup").
				Value(&v.exceptions),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// apply copies the form values into cfg. Values that fail to parse leave
// the field unchanged; cfg.Validate catches the rest.
func (v *settingsValues) apply(cfg *config.Config) {
	if side, err := dock.ParseSide(v.side); err == nil {
		cfg.Dock.Side = side
	}
	cfg.Dock.AutoPosition = v.auto

	setInt := func(dst *int, s string, allowZero bool) {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 || (n == 0 && !allowZero) {
			return
		}
		*dst = n
	}
	setInt(&cfg.Panel.MinWidth, v.minWidth, false)
	setInt(&cfg.Panel.MaxWidth, v.maxWidth, false)
	setInt(&cfg.Panel.Height, v.height, false)
	setInt(&cfg.Panel.Gap, v.gap, true)
	setInt(&cfg.Tracker.StableThreshold, v.threshold, false)
	setInt(&cfg.Docs.ManWidth, v.manWidth, false)

	if d, err := time.ParseDuration(strings.TrimSpace(v.pollInterval)); err == nil && d > 0 {
		cfg.Tracker.PollInterval = d
	}
	if validateURL(v.onlineURL) == nil {
		cfg.Docs.OnlineURL = v.onlineURL
	}
	if hk := strings.TrimSpace(v.hotkey); hk != "" {
		cfg.ToggleHotkey = hk
	}

	exceptions := []string{}
	for _, name := range strings.Split(v.exceptions, ",") {
		if name = strings.TrimSpace(name); name != "" {
			exceptions = append(exceptions, name)
		}
	}
	cfg.Filter.Exceptions = exceptions
}

// EditSettings runs the settings form against cfg and updates it in place
// when the user submits.
func EditSettings(cfg *config.Config) error {
	v := newSettingsValues(cfg)
	if err := v.form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return fmt.Errorf("settings form: %w", err)
	}
	v.apply(cfg)
	return nil
}
