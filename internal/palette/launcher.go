package palette

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/wingman-panel/wingman/internal/procexec"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcher drives any dmenu-compatible program: items on stdin, the
// selection (a row index or the label) on stdout.
type launcher struct {
	name   string
	kind   launcherKind
	runner procexec.Runner
}

func (l *launcher) Name() string { return l.name }

// indexOutput reports whether the launcher prints the selected row index
// rather than its text.
func (l *launcher) indexOutput() bool {
	return l.kind == kindRofi || l.kind == kindFuzzel
}

func (l *launcher) Show(ctx context.Context, prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	out, err := l.runner.Run(ctx, procexec.Command{
		Name:  l.name,
		Args:  l.args(prompt, message, items),
		Stdin: l.input(items),
	})
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.name, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}

	item, err := l.parseSelection(selection, items)
	if err != nil {
		return Item{}, err
	}
	// Launchers without non-selectable rows can still return a header.
	if item.IsHeader {
		return Item{}, ErrCancelled
	}
	return item, nil
}

func (l *launcher) args(prompt, message string, items []Item) []string {
	var args []string
	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		if active := activeRows(items); len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","), "-selected-row", active[0])
		}
		if message != "" {
			args = append(args, "-mesg", html.EscapeString(message))
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt+" ")
		}
	case kindWofi:
		args = []string{"--dmenu", "--insensitive"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func activeRows(items []Item) []string {
	var rows []string
	for i, item := range items {
		if item.IsActive && !item.IsHeader {
			rows = append(rows, strconv.Itoa(i))
		}
	}
	return rows
}

func (l *launcher) input(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, l.formatItem(item))
	}
	return strings.Join(lines, "\n")
}

func (l *launcher) formatItem(item Item) string {
	label := sanitizeLabel(item.Label)
	if l.kind != kindRofi {
		return label
	}

	// -markup-rows is on: escape the label and add our own markup.
	label = html.EscapeString(label)
	if item.IsHeader {
		label = "<b>" + label + "</b>"
	}

	// Row properties use a single NUL followed by \x1f-separated key/value pairs.
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if l.indexOutput() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

// isCancelExit reports whether the launcher exited the way launchers do
// when closed without a choice: 1 for Escape, 130 for Ctrl+C.
func isCancelExit(err error) bool {
	var coded interface{ ExitCode() int }
	if !errors.As(err, &coded) {
		return false
	}
	switch coded.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
