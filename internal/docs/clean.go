package docs

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Clean normalises raw tool output for display: it removes ANSI escape
// sequences and backspace overstrike, drops other control characters,
// collapses runs of blank lines and trims the ends.
func Clean(raw string) string {
	text := ansi.Strip(removeOverstrike(raw))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blankCount := 0
	for _, line := range lines {
		line = strings.TrimRightFunc(stripControlChars(line), unicode.IsSpace)
		if line == "" {
			blankCount++
			if blankCount <= 1 {
				out = append(out, "")
			}
			continue
		}
		blankCount = 0
		out = append(out, line)
	}

	// Trim leading blank lines.
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	// Trim trailing blank lines.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// removeOverstrike resolves "x\bx" (bold) and "_\bx" (underline) pairs
// emitted by nroff into the final character. A backspace never crosses a
// line break.
func removeOverstrike(text string) string {
	if !strings.ContainsRune(text, '\b') {
		return text
	}
	runes := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\b' {
			if n := len(runes); n > 0 && runes[n-1] != '\n' {
				runes = runes[:len(runes)-1]
			}
			continue
		}
		runes = append(runes, r)
	}
	return string(runes)
}

// stripControlChars removes control characters from a line,
// preserving tabs.
func stripControlChars(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
