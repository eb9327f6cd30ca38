package mcp

import "strings"

const (
	defaultMaxLines = 200
	maxMaxLines     = 2000
)

// clampLines bounds a requested line count to [1, maxMaxLines], using the
// default for zero or negative requests.
func clampLines(n int) int {
	if n <= 0 {
		return defaultMaxLines
	}
	return min(n, maxMaxLines)
}

// headLines keeps the first n lines of text. Documentation front-loads the
// synopsis, so the head is what a caller wants when the page is too long.
func headLines(text string, n int) (out string, total int, truncated bool) {
	if text == "" {
		return "", 0, false
	}
	lines := strings.Split(text, "\n")
	total = len(lines)
	if total <= n {
		return text, total, false
	}
	// Do not end on a blank separator line.
	kept := lines[:n]
	for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, "\n"), total, true
}
