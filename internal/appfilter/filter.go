// Package appfilter decides which focused process names trigger a
// documentation lookup.
package appfilter

import (
	"strings"
	"unicode"
)

// SelfName is the panel's own process name.
const SelfName = "wingman"

// DefaultInterpreters are runtime names whose processes say nothing about the
// program they run.
var DefaultInterpreters = []string{"python", "pythonw", "node", "ruby", "perl", "java"}

// Filter classifies process names. The zero value rejects only empty names
// and the panel itself.
type Filter struct {
	interpreters []string
	exceptions   map[string]bool
	wordBoundary bool
}

// New builds a filter from interpreter tokens and exact-name exceptions.
func New(interpreters, exceptions []string) Filter {
	f := Filter{exceptions: make(map[string]bool, len(exceptions))}
	for _, tok := range interpreters {
		if tok = normalize(tok); tok != "" {
			f.interpreters = append(f.interpreters, tok)
		}
	}
	for _, name := range exceptions {
		if name = normalize(name); name != "" {
			f.exceptions[name] = true
		}
	}
	return f
}

// WithWordBoundary returns a copy of f that only rejects an interpreter token
// followed by a version or separator, so "nodemon" triggers while "node18"
// does not. By default any name beginning with a token is rejected.
func (f Filter) WithWordBoundary(on bool) Filter {
	f.wordBoundary = on
	return f
}

// Default returns the filter used when nothing is configured.
func Default() Filter {
	return New(DefaultInterpreters, nil)
}

// ShouldTrigger reports whether name should start a documentation lookup.
func (f Filter) ShouldTrigger(name string) bool {
	n := normalize(name)
	if n == "" || IsSelf(n) || f.exceptions[n] {
		return false
	}
	for _, tok := range f.interpreters {
		if f.matches(n, tok) {
			return false
		}
	}
	return true
}

// IsSelf reports whether name belongs to the panel process.
func IsSelf(name string) bool {
	return strings.Contains(normalize(name), SelfName)
}

func (f Filter) matches(name, tok string) bool {
	if f.wordBoundary {
		return hasToken(name, tok)
	}
	return strings.HasPrefix(name, tok)
}

// hasToken matches tok as a whole leading word: "python3.12" and
// "python-config" match "python", "pythonista" does not.
func hasToken(name, tok string) bool {
	if !strings.HasPrefix(name, tok) {
		return false
	}
	rest := name[len(tok):]
	if rest == "" {
		return true
	}
	r := rune(rest[0])
	return unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
