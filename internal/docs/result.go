// Package docs resolves documentation for an application name through an
// ordered chain of local lookups that always ends in a result.
package docs

import (
	"errors"
	"fmt"
)

// ErrLookupEmpty means a strategy ran but produced nothing usable. It is an
// internal signal to move to the next strategy and never escapes Get.
var ErrLookupEmpty = errors.New("lookup produced no documentation")

// Source identifies the strategy that produced a Result.
type Source string

const (
	SourceMan      Source = "man"
	SourceHelp     Source = "help"
	SourceFallback Source = "fallback"
	SourceOnline   Source = "online"
)

// Result is one resolved document.
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// FallbackText is the message shown when no strategy found anything.
func FallbackText(app string) string {
	return fmt.Sprintf("No documentation found for %s.", app)
}

// Fallback returns the terminating result of the chain.
func Fallback(app string) Result {
	return Result{Text: FallbackText(app), Source: SourceFallback}
}

// Title returns a short heading describing where r came from.
func (r Result) Title(app string) string {
	switch r.Source {
	case SourceMan:
		return "Man page for " + app
	case SourceHelp:
		return "Help for " + app
	case SourceOnline:
		return "Online results for " + app
	default:
		return app
	}
}
