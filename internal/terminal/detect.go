// Package terminal provides terminal detection utilities.
package terminal

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var isTerminal = term.IsTerminal

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

// ColorEnabled reports whether colored output should be written to w.
// NO_COLOR disables color regardless of the terminal.
func ColorEnabled(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(w)
}
