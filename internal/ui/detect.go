package ui

import (
	"os"

	"golang.org/x/term"
)

// Styled reports whether output to f should be decorated.
//
// Returns false if:
//   - NO_COLOR is set (https://no-color.org)
//   - TERM is "dumb"
//   - f is not a terminal (redirected output, CI logs)
func Styled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
