// Package term detects whether output goes to a terminal, which decides
// whether diagnostics are colored in auto mode.
package term

import "os"

// IsColorTerminal reports whether f is a terminal that should receive ANSI
// color. Setting NO_COLOR or TERM=dumb disables color.
func IsColorTerminal(f *os.File) bool {
	if f == nil || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return IsTerminal(f.Fd())
}
