// Package term holds the ANSI color state shared by the logger and the
// banner, and decides whether colors are on for this run.
//
// The color codes are package-level strings that are empty while colors are
// off, so callers can concatenate them unconditionally.
package term

import (
	"os"
	"strings"

	xterm "golang.org/x/term"

	"github.com/backmassage/gifclip/internal/config"
)

// ANSI color codes. Empty when colors are disabled.
var (
	Red     = ""
	Green   = ""
	Yellow  = ""
	Blue    = ""
	Cyan    = ""
	Magenta = ""
	NC      = "" // Reset sequence.
)

// Configure resolves mode against the environment and sets or clears every
// color code. Called once from logging.New.
func Configure(mode config.ColorMode) {
	on := resolve(mode)
	for _, c := range []struct {
		v    *string
		code string
	}{
		{&Red, "\033[1;91m"},
		{&Green, "\033[1;92m"},
		{&Yellow, "\033[1;93m"},
		{&Blue, "\033[1;94m"},
		{&Cyan, "\033[1;96m"},
		{&Magenta, "\033[1;95m"},
		{&NC, "\033[0m"},
	} {
		if on {
			*c.v = c.code
		} else {
			*c.v = ""
		}
	}
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// Paint wraps s in color and a reset. It returns s unchanged when colors are
// off or color is empty.
func Paint(color, s string) string {
	if color == "" || !Enabled() {
		return s
	}
	return color + s + NC
}

// resolve applies auto detection: colors only on a stdout terminal, and
// never when NO_COLOR is set (https://no-color.org) or TERM=dumb.
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && xterm.IsTerminal(int(f.Fd()))
}
