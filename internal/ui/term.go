package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// role is what a piece of CLI output means; every command colors a role
// the same way.
type role int

const (
	roleHeader role = iota
	roleMuted
	roleStats
	roleDone
	roleEvent
	roleRecurring
	roleHoliday
)

var roleColors = map[role]*color.Color{
	roleHeader:    color.New(color.Bold),
	roleMuted:     color.New(color.FgWhite, color.Faint),
	roleStats:     color.New(color.FgGreen),
	roleDone:      color.New(color.FgGreen),
	roleEvent:     color.New(color.FgYellow, color.Bold),
	roleRecurring: color.New(color.FgCyan),
	roleHoliday:   color.New(color.FgRed),
}

// paint colors s for r. Plain text comes back when color is off.
func paint(r role, s string) string {
	c, ok := roleColors[r]
	if !ok {
		return s
	}
	return c.Sprint(s)
}

// DisableColor turns color output off for the rest of the process.
// fatih/color already honors NO_COLOR and non-tty stdout.
func DisableColor() {
	color.NoColor = true
}

// termWidth is the stdout width, 80 when it is not a terminal.
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
