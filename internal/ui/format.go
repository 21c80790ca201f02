package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/summary"
	"github.com/javiermolinar/weekplan/internal/task"
)

// PrintOpts configures task printing behavior.
type PrintOpts struct {
	Verbose  bool // Show full titles and memos
	ShowIDs  bool // Show task ids
	MaxTitle int  // Maximum title width (0 = auto)
}

// titleWidth calculates the maximum title width based on options.
func (o PrintOpts) titleWidth(defaultWidth int) int {
	if o.MaxTitle > 0 {
		return o.MaxTitle
	}
	if !o.Verbose {
		return defaultWidth
	}
	// "  ○ ★ HH:MM-HH:MM  " is 20 columns
	if available := termWidth() - 20; available > defaultWidth {
		return available
	}
	return defaultWidth
}

// statusSymbol returns the completion indicator for a task.
func statusSymbol(t *task.Task) string {
	if t.Done {
		return paint(roleDone, "✓")
	}
	return "○"
}

// kindSymbol marks events and recurring instances.
func kindSymbol(t *task.Task) string {
	switch {
	case t.IsEvent():
		return paint(roleEvent, "★")
	case t.IsRecurring():
		return paint(roleRecurring, "↻")
	default:
		return " "
	}
}

// printTaskRow prints a single task row with consistent formatting.
func printTaskRow(w io.Writer, t *task.Task, opts PrintOpts) {
	title := ansi.Truncate(t.Title, opts.titleWidth(40), "…")
	fmt.Fprintf(w, "  %s %s %s-%s  %s", statusSymbol(t), kindSymbol(t), t.StartClock(), t.EndClock(), title)
	if opts.ShowIDs {
		fmt.Fprintf(w, "  %s", paint(roleMuted, t.ID))
	}
	fmt.Fprintln(w)
	if opts.Verbose && t.Memo != "" {
		fmt.Fprintf(w, "        %s\n", paint(roleMuted, t.Memo))
	}
}

// dayLabel renders "1/15 (수)" followed by the holiday name, if any.
func (a *App) dayLabel(date time.Time) string {
	label := dateutil.FormatDayLabel(date)
	if name := a.holidays.Name(date); name != "" {
		label += " " + paint(roleHoliday, name)
	}
	return paint(roleHeader, label)
}

// printWeekStats prints the stats summary of a week.
func printWeekStats(w io.Writer, stats task.WeekStats) {
	fmt.Fprintf(w, "  %s  |  %s  |  Blocks: %d  |  Events: %d\n",
		paint(roleHeader, "Scheduled: "+summary.FormatMinutes(stats.Minutes)),
		paint(roleStats, fmt.Sprintf("Done: %d%%", stats.DonePercent())),
		stats.TotalBlocks, stats.Events)

	if day, minutes := stats.BusiestDay(); day >= 0 {
		fmt.Fprintf(w, "  Busiest day: %s (%s)\n", task.WeekdayShortName(day), summary.FormatMinutes(minutes))
	}
	if stats.Minutes > 0 {
		fmt.Fprintf(w, "  Progress: %s\n", ProgressBar(stats.DoneMinutes, stats.Minutes, 20))
	}
}

// ProgressBar creates an ASCII bar showing the share of done minutes.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", width) + "] (0% done)"
	}
	filled := min(width, done*width/total)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", paint(roleStats, bar), paint(roleStats, fmt.Sprintf("(%d%% done)", done*100/total)))
}

// rangeHeader renders "2025-01-13 ~ 2025-01-19".
func rangeHeader(r *dateutil.DateRange) string {
	if r.Start.Equal(r.End) {
		return dateutil.FormatDayLabel(r.Start)
	}
	return r.Start.Format(dateutil.DateLayout) + " ~ " + r.End.Format(dateutil.DateLayout)
}
