package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/task"
)

func (a *App) monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the monthly calendar of important events",
		Long: `Print a Monday-start calendar of the month (default: current month)
followed by its important events. Days carrying an event are marked
with '*' and holidays with '!'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, _ := dateutil.MonthRange(a.today())
			if len(args) == 1 {
				var err error
				if first, err = dateutil.ParseMonth(args[0]); err != nil {
					return err
				}
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			month, err := svc.Month(cmd.Context(), first)
			if err != nil {
				return fmt.Errorf("loading month: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s\n", paint(roleHeader, dateutil.FormatYearMonth(month.First)))
			a.printMonthGrid(out, month)

			var events []*task.Task
			for _, day := range month.Days {
				if month.InMonth(day) {
					events = append(events, month.TasksOn(day)...)
				}
			}
			fmt.Fprintln(out)
			if len(events) == 0 {
				fmt.Fprintln(out, "  No important events this month.")
				return nil
			}
			for _, t := range events {
				fmt.Fprintf(out, "  %s %s %s-%s  %s\n", paint(roleEvent, "★"),
					dateutil.FormatDayLabel(t.Date()), t.StartClock(), t.EndClock(), t.Title)
			}
			return nil
		},
	}
}

func (a *App) printMonthGrid(out io.Writer, month *task.Month) {
	var b strings.Builder
	b.WriteString("  ")
	for d := 0; d < 7; d++ {
		// Hangul weekday names are two columns wide.
		fmt.Fprintf(&b, "  %s ", task.WeekdayShortName(d))
	}
	fmt.Fprintln(out, b.String())

	today := a.today()
	for w := 0; w < month.Weeks(); w++ {
		b.Reset()
		b.WriteString("  ")
		for _, day := range month.Days[w*7 : w*7+7] {
			if !month.InMonth(day) {
				b.WriteString("     ")
				continue
			}
			mark := " "
			switch {
			case len(month.TasksOn(day)) > 0:
				mark = "*"
			case a.holidays.IsHoliday(day):
				mark = "!"
			}
			cell := fmt.Sprintf("%3d%s", day.Day(), mark)
			switch {
			case day.Equal(today):
				cell = paint(roleStats, cell)
			case mark == "*":
				cell = paint(roleEvent, cell)
			case mark == "!":
				cell = paint(roleHoliday, cell)
			}
			b.WriteString(" " + cell)
		}
		fmt.Fprintln(out, b.String())
	}
}
