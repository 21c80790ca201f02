package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/summary"
	"github.com/javiermolinar/weekplan/internal/task"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		date    string
		copyOut bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show a week's time blocks",
		Long: `Display the Monday to Sunday week containing --date (default: today)
with its blocks grouped by day and the week's stats.

With --copy the plain text summary is placed on the clipboard instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := a.today()
			if date != "" {
				var err error
				if day, err = dateutil.ParseDate(date); err != nil {
					return err
				}
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if copyOut {
				ws, err := summary.BuildWeekSummary(cmd.Context(), svc, dateutil.StartOfWeek(day))
				if err != nil {
					return fmt.Errorf("building week summary: %w", err)
				}
				if err := clipboard.WriteAll(ws.Text(a.holidays)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintf(out, "Copied %s to the clipboard\n", dateutil.FormatYearMonthWeek(ws.Start))
				return nil
			}

			week, err := svc.Week(cmd.Context(), day)
			if err != nil {
				return fmt.Errorf("loading week: %w", err)
			}

			header := fmt.Sprintf("%s  %s ~ %s", dateutil.FormatYearMonthWeek(week.StartDate),
				week.StartDate.Format(dateutil.DateLayout), week.EndDate().Format(dateutil.DateLayout))
			fmt.Fprintf(out, "\n  %s\n", paint(roleHeader, header))
			fmt.Fprintln(out, strings.Repeat("─", 60))

			a.printWeekTable(out, week, PrintOpts{Verbose: verbose, ShowIDs: verbose})

			fmt.Fprintln(out, strings.Repeat("─", 60))
			printWeekStats(out, week.Stats())
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the week summary to the clipboard")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show memos and task ids")
	return cmd
}

func (a *App) printWeekTable(out io.Writer, week *task.Week, opts PrintOpts) {
	for i, day := range week.Days {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "  %s\n", a.dayLabel(day.Date))
		tasks := day.Tasks()
		if len(tasks) == 0 {
			fmt.Fprintf(out, "    %s\n", paint(roleMuted, "-"))
			continue
		}
		for _, t := range tasks {
			printTaskRow(out, t, opts)
		}
	}
}
