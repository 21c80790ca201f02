package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/calendar"
	"github.com/javiermolinar/weekplan/internal/dateutil"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as an iCalendar (.ics) file",
		Long: `Export the tasks in a date range as iCalendar data.

Without dates the current week is exported. Recurring tasks become one
event with a weekly RRULE; instances that were skipped or detached are
listed as EXDATEs.`,
		Example: `  weekplan export -o week.ics
  weekplan export --start=2025-01-01 --end=2025-03-31 -o q1.ics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				dateRange *dateutil.DateRange
				err       error
			)
			if startDate == "" && endDate == "" {
				monday, sunday := dateutil.WeekRange(a.today())
				dateRange = &dateutil.DateRange{Start: monday, End: sunday}
			} else if dateRange, err = dateutil.NewDateRange(startDate, endDate); err != nil {
				return err
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := svc.Range(cmd.Context(), dateRange.Start, dateRange.ExclusiveEnd())
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			data, err := calendar.Export(tasks, a.now())
			if err != nil {
				return fmt.Errorf("exporting calendar: %w", err)
			}

			if output == "" || output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), data)
				return err
			}
			if err := os.WriteFile(output, []byte(data), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks (%s) to %s\n", len(tasks), rangeHeader(dateRange), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to this week)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
