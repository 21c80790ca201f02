package ui

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/summary"
	"github.com/javiermolinar/weekplan/internal/task"
)

func (a *App) listCmd() *cobra.Command {
	var (
		from    string
		to      string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a date range",
		Long: `List the blocks scheduled from --start to --end, both inclusive,
grouped by day. --start defaults to today and --end to --start.`,
		Example: `  weekplan list
  weekplan list --start=2025-01-15
  weekplan list --start=2025-01-15 --end=2025-01-20 -v`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from == "" {
				from = a.today().Format(dateutil.DateLayout)
			}
			span, err := dateutil.NewDateRange(from, to)
			if err != nil {
				return err
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := svc.Range(cmd.Context(), span.Start, span.ExclusiveEnd())
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintf(out, "No tasks found for %s.\n", rangeHeader(span))
				return nil
			}
			for i, day := range groupByDay(tasks) {
				if i > 0 {
					fmt.Fprintln(out)
				}
				a.printDay(out, day, PrintOpts{Verbose: verbose, ShowIDs: true})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "start", "", "First day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "end", "", "Last day (YYYY-MM-DD, default --start)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full titles and memos")

	return cmd
}

// groupByDay buckets date ordered tasks into days, skipping empty ones.
func groupByDay(tasks []*task.Task) []*task.Day {
	var days []*task.Day
	for _, t := range tasks {
		if n := len(days); n == 0 || !days[n-1].Date.Equal(t.Date()) {
			days = append(days, task.NewDay(t.Date()))
		}
		days[len(days)-1].AddTask(t)
	}
	return days
}

func (a *App) printDay(w io.Writer, day *task.Day, opts PrintOpts) {
	stats := day.Stats()
	blocks := fmt.Sprintf("%d blocks", stats.TotalBlocks)
	if stats.TotalBlocks == 1 {
		blocks = "1 block"
	}
	fmt.Fprintf(w, "%s  %s\n", a.dayLabel(day.Date), paint(roleMuted, blocks+", "+summary.FormatMinutes(stats.Minutes)))
	for _, t := range day.Tasks() {
		printTaskRow(w, t, opts)
	}
}
