package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/scheduler"
)

func (a *App) editCmd() *cobra.Command {
	var (
		title string
		memo  string
		color string
		date  string
		start string
		end   string
		scope string
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "edit [task-id]",
		Short: "Edit a task",
		Long: `Change the fields given as flags and leave the rest untouched.

Editing one instance of a recurring task detaches it from its group.
With --scope=group (or --all) the title, memo and color of every
instance change instead; times can only be moved one instance at a time.`,
		Example: `  weekplan edit <id> --start=10:00 --end=11:30
  weekplan edit <id> --title="Team sync" --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var req scheduler.EditRequest
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("memo") {
				req.Memo = &memo
			}
			if flags.Changed("color") {
				req.Color = &color
			}
			if flags.Changed("date") {
				d, err := dateutil.ParseRelativeDate(date, a.now())
				if err != nil {
					return err
				}
				req.Date = &d
			}
			if flags.Changed("start") {
				req.Start = &start
			}
			if flags.Changed("end") {
				req.End = &end
			}
			if req == (scheduler.EditRequest{}) {
				return errors.New("nothing to change: pass at least one field flag")
			}

			sc, err := scheduler.ParseScope(scope)
			if err != nil {
				return err
			}
			if all {
				sc = scheduler.ScopeGroup
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Edit(cmd.Context(), args[0], req, sc)
			if err != nil {
				return fmt.Errorf("editing task: %w", err)
			}

			out := cmd.OutOrStdout()
			if res.Task != nil {
				t := res.Task
				fmt.Fprintf(out, "Updated %s %s-%s %s\n", dateutil.FormatDayLabel(t.Date()), t.StartClock(), t.EndClock(), t.Title)
				return nil
			}
			fmt.Fprintf(out, "Updated %d tasks\n", res.Updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&memo, "memo", "", "New memo")
	cmd.Flags().StringVar(&color, "color", "", "New color tag (#rrggbb)")
	cmd.Flags().StringVar(&date, "date", "", "Move to another day")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	cmd.Flags().StringVar(&scope, "scope", string(scheduler.ScopeSingle), "single or group")
	cmd.Flags().BoolVar(&all, "all", false, "Shorthand for --scope=group")

	return cmd
}
