package ui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		date         string
		start        string
		end          string
		kind         string
		repeat       string
		memo         string
		color        string
		keepHolidays bool
		replace      bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task, a recurring task or an important event",
		Long: `Add a block to your calendar.

Recurring tasks repeat on the days given by --repeat within the week
starting at --date. Public holidays are skipped unless --keep-holidays
is set. Overlapping blocks are refused unless --replace is given, in
which case the blocks in the way are deleted.

Without --start the block goes to the next free grid line of the
configured window; without --end it lasts one grid interval.`,
		Example: `  weekplan add "Write documentation" --date=tomorrow --start=09:00 --end=11:00
  weekplan add "Standup" --kind=recurring --repeat=mon,tue,wed,thu,fri --start=09:30 --end=09:45
  weekplan add "Release" --kind=event --date=2025-01-31 --start=14:00 --end=15:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planner := scheduler.New(a.config.Week)
			if start == "" {
				slot := planner.NextAvailableStart(a.now())
				if date == "" {
					date = slot.Date.Format(dateutil.DateLayout)
				}
				start = slot.Start
				if end == "" {
					end = slot.End
				}
			}
			if end == "" {
				var err error
				if end, err = planner.DefaultEnd(start); err != nil {
					return err
				}
			}

			day, err := dateutil.ParseRelativeDate(date, a.now())
			if err != nil {
				return err
			}
			k, err := task.ParseKind(kind)
			if err != nil {
				return err
			}

			req := scheduler.AddRequest{
				Kind:         k,
				Title:        args[0],
				Date:         day,
				Start:        start,
				End:          end,
				Memo:         memo,
				Color:        color,
				SkipHolidays: !keepHolidays,
				Replace:      replace,
			}
			if k == task.KindRecurring {
				if req.RepeatDays, err = parseRepeat(day, repeat); err != nil {
					return err
				}
			} else if repeat != "" {
				return errors.New("--repeat needs --kind=recurring")
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Add(cmd.Context(), req)
			if err != nil {
				var conflict *task.ConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("%w (use --replace to overwrite)", err)
				}
				return fmt.Errorf("adding task: %w", err)
			}

			out := cmd.OutOrStdout()
			if !planner.InWindow(start, end) {
				win := a.config.Week
				fmt.Fprintf(out, "%s\n", paint(roleMuted, fmt.Sprintf("Note: outside the visible window %s-%s",
					task.MinutesToTime(win.WindowStart()), task.MinutesToTime(win.WindowEnd()))))
			}
			for _, t := range res.Replaced {
				fmt.Fprintf(out, "Replaced %s %s-%s %s\n", dateutil.FormatDayLabel(t.Date()), t.StartClock(), t.EndClock(), t.Title)
			}
			for _, t := range res.Created {
				fmt.Fprintf(out, "Created %s %s-%s %s  %s\n", dateutil.FormatDayLabel(t.Date()), t.StartClock(), t.EndClock(), t.Title, paint(roleMuted, t.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date: YYYY-MM-DD, today, tomorrow or a weekday (default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, default: next free grid line)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM or 24:00, default: one interval after start)")
	cmd.Flags().StringVar(&kind, "kind", string(task.KindSingle), "Kind: single, recurring or event")
	cmd.Flags().StringVar(&repeat, "repeat", "", "Recurring days: weekday names or day offsets, comma separated")
	cmd.Flags().StringVar(&memo, "memo", "", "Optional memo")
	cmd.Flags().StringVar(&color, "color", a.config.UI.Color, "Color tag (#rrggbb)")
	cmd.Flags().BoolVar(&keepHolidays, "keep-holidays", false, "Schedule recurring instances on public holidays too")
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete overlapping blocks instead of failing")

	return cmd
}

// parseRepeat turns "mon,wed" or "0,2" into sorted day offsets from anchor
// within the following seven days. Empty input means the anchor day only.
func parseRepeat(anchor time.Time, s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return []int{0}, nil
	}

	var offsets []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var off int
		if _, err := strconv.Atoi(part); err == nil {
			offs, err := task.ParseOffsets(part)
			if err != nil {
				return nil, err
			}
			off = offs[0]
		} else {
			wd, ok := dateutil.ParseWeekday(part)
			if !ok {
				return nil, fmt.Errorf("unknown repeat day %q", part)
			}
			off = (int(wd) - int(anchor.Weekday()) + 7) % 7
		}
		if !slices.Contains(offsets, off) {
			offsets = append(offsets, off)
		}
	}
	slices.Sort(offsets)
	return offsets, nil
}
