// Package summary provides shared week summary utilities.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/task"
)

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Start time.Time
	End   time.Time
	Week  *task.Week
	Tasks []*task.Task
	Stats task.WeekStats
}

// HolidayNamer names public holidays; an empty name means a working day.
type HolidayNamer interface {
	Name(date time.Time) string
}

// Loader fetches the tasks a summary is built from.
type Loader interface {
	Range(ctx context.Context, start, end time.Time) ([]*task.Task, error)
}

// SummarizeWeek builds week summary data from tasks and a reference date.
func SummarizeWeek(weekStart time.Time, tasks []*task.Task) *WeekSummary {
	start, end := dateutil.WeekRange(weekStart)
	week := task.NewWeekFromTasks(start, tasks)

	return &WeekSummary{
		Start: start,
		End:   end,
		Week:  week,
		Tasks: week.AllTasks(),
		Stats: week.Stats(),
	}
}

// BuildWeekSummary loads tasks for the week containing weekStart.
// A zero weekStart means the current week.
func BuildWeekSummary(ctx context.Context, src Loader, weekStart time.Time) (*WeekSummary, error) {
	if weekStart.IsZero() {
		weekStart = time.Now()
	}

	start, end := dateutil.WeekRange(weekStart)
	tasks, err := src.Range(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	return SummarizeWeek(start, tasks), nil
}

// Text renders the summary as plain text, one line per task grouped by day.
// It is what gets copied to the clipboard and printed by the CLI.
func (s *WeekSummary) Text(holidays HolidayNamer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s ~ %s)\n",
		dateutil.FormatYearMonthWeek(s.Start),
		s.Start.Format(dateutil.DateLayout),
		s.End.Format(dateutil.DateLayout),
	)

	for i, day := range s.Week.Days {
		header := dateutil.FormatDayLabel(day.Date)
		if holidays != nil {
			if name := holidays.Name(day.Date); name != "" {
				header += " " + name
			}
		}
		b.WriteString("\n" + header + "\n")

		tasks := day.Tasks()
		if len(tasks) == 0 {
			b.WriteString("  -\n")
			continue
		}
		for _, t := range tasks {
			mark := "[ ]"
			if t.Done {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "  %s %s-%s %s%s\n", mark, t.StartClock(), endClock(t), t.Title, kindSuffix(t))
		}
		if ds := s.Stats.DayStats[i]; ds.Minutes > 0 {
			fmt.Fprintf(&b, "  %s, %d%% done\n", FormatMinutes(ds.Minutes), ds.DonePercent())
		}
	}

	fmt.Fprintf(&b, "\n%d blocks, %s scheduled, %d%% done\n",
		s.Stats.TotalBlocks, FormatMinutes(s.Stats.Minutes), s.Stats.DonePercent())
	return b.String()
}

// FormatMinutes renders minutes as "1h 30m", "2h" or "45m".
func FormatMinutes(m int) string {
	h, mm := m/60, m%60
	switch {
	case h > 0 && mm > 0:
		return fmt.Sprintf("%dh %dm", h, mm)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", mm)
	}
}

func endClock(t *task.Task) string {
	return task.MinutesToTime(task.MinuteOfDay(t.Start) + t.Duration())
}

func kindSuffix(t *task.Task) string {
	switch t.Kind {
	case task.KindEvent:
		return " *"
	case task.KindRecurring:
		return " (반복)"
	default:
		return ""
	}
}
