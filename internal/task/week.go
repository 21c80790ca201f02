package task

import (
	"time"
)

// Week holds 7 days starting from Monday.
type Week struct {
	StartDate time.Time // Monday of the week
	Days      [7]*Day   // Monday (0) through Sunday (6)
}

// NewWeek creates a Week starting from the Monday of the given date.
func NewWeek(date time.Time) *Week {
	monday := startOfWeek(date)
	w := &Week{StartDate: monday}

	for i := 0; i < 7; i++ {
		dayDate := monday.AddDate(0, 0, i)
		w.Days[i] = NewDay(dayDate)
	}

	return w
}

// NewWeekFromTasks creates a Week and distributes tasks to their respective days.
// Tasks outside the week's date range are ignored.
func NewWeekFromTasks(date time.Time, tasks []*Task) *Week {
	w := NewWeek(date)

	for _, t := range tasks {
		if day := w.DayByDate(t.Start); day != nil {
			day.AddTask(t)
		}
	}

	return w
}

// Day returns the Day for the given weekday (0=Monday, 6=Sunday).
// Returns nil if weekday is out of range.
func (w *Week) Day(weekday int) *Day {
	if weekday < 0 || weekday > 6 {
		return nil
	}
	return w.Days[weekday]
}

// DayByDate returns the Day for the given date, nil if not in this week.
func (w *Week) DayByDate(date time.Time) *Day {
	truncated := truncateToDay(date)
	for _, day := range w.Days {
		if day.Date.Equal(truncated) {
			return day
		}
	}
	return nil
}

// AllTasks returns all tasks across all days, sorted by date and start time.
func (w *Week) AllTasks() []*Task {
	var result []*Task
	for _, day := range w.Days {
		result = append(result, day.Tasks()...)
	}
	return result
}

// EndDate returns the Sunday of the week.
func (w *Week) EndDate() time.Time {
	return w.StartDate.AddDate(0, 0, 6)
}

// WeekStats holds aggregated statistics for the week.
type WeekStats struct {
	Minutes     int
	DoneMinutes int
	TotalBlocks int
	DoneBlocks  int
	Events      int
	DayStats    [7]DayStats
}

// DonePercent returns the percentage of scheduled minutes marked done.
func (s WeekStats) DonePercent() int {
	if s.Minutes == 0 {
		return 0
	}
	return (s.DoneMinutes * 100) / s.Minutes
}

// BusiestDay returns the weekday (0=Monday) with the most scheduled minutes.
func (s WeekStats) BusiestDay() (weekday int, minutes int) {
	weekday = -1
	for i, ds := range s.DayStats {
		if ds.Minutes > minutes {
			minutes = ds.Minutes
			weekday = i
		}
	}
	return weekday, minutes
}

// Stats calculates statistics for the week.
func (w *Week) Stats() WeekStats {
	var stats WeekStats
	for i, day := range w.Days {
		ds := day.Stats()
		stats.DayStats[i] = ds
		stats.Minutes += ds.Minutes
		stats.DoneMinutes += ds.DoneMinutes
		stats.TotalBlocks += ds.TotalBlocks
		stats.DoneBlocks += ds.DoneBlocks
		stats.Events += ds.Events
	}
	return stats
}

// WeekdayShortName returns the short Korean name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	names := []string{"월", "화", "수", "목", "금", "토", "일"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}

// WeekdayIndex returns the Monday-based index (0..6) of t's weekday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// startOfWeek returns the Monday of the week containing the given date.
func startOfWeek(t time.Time) time.Time {
	t = truncateToDay(t)
	return t.AddDate(0, 0, -WeekdayIndex(t))
}
