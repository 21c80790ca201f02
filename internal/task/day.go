package task

import (
	"slices"
	"time"
)

// Day holds all tasks for a single day.
type Day struct {
	Date  time.Time
	tasks []*Task // sorted by Start
}

// NewDay creates a Day for the given date.
func NewDay(date time.Time) *Day {
	return &Day{
		Date:  truncateToDay(date),
		tasks: make([]*Task, 0),
	}
}

// Tasks returns a copy of the task slice.
func (d *Day) Tasks() []*Task {
	result := make([]*Task, len(d.tasks))
	copy(result, d.tasks)
	return result
}

// AddTask adds a task to the day, maintaining sorted order by start time.
// Overlaps are not rejected here; conflict detection happens before commit.
func (d *Day) AddTask(t *Task) {
	if t == nil {
		return
	}
	d.tasks = append(d.tasks, t)
	slices.SortStableFunc(d.tasks, func(a, b *Task) int {
		return a.Start.Compare(b.Start)
	})
}

// FindConflict returns the earliest task of the day that intersects [start, end).
func (d *Day) FindConflict(start, end time.Time, excludeID string) *Task {
	return FindConflict(Interval{Start: start, End: end}, d.tasks, excludeID)
}

// Len returns the number of tasks in the day.
func (d *Day) Len() int {
	return len(d.tasks)
}

// DayStats holds statistics for a single day.
type DayStats struct {
	Minutes     int
	DoneMinutes int
	TotalBlocks int
	DoneBlocks  int
	Events      int
}

// DonePercent returns the percentage of scheduled minutes marked done.
func (s DayStats) DonePercent() int {
	if s.Minutes == 0 {
		return 0
	}
	return (s.DoneMinutes * 100) / s.Minutes
}

// Stats calculates statistics for the day.
func (d *Day) Stats() DayStats {
	var stats DayStats
	for _, t := range d.tasks {
		stats.TotalBlocks++
		stats.Minutes += t.Duration()
		if t.Done {
			stats.DoneBlocks++
			stats.DoneMinutes += t.Duration()
		}
		if t.IsEvent() {
			stats.Events++
		}
	}
	return stats
}

// truncateToDay removes the time component from a time.Time.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
