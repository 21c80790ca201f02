// Package scheduler provides time-aware scheduling logic for tasks.
package scheduler

import (
	"time"

	"github.com/javiermolinar/weekplan/internal/grid"
	"github.com/javiermolinar/weekplan/internal/task"
)

// Scheduler suggests times for new tasks based on the visible grid window.
type Scheduler struct {
	settings grid.WeekSettings
}

// New creates a new Scheduler for the given week settings.
func New(settings grid.WeekSettings) *Scheduler {
	return &Scheduler{settings: settings}
}

// AvailableSlot represents an available time slot for scheduling.
type AvailableSlot struct {
	Date  time.Time
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// NextAvailableStart returns the next start time a new task should default to.
// Before the window it returns the window start of today. Inside the window it
// rounds up to the next grid line, one global interval long. When no full
// interval fits before the window end it moves to the next day.
func (s *Scheduler) NextAvailableStart(now time.Time) AvailableSlot {
	winStart := s.settings.WindowStart()
	winEnd := s.settings.WindowEnd()
	interval := s.interval()

	nowMin := task.MinuteOfDay(now)
	if now.Second() > 0 || now.Nanosecond() > 0 {
		nowMin++
	}

	if nowMin <= winStart {
		return s.slot(now, winStart, winStart+interval)
	}
	start := roundUp(nowMin, interval, winStart)
	if start+interval <= winEnd {
		return s.slot(now, start, start+interval)
	}
	return s.slot(now.AddDate(0, 0, 1), winStart, winStart+interval)
}

// InWindow reports whether start-end ("HH:MM") lies fully inside the
// configured window. Tasks outside it are still valid, they are just drawn
// beyond the grid edges.
func (s *Scheduler) InWindow(start, end string) bool {
	startMin, err := task.ParseClock(start)
	if err != nil {
		return false
	}
	endMin, err := task.ParseClock(end)
	if err != nil {
		return false
	}
	return startMin >= s.settings.WindowStart() && endMin <= s.settings.WindowEnd()
}

// DefaultEnd returns the end time one global interval after start, capped at
// midnight.
func (s *Scheduler) DefaultEnd(start string) (string, error) {
	startMin, err := task.ParseClock(start)
	if err != nil {
		return "", err
	}
	return task.MinutesToTime(min(startMin+s.interval(), task.MinutesPerDay)), nil
}

func (s *Scheduler) interval() int {
	if s.settings.GlobalInterval <= 0 {
		return 30
	}
	return s.settings.GlobalInterval
}

func (s *Scheduler) slot(date time.Time, start, end int) AvailableSlot {
	end = min(end, s.settings.WindowEnd())
	return AvailableSlot{
		Date:  truncate(date),
		Start: task.MinutesToTime(start),
		End:   task.MinutesToTime(end),
	}
}

// roundUp rounds minute up to the next multiple of interval counted from origin.
func roundUp(minute, interval, origin int) int {
	offset := minute - origin
	if rem := offset % interval; rem != 0 {
		offset += interval - rem
	}
	return origin + offset
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
