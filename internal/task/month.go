package task

import "time"

// Month is a Monday-start calendar page covering one whole month.
type Month struct {
	First time.Time // first day of the month
	Days  []time.Time
	tasks []*Task
}

// MonthDays returns every date from the Monday on or before the first of the
// month through the Sunday on or after its last day.
func MonthDays(month time.Time) []time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	last := first.AddDate(0, 1, -1)
	start := startOfWeek(first)
	end := startOfWeek(last).AddDate(0, 0, 6)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// NewMonth builds the calendar page for month. Only important events are
// kept, matching what the monthly overview shows.
func NewMonth(month time.Time, tasks []*Task) *Month {
	m := &Month{
		First: time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location()),
		Days:  MonthDays(month),
	}
	for _, t := range tasks {
		if t.IsEvent() {
			m.tasks = append(m.tasks, t)
		}
	}
	return m
}

// InMonth reports whether day belongs to the page's month rather than the
// leading or trailing days of adjacent months.
func (m *Month) InMonth(day time.Time) bool {
	return day.Year() == m.First.Year() && day.Month() == m.First.Month()
}

// TasksOn returns the events of a day, honoring EventDate when set.
func (m *Month) TasksOn(day time.Time) []*Task {
	return TasksOn(m.tasks, day)
}

// Weeks returns the number of calendar rows on the page.
func (m *Month) Weeks() int {
	return len(m.Days) / 7
}

// TasksOn filters tasks to those belonging to day.
func TasksOn(tasks []*Task, day time.Time) []*Task {
	d := truncateToDay(day)
	var out []*Task
	for _, t := range tasks {
		if t.Date().Equal(d) {
			out = append(out, t)
		}
	}
	return out
}
