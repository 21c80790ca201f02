package task

import "time"

// WeekWindow keeps the focused week together with its neighbours so the
// weekly view can page forward or back without waiting on a reload.
type WeekWindow struct {
	weeks [3]*Week // prev, current, next
}

// NewWeekWindow creates a window over three consecutive weeks.
func NewWeekWindow(prev, current, next *Week) *WeekWindow {
	return &WeekWindow{weeks: [3]*Week{prev, current, next}}
}

// WindowFromTasks buckets tasks into the week containing date and the weeks
// on either side of it.
func WindowFromTasks(date time.Time, tasks []*Task) *WeekWindow {
	monday := startOfWeek(date)
	return NewWeekWindow(
		NewWeekFromTasks(monday.AddDate(0, 0, -7), tasks),
		NewWeekFromTasks(monday, tasks),
		NewWeekFromTasks(monday.AddDate(0, 0, 7), tasks),
	)
}

// WindowRange returns the [start, end) span covered by a window centred on
// the week containing date.
func WindowRange(date time.Time) (start, end time.Time) {
	monday := startOfWeek(date)
	return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, 14)
}

// Current returns the focused week.
func (w *WeekWindow) Current() *Week { return w.weeks[1] }

// Previous returns the week before current.
func (w *WeekWindow) Previous() *Week { return w.weeks[0] }

// Next returns the week after current.
func (w *WeekWindow) Next() *Week { return w.weeks[2] }

// Contains reports whether date falls into any loaded week.
func (w *WeekWindow) Contains(date time.Time) bool {
	for _, wk := range w.weeks {
		if wk != nil && wk.DayByDate(date) != nil {
			return true
		}
	}
	return false
}

// ShiftForward focuses the next week; newNext becomes the trailing week.
func (w *WeekWindow) ShiftForward(newNext *Week) {
	w.weeks = [3]*Week{w.weeks[1], w.weeks[2], newNext}
}

// ShiftBackward focuses the previous week; newPrev becomes the leading week.
func (w *WeekWindow) ShiftBackward(newPrev *Week) {
	w.weeks = [3]*Week{newPrev, w.weeks[0], w.weeks[1]}
}

// Tasks returns every task held by the window in date order.
func (w *WeekWindow) Tasks() []*Task {
	var out []*Task
	for _, wk := range w.weeks {
		if wk != nil {
			out = append(out, wk.AllTasks()...)
		}
	}
	return out
}

// Apply returns a new window with c applied and the change that undoes it.
// The receiver is left untouched.
func (w *WeekWindow) Apply(c Change) (*WeekWindow, Change) {
	tasks, rollback := Optimistic(w.Tasks(), c)
	return WindowFromTasks(w.Current().StartDate, tasks), rollback
}
