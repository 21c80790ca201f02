// Package nav holds the calendar navigation state and the drag selection
// machine. Both are plain values so the TUI model can copy, test and persist
// them.
package nav

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is returned when decoded state fails validation.
var ErrInvalidState = errors.New("invalid view state")

// Mode selects the calendar page.
type Mode string

const (
	ModeWeekly  Mode = "weekly"
	ModeMonthly Mode = "monthly"
)

// ViewState is which page is shown and where the cursor sits.
type ViewState struct {
	Mode       Mode      `json:"mode"`
	WeekStart  time.Time `json:"week_start"` // Monday of the weekly page
	Month      time.Time `json:"month"`      // first day of the monthly page
	CursorDay  int       `json:"cursor_day"` // 0=Monday
	CursorSlot int       `json:"cursor_slot"`
}

// New returns the weekly page of the week containing now with the cursor on
// today.
func New(now time.Time) ViewState {
	return ViewState{
		Mode:      ModeWeekly,
		WeekStart: monday(now),
		Month:     firstOfMonth(now),
		CursorDay: weekdayIndex(now),
	}
}

// CursorDate returns the date under the weekly cursor.
func (s ViewState) CursorDate() time.Time {
	return s.WeekStart.AddDate(0, 0, s.CursorDay)
}

// NextWeek moves the weekly page forward one week.
func (s ViewState) NextWeek() ViewState {
	s.WeekStart = s.WeekStart.AddDate(0, 0, 7)
	return s
}

// PrevWeek moves the weekly page back one week.
func (s ViewState) PrevWeek() ViewState {
	s.WeekStart = s.WeekStart.AddDate(0, 0, -7)
	return s
}

// Today jumps to the page containing now and puts the cursor on today.
func (s ViewState) Today(now time.Time) ViewState {
	s.WeekStart = monday(now)
	s.Month = firstOfMonth(now)
	s.CursorDay = weekdayIndex(now)
	return s
}

// ToggleMode switches between the weekly and monthly pages. The monthly page
// opens on the month of the cursor date; the weekly page reopens on the week
// it was left at.
func (s ViewState) ToggleMode() ViewState {
	if s.Mode == ModeMonthly {
		s.Mode = ModeWeekly
		return s
	}
	s.Mode = ModeMonthly
	s.Month = firstOfMonth(s.CursorDate())
	return s
}

// NextMonth moves the monthly page forward one month.
func (s ViewState) NextMonth() ViewState {
	s.Month = firstOfMonth(s.Month).AddDate(0, 1, 0)
	return s
}

// PrevMonth moves the monthly page back one month.
func (s ViewState) PrevMonth() ViewState {
	s.Month = firstOfMonth(s.Month).AddDate(0, -1, 0)
	return s
}

// SyncMonth points the monthly page at the month of the cursor date.
// It reports whether the page changed.
func (s ViewState) SyncMonth() (ViewState, bool) {
	month := firstOfMonth(s.CursorDate())
	if month.Equal(s.Month) {
		return s, false
	}
	s.Month = month
	return s, true
}

// OpenDay shows the weekly page containing date with the cursor on it.
func (s ViewState) OpenDay(date time.Time) ViewState {
	s.Mode = ModeWeekly
	s.WeekStart = monday(date)
	s.CursorDay = weekdayIndex(date)
	return s
}

// MoveCursor shifts the cursor by days and slots. Moving past Monday or
// Sunday turns the page; slots are clamped to [0, slotCount).
func (s ViewState) MoveCursor(days, slots, slotCount int) ViewState {
	day := s.CursorDay + days
	for day < 0 {
		s = s.PrevWeek()
		day += 7
	}
	for day > 6 {
		s = s.NextWeek()
		day -= 7
	}
	s.CursorDay = day

	s.CursorSlot += slots
	if s.CursorSlot >= slotCount {
		s.CursorSlot = slotCount - 1
	}
	if s.CursorSlot < 0 {
		s.CursorSlot = 0
	}
	return s
}

// Validate checks that decoded state can be shown.
func (s ViewState) Validate() error {
	if s.Mode != ModeWeekly && s.Mode != ModeMonthly {
		return fmt.Errorf("%w: mode %q", ErrInvalidState, s.Mode)
	}
	if s.WeekStart.IsZero() || weekdayIndex(s.WeekStart) != 0 {
		return fmt.Errorf("%w: week must start on a Monday", ErrInvalidState)
	}
	if s.Month.IsZero() || s.Month.Day() != 1 {
		return fmt.Errorf("%w: month must be the first day", ErrInvalidState)
	}
	if s.CursorDay < 0 || s.CursorDay > 6 || s.CursorSlot < 0 {
		return fmt.Errorf("%w: cursor out of range", ErrInvalidState)
	}
	return nil
}

// Encode serializes the state as JSON.
func (s ViewState) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses and validates JSON state. Dates are moved into loc so the
// grid lines up with tasks loaded in local time.
func Decode(data []byte, loc *time.Location) (ViewState, error) {
	var s ViewState
	if err := json.Unmarshal(data, &s); err != nil {
		return ViewState{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	s.WeekStart = inLocation(s.WeekStart, loc)
	s.Month = inLocation(s.Month, loc)
	if err := s.Validate(); err != nil {
		return ViewState{}, err
	}
	return s, nil
}

// inLocation keeps the calendar day of t and moves it to midnight in loc.
func inLocation(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() || loc == nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func monday(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -weekdayIndex(d))
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
