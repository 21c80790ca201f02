package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Recurrence errors.
var (
	ErrEmptyRecurrence = errors.New("select at least one day to repeat on")
	ErrInvalidOffset   = errors.New("repeat day offset must be between 0 and 6")
)

// Template holds the fields shared by every instance of a recurring task.
type Template struct {
	OwnerID   string
	Title     string
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Memo      string
	Color     string
}

// HolidayChecker reports whether a date is a public holiday.
type HolidayChecker interface {
	IsHoliday(date time.Time) bool
}

type expandOptions struct {
	holidays HolidayChecker
	now      func() time.Time
}

// ExpandOption configures Expand.
type ExpandOption func(*expandOptions)

// WithHolidaySkip drops instances that fall on a holiday.
func WithHolidaySkip(h HolidayChecker) ExpandOption {
	return func(o *expandOptions) {
		o.holidays = h
	}
}

// WithClock overrides the timestamp source for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) ExpandOption {
	return func(o *expandOptions) {
		o.now = now
	}
}

// Expand produces one recurring instance per day offset from anchor.
// Offsets are day deltas from anchor (not weekday names); duplicates are
// ignored and instances come back in date order. All instances share a
// freshly generated group id and carry the full offset set.
func Expand(tmpl Template, anchor time.Time, offsets []int, opts ...ExpandOption) ([]*Task, error) {
	o := expandOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if len(offsets) == 0 {
		return nil, ErrEmptyRecurrence
	}
	days, err := normalizeOffsets(offsets)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(tmpl.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	startMin, err := ParseClock(tmpl.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	endMin, err := ParseClock(tmpl.EndTime)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}
	if endMin <= startMin {
		return nil, ErrEndBeforeStart
	}

	color := tmpl.Color
	if color == "" {
		color = DefaultColor
	}

	groupID := NewID()
	now := o.now()
	out := make([]*Task, 0, len(days))
	for _, d := range days {
		date := anchor.AddDate(0, 0, d)
		if o.holidays != nil && o.holidays.IsHoliday(date) {
			continue
		}
		start, _ := At(date, tmpl.StartTime)
		end, _ := At(date, tmpl.EndTime)
		out = append(out, &Task{
			ID:         NewID(),
			OwnerID:    tmpl.OwnerID,
			Title:      title,
			Start:      start,
			End:        end,
			Memo:       tmpl.Memo,
			Color:      color,
			Kind:       KindRecurring,
			RepeatDays: slices.Clone(days),
			GroupID:    groupID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return out, nil
}

func normalizeOffsets(offsets []int) ([]int, error) {
	days := make([]int, 0, len(offsets))
	for _, d := range offsets {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidOffset, d)
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	slices.Sort(days)
	return days, nil
}

// ParseOffsets parses a comma-separated list of day offsets, e.g. "0,2,4".
func ParseOffsets(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(part) != 1 || part[0] < '0' || part[0] > '6' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOffset, part)
		}
		out = append(out, int(part[0]-'0'))
	}
	if len(out) == 0 {
		return nil, ErrEmptyRecurrence
	}
	return out, nil
}
