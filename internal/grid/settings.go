// Package grid builds the non-uniform time axis of the weekly view and maps
// task intervals onto it.
package grid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/javiermolinar/weekplan/internal/task"
)

// DefaultRowHeight is the render height of one slot when none is configured.
const DefaultRowHeight = 48

// Validation errors.
var (
	ErrInvalidWindow    = errors.New("start hour must be before end hour, both between 0 and 23")
	ErrInvalidInterval  = errors.New("interval must be one of 10, 30, 60 or 120 minutes")
	ErrInvalidRule      = errors.New("invalid exception rule")
	ErrOverlappingRules = errors.New("exception rules overlap")
)

// GlobalIntervals lists the selectable default slot sizes in minutes.
var GlobalIntervals = []int{10, 30, 60, 120}

// RuleIntervals lists the selectable exception slot sizes. Zero means the
// whole range is a single slot.
var RuleIntervals = []int{0, 10, 30, 60, 120}

// ExceptionRule overrides the slot size inside [Start, End).
type ExceptionRule struct {
	Start    string `toml:"start" json:"start"` // "HH:MM"
	End      string `toml:"end" json:"end"`     // "HH:MM", "24:00" allowed
	Interval int    `toml:"interval" json:"interval"`
}

// Bounds returns the rule range in minutes of day.
func (r ExceptionRule) Bounds() (start, end int, err error) {
	start, err = task.ParseClock(r.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: start %q: %v", ErrInvalidRule, r.Start, err)
	}
	end, err = task.ParseClock(r.End)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: end %q: %v", ErrInvalidRule, r.End, err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("%w: %s-%s ends before it starts", ErrInvalidRule, r.Start, r.End)
	}
	return start, end, nil
}

// Validate checks the rule bounds and interval.
func (r ExceptionRule) Validate() error {
	if _, _, err := r.Bounds(); err != nil {
		return err
	}
	if !slices.Contains(RuleIntervals, r.Interval) {
		return fmt.Errorf("%w: %s-%s interval %d", ErrInvalidRule, r.Start, r.End, r.Interval)
	}
	return nil
}

func (r ExceptionRule) String() string {
	if r.Interval == 0 {
		return fmt.Sprintf("%s-%s (single slot)", r.Start, r.End)
	}
	return fmt.Sprintf("%s-%s every %dm", r.Start, r.End, r.Interval)
}

// WeekSettings describes the visible window and slot sizes of the weekly view.
// The window spans StartHour:00 through the end of EndHour.
type WeekSettings struct {
	StartHour      int             `toml:"start_hour" json:"startHour"`
	EndHour        int             `toml:"end_hour" json:"endHour"`
	GlobalInterval int             `toml:"global_interval" json:"globalInterval"`
	Exceptions     []ExceptionRule `toml:"exceptions" json:"exceptions"`
	RowHeight      float64         `toml:"-" json:"-"`
}

// DefaultSettings returns 08:00 to 24:00 in 30 minute slots.
func DefaultSettings() WeekSettings {
	return WeekSettings{
		StartHour:      8,
		EndHour:        23,
		GlobalInterval: 30,
	}
}

// WindowStart returns the first minute of day shown.
func (s WeekSettings) WindowStart() int {
	return s.StartHour * 60
}

// WindowEnd returns the minute of day the window stops at (exclusive).
func (s WeekSettings) WindowEnd() int {
	return (s.EndHour + 1) * 60
}

func (s WeekSettings) rowHeight() float64 {
	if s.RowHeight > 0 {
		return s.RowHeight
	}
	return DefaultRowHeight
}

// Validate checks the window, the global interval and every exception rule.
// Rules must be pairwise disjoint.
func (s WeekSettings) Validate() error {
	if s.StartHour < 0 || s.EndHour > 23 || s.StartHour >= s.EndHour {
		return fmt.Errorf("%w: %d-%d", ErrInvalidWindow, s.StartHour, s.EndHour)
	}
	if !slices.Contains(GlobalIntervals, s.GlobalInterval) {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, s.GlobalInterval)
	}
	if s.RowHeight < 0 {
		return fmt.Errorf("row height must not be negative: %v", s.RowHeight)
	}

	type span struct{ start, end, idx int }
	spans := make([]span, 0, len(s.Exceptions))
	for i, r := range s.Exceptions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("exception %d: %w", i+1, err)
		}
		start, end, _ := r.Bounds()
		spans = append(spans, span{start, end, i})
	}
	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			a, b := s.Exceptions[spans[i-1].idx], s.Exceptions[spans[i].idx]
			return fmt.Errorf("%w: %s-%s and %s-%s", ErrOverlappingRules, a.Start, a.End, b.Start, b.End)
		}
	}
	return nil
}

// AddException appends a rule after validating the resulting settings.
func (s WeekSettings) AddException(r ExceptionRule) (WeekSettings, error) {
	next := s
	next.Exceptions = append(slices.Clone(s.Exceptions), r)
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

// RemoveException drops the rule at index i (0-based).
func (s WeekSettings) RemoveException(i int) (WeekSettings, error) {
	if i < 0 || i >= len(s.Exceptions) {
		return s, fmt.Errorf("%w: no exception #%d", ErrInvalidRule, i+1)
	}
	next := s
	next.Exceptions = slices.Delete(slices.Clone(s.Exceptions), i, i+1)
	return next, nil
}
