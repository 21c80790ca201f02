// Package dateutil provides date parsing, calendar ranges and the labels used
// by the weekly and monthly views.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMonthFormat = errors.New("month must be in YYYY-MM format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrDateInPast         = errors.New("cannot schedule in the past")
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses both bounds. An empty start means today and an empty
// end means the start day.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end := start
	if endDate != "" {
		if end, err = ParseDate(endDate); err != nil {
			return nil, err
		}
	}
	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}
	return &DateRange{Start: start, End: end}, nil
}

// ExclusiveEnd returns the midnight after the last day of the range.
func (r *DateRange) ExclusiveEnd() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// ParseDate parses YYYY-MM-DD in local time. Empty input means today.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now()), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseMonth parses YYYY-MM in local time and returns the first of the month.
// Empty input means the current month.
func ParseMonth(s string) (time.Time, error) {
	if s == "" {
		first, _ := MonthRange(time.Now())
		return first, nil
	}
	t, err := time.ParseInLocation(MonthLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidMonthFormat
	}
	return t, nil
}

// ParseRelativeDate accepts "", "today", "tomorrow", "next-week", weekday
// names ("friday", next occurrence) with an optional "next-" prefix, or an
// absolute YYYY-MM-DD that must not lie before relativeTo's day.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	}

	if target, ok := weekdayMap[strings.TrimPrefix(input, "next-")]; ok {
		return nextWeekday(today, target), nil
	}
	if strings.HasPrefix(input, "next-") {
		return time.Time{}, ErrInvalidDateFormat
	}

	result, err := time.ParseInLocation(DateLayout, input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	if result.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	return result, nil
}

// ParseWeekday accepts a full English weekday name or its three letter
// prefix, case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	input := strings.ToLower(strings.TrimSpace(s))
	if len(input) < 3 {
		return 0, false
	}
	for name, wd := range weekdayMap {
		if name == input || name[:3] == input {
			return wd, true
		}
	}
	return 0, false
}

// nextWeekday returns the next occurrence of target strictly after today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	days := int(target) - int(today.Weekday())
	if days <= 0 {
		days += 7
	}
	return today.AddDate(0, 0, days)
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	monday, _ := WeekRange(t)
	return monday
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	monday = t.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (first, last time.Time) {
	first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

// WeekOfMonth numbers the week containing t within the month of its Monday,
// so the week is labelled after the month it starts in.
func WeekOfMonth(t time.Time) int {
	monday := StartOfWeek(t)
	return (monday.Day() + 6) / 7
}

// FormatYearMonthWeek renders the weekly view title, e.g. "2025년 1월 2주차".
// Year and month come from t while the week number follows its Monday.
func FormatYearMonthWeek(t time.Time) string {
	return fmt.Sprintf("%d년 %d월 %d주차", t.Year(), int(t.Month()), WeekOfMonth(t))
}

// FormatYearMonth renders the monthly view title, e.g. "2025년 1월".
func FormatYearMonth(t time.Time) string {
	return fmt.Sprintf("%d년 %d월", t.Year(), int(t.Month()))
}

// FormatClock12 renders minutes of day on a 12 hour clock with a Korean
// meridiem, e.g. 930 -> "오후 3:30".
func FormatClock12(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	h, m := minutes/60, minutes%60
	meridiem := "오전"
	if h >= 12 {
		meridiem = "오후"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%s %d:%02d", meridiem, h12, m)
}

// FormatDayLabel renders a short day header such as "1/13 (월)".
func FormatDayLabel(t time.Time) string {
	names := [...]string{"일", "월", "화", "수", "목", "금", "토"}
	return fmt.Sprintf("%d/%d (%s)", int(t.Month()), t.Day(), names[t.Weekday()])
}
