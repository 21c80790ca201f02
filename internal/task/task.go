// Package task defines the core domain types for weekplan.
package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrInvalidKind       = errors.New("kind must be 'single', 'recurring' or 'event'")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrMissingGroup      = errors.New("recurring task requires a group id and repeat days")
	ErrUnexpectedGroup   = errors.New("only recurring tasks carry a group id")
	ErrCrossesMidnight   = errors.New("task must end by midnight of its start day")
)

// Domain errors.
var (
	ErrTaskNotFound = errors.New("task not found")
)

// DefaultColor is the pastel blue the add form preselects.
const DefaultColor = "#93c5fd"

// Colors lists the selectable task color tags.
var Colors = []string{
	"#93c5fd", // blue
	"#6ee7b7", // mint
	"#c4b5fd", // lavender
	"#fda4af", // peach
	"#fde047", // yellow
	"#d4d4d8", // gray
	"#fdba74", // orange
	"#93b3fd", // navy
}

// Kind represents the type of a task.
type Kind string

const (
	KindSingle    Kind = "single"
	KindRecurring Kind = "recurring"
	KindEvent     Kind = "event" // important event, shown on the monthly view
)

// Valid returns true if the kind is a known value.
func (k Kind) Valid() bool {
	switch k {
	case KindSingle, KindRecurring, KindEvent:
		return true
	default:
		return false
	}
}

// ParseKind parses a kind name. "important" is accepted for event.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "task":
		return KindSingle, nil
	case "recurring", "routine":
		return KindRecurring, nil
	case "event", "important":
		return KindEvent, nil
	default:
		return "", ErrInvalidKind
	}
}

// Task represents a scheduled block on the calendar.
type Task struct {
	ID         string
	OwnerID    string
	Title      string
	Start      time.Time
	End        time.Time
	Done       bool
	Memo       string
	Color      string
	Kind       Kind
	EventDate  *time.Time // only for KindEvent, nil means the start date
	RepeatDays []int      // day offsets from the anchor date, only for KindRecurring
	GroupID    string     // shared by every instance of one recurring creation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewID returns a fresh opaque task or group identifier.
func NewID() string {
	return uuid.NewString()
}

// NewSingle creates a single task on date between start and end ("HH:MM").
func NewSingle(owner, title string, date time.Time, start, end string) (*Task, error) {
	return newTask(owner, title, KindSingle, date, start, end)
}

// NewEvent creates an important event on date between start and end ("HH:MM").
func NewEvent(owner, title string, date time.Time, start, end string) (*Task, error) {
	t, err := newTask(owner, title, KindEvent, date, start, end)
	if err != nil {
		return nil, err
	}
	d := truncateToDay(date)
	t.EventDate = &d
	return t, nil
}

func newTask(owner, title string, kind Kind, date time.Time, start, end string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	startAt, err := At(date, start)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	endAt, err := At(date, end)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}
	if !endAt.After(startAt) {
		return nil, ErrEndBeforeStart
	}

	now := time.Now()
	return &Task{
		ID:        NewID(),
		OwnerID:   owner,
		Title:     title,
		Start:     startAt,
		End:       endAt,
		Color:     DefaultColor,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks the task invariants.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if !t.End.After(t.Start) {
		return ErrEndBeforeStart
	}
	if MinuteOfDay(t.Start)+t.Duration() > MinutesPerDay {
		return ErrCrossesMidnight
	}
	if t.Kind == KindRecurring {
		if t.GroupID == "" || len(t.RepeatDays) == 0 {
			return ErrMissingGroup
		}
		for _, d := range t.RepeatDays {
			if d < 0 || d > 6 {
				return ErrInvalidOffset
			}
		}
	} else if t.GroupID != "" {
		return ErrUnexpectedGroup
	}
	return nil
}

// Interval returns the [Start, End) range of the task.
func (t *Task) Interval() Interval {
	return Interval{Start: t.Start, End: t.End}
}

// IsRecurring returns true if the task belongs to a recurring group.
func (t *Task) IsRecurring() bool {
	return t.Kind == KindRecurring && t.GroupID != ""
}

// IsEvent returns true if the task is an important event.
func (t *Task) IsEvent() bool {
	return t.Kind == KindEvent
}

// Date returns the calendar day the task belongs to.
// Events use their event date when set.
func (t *Task) Date() time.Time {
	if t.EventDate != nil {
		return truncateToDay(*t.EventDate)
	}
	return truncateToDay(t.Start)
}

// Duration returns the task duration in minutes.
func (t *Task) Duration() int {
	return int(t.End.Sub(t.Start).Minutes())
}

// StartClock returns the start time of day as "HH:MM".
func (t *Task) StartClock() string {
	return t.Start.Format("15:04")
}

// EndClock returns the end time of day as "HH:MM".
func (t *Task) EndClock() string {
	return t.End.Format("15:04")
}

// IsPast returns true if the task's end has passed.
func (t *Task) IsPast(now time.Time) bool {
	return now.After(t.End)
}

// Detach turns a recurring instance into a standalone single task.
func (t *Task) Detach() {
	if t.Kind != KindRecurring {
		return
	}
	t.Kind = KindSingle
	t.GroupID = ""
	t.RepeatDays = nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.EventDate != nil {
		d := *t.EventDate
		c.EventDate = &d
	}
	c.RepeatDays = slices.Clone(t.RepeatDays)
	return &c
}
