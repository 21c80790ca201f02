// Package calendar exports tasks as an iCalendar document.
package calendar

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/weekplan/internal/task"
)

// ProductID identifies the generator in exported calendars.
const ProductID = "-//weekplan//weekplan//KO"

// colorProperty carries the task color tag, which COLOR cannot hold as hex.
const colorProperty = ics.ComponentProperty("X-WEEKPLAN-COLOR")

const utcLayout = "20060102T150405Z"

// ErrEmptyGroup is returned when a rule is requested for no instances.
var ErrEmptyGroup = errors.New("recurring group has no instances")

var weekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Export renders tasks as a VCALENDAR. Single tasks and events become one
// VEVENT each; the instances of a recurring group collapse into one VEVENT
// with an RRULE anchored on the earliest instance.
func Export(tasks []*task.Task, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	groups := make(map[string][]*task.Task)
	var order []string
	for _, t := range tasks {
		if !t.IsRecurring() {
			addEvent(cal, t.ID, t, now)
			continue
		}
		if _, ok := groups[t.GroupID]; !ok {
			order = append(order, t.GroupID)
		}
		groups[t.GroupID] = append(groups[t.GroupID], t)
	}

	for _, id := range order {
		instances := groups[id]
		rule, err := GroupRule(instances)
		if err != nil {
			return "", fmt.Errorf("group %s: %w", id, err)
		}
		first := earliest(instances)
		ev := addEvent(cal, id, first, now)
		ev.AddRrule(rule.OrigOptions.RRuleString())
		for _, ex := range Exdates(rule, instances) {
			ev.AddProperty(ics.ComponentPropertyExdate, ex.UTC().Format(utcLayout))
		}
	}

	return cal.Serialize(), nil
}

func addEvent(cal *ics.Calendar, uid string, t *task.Task, now time.Time) *ics.VEvent {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(now)
	if !t.CreatedAt.IsZero() {
		ev.SetCreatedTime(t.CreatedAt)
	}
	if !t.UpdatedAt.IsZero() {
		ev.SetModifiedAt(t.UpdatedAt)
	}
	ev.SetStartAt(t.Start)
	ev.SetEndAt(t.End)
	ev.SetSummary(t.Title)
	if t.Memo != "" {
		ev.SetDescription(t.Memo)
	}
	ev.SetStatus(ics.ObjectStatusConfirmed)
	ev.AddProperty(ics.ComponentPropertyCategories, string(t.Kind))
	if t.Color != "" {
		ev.SetProperty(colorProperty, t.Color)
	}
	return ev
}

// GroupRule builds the weekly rule covering every instance of a recurring
// group: BYDAY lists the instance weekdays and COUNT spans from the earliest
// to the latest instance. The rule is computed in UTC because DTSTART is
// written in UTC, so BYDAY names the UTC weekday. Days inside that span without an instance, such as
// skipped holidays or detached edits, are reported by Exdates.
func GroupRule(instances []*task.Task) (*rrule.RRule, error) {
	if len(instances) == 0 {
		return nil, ErrEmptyGroup
	}

	first := earliest(instances)
	last := first
	var byday []rrule.Weekday
	seen := make(map[time.Weekday]bool)
	for _, t := range instances {
		if t.Start.After(last.Start) {
			last = t
		}
		wd := t.Start.UTC().Weekday()
		if !seen[wd] {
			seen[wd] = true
			byday = append(byday, weekdays[wd])
		}
	}
	sort.Slice(byday, func(i, j int) bool { return byday[i].Day() < byday[j].Day() })

	span, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first.Start.UTC(),
		Byweekday: byday,
		Until:     last.Start.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("building rule: %w", err)
	}

	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first.Start.UTC(),
		Byweekday: byday,
		Count:     len(span.All()),
	})
}

// Exdates returns the occurrences of rule that no instance covers.
func Exdates(rule *rrule.RRule, instances []*task.Task) []time.Time {
	var starts []time.Time
	for _, t := range instances {
		starts = append(starts, t.Start)
	}

	var out []time.Time
	for _, occ := range rule.All() {
		if !slices.ContainsFunc(starts, occ.Equal) {
			out = append(out, occ)
		}
	}
	return out
}

func earliest(tasks []*task.Task) *task.Task {
	first := tasks[0]
	for _, t := range tasks[1:] {
		if t.Start.Before(first.Start) {
			first = t
		}
	}
	return first
}
