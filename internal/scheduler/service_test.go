package scheduler

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/weekplan/internal/db"
	"github.com/javiermolinar/weekplan/internal/debuglog"
	"github.com/javiermolinar/weekplan/internal/holiday"
	"github.com/javiermolinar/weekplan/internal/task"
)

const owner = "tester"

var monday = time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "weekplan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	opts = append([]Option{WithHolidays(holiday.Default())}, opts...)
	return NewService(store, owner, opts...)
}

func addSingle(t *testing.T, s *Service, title string, date time.Time, start, end string) *task.Task {
	t.Helper()
	res, err := s.Add(context.Background(), AddRequest{
		Kind:  task.KindSingle,
		Title: title,
		Date:  date,
		Start: start,
		End:   end,
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	return res.Created[0]
}

func allTasks(t *testing.T, s *Service) []*task.Task {
	t.Helper()
	tasks, err := s.Range(context.Background(), monday.AddDate(0, 0, -7), monday.AddDate(0, 0, 21))
	require.NoError(t, err)
	return tasks
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestAdd_Single(t *testing.T) {
	s := newService(t)

	created := addSingle(t, s, "Standup", monday, "09:00", "09:30")

	assert.Equal(t, owner, created.OwnerID)
	assert.Equal(t, task.KindSingle, created.Kind)
	assert.Equal(t, task.DefaultColor, created.Color)

	got, err := s.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
}

func TestAdd_Conflict(t *testing.T) {
	s := newService(t)
	existing := addSingle(t, s, "Review", monday, "09:00", "10:00")

	tests := []struct {
		name       string
		start, end string
		conflict   bool
	}{
		{"overlaps start", "08:30", "09:30", true},
		{"inside", "09:15", "09:45", true},
		{"covers", "08:00", "11:00", true},
		{"touches end", "10:00", "11:00", false},
		{"touches start", "08:00", "09:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Add(context.Background(), AddRequest{
				Title: tt.name,
				Date:  monday,
				Start: tt.start,
				End:   tt.end,
			})
			if tt.conflict {
				assert.ErrorIs(t, err, task.ErrConflict)
				return
			}
			require.NoError(t, err)
			require.NoError(t, s.Delete(context.Background(), res.Created[0].ID))
		})
	}

	_, err := s.Add(context.Background(), AddRequest{Title: "clash", Date: monday, Start: "09:30", End: "10:30"})
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrConflict)

	var conflict *task.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, existing.ID, conflict.Existing.ID)
	assert.Equal(t, "clash", conflict.Candidate.Title)
}

func TestAdd_EarliestConflictReported(t *testing.T) {
	s := newService(t)
	addSingle(t, s, "late", monday, "10:00", "11:00")
	early := addSingle(t, s, "early", monday, "09:00", "10:00")

	_, err := s.Add(context.Background(), AddRequest{Title: "wide", Date: monday, Start: "09:30", End: "10:30"})

	var conflict *task.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, early.ID, conflict.Existing.ID)
}

func TestAdd_Recurring(t *testing.T) {
	s := newService(t)

	res, err := s.Add(context.Background(), AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       monday,
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{0, 2, 4},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 3)

	group := res.Created[0].GroupID
	require.NotEmpty(t, group)
	stored, err := s.Group(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, want := range []time.Weekday{time.Monday, time.Wednesday, time.Friday} {
		assert.Equal(t, want, stored[i].Start.Weekday())
		assert.Equal(t, []int{0, 2, 4}, stored[i].RepeatDays)
	}
}

func TestAdd_RecurringConflictCreatesNothing(t *testing.T) {
	s := newService(t)
	addSingle(t, s, "Dentist", monday.AddDate(0, 0, 4), "07:30", "08:30")

	_, err := s.Add(context.Background(), AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       monday,
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{0, 2, 4},
	})
	require.ErrorIs(t, err, task.ErrConflict)

	assert.Equal(t, []string{"Dentist"}, titles(allTasks(t, s)))
}

func TestAdd_Replace(t *testing.T) {
	s := newService(t)
	a := addSingle(t, s, "A", monday, "07:30", "08:30")
	b := addSingle(t, s, "B", monday.AddDate(0, 0, 2), "06:00", "07:15")
	addSingle(t, s, "keep", monday.AddDate(0, 0, 2), "08:00", "09:00")

	res, err := s.Add(context.Background(), AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       monday,
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{0, 2},
		Replace:    true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	require.Len(t, res.Replaced, 2)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{res.Replaced[0].ID, res.Replaced[1].ID})

	assert.Equal(t, []string{"Gym", "Gym", "keep"}, titles(allTasks(t, s)))
}

func TestAdd_SkipHolidays(t *testing.T) {
	s := newService(t)
	anchor := time.Date(2025, 1, 27, 0, 0, 0, 0, time.Local) // 29th and 30th are 설날

	res, err := s.Add(context.Background(), AddRequest{
		Kind:         task.KindRecurring,
		Title:        "Study",
		Date:         anchor,
		Start:        "20:00",
		End:          "21:00",
		RepeatDays:   []int{0, 2, 3},
		SkipHolidays: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, 27, res.Created[0].Start.Day())

	_, err = s.Add(context.Background(), AddRequest{
		Kind:         task.KindRecurring,
		Title:        "Study",
		Date:         anchor,
		Start:        "20:00",
		End:          "21:00",
		RepeatDays:   []int{2, 3, 4},
		SkipHolidays: true,
	})
	assert.ErrorIs(t, err, ErrNothingToAdd)
}

func TestAdd_Event(t *testing.T) {
	s := newService(t)

	res, err := s.Add(context.Background(), AddRequest{
		Kind:  task.KindEvent,
		Title: "Launch",
		Date:  monday.AddDate(0, 0, 3),
		Start: "14:00",
		End:   "15:00",
		Color: "#fda4af",
	})
	require.NoError(t, err)
	ev := res.Created[0]
	require.NotNil(t, ev.EventDate)
	assert.Equal(t, "#fda4af", ev.Color)

	month, err := s.Month(context.Background(), monday)
	require.NoError(t, err)
	assert.Len(t, month.TasksOn(monday.AddDate(0, 0, 3)), 1)
}

func TestAdd_InvalidInput(t *testing.T) {
	s := newService(t)

	tests := []struct {
		name string
		req  AddRequest
		want error
	}{
		{"empty title", AddRequest{Title: " ", Date: monday, Start: "09:00", End: "10:00"}, task.ErrEmptyTitle},
		{"end before start", AddRequest{Title: "x", Date: monday, Start: "10:00", End: "09:00"}, task.ErrEndBeforeStart},
		{"bad clock", AddRequest{Title: "x", Date: monday, Start: "9am", End: "10:00"}, task.ErrInvalidTimeFormat},
		{"bad kind", AddRequest{Kind: "weekly", Title: "x", Date: monday, Start: "09:00", End: "10:00"}, task.ErrInvalidKind},
		{"no repeat days", AddRequest{Kind: task.KindRecurring, Title: "x", Date: monday, Start: "09:00", End: "10:00"}, task.ErrEmptyRecurrence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, allTasks(t, s))
}

func addGym(t *testing.T, s *Service) []*task.Task {
	t.Helper()
	res, err := s.Add(context.Background(), AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       monday,
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{0, 1, 2},
	})
	require.NoError(t, err)
	return res.Created
}

func strPtr(s string) *string { return &s }

func TestEdit_SingleDetachesInstance(t *testing.T) {
	s := newService(t)
	gym := addGym(t, s)

	res, err := s.Edit(context.Background(), gym[1].ID, EditRequest{
		Title: strPtr("Swim"),
		Start: strPtr("18:00"),
		End:   strPtr("19:00"),
	}, ScopeSingle)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, task.KindSingle, res.Task.Kind)
	assert.Empty(t, res.Task.GroupID)

	got, err := s.Get(context.Background(), gym[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Swim", got.Title)
	assert.Equal(t, "18:00", got.StartClock())
	assert.False(t, got.IsRecurring())

	group, err := s.Group(context.Background(), gym[0].GroupID)
	require.NoError(t, err)
	assert.Len(t, group, 2)
}

func TestEdit_SingleConflict(t *testing.T) {
	s := newService(t)
	a := addSingle(t, s, "A", monday, "09:00", "10:00")
	b := addSingle(t, s, "B", monday, "10:00", "11:00")

	// Moving within its own slot never conflicts with itself.
	_, err := s.Edit(context.Background(), a.ID, EditRequest{Start: strPtr("09:30")}, ScopeSingle)
	require.NoError(t, err)

	_, err = s.Edit(context.Background(), a.ID, EditRequest{End: strPtr("10:30")}, ScopeSingle)
	var conflict *task.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, b.ID, conflict.Existing.ID)

	got, err := s.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.EndClock())
}

func TestEdit_SingleMoveDay(t *testing.T) {
	s := newService(t)
	a := addSingle(t, s, "A", monday, "09:00", "10:00")
	friday := monday.AddDate(0, 0, 4)

	res, err := s.Edit(context.Background(), a.ID, EditRequest{Date: &friday}, ScopeSingle)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, res.Task.Start.Weekday())
	assert.Equal(t, "09:00", res.Task.StartClock())
	assert.Equal(t, 60, res.Task.Duration())
}

func TestEdit_Group(t *testing.T) {
	s := newService(t)
	gym := addGym(t, s)

	res, err := s.Edit(context.Background(), gym[0].ID, EditRequest{
		Title: strPtr("Weights"),
		Color: strPtr("#6ee7b7"),
	}, ScopeGroup)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Updated)

	group, err := s.Group(context.Background(), gym[0].GroupID)
	require.NoError(t, err)
	for _, inst := range group {
		assert.Equal(t, "Weights", inst.Title)
		assert.Equal(t, "#6ee7b7", inst.Color)
		assert.Equal(t, "07:00", inst.StartClock())
	}
}

func TestEdit_GroupErrors(t *testing.T) {
	s := newService(t)
	gym := addGym(t, s)
	single := addSingle(t, s, "A", monday, "09:00", "10:00")

	_, err := s.Edit(context.Background(), gym[0].ID, EditRequest{Start: strPtr("06:00")}, ScopeGroup)
	assert.ErrorIs(t, err, ErrGroupTimeEdit)

	_, err = s.Edit(context.Background(), single.ID, EditRequest{Title: strPtr("B")}, ScopeGroup)
	assert.ErrorIs(t, err, ErrNotRecurring)

	_, err = s.Edit(context.Background(), gym[0].ID, EditRequest{Title: strPtr("  ")}, ScopeGroup)
	assert.ErrorIs(t, err, task.ErrEmptyTitle)

	_, err = s.Edit(context.Background(), single.ID, EditRequest{}, Scope("all"))
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = s.Edit(context.Background(), "missing", EditRequest{}, ScopeSingle)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestToggleDone(t *testing.T) {
	s := newService(t)
	a := addSingle(t, s, "A", monday, "09:00", "10:00")

	got, err := s.ToggleDone(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)

	got, err = s.ToggleDone(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, got.Done)
}

func TestDeleteFlows(t *testing.T) {
	s := newService(t)
	gym := addGym(t, s)
	a := addSingle(t, s, "A", monday, "09:00", "10:00")
	addSingle(t, s, "B", monday, "10:00", "11:00")

	require.NoError(t, s.Delete(context.Background(), a.ID))
	assert.ErrorIs(t, s.Delete(context.Background(), a.ID), task.ErrTaskNotFound)

	n, err := s.DeleteGroup(context.Background(), gym[0].GroupID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = s.DeleteGroup(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotRecurring)

	n, err = s.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, allTasks(t, s))
}

func TestLoaders(t *testing.T) {
	s := newService(t)
	addSingle(t, s, "prev", monday.AddDate(0, 0, -3), "09:00", "10:00")
	addSingle(t, s, "this", monday.AddDate(0, 0, 2), "09:00", "10:00")
	addSingle(t, s, "next", monday.AddDate(0, 0, 8), "09:00", "10:00")

	week, err := s.Week(context.Background(), monday.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"this"}, titles(week.AllTasks()))
	assert.Equal(t, 1, week.Day(2).Len())

	win, err := s.Window(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"prev"}, titles(win.Previous().AllTasks()))
	assert.Equal(t, []string{"this"}, titles(win.Current().AllTasks()))
	assert.Equal(t, []string{"next"}, titles(win.Next().AllTasks()))
}

func TestService_LogsMutations(t *testing.T) {
	var buf bytes.Buffer
	s := newService(t, WithLogger(debuglog.New(&buf)))

	a := addSingle(t, s, "A", monday, "09:00", "10:00")
	_, _ = s.Add(context.Background(), AddRequest{Title: "B", Date: monday, Start: "09:30", End: "10:30"})
	require.NoError(t, s.Delete(context.Background(), a.ID))

	out := buf.String()
	assert.Contains(t, out, `"event":"ADD"`)
	assert.Contains(t, out, `"event":"ADD_CONFLICT"`)
	assert.Contains(t, out, `"event":"DELETE"`)
}

func TestParseScope(t *testing.T) {
	got, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeSingle, got)

	got, err = ParseScope("Group")
	require.NoError(t, err)
	assert.Equal(t, ScopeGroup, got)

	_, err = ParseScope("everything")
	assert.ErrorIs(t, err, ErrInvalidScope)
}
