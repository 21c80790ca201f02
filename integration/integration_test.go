package integration

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/weekplan/internal/calendar"
	"github.com/javiermolinar/weekplan/internal/db"
	"github.com/javiermolinar/weekplan/internal/holiday"
	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/task"
)

const owner = "tester"

// monday is the start of the week used throughout; "now" is Wednesday morning.
var (
	monday = time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)
	now    = time.Date(2025, 1, 15, 8, 0, 0, 0, time.Local)
)

func setupTestDB(t *testing.T) (*db.Store, *scheduler.Service) {
	t.Helper()
	store, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := scheduler.NewService(store, owner,
		scheduler.WithHolidays(holiday.Default()),
		scheduler.WithClock(func() time.Time { return now }),
	)
	return store, svc
}

func add(t *testing.T, svc *scheduler.Service, req scheduler.AddRequest) []*task.Task {
	t.Helper()
	res, err := svc.Add(context.Background(), req)
	require.NoError(t, err)
	return res.Created
}

func day(offset int) time.Time {
	return monday.AddDate(0, 0, offset)
}

func TestCreateTask(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	created := add(t, svc, scheduler.AddRequest{
		Title: "Write report",
		Date:  day(2),
		Start: "09:00",
		End:   "10:30",
		Memo:  "quarterly numbers",
	})
	require.Len(t, created, 1)

	got, err := svc.Get(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "quarterly numbers", got.Memo)
	assert.Equal(t, task.KindSingle, got.Kind)
	assert.Equal(t, task.DefaultColor, got.Color)
	assert.True(t, got.Start.Equal(time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local)))
	assert.Equal(t, 90, got.Duration())
	assert.False(t, got.Done)
}

func TestCreateTask_ValidationErrors(t *testing.T) {
	_, svc := setupTestDB(t)

	tests := []struct {
		name string
		req  scheduler.AddRequest
		want error
	}{
		{
			name: "empty title",
			req:  scheduler.AddRequest{Title: "  ", Date: day(0), Start: "09:00", End: "10:00"},
			want: task.ErrEmptyTitle,
		},
		{
			name: "bad clock",
			req:  scheduler.AddRequest{Title: "x", Date: day(0), Start: "9am", End: "10:00"},
			want: task.ErrInvalidTimeFormat,
		},
		{
			name: "end before start",
			req:  scheduler.AddRequest{Title: "x", Date: day(0), Start: "10:00", End: "09:00"},
			want: task.ErrEndBeforeStart,
		},
		{
			name: "unknown kind",
			req:  scheduler.AddRequest{Kind: "chore", Title: "x", Date: day(0), Start: "09:00", End: "10:00"},
			want: task.ErrInvalidKind,
		},
		{
			name: "recurring without days",
			req:  scheduler.AddRequest{Kind: task.KindRecurring, Title: "x", Date: day(0), Start: "09:00", End: "10:00"},
			want: task.ErrEmptyRecurrence,
		},
		{
			name: "offset out of range",
			req: scheduler.AddRequest{
				Kind:       task.KindRecurring,
				Title:      "x",
				Date:       day(0),
				Start:      "09:00",
				End:        "10:00",
				RepeatDays: []int{0, 7},
			},
			want: task.ErrInvalidOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	tasks, err := svc.Range(context.Background(), day(-7), day(14))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGetTask_NotFound(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, task.NewID())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	_, err = svc.ToggleDone(ctx, task.NewID())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, task.NewID()), task.ErrTaskNotFound)
}

func TestToggleDone(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()
	created := add(t, svc, scheduler.AddRequest{Title: "Inbox zero", Date: day(0), Start: "08:00", End: "08:30"})

	toggled, err := svc.ToggleDone(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	got, err := svc.Get(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Done)

	toggled, err = svc.ToggleDone(ctx, created[0].ID)
	require.NoError(t, err)
	assert.False(t, toggled.Done)
}

func TestTimeBlockOverlap(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()
	existing := add(t, svc, scheduler.AddRequest{Title: "Review", Date: day(1), Start: "09:00", End: "10:00"})

	_, err := svc.Add(ctx, scheduler.AddRequest{Title: "Clash", Date: day(1), Start: "09:30", End: "10:30"})
	require.ErrorIs(t, err, task.ErrConflict)

	var conflict *task.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, existing[0].ID, conflict.Existing.ID)

	// Adjacent blocks and other days are fine.
	add(t, svc, scheduler.AddRequest{Title: "After", Date: day(1), Start: "10:00", End: "11:00"})
	add(t, svc, scheduler.AddRequest{Title: "Other day", Date: day(2), Start: "09:30", End: "10:30"})
}

func TestTimeBlockOverlap_Recurring(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()
	add(t, svc, scheduler.AddRequest{Title: "Dentist", Date: day(4), Start: "07:30", End: "08:30"})

	req := scheduler.AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       day(0),
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{0, 2, 4},
	}
	_, err := svc.Add(ctx, req)
	require.ErrorIs(t, err, task.ErrConflict)

	week, err := svc.Week(ctx, monday)
	require.NoError(t, err)
	require.Len(t, week.AllTasks(), 1, "no instance is stored when one conflicts")

	req.Replace = true
	res, err := svc.Add(ctx, req)
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
	require.Len(t, res.Replaced, 1)
	assert.Equal(t, "Dentist", res.Replaced[0].Title)
}

func TestRecurringGroup(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	created := add(t, svc, scheduler.AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       day(0),
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{4, 0, 2, 2},
		Color:      "#6ee7b7",
	})
	require.Len(t, created, 3)

	group, err := svc.Group(ctx, created[0].GroupID)
	require.NoError(t, err)
	require.Len(t, group, 3)
	for i, wd := range []time.Weekday{time.Monday, time.Wednesday, time.Friday} {
		assert.Equal(t, wd, group[i].Start.Weekday())
		assert.Equal(t, []int{0, 2, 4}, group[i].RepeatDays)
		assert.Equal(t, "#6ee7b7", group[i].Color)
	}

	title := "Strength"
	res, err := svc.Edit(ctx, group[1].ID, scheduler.EditRequest{Title: &title}, scheduler.ScopeGroup)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Updated)

	start := "07:30"
	_, err = svc.Edit(ctx, group[1].ID, scheduler.EditRequest{Start: &start}, scheduler.ScopeGroup)
	assert.ErrorIs(t, err, scheduler.ErrGroupTimeEdit)

	// A single-instance time edit detaches it from the group.
	end := "08:30"
	res, err = svc.Edit(ctx, group[1].ID, scheduler.EditRequest{Start: &start, End: &end}, scheduler.ScopeSingle)
	require.NoError(t, err)
	assert.Equal(t, task.KindSingle, res.Task.Kind)
	assert.Empty(t, res.Task.GroupID)
	assert.Equal(t, "Strength", res.Task.Title)

	remaining, err := svc.Group(ctx, created[0].GroupID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	n, err := svc.DeleteGroup(ctx, created[0].GroupID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	week, err := svc.Week(ctx, monday)
	require.NoError(t, err)
	all := week.AllTasks()
	require.Len(t, all, 1)
	assert.Equal(t, group[1].ID, all[0].ID)
}

func TestRecurringSkipsHolidays(t *testing.T) {
	_, svc := setupTestDB(t)
	anchor := time.Date(2025, 1, 27, 0, 0, 0, 0, time.Local)

	created := add(t, svc, scheduler.AddRequest{
		Kind:         task.KindRecurring,
		Title:        "Walk",
		Date:         anchor,
		Start:        "18:00",
		End:          "19:00",
		RepeatDays:   []int{0, 1, 2, 3, 4},
		SkipHolidays: true,
	})

	// 29th through 31st are 설날.
	var days []int
	for _, c := range created {
		days = append(days, c.Start.Day())
	}
	assert.Equal(t, []int{27, 28}, days)

	_, err := svc.Add(context.Background(), scheduler.AddRequest{
		Kind:         task.KindRecurring,
		Title:        "Walk",
		Date:         anchor,
		Start:        "20:00",
		End:          "21:00",
		RepeatDays:   []int{2, 3, 4},
		SkipHolidays: true,
	})
	assert.ErrorIs(t, err, scheduler.ErrNothingToAdd)
}

func TestEditSingle_Conflict(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()
	add(t, svc, scheduler.AddRequest{Title: "Lunch", Date: day(3), Start: "12:00", End: "13:00"})
	moving := add(t, svc, scheduler.AddRequest{Title: "Call", Date: day(2), Start: "12:00", End: "12:30"})

	date := day(3)
	_, err := svc.Edit(ctx, moving[0].ID, scheduler.EditRequest{Date: &date}, scheduler.ScopeSingle)
	require.ErrorIs(t, err, task.ErrConflict)

	got, err := svc.Get(ctx, moving[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Start.Day(), "rejected edit leaves the task in place")

	start, end := "13:00", "13:30"
	res, err := svc.Edit(ctx, moving[0].ID, scheduler.EditRequest{Date: &date, Start: &start, End: &end}, scheduler.ScopeSingle)
	require.NoError(t, err)
	assert.Equal(t, 16, res.Task.Start.Day())
	assert.Equal(t, "13:00", res.Task.StartClock())
}

func TestWeekAndWindow(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	add(t, svc, scheduler.AddRequest{Title: "Last week", Date: day(-3), Start: "09:00", End: "10:00"})
	add(t, svc, scheduler.AddRequest{Title: "Mon", Date: day(0), Start: "09:00", End: "11:00"})
	add(t, svc, scheduler.AddRequest{Title: "Sun late", Date: day(6), Start: "22:00", End: "24:00"})
	add(t, svc, scheduler.AddRequest{Kind: task.KindEvent, Title: "Launch", Date: day(4), Start: "15:00", End: "16:00"})
	add(t, svc, scheduler.AddRequest{Title: "Next week", Date: day(7), Start: "09:00", End: "10:00"})

	week, err := svc.Week(ctx, day(3))
	require.NoError(t, err)
	assert.True(t, week.StartDate.Equal(monday))

	var titles []string
	for _, tk := range week.AllTasks() {
		titles = append(titles, tk.Title)
	}
	assert.Equal(t, []string{"Mon", "Launch", "Sun late"}, titles)

	stats := week.Stats()
	assert.Equal(t, 3, stats.TotalBlocks)
	assert.Equal(t, 1, stats.Events)
	assert.Equal(t, 300, stats.Minutes)
	busiest, minutes := stats.BusiestDay()
	assert.Equal(t, 0, busiest)
	assert.Equal(t, 120, minutes)

	window, err := svc.Window(ctx, day(3))
	require.NoError(t, err)
	require.Len(t, window.Previous().AllTasks(), 1)
	assert.Equal(t, "Last week", window.Previous().AllTasks()[0].Title)
	require.Len(t, window.Next().AllTasks(), 1)
	assert.Equal(t, "Next week", window.Next().AllTasks()[0].Title)
	assert.Len(t, window.Current().AllTasks(), 3)
	assert.True(t, window.Contains(day(13)))
	assert.False(t, window.Contains(day(14)))
}

func TestMonth(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	add(t, svc, scheduler.AddRequest{Kind: task.KindEvent, Title: "Kickoff", Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local), Start: "10:00", End: "11:00"})
	add(t, svc, scheduler.AddRequest{Kind: task.KindEvent, Title: "Spill", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local), Start: "10:00", End: "11:00"})
	add(t, svc, scheduler.AddRequest{Title: "Plain", Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local), Start: "12:00", End: "13:00"})

	month, err := svc.Month(ctx, time.Date(2025, 1, 20, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)

	assert.Equal(t, 5, month.Weeks())
	assert.True(t, month.Days[0].Equal(time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local)))
	assert.True(t, month.Days[len(month.Days)-1].Equal(time.Date(2025, 2, 2, 0, 0, 0, 0, time.Local)))

	jan2 := month.TasksOn(time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local))
	require.Len(t, jan2, 1, "only events appear on the month page")
	assert.Equal(t, "Kickoff", jan2[0].Title)

	feb1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
	assert.False(t, month.InMonth(feb1))
	assert.Len(t, month.TasksOn(feb1), 1)
}

func TestDeleteAll(t *testing.T) {
	store, svc := setupTestDB(t)
	ctx := context.Background()

	add(t, svc, scheduler.AddRequest{Title: "Mine", Date: day(0), Start: "09:00", End: "10:00"})
	add(t, svc, scheduler.AddRequest{Title: "Mine too", Date: day(1), Start: "09:00", End: "10:00"})

	other := scheduler.NewService(store, "someone-else")
	_, err := other.Add(ctx, scheduler.AddRequest{Title: "Theirs", Date: day(0), Start: "09:00", End: "10:00"})
	require.NoError(t, err, "owners do not conflict with each other")

	n, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	theirs, err := other.Range(ctx, day(0), day(7))
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Theirs", theirs[0].Title)
}

func TestExportCalendar(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	gym := add(t, svc, scheduler.AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Gym",
		Date:       day(0),
		Start:      "07:00",
		End:        "08:00",
		RepeatDays: []int{0, 2, 4},
	})
	add(t, svc, scheduler.AddRequest{Kind: task.KindEvent, Title: "Launch", Date: day(3), Start: "15:00", End: "16:00"})

	// A detached instance leaves the rule and is exported on its own.
	title := "Gym (moved)"
	start, end := "18:00", "19:00"
	_, err := svc.Edit(ctx, gym[1].ID, scheduler.EditRequest{Title: &title, Start: &start, End: &end}, scheduler.ScopeSingle)
	require.NoError(t, err)

	tasks, err := svc.Range(ctx, day(0), day(7))
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	out, err := calendar.Export(tasks, now)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 2, strings.Count(out, "SUMMARY:Gym"))
	assert.Contains(t, out, "SUMMARY:Gym (moved)")
	assert.Contains(t, out, "SUMMARY:Launch")
	assert.Contains(t, out, "UID:"+gym[0].GroupID)
	assert.Contains(t, out, "COUNT=2")
	assert.Equal(t, 1, strings.Count(out, "RRULE:"))
}

func TestFullWorkflow(t *testing.T) {
	_, svc := setupTestDB(t)
	ctx := context.Background()

	// Plan the week.
	add(t, svc, scheduler.AddRequest{
		Kind:       task.KindRecurring,
		Title:      "Standup",
		Date:       day(0),
		Start:      "09:00",
		End:        "09:15",
		RepeatDays: []int{0, 1, 2, 3, 4},
	})
	deep := add(t, svc, scheduler.AddRequest{Title: "Deep work", Date: day(2), Start: "10:00", End: "12:00"})
	add(t, svc, scheduler.AddRequest{Kind: task.KindEvent, Title: "Demo", Date: day(4), Start: "16:00", End: "17:00"})

	week, err := svc.Week(ctx, now)
	require.NoError(t, err)
	stats := week.Stats()
	assert.Equal(t, 7, stats.TotalBlocks)
	assert.Equal(t, 5*15+120+60, stats.Minutes)

	// Finish the deep work block.
	_, err = svc.ToggleDone(ctx, deep[0].ID)
	require.NoError(t, err)

	week, err = svc.Week(ctx, now)
	require.NoError(t, err)
	stats = week.Stats()
	assert.Equal(t, 1, stats.DoneBlocks)
	assert.Equal(t, 120*100/(5*15+120+60), stats.DonePercent())

	wed := week.Day(2)
	require.Equal(t, 2, wed.Len())
	assert.Equal(t, "Standup", wed.Tasks()[0].Title)
	assert.Equal(t, "Deep work", wed.Tasks()[1].Title)

	// Replace the deep work block with something longer.
	res, err := svc.Add(ctx, scheduler.AddRequest{Title: "Offsite", Date: day(2), Start: "09:30", End: "17:00", Replace: true})
	require.NoError(t, err)
	require.Len(t, res.Replaced, 1)
	assert.Equal(t, deep[0].ID, res.Replaced[0].ID)

	week, err = svc.Week(ctx, now)
	require.NoError(t, err)
	wed = week.Day(2)
	require.Equal(t, 2, wed.Len())
	assert.Equal(t, "Offsite", wed.Tasks()[1].Title)
}
