package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/weekplan/internal/task"
)

func at(day time.Time, clock string) time.Time {
	t, err := task.At(day, clock)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleTasks() []*task.Task {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)
	sunday := monday.AddDate(0, 0, 6)
	return []*task.Task{
		{ID: "1", Title: "Write report", Kind: task.KindSingle, Start: at(monday, "09:00"), End: at(monday, "10:00"), Done: true},
		{ID: "2", Title: "Gym", Kind: task.KindRecurring, GroupID: "g", RepeatDays: []int{0, 1}, Start: at(monday.AddDate(0, 0, 1), "10:00"), End: at(monday.AddDate(0, 0, 1), "10:30")},
		{ID: "3", Title: "Late", Kind: task.KindSingle, Start: at(sunday, "23:00"), End: at(sunday, "24:00")},
		{ID: "4", Title: "Next week", Kind: task.KindSingle, Start: at(sunday.AddDate(0, 0, 1), "09:00"), End: at(sunday.AddDate(0, 0, 1), "10:00")},
	}
}

func TestSummarizeWeek(t *testing.T) {
	weekStart := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local) // Wednesday
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)
	sunday := time.Date(2025, 1, 19, 0, 0, 0, 0, time.Local)

	s := SummarizeWeek(weekStart, sampleTasks())

	assert.True(t, s.Start.Equal(monday))
	assert.True(t, s.End.Equal(sunday))
	assert.Len(t, s.Tasks, 3)
	assert.Equal(t, 150, s.Stats.Minutes)
	assert.Equal(t, 60, s.Stats.DoneMinutes)
	assert.Equal(t, 3, s.Stats.TotalBlocks)
}

type stubHolidays map[string]string

func (h stubHolidays) Name(d time.Time) string { return h[d.Format("2006-01-02")] }

func TestWeekSummary_Text(t *testing.T) {
	s := SummarizeWeek(time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local), sampleTasks())

	text := s.Text(stubHolidays{"2025-01-14": "창립기념일"})

	assert.Contains(t, text, "2025년 1월 2주차 (2025-01-13 ~ 2025-01-19)")
	assert.Contains(t, text, "  [x] 09:00-10:00 Write report\n")
	assert.Contains(t, text, "1/14 (화) 창립기념일\n")
	assert.Contains(t, text, "  [ ] 10:00-10:30 Gym (반복)\n")
	assert.Contains(t, text, "  [ ] 23:00-24:00 Late\n")
	assert.Contains(t, text, "  1h, 100% done\n")
	assert.Contains(t, text, "3 blocks, 2h 30m scheduled, 40% done")
	assert.NotContains(t, text, "Next week")
}

type stubLoader struct {
	tasks []*task.Task
	err   error
	start time.Time
	end   time.Time
}

func (l *stubLoader) Range(_ context.Context, start, end time.Time) ([]*task.Task, error) {
	l.start, l.end = start, end
	return l.tasks, l.err
}

func TestBuildWeekSummary(t *testing.T) {
	loader := &stubLoader{tasks: sampleTasks()}

	s, err := BuildWeekSummary(context.Background(), loader, time.Date(2025, 1, 17, 12, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Len(t, s.Tasks, 3)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local), loader.start)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.Local), loader.end)

	_, err = BuildWeekSummary(context.Background(), &stubLoader{err: errors.New("boom")}, time.Time{})
	assert.ErrorContains(t, err, "fetching tasks: boom")
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "1h 30m", FormatMinutes(90))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "0m", FormatMinutes(0))
}
