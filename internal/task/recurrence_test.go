package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holidaySet map[string]bool

func (h holidaySet) IsHoliday(d time.Time) bool {
	return h[d.Format("2006-01-02")]
}

func standup() Template {
	return Template{
		OwnerID:   "owner-1",
		Title:     "Standup",
		StartTime: "09:00",
		EndTime:   "09:15",
		Memo:      "daily sync",
	}
}

func TestExpand_MondayWednesdayFriday(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	tasks, err := Expand(standup(), monday, []int{0, 2, 4})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	wantDays := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	groupID := tasks[0].GroupID
	require.NotEmpty(t, groupID)

	for i, tk := range tasks {
		assert.Equal(t, wantDays[i], tk.Start.Weekday())
		assert.Equal(t, KindRecurring, tk.Kind)
		assert.Equal(t, groupID, tk.GroupID)
		assert.Equal(t, []int{0, 2, 4}, tk.RepeatDays)
		assert.Equal(t, "09:00", tk.StartClock())
		assert.Equal(t, "09:15", tk.EndClock())
		assert.Equal(t, DefaultColor, tk.Color)
		assert.Equal(t, "owner-1", tk.OwnerID)
		assert.NoError(t, tk.Validate())
	}
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}

func TestExpand_OffsetsAreRelativeToAnchor(t *testing.T) {
	thursday := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)

	tasks, err := Expand(standup(), thursday, []int{3, 0, 3})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, time.Date(2025, 1, 9, 9, 0, 0, 0, time.UTC), tasks[0].Start)
	assert.Equal(t, time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC), tasks[1].Start)
	assert.Equal(t, []int{0, 3}, tasks[1].RepeatDays)
}

func TestExpand_NewGroupPerCall(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	a, err := Expand(standup(), monday, []int{0})
	require.NoError(t, err)
	b, err := Expand(standup(), monday, []int{0})
	require.NoError(t, err)
	assert.NotEqual(t, a[0].GroupID, b[0].GroupID)
}

func TestExpand_SkipHolidays(t *testing.T) {
	monday := time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)
	holidays := holidaySet{"2025-01-29": true}

	tasks, err := Expand(standup(), monday, []int{0, 2, 4}, WithHolidaySkip(holidays))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 27, tasks[0].Start.Day())
	assert.Equal(t, 31, tasks[1].Start.Day())
}

func TestExpand_Errors(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tmpl    Template
		offsets []int
		wantErr error
	}{
		{name: "empty selection", tmpl: standup(), offsets: nil, wantErr: ErrEmptyRecurrence},
		{name: "offset too large", tmpl: standup(), offsets: []int{7}, wantErr: ErrInvalidOffset},
		{name: "negative offset", tmpl: standup(), offsets: []int{-1}, wantErr: ErrInvalidOffset},
		{name: "empty title", tmpl: Template{StartTime: "09:00", EndTime: "10:00"}, offsets: []int{0}, wantErr: ErrEmptyTitle},
		{name: "end before start", tmpl: Template{Title: "x", StartTime: "10:00", EndTime: "09:00"}, offsets: []int{0}, wantErr: ErrEndBeforeStart},
		{name: "bad clock", tmpl: Template{Title: "x", StartTime: "9", EndTime: "10:00"}, offsets: []int{0}, wantErr: ErrInvalidTimeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(tt.tmpl, monday, tt.offsets)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpand_ThenCheckBatchAbortsWholeSeries(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tasks, err := Expand(standup(), monday, []int{0, 2, 4})
	require.NoError(t, err)

	busy := &Task{
		ID:    "busy",
		Title: "Dentist",
		Start: time.Date(2025, 1, 8, 9, 10, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC),
		Kind:  KindSingle,
	}

	err = CheckBatch(tasks, []*Task{busy})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, time.Wednesday, conflict.Candidate.Start.Weekday())
	assert.Equal(t, "busy", conflict.Existing.ID)
}

func TestParseOffsets(t *testing.T) {
	got, err := ParseOffsets("0, 2,4")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, got)

	_, err = ParseOffsets("")
	assert.ErrorIs(t, err, ErrEmptyRecurrence)

	_, err = ParseOffsets("1,9")
	assert.ErrorIs(t, err, ErrInvalidOffset)
}
