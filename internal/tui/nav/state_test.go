package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesday = time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	s := New(wednesday)

	assert.Equal(t, ModeWeekly, s.Mode)
	assert.Equal(t, date(2025, 1, 13), s.WeekStart)
	assert.Equal(t, date(2025, 1, 1), s.Month)
	assert.Equal(t, 2, s.CursorDay)
	assert.Equal(t, date(2025, 1, 15), s.CursorDate())
}

func TestWeekNavigation(t *testing.T) {
	s := New(wednesday)

	next := s.NextWeek()
	assert.Equal(t, date(2025, 1, 20), next.WeekStart)
	assert.Equal(t, date(2025, 1, 13), s.WeekStart, "transitions return copies")

	assert.Equal(t, date(2025, 1, 6), s.PrevWeek().WeekStart)
	assert.Equal(t, s, s.NextWeek().PrevWeek())

	back := next.NextWeek().Today(wednesday)
	assert.Equal(t, s.WeekStart, back.WeekStart)
	assert.Equal(t, 2, back.CursorDay)
}

func TestToggleMode(t *testing.T) {
	// Cursor on Sunday 2 Feb while the week starts in January.
	s := New(date(2025, 2, 2))
	require.Equal(t, date(2025, 1, 27), s.WeekStart)

	monthly := s.ToggleMode()
	assert.Equal(t, ModeMonthly, monthly.Mode)
	assert.Equal(t, date(2025, 2, 1), monthly.Month)

	weekly := monthly.NextMonth().ToggleMode()
	assert.Equal(t, ModeWeekly, weekly.Mode)
	assert.Equal(t, s.WeekStart, weekly.WeekStart)
}

func TestMonthNavigation(t *testing.T) {
	s := New(date(2025, 1, 31)).ToggleMode()

	assert.Equal(t, date(2025, 2, 1), s.NextMonth().Month)
	assert.Equal(t, date(2024, 12, 1), s.PrevMonth().Month)

	for range 12 {
		s = s.NextMonth()
	}
	assert.Equal(t, date(2026, 1, 1), s.Month)
}

func TestSyncMonth(t *testing.T) {
	s := New(date(2025, 1, 30)).ToggleMode()

	same, changed := s.MoveCursor(1, 0, 1).SyncMonth()
	assert.False(t, changed)
	assert.Equal(t, date(2025, 1, 1), same.Month)

	next, changed := s.MoveCursor(7, 0, 1).SyncMonth()
	assert.True(t, changed)
	assert.Equal(t, date(2025, 2, 1), next.Month)
	assert.Equal(t, ModeMonthly, next.Mode)
}

func TestOpenDay(t *testing.T) {
	s := New(wednesday).ToggleMode().OpenDay(date(2025, 3, 9))

	assert.Equal(t, ModeWeekly, s.Mode)
	assert.Equal(t, date(2025, 3, 3), s.WeekStart)
	assert.Equal(t, 6, s.CursorDay)
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		name      string
		days      int
		slots     int
		wantWeek  time.Time
		wantDay   int
		wantSlot  int
		startSlot int
	}{
		{name: "right", days: 1, wantWeek: date(2025, 1, 13), wantDay: 3},
		{name: "past sunday turns page", days: 5, wantWeek: date(2025, 1, 20), wantDay: 0},
		{name: "before monday turns page", days: -3, wantWeek: date(2025, 1, 6), wantDay: 6},
		{name: "down", slots: 3, wantWeek: date(2025, 1, 13), wantDay: 2, wantSlot: 3},
		{name: "clamped at bottom", slots: 100, wantWeek: date(2025, 1, 13), wantDay: 2, wantSlot: 29},
		{name: "clamped at top", slots: -5, startSlot: 2, wantWeek: date(2025, 1, 13), wantDay: 2, wantSlot: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(wednesday)
			s.CursorSlot = tt.startSlot
			got := s.MoveCursor(tt.days, tt.slots, 30)
			assert.Equal(t, tt.wantWeek, got.WeekStart)
			assert.Equal(t, tt.wantDay, got.CursorDay)
			assert.Equal(t, tt.wantSlot, got.CursorSlot)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	s := New(wednesday).ToggleMode()
	s.CursorSlot = 7

	data, err := s.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"monthly"`)
	assert.Contains(t, string(data), `"cursor_slot":7`)

	got, err := Decode(data, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"garbage":       `{`,
		"unknown mode":  `{"mode":"daily","week_start":"2025-01-13T00:00:00Z","month":"2025-01-01T00:00:00Z"}`,
		"not monday":    `{"mode":"weekly","week_start":"2025-01-14T00:00:00Z","month":"2025-01-01T00:00:00Z"}`,
		"not first":     `{"mode":"weekly","week_start":"2025-01-13T00:00:00Z","month":"2025-01-02T00:00:00Z"}`,
		"cursor day":    `{"mode":"weekly","week_start":"2025-01-13T00:00:00Z","month":"2025-01-01T00:00:00Z","cursor_day":7}`,
		"negative slot": `{"mode":"weekly","week_start":"2025-01-13T00:00:00Z","month":"2025-01-01T00:00:00Z","cursor_slot":-1}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data), time.UTC)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}
