package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cal := Default()

	tests := []struct {
		date    time.Time
		holiday bool
		name    string
	}{
		{date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), holiday: true, name: "신정"},
		{date: time.Date(2025, 1, 30, 15, 0, 0, 0, time.UTC), holiday: true, name: "설날"},
		{date: time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC), holiday: true, name: "한글날"},
		{date: time.Date(2026, 9, 26, 0, 0, 0, 0, time.UTC), holiday: true, name: "추석"},
		{date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{date: time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC)},
		{date: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.holiday, cal.IsHoliday(tt.date))
			assert.Equal(t, tt.name, cal.Name(tt.date))
		})
	}
}

func TestParse(t *testing.T) {
	cal, err := Parse([]byte("2030:\n  \"07-04\": Independence Day\n"))
	require.NoError(t, err)
	assert.True(t, cal.IsHoliday(time.Date(2030, 7, 4, 0, 0, 0, 0, time.UTC)))

	_, err = Parse([]byte("2030:\n  \"7/4\": bad\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("not: [valid"))
	assert.Error(t, err)
}

func TestNilCalendar(t *testing.T) {
	var cal *Calendar
	assert.False(t, cal.IsHoliday(time.Now()))
}
