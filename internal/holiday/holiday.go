// Package holiday looks up public holidays from an embedded table.
package holiday

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed holidays.yaml
var embedded []byte

// Calendar maps a year to its holidays, keyed by "MM-DD".
type Calendar struct {
	years map[int]map[string]string
}

// Parse decodes a holiday table in the embedded YAML layout.
func Parse(data []byte) (*Calendar, error) {
	years := make(map[int]map[string]string)
	if err := yaml.Unmarshal(data, &years); err != nil {
		return nil, fmt.Errorf("parsing holiday table: %w", err)
	}
	for year, days := range years {
		for key := range days {
			if _, err := time.Parse("01-02", key); err != nil {
				return nil, fmt.Errorf("holiday %d %q: want MM-DD", year, key)
			}
		}
	}
	return &Calendar{years: years}, nil
}

var (
	defaultOnce sync.Once
	defaultCal  *Calendar
)

// Default returns the calendar built from the embedded table.
func Default() *Calendar {
	defaultOnce.Do(func() {
		cal, err := Parse(embedded)
		if err != nil {
			panic(err) // embedded data is fixed at build time
		}
		defaultCal = cal
	})
	return defaultCal
}

// IsHoliday reports whether date is a public holiday.
func (c *Calendar) IsHoliday(date time.Time) bool {
	_, ok := c.lookup(date)
	return ok
}

// Name returns the holiday name for date, or "" if it is a working day.
func (c *Calendar) Name(date time.Time) string {
	name, _ := c.lookup(date)
	return name
}

func (c *Calendar) lookup(date time.Time) (string, bool) {
	if c == nil {
		return "", false
	}
	days, ok := c.years[date.Year()]
	if !ok {
		return "", false
	}
	name, ok := days[date.Format("01-02")]
	return name, ok
}
