package grid

import (
	"math"
	"time"

	"github.com/javiermolinar/weekplan/internal/task"
)

// Position is the vertical placement of a task on the time axis.
type Position struct {
	Top    float64
	Height float64
}

// Bottom returns Top + Height.
func (p Position) Bottom() float64 {
	return p.Top + p.Height
}

// MapToPosition places the [start, end) interval of a task on slots.
// Only the time of day of start is used; end is derived from the duration so
// a task ending at midnight keeps its full height.
func MapToPosition(start, end time.Time, slots []TimeSlot) Position {
	startMin := task.MinuteOfDay(start)
	endMin := startMin + int(end.Sub(start).Minutes())
	return MapMinutes(startMin, endMin, slots)
}

// MapMinutes places [startMin, endMin) on slots. Every slot before the one
// holding startMin contributes its full height to Top; the start slot adds the
// proportional offset. Each covered slot adds overlap/interval of its height,
// and the walk stops after the slot holding endMin. Times outside the window
// are extrapolated with the scale of the nearest edge slot, never clamped.
func MapMinutes(startMin, endMin int, slots []TimeSlot) Position {
	if len(slots) == 0 || endMin <= startMin {
		return Position{}
	}
	first, last := slots[0], slots[len(slots)-1]

	var pos Position
	started := false
	for _, s := range slots {
		if !started {
			if startMin >= s.End() {
				pos.Top += s.Height
				continue
			}
			pos.Top += scale(startMin-s.Start, s)
			started = true
		}
		if overlap := min(endMin, s.End()) - max(startMin, s.Start); overlap > 0 {
			pos.Height += scale(overlap, s)
		}
		if endMin <= s.End() {
			break
		}
	}

	if !started {
		// Entirely after the window: pos.Top already holds the full axis height.
		pos.Top += scale(startMin-last.End(), last)
		pos.Height = scale(endMin-startMin, last)
		return pos
	}
	if startMin < first.Start {
		pos.Height += scale(min(endMin, first.Start)-startMin, first)
	}
	if endMin > last.End() {
		pos.Height += scale(endMin-max(startMin, last.End()), last)
	}
	return pos
}

// MinuteAt converts a vertical offset back into a minute of day, rounded to
// the nearest minute.
func MinuteAt(y float64, slots []TimeSlot) int {
	if len(slots) == 0 {
		return 0
	}
	var top float64
	for _, s := range slots {
		if y < top+s.Height {
			if y < top {
				break
			}
			return s.Start + unscale(y-top, s)
		}
		top += s.Height
	}
	if y < 0 {
		first := slots[0]
		return first.Start + unscale(y, first)
	}
	last := slots[len(slots)-1]
	return last.End() + unscale(y-top, last)
}

// TimeRange inverts a position into the [start, end) minutes it covers.
func TimeRange(p Position, slots []TimeSlot) (startMin, endMin int) {
	return MinuteAt(p.Top, slots), MinuteAt(p.Bottom(), slots)
}

func scale(minutes int, s TimeSlot) float64 {
	if s.Interval <= 0 {
		return 0
	}
	return float64(minutes) / float64(s.Interval) * s.Height
}

func unscale(dy float64, s TimeSlot) int {
	if s.Height <= 0 {
		return 0
	}
	return int(math.Round(dy / s.Height * float64(s.Interval)))
}
