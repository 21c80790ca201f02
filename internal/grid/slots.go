package grid

import (
	"math"

	"github.com/javiermolinar/weekplan/internal/task"
)

// TimeSlot is one row of the time axis.
type TimeSlot struct {
	Time     string  // "HH:MM" label of the slot start
	Start    int     // minute of day
	Height   float64 // render height, the same for every slot
	Interval int     // minutes the slot represents
}

// End returns the minute of day the slot stops at (exclusive).
func (s TimeSlot) End() int {
	return s.Start + s.Interval
}

// Contains reports whether minute falls inside the slot.
func (s TimeSlot) Contains(minute int) bool {
	return minute >= s.Start && minute < s.End()
}

type ruleSpan struct {
	start, end, interval int
}

// BuildSlots walks the visible window and emits one slot per step.
// Inside an exception rule the step is the rule interval clamped to the rule
// end, or the whole remaining rule when its interval is zero. Outside any rule
// the step runs to the next multiple of the global interval counted from the
// window start, stopping early at the start of an upcoming rule. When rules
// overlap the first matching one in list order wins. The last slot is clamped
// to the window end.
func BuildSlots(s WeekSettings) []TimeSlot {
	windowStart := s.WindowStart()
	windowEnd := s.WindowEnd()
	global := s.GlobalInterval
	if global <= 0 {
		global = 30
	}
	height := s.rowHeight()

	rules := make([]ruleSpan, 0, len(s.Exceptions))
	for _, r := range s.Exceptions {
		start, end, err := r.Bounds()
		if err != nil || r.Interval < 0 {
			continue
		}
		rules = append(rules, ruleSpan{start: start, end: end, interval: r.Interval})
	}

	var slots []TimeSlot
	for cursor := windowStart; cursor < windowEnd; {
		var step int
		if rule, ok := matchRule(rules, cursor); ok {
			step = rule.end - cursor
			if rule.interval > 0 {
				step = min(rule.interval, step)
			}
		} else {
			step = global - (cursor-windowStart)%global
			if next, ok := nextRuleStart(rules, cursor); ok && next < cursor+step {
				step = next - cursor
			}
		}
		step = min(step, windowEnd-cursor)

		slots = append(slots, TimeSlot{
			Time:     task.MinutesToTime(cursor),
			Start:    cursor,
			Height:   height,
			Interval: step,
		})
		cursor += step
	}
	return slots
}

func matchRule(rules []ruleSpan, cursor int) (ruleSpan, bool) {
	for _, r := range rules {
		if cursor >= r.start && cursor < r.end {
			return r, true
		}
	}
	return ruleSpan{}, false
}

func nextRuleStart(rules []ruleSpan, cursor int) (int, bool) {
	next, found := math.MaxInt, false
	for _, r := range rules {
		if r.start > cursor && r.start < next {
			next, found = r.start, true
		}
	}
	return next, found
}

// SlotIndex returns the index of the slot containing minute, or -1.
func SlotIndex(minute int, slots []TimeSlot) int {
	for i, s := range slots {
		if s.Contains(minute) {
			return i
		}
	}
	return -1
}

// TotalHeight returns the summed height of all slots.
func TotalHeight(slots []TimeSlot) float64 {
	var h float64
	for _, s := range slots {
		h += s.Height
	}
	return h
}
