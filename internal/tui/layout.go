package tui

import "math"

const (
	timeColWidth = 10 // "오후 12:30"
	headerLines  = 2  // title, day headers
	footerLines  = 2  // status, help
	minColWidth  = 4
)

// Layout is the screen geometry of the calendar pages. Day columns are
// preceded by a one cell separator.
type Layout struct {
	Width        int
	Height       int
	ColWidth     int
	SlotLines    int // terminal lines per grid slot
	VisibleSlots int
	MonthLines   int // terminal lines per month row
}

// computeLayout sizes the grid for the terminal.
func computeLayout(width, height, slotLines, monthWeeks int) Layout {
	if slotLines < 1 {
		slotLines = 1
	}
	if monthWeeks < 1 {
		monthWeeks = 6
	}
	gridH := max(0, height-headerLines-footerLines)
	return Layout{
		Width:        width,
		Height:       height,
		ColWidth:     max(minColWidth, (width-timeColWidth)/7-1),
		SlotLines:    slotLines,
		VisibleSlots: gridH / slotLines,
		MonthLines:   max(2, gridH/monthWeeks),
	}
}

// ColumnX returns the x of the first cell of day column d.
func (l Layout) ColumnX(d int) int {
	return timeColWidth + 1 + d*(l.ColWidth+1)
}

// dayAt maps x to a day column. The separator left of a column belongs to it.
func (l Layout) dayAt(x int) (int, bool) {
	rel := x - timeColWidth
	if rel < 0 {
		return 0, false
	}
	day := rel / (l.ColWidth + 1)
	if day > 6 {
		return 0, false
	}
	return day, true
}

// CellAt maps a screen position to a weekly grid cell.
func (l Layout) CellAt(x, y, scroll, slotCount int) (day, slot int, ok bool) {
	day, ok = l.dayAt(x)
	if !ok {
		return 0, 0, false
	}
	row := y - headerLines
	if row < 0 || row >= l.VisibleSlots*l.SlotLines {
		return 0, 0, false
	}
	slot = scroll + row/l.SlotLines
	if slot >= slotCount {
		return 0, 0, false
	}
	return day, slot, true
}

// MonthCellAt maps a screen position to an index into the month page days.
func (l Layout) MonthCellAt(x, y, weeks int) (int, bool) {
	day, ok := l.dayAt(x)
	if !ok {
		return 0, false
	}
	row := y - headerLines
	if row < 0 {
		return 0, false
	}
	week := row / l.MonthLines
	if week >= weeks {
		return 0, false
	}
	return week*7 + day, true
}

// lineSpan converts a grid position to terminal lines relative to the top
// of the axis. A block always covers at least one line.
func lineSpan(top, height, slotHeight float64, slotLines int) (first, last int) {
	if slotHeight <= 0 {
		return 0, 0
	}
	scale := float64(slotLines) / slotHeight
	first = int(math.Floor(top*scale + 1e-9))
	end := int(math.Ceil((top+height)*scale - 1e-9))
	if end <= first {
		end = first + 1
	}
	return first, end - 1
}

// clampScroll keeps slot visible and the scroll offset inside the grid.
func clampScroll(scroll, slot, visible, slotCount int) int {
	if visible <= 0 {
		return 0
	}
	if slot < scroll {
		scroll = slot
	}
	if slot >= scroll+visible {
		scroll = slot - visible + 1
	}
	return max(0, min(scroll, slotCount-visible))
}
