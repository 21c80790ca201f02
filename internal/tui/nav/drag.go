package nav

import "github.com/javiermolinar/weekplan/internal/grid"

// DragPhase is the state of a pointer drag over the week grid.
type DragPhase int

const (
	DragIdle       DragPhase = iota
	DragDragging             // button held, selection follows the pointer
	DragCommitting           // released, the selection is being turned into a task
)

func (p DragPhase) String() string {
	switch p {
	case DragDragging:
		return "dragging"
	case DragCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// Selection is an inclusive slot range on one day of the visible week.
type Selection struct {
	Day       int
	StartSlot int
	EndSlot   int
}

// Times returns the minutes of day the selection covers. The selected rows
// are placed on the axis and mapped back through the grid.
func (s Selection) Times(slots []grid.TimeSlot) (startMin, endMin int, ok bool) {
	if s.StartSlot < 0 || s.EndSlot >= len(slots) || s.StartSlot > s.EndSlot {
		return 0, 0, false
	}
	var p grid.Position
	for i, slot := range slots[:s.EndSlot+1] {
		if i < s.StartSlot {
			p.Top += slot.Height
			continue
		}
		p.Height += slot.Height
	}
	startMin, endMin = grid.TimeRange(p, slots)
	return startMin, endMin, true
}

// Drag turns press, enter and release events into a slot selection.
// The zero value is idle.
type Drag struct {
	phase  DragPhase
	day    int
	anchor int
	cursor int
}

// Phase returns the current phase.
func (d *Drag) Phase() DragPhase {
	return d.phase
}

// Press starts a drag on a cell. Drags cannot start on past days or while
// another drag is in progress.
func (d *Drag) Press(day, slot int, past bool) bool {
	if d.phase != DragIdle || past || slot < 0 {
		return false
	}
	d.phase = DragDragging
	d.day = day
	d.anchor = slot
	d.cursor = slot
	return true
}

// Enter extends the selection to slot. Cells on other days are ignored so
// a selection never spans days.
func (d *Drag) Enter(day, slot int) bool {
	if d.phase != DragDragging || day != d.day || slot < 0 || slot == d.cursor {
		return false
	}
	d.cursor = slot
	return true
}

// Release ends the drag and hands back the selection to commit.
func (d *Drag) Release() (Selection, bool) {
	if d.phase != DragDragging {
		return Selection{}, false
	}
	d.phase = DragCommitting
	return d.selection(), true
}

// Commit finishes a committing drag.
func (d *Drag) Commit() {
	if d.phase == DragCommitting {
		*d = Drag{}
	}
}

// Cancel drops the drag without emitting a selection, e.g. when the pointer
// leaves the grid.
func (d *Drag) Cancel() {
	*d = Drag{}
}

// Selection returns the range to highlight while dragging or committing.
func (d *Drag) Selection() (Selection, bool) {
	if d.phase == DragIdle {
		return Selection{}, false
	}
	return d.selection(), true
}

func (d *Drag) selection() Selection {
	return Selection{
		Day:       d.day,
		StartSlot: min(d.anchor, d.cursor),
		EndSlot:   max(d.anchor, d.cursor),
	}
}
