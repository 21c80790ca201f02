package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/task"
	"github.com/javiermolinar/weekplan/internal/tui/commands"
	"github.com/javiermolinar/weekplan/internal/tui/nav"
)

// confirmDialog is a yes/no question. onAlt, when set, is bound to "a" for
// the "all instances" answer of recurring deletes. A set deleteID deletes
// that task on "y" instead of running onYes.
type confirmDialog struct {
	title    string
	message  string
	onYes    tea.Cmd
	onAlt    tea.Cmd
	altLabel string
	deleteID string
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.log.Event("KEY", map[string]any{"key": msg.String(), "mode": int(m.mode)})

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeDetail:
		return m.handleDetailKeys(msg)
	}
	if m.nav.Mode == nav.ModeMonthly {
		return m.handleMonthKeys(msg)
	}
	return m.handleWeekKeys(msg)
}

// handleCommonKeys handles keys shared by both pages. ok is false when the
// key is not one of them.
func (m Model) handleCommonKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "t":
		next, cmd := m.navigate(m.nav.Today(m.now()))
		return next, cmd, true
	case "m":
		if m.drag.Phase() != nav.DragIdle {
			m.drag.Cancel()
		}
		next, cmd := m.navigate(m.nav.ToggleMode())
		return next, cmd, true
	case "y":
		return m, commands.CopyWeek(m.svc, m.nav.WeekStart, m.holidays), true
	}
	return m, nil, false
}

// handleWeekKeys handles keys on the weekly page.
func (m Model) handleWeekKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.handleCommonKeys(msg); ok {
		return next, cmd
	}

	slotCount := len(m.slots)
	switch msg.String() {
	case "esc":
		m.drag.Cancel()
		return m, nil

	case "h", "left":
		return m.navigate(m.nav.MoveCursor(-1, 0, slotCount))
	case "l", "right":
		return m.navigate(m.nav.MoveCursor(1, 0, slotCount))
	case "j", "down":
		return m.navigate(m.nav.MoveCursor(0, 1, slotCount))
	case "k", "up":
		return m.navigate(m.nav.MoveCursor(0, -1, slotCount))
	case "pgdown", "ctrl+d":
		return m.navigate(m.nav.MoveCursor(0, max(1, m.layout.VisibleSlots), slotCount))
	case "pgup", "ctrl+u":
		return m.navigate(m.nav.MoveCursor(0, -max(1, m.layout.VisibleSlots), slotCount))
	case "H", "shift+left", "[":
		return m.navigate(m.nav.PrevWeek())
	case "L", "shift+right", "]":
		return m.navigate(m.nav.NextWeek())

	case "a", "n":
		return m.openAddForm(m.nav.CursorDay, m.nav.CursorSlot, m.nav.CursorSlot)
	case "enter":
		if t := m.selectedTask(); t != nil {
			m.mode = ModeDetail
			m.detail = t
			return m, nil
		}
		return m.openAddForm(m.nav.CursorDay, m.nav.CursorSlot, m.nav.CursorSlot)
	case " ", "x":
		if t := m.selectedTask(); t != nil {
			return m.toggleDone(t)
		}
	case "e":
		if t := m.selectedTask(); t != nil {
			return m.openEditForm(t)
		}
	case "d", "delete":
		if t := m.selectedTask(); t != nil {
			return m.confirmDelete(t)
		}
	}
	return m, nil
}

// handleMonthKeys handles keys on the monthly page. The cursor stays on a
// date; leaving the month turns the page.
func (m Model) handleMonthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.handleCommonKeys(msg); ok {
		return next, cmd
	}

	var days int
	switch msg.String() {
	case "h", "left":
		days = -1
	case "l", "right":
		days = 1
	case "j", "down":
		days = 7
	case "k", "up":
		days = -7
	case "H", "shift+left", "[":
		return m.navigate(m.nav.PrevMonth())
	case "L", "shift+right", "]":
		return m.navigate(m.nav.NextMonth())
	case "enter":
		return m.navigate(m.nav.OpenDay(m.nav.CursorDate()))
	default:
		return m, nil
	}

	next := m.nav.MoveCursor(days, 0, len(m.slots))
	next, _ = next.SyncMonth()
	return m.navigate(next)
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = ModeNormal
		return m, nil
	}
	cmd, done := m.form.handleKey(msg, m.svc)
	if done {
		m.mode = ModeNormal
		m.form = nil
	}
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	if c == nil {
		m.mode = ModeNormal
		return m, nil
	}
	switch msg.String() {
	case "y", "enter":
		m.mode, m.confirm = ModeNormal, nil
		if c.deleteID != "" {
			return m.deleteTask(c.deleteID)
		}
		return m, c.onYes
	case "a":
		if c.onAlt != nil {
			m.mode, m.confirm = ModeNormal, nil
			return m, c.onAlt
		}
	case "n", "esc", "q":
		m.mode, m.confirm = ModeNormal, nil
	}
	return m, nil
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.detail
	if t == nil {
		m.mode = ModeNormal
		return m, nil
	}
	switch msg.String() {
	case "esc", "q", "enter":
		m.mode, m.detail = ModeNormal, nil
	case "e":
		m.detail = nil
		return m.openEditForm(t)
	case "d", "delete":
		m.detail = nil
		return m.confirmDelete(t)
	case " ", "x":
		m.mode, m.detail = ModeNormal, nil
		return m.toggleDone(t)
	}
	return m, nil
}

// openAddForm opens the add form for a slot range of the visible week.
// Past days are rejected.
func (m Model) openAddForm(day, startSlot, endSlot int) (tea.Model, tea.Cmd) {
	if m.isPastDay(day) {
		cmd := m.setStatus("Cannot schedule in the past", 3*time.Second)
		return m, cmd
	}
	sel := nav.Selection{Day: day, StartSlot: startSlot, EndSlot: endSlot}
	startMin, endMin, ok := sel.Times(m.slots)
	if !ok {
		return m, nil
	}
	date := m.nav.WeekStart.AddDate(0, 0, day)
	m.form = newAddForm(date, task.MinutesToTime(startMin), task.MinutesToTime(endMin), m.config.UI.Color, m.styles)
	m.mode = ModeForm

	// Warn early; the store still has the final say on conflicts.
	if w := m.currentWeek(); w != nil {
		start, end, err := slotBounds(date, startMin, endMin)
		if err != nil {
			return m, nil
		}
		if hit := w.Day(day).FindConflict(start, end, ""); hit != nil {
			cmd := m.setStatus(fmt.Sprintf("Overlaps %q %s-%s", hit.Title, hit.StartClock(), hit.EndClock()), 3*time.Second)
			return m, cmd
		}
	}
	return m, nil
}

// slotBounds turns minutes of day into wall-clock times on date.
func slotBounds(date time.Time, startMin, endMin int) (start, end time.Time, err error) {
	if start, err = task.At(date, task.MinutesToTime(startMin)); err != nil {
		return start, end, err
	}
	end, err = task.At(date, task.MinutesToTime(endMin))
	return start, end, err
}

func (m Model) openEditForm(t *task.Task) (tea.Model, tea.Cmd) {
	m.form = newEditForm(t, scheduler.ScopeSingle, m.styles)
	m.mode = ModeForm
	return m, nil
}

// confirmDelete asks before deleting. Recurring tasks offer deleting the
// whole group.
func (m Model) confirmDelete(t *task.Task) (tea.Model, tea.Cmd) {
	m.mode = ModeConfirm
	m.confirm = &confirmDialog{
		title:    "Delete task",
		message:  "Delete \"" + t.Title + "\"?",
		deleteID: t.ID,
	}
	if t.IsRecurring() && t.GroupID != "" {
		m.confirm.message = "Delete \"" + t.Title + "\"? This instance only, or every repeat?"
		m.confirm.onAlt = commands.DeleteGroup(m.svc, t.GroupID)
		m.confirm.altLabel = "all"
	}
	return m, nil
}

// toggleDone flips the task in the loaded window right away and commits in
// the background. A failed commit restores the previous state.
func (m Model) toggleDone(t *task.Task) (tea.Model, tea.Cmd) {
	flipped := t.Clone()
	flipped.Done = !t.Done
	rollback := m.applyLocal(task.Change{Op: task.OpUpdate, Task: flipped})
	return m, commands.ToggleDone(m.svc, t.ID, rollback)
}

func (m Model) deleteTask(id string) (tea.Model, tea.Cmd) {
	rollback := m.applyLocal(task.Change{Op: task.OpDelete, ID: id})
	return m, commands.Delete(m.svc, id, rollback)
}

// applyLocal applies c to the loaded window and returns the change that
// undoes it.
func (m *Model) applyLocal(c task.Change) task.Change {
	if m.window == nil {
		return task.Change{}
	}
	var rollback task.Change
	m.window, rollback = m.window.Apply(c)
	m.log.Event("LOCAL_CHANGE", map[string]any{"op": string(c.Op), "rollback": string(rollback.Op)})
	return rollback
}
