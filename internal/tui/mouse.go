package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekplan/internal/tui/nav"
)

// handleMouseMsg turns pointer events into cursor moves, scrolling and drag
// selections. Mouse input is ignored while a dialog is open.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m, nil
	}
	if m.nav.Mode == nav.ModeMonthly {
		return m.handleMonthMouse(msg)
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollBy(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scrollBy(1)
		return m, nil
	}

	day, slot, inGrid := m.layout.CellAt(msg.X, msg.Y, m.scroll, len(m.slots))

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inGrid {
			return m, nil
		}
		m.nav.CursorDay, m.nav.CursorSlot = day, slot
		if t := m.selectedTask(); t != nil {
			m.mode = ModeDetail
			m.detail = t
			return m, nil
		}
		past := m.isPastDay(day)
		if !m.drag.Press(day, slot, past) {
			if past {
				cmd := m.setStatus("Cannot schedule in the past", 3*time.Second)
				return m, cmd
			}
			return m, nil
		}
		m.logDrag(day, slot)

	case tea.MouseActionMotion:
		if m.drag.Phase() != nav.DragDragging {
			return m, nil
		}
		if !inGrid {
			m.drag.Cancel()
			m.logDrag(day, slot)
			return m, nil
		}
		if m.drag.Enter(day, slot) {
			m.nav.CursorSlot = slot
			m.ensureCursorVisible()
		}

	case tea.MouseActionRelease:
		sel, ok := m.drag.Release()
		if !ok {
			return m, nil
		}
		m.logDrag(sel.Day, sel.EndSlot)
		next, cmd := m.openAddForm(sel.Day, sel.StartSlot, sel.EndSlot)
		nm := next.(Model)
		nm.drag.Commit()
		nm.logDrag(sel.Day, sel.EndSlot)
		return nm, cmd
	}
	return m, nil
}

// handleMonthMouse moves the cursor to the clicked date. Clicking the date
// already under the cursor opens its week.
func (m Model) handleMonthMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.month == nil || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	idx, ok := m.layout.MonthCellAt(msg.X, msg.Y, m.month.Weeks())
	if !ok || idx >= len(m.month.Days) {
		return m, nil
	}
	date := m.month.Days[idx]
	if date.Equal(m.nav.CursorDate()) {
		return m.navigate(m.nav.OpenDay(date))
	}

	next := m.nav.OpenDay(date)
	next.Mode = nav.ModeMonthly
	next, _ = next.SyncMonth()
	return m.navigate(next)
}

func (m *Model) scrollBy(delta int) {
	m.scroll = max(0, min(m.scroll+delta, len(m.slots)-m.layout.VisibleSlots))
}

func (m Model) logDrag(day, slot int) {
	m.log.Event("DRAG", map[string]any{
		"phase": m.drag.Phase().String(),
		"day":   day,
		"slot":  slot,
	})
}
