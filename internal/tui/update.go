package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekplan/internal/tui/commands"
	"github.com/javiermolinar/weekplan/internal/tui/nav"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil

	case commands.WindowLoadedMsg:
		m.window = msg.Window
		m.loading = false
		m.log.Event("WINDOW_LOADED", map[string]any{
			"week_start": msg.Window.Current().StartDate.Format("2006-01-02"),
			"tasks":      len(msg.Window.Tasks()),
		})
		return m, nil

	case commands.WeekShiftedMsg:
		return m.applyWeekShift(msg)

	case commands.MonthLoadedMsg:
		m.month = msg.Month
		m.relayout()
		return m, nil

	case commands.AddedMsg:
		status := fmt.Sprintf("Added %d tasks", len(msg.Result.Created))
		if len(msg.Result.Created) == 1 {
			status = "Task added"
		}
		if n := len(msg.Result.Replaced); n > 0 {
			status += fmt.Sprintf(", replaced %d", n)
		}
		cmd := tea.Batch(m.setStatus(status, 3*time.Second), m.reload())
		return m, cmd

	case commands.ConflictMsg:
		return m.handleConflict(msg)

	case commands.MutatedMsg:
		cmd := tea.Batch(m.setStatus(msg.Status, 3*time.Second), m.reload())
		return m, cmd

	case commands.RollbackMsg:
		m.applyLocal(msg.Change)
		m.log.Error("commit", msg.Err)
		cmd := m.setStatus(fmt.Sprintf("Error: %v", msg.Err), 5*time.Second)
		return m, cmd

	case commands.ErrMsg:
		m.loading = false
		m.log.Error("command", msg.Err)
		cmd := m.setStatus(fmt.Sprintf("Error: %v", msg.Err), 5*time.Second)
		return m, cmd

	case commands.StatusMsgCmd:
		cmd := m.setStatus(msg.Msg, 3*time.Second)
		return m, cmd

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	if m.mode == ModeForm && m.form != nil {
		var cmd tea.Cmd
		m.form, cmd = m.form.updateInput(msg)
		return m, cmd
	}
	return m, nil
}

// applyWeekShift slides the window once the new edge week arrives. When the
// user paged faster than the loads, the window is reloaded around the
// visible week instead.
func (m Model) applyWeekShift(msg commands.WeekShiftedMsg) (tea.Model, tea.Cmd) {
	if m.window == nil {
		return m, commands.LoadWindow(m.svc, m.nav.WeekStart)
	}
	switch {
	case msg.Forward && msg.Week.StartDate.Equal(m.window.Next().StartDate.AddDate(0, 0, 7)):
		m.window.ShiftForward(msg.Week)
	case !msg.Forward && msg.Week.StartDate.Equal(m.window.Previous().StartDate.AddDate(0, 0, -7)):
		m.window.ShiftBackward(msg.Week)
	}
	m.loading = false
	if !m.window.Current().StartDate.Equal(m.nav.WeekStart) {
		m.loading = true
		return m, commands.LoadWindow(m.svc, m.nav.WeekStart)
	}
	return m, nil
}

// handleConflict asks whether to replace the overlapping tasks of a refused
// add. Refused edits only report the conflict.
func (m Model) handleConflict(msg commands.ConflictMsg) (tea.Model, tea.Cmd) {
	m.log.Event("CONFLICT", map[string]any{
		"existing": msg.Err.Existing.ID,
		"title":    msg.Err.Existing.Title,
	})
	if msg.Request == nil {
		cmd := m.setStatus(msg.Err.Error(), 5*time.Second)
		return m, cmd
	}

	retry := *msg.Request
	retry.Replace = true
	m.mode = ModeConfirm
	m.confirm = &confirmDialog{
		title:   "Time conflict",
		message: fmt.Sprintf("%s\nReplace the overlapping tasks?", msg.Err.Error()),
		onYes:   commands.Add(m.svc, retry),
	}
	return m, nil
}

// reload refreshes the loaded pages after a mutation.
func (m Model) reload() tea.Cmd {
	cmds := []tea.Cmd{commands.LoadWindow(m.svc, m.nav.WeekStart)}
	if m.nav.Mode == nav.ModeMonthly {
		cmds = append(cmds, commands.LoadMonth(m.svc, m.nav.Month))
	}
	return tea.Batch(cmds...)
}

// navigate applies a new view state and loads whatever page it needs.
func (m Model) navigate(next nav.ViewState) (Model, tea.Cmd) {
	prev := m.nav
	m.nav = next
	m.ensureCursorVisible()

	var cmds []tea.Cmd
	if !next.WeekStart.Equal(prev.WeekStart) {
		m.log.Event("NAV_WEEK", map[string]any{
			"from": prev.WeekStart.Format("2006-01-02"),
			"to":   next.WeekStart.Format("2006-01-02"),
		})
		cmds = append(cmds, m.loadWeek(prev.WeekStart))
	}
	if next.Mode == nav.ModeMonthly && (prev.Mode != nav.ModeMonthly || !next.Month.Equal(prev.Month) || m.month == nil) {
		m.log.Event("NAV_MONTH", map[string]any{"month": next.Month.Format("2006-01")})
		cmds = append(cmds, commands.LoadMonth(m.svc, next.Month))
	}
	return m, tea.Batch(cmds...)
}

// loadWeek fetches what the window needs after the visible week moved away
// from prevStart. One step in either direction only loads the new edge.
func (m *Model) loadWeek(prevStart time.Time) tea.Cmd {
	if m.window == nil || !m.window.Current().StartDate.Equal(prevStart) {
		m.loading = true
		return commands.LoadWindow(m.svc, m.nav.WeekStart)
	}
	switch {
	case m.nav.WeekStart.Equal(prevStart.AddDate(0, 0, 7)):
		return commands.LoadNextWeek(m.svc, m.nav.WeekStart)
	case m.nav.WeekStart.Equal(prevStart.AddDate(0, 0, -7)):
		return commands.LoadPrevWeek(m.svc, m.nav.WeekStart)
	default:
		m.loading = true
		return commands.LoadWindow(m.svc, m.nav.WeekStart)
	}
}
