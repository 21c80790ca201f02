package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/task"
)

const dialogLabelWidth = 10

// renderDialog renders the open dialog box, or "" when none is open.
func (m Model) renderDialog() string {
	switch m.mode {
	case ModeForm:
		if m.form != nil {
			return m.renderForm(m.form)
		}
	case ModeConfirm:
		if m.confirm != nil {
			return m.renderConfirm(m.confirm)
		}
	case ModeDetail:
		if m.detail != nil {
			return m.renderDetail(m.detail)
		}
	}
	return ""
}

func (m Model) dialogFrame(title, body, footer string) string {
	s := m.styles
	parts := []string{s.DialogTitleStyle.Render(title), "", body}
	if footer != "" {
		parts = append(parts, "", s.DialogMutedStyle.Render(footer))
	}
	return s.DialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) dialogRow(label, value string, focused bool) string {
	s := m.styles
	l := s.DialogLabelStyle.Render(fit(label, dialogLabelWidth))
	if focused {
		l = s.DialogFocusStyle.Render(fit(label, dialogLabelWidth))
	}
	return l + s.DialogInputText.Render(" ") + value
}

func (m Model) renderForm(f *taskForm) string {
	s := m.styles
	focused := f.focused()

	var rows []string
	for _, field := range f.fields() {
		var label, value string
		switch field {
		case fieldTitle, fieldStart, fieldEnd, fieldMemo:
			label = map[formField]string{fieldTitle: "Title", fieldStart: "Start", fieldEnd: "End", fieldMemo: "Memo"}[field]
			value = f.inputs[inputIndex(field)].View()
		case fieldKind:
			label = "Kind"
			value = m.choices(kindLabels(), indexOfKind(f.kind))
		case fieldRepeat:
			label = "Repeat"
			value = m.repeatRow(f, focused == fieldRepeat)
		case fieldSkipHolidays:
			label = "Holidays"
			value = m.choices([]string{"skip", "keep"}, boolIndex(!f.skipHolidays))
		case fieldColor:
			label = "Color"
			value = m.colorRow(f.color)
		case fieldScope:
			label = "Apply to"
			value = m.choices([]string{"this one", "all repeats"}, boolIndex(f.scope == scheduler.ScopeGroup))
		}
		rows = append(rows, m.dialogRow(label, value, field == focused))
	}
	if f.err != "" {
		rows = append(rows, "", s.DialogErrorStyle.Render(f.err))
	}

	title := "New task · " + dateutil.FormatDayLabel(f.date)
	if f.editing != nil {
		title = "Edit task · " + dateutil.FormatDayLabel(f.editing.Date())
	}
	return m.dialogFrame(title, strings.Join(rows, "\n"), "tab next · ←/→ change · space toggle · enter save · esc cancel")
}

func (m Model) choices(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == active {
			parts[i] = m.styles.DialogActiveStyle.Render(" " + l + " ")
		} else {
			parts[i] = m.styles.DialogMutedStyle.Render(" " + l + " ")
		}
	}
	return strings.Join(parts, m.styles.DialogInputText.Render(" "))
}

// repeatRow shows the seven day offsets from the form date by weekday name.
func (m Model) repeatRow(f *taskForm, focused bool) string {
	parts := make([]string, 7)
	for i := 0; i < 7; i++ {
		name := task.WeekdayShortName(task.WeekdayIndex(f.date.AddDate(0, 0, i)))
		style := m.styles.DialogMutedStyle
		if f.repeat[i] {
			style = m.styles.DialogActiveStyle
		}
		if focused && i == f.repeatCursor {
			style = style.Underline(true)
		}
		parts[i] = style.Render(name)
	}
	return strings.Join(parts, m.styles.DialogInputText.Render(" "))
}

func (m Model) colorRow(active int) string {
	parts := make([]string, len(task.Colors))
	for i, c := range task.Colors {
		mark := "  "
		if i == active {
			mark = "■■"
		}
		parts[i] = lipgloss.NewStyle().Background(lipgloss.Color(c)).Foreground(lipgloss.Color("#1e1e2e")).Render(mark)
	}
	return strings.Join(parts, m.styles.DialogInputText.Render(" "))
}

func (m Model) renderConfirm(c *confirmDialog) string {
	footer := "y yes · n no"
	if c.onAlt != nil {
		footer = "y this one · a " + c.altLabel + " · n cancel"
	}
	return m.dialogFrame(c.title, m.styles.DialogInputText.Render(c.message), footer)
}

func (m Model) renderDetail(t *task.Task) string {
	kind := map[task.Kind]string{task.KindSingle: "task", task.KindRecurring: "recurring", task.KindEvent: "event"}[t.Kind]
	status := "open"
	if t.Done {
		status = "done"
	}
	rows := []string{
		m.dialogRow("When", fmt.Sprintf("%s %s-%s", dateutil.FormatDayLabel(t.Date()), t.StartClock(), endClock(t)), false),
		m.dialogRow("Kind", kind, false),
		m.dialogRow("Status", status, false),
	}
	if t.Memo != "" {
		rows = append(rows, m.dialogRow("Memo", t.Memo, false))
	}
	return m.dialogFrame(t.Title, strings.Join(rows, "\n"), "e edit · d delete · space done · esc close")
}

func kindLabels() []string {
	return []string{"task", "recurring", "event"}
}

func indexOfKind(k task.Kind) int {
	for i, fk := range formKinds {
		if fk == k {
			return i
		}
	}
	return 0
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
