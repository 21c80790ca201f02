package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/grid"
	"github.com/javiermolinar/weekplan/internal/summary"
	"github.com/javiermolinar/weekplan/internal/task"
	"github.com/javiermolinar/weekplan/internal/tui/nav"
)

const minWidth = timeColWidth + 7*(minColWidth+1)

// View renders the model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.width < minWidth || m.height < headerLines+footerLines+2 {
		return fmt.Sprintf("Terminal too small (%dx%d)", m.width, m.height)
	}

	var body string
	if m.nav.Mode == nav.ModeMonthly {
		body = m.renderMonth()
	} else {
		body = m.renderWeek()
	}
	bodyLines := normalizeLines(body, m.width, m.height-footerLines)
	screen := strings.Join(append(bodyLines, m.renderFooter()), "\n")

	if box := m.renderDialog(); box != "" {
		return placeOverlay(screen, m.width, m.height, box)
	}
	return strings.Join(normalizeLines(screen, m.width, m.height), "\n")
}

// cell is one terminal line of a day column.
type cell struct {
	text  string
	style lipgloss.Style
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// fitRight right-aligns s in w cells.
func fitRight(s string, w int) string {
	s = ansi.Truncate(s, w, "")
	if pad := w - ansi.StringWidth(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

func (m Model) renderWeek() string {
	var b strings.Builder
	b.WriteString(m.renderWeekTitle())
	b.WriteString("\n")
	b.WriteString(m.renderDayHeaders())

	lines := m.layout.VisibleSlots * m.layout.SlotLines
	cols := make([][]cell, 7)
	for d := range cols {
		cols[d] = m.dayColumn(d)
	}
	sep := m.styles.SeparatorStyle.Render("│")
	for i := 0; i < lines; i++ {
		b.WriteString("\n")
		b.WriteString(m.timeLabel(i))
		for d := range cols {
			b.WriteString(sep)
			c := cols[d][i]
			b.WriteString(c.style.Render(fit(c.text, m.layout.ColWidth)))
		}
	}
	return b.String()
}

func (m Model) renderWeekTitle() string {
	title := m.styles.TitleStyle.Render(" " + dateutil.FormatYearMonthWeek(m.nav.WeekStart))
	var right string
	if m.loading {
		right = "loading… "
	}
	gap := max(1, m.width-lipgloss.Width(title)-ansi.StringWidth(right))
	return title + m.styles.HelpStyle.Render(strings.Repeat(" ", gap)+right)
}

func (m Model) renderDayHeaders() string {
	var b strings.Builder
	b.WriteString(m.styles.EmptyCellStyle.Render(strings.Repeat(" ", timeColWidth)))
	today := dateutil.TruncateToDay(m.now())
	sep := m.styles.SeparatorStyle.Render("│")
	for d := 0; d < 7; d++ {
		date := m.nav.WeekStart.AddDate(0, 0, d)
		label := dateutil.FormatDayLabel(date)
		name := m.holidays.Name(date)
		if name != "" {
			label += " " + name
		}
		style := m.styles.DayHeader(date.Equal(today), date.Weekday() == time.Saturday, name != "" || date.Weekday() == time.Sunday)
		b.WriteString(sep)
		b.WriteString(style.Render(fit(label, m.layout.ColWidth)))
	}
	return b.String()
}

// timeLabel renders the time column for visible line i.
func (m Model) timeLabel(i int) string {
	slot := m.scroll + i/m.layout.SlotLines
	if i%m.layout.SlotLines != 0 || slot >= len(m.slots) {
		return m.styles.TimeColumnStyle.Render(strings.Repeat(" ", timeColWidth))
	}
	s := m.slots[slot]
	label := fitRight(dateutil.FormatClock12(s.Start), timeColWidth)
	now := task.MinuteOfDay(m.now())
	if m.showsToday() && s.Contains(now) {
		return m.styles.NowMarkerStyle.Render(label)
	}
	return m.styles.TimeColumnStyle.Render(label)
}

func (m Model) showsToday() bool {
	return m.todayIndex() >= 0
}

// todayIndex returns the column of today on the visible week, or -1.
func (m Model) todayIndex() int {
	today := dateutil.TruncateToDay(m.now())
	for d := 0; d < 7; d++ {
		if m.nav.WeekStart.AddDate(0, 0, d).Equal(today) {
			return d
		}
	}
	return -1
}

// dayColumn renders the visible lines of day d: empty cells, the drag
// selection, task blocks and the current time line.
func (m Model) dayColumn(d int) []cell {
	n := m.layout.VisibleSlots * m.layout.SlotLines
	first := m.scroll * m.layout.SlotLines
	past := m.isPastDay(d)
	sel, dragging := m.drag.Selection()

	col := make([]cell, n)
	for i := range col {
		slot := m.scroll + i/m.layout.SlotLines
		style := m.styles.EmptyCellStyle
		switch {
		case dragging && sel.Day == d && slot >= sel.StartSlot && slot <= sel.EndSlot:
			style = m.styles.DragStyle
		case d == m.nav.CursorDay && slot == m.nav.CursorSlot:
			style = m.styles.CursorStyle
		case past:
			style = m.styles.PastCellStyle
		}
		col[i] = cell{style: style}
	}

	if d == m.todayIndex() {
		m.drawNowLine(col, first)
	}

	week := m.currentWeek()
	if week == nil || len(m.slots) == 0 {
		return col
	}
	height := m.slots[0].Height
	for i, t := range week.Days[d].Tasks() {
		pos := grid.MapToPosition(t.Start, t.End, m.slots)
		top, bottom := lineSpan(pos.Top, pos.Height, height, m.layout.SlotLines)
		selected := d == m.nav.CursorDay && m.coversCursor(t)
		style := m.styles.Task(t.Color, t.IsPast(m.now()), i%2 == 1)
		if selected {
			style = style.Bold(true).Underline(true)
		}
		text := taskLines(t, bottom-top+1)
		for line := top; line <= bottom; line++ {
			idx := line - first
			if idx < 0 || idx >= n {
				continue
			}
			col[idx] = cell{text: text[line-top], style: style}
		}
	}
	return col
}

// drawNowLine marks the current time on today's column.
func (m Model) drawNowLine(col []cell, first int) {
	if len(m.slots) == 0 {
		return
	}
	now := task.MinuteOfDay(m.now())
	pos := grid.MapMinutes(now, now+1, m.slots)
	line, _ := lineSpan(pos.Top, pos.Height, m.slots[0].Height, m.layout.SlotLines)
	idx := line - first
	if idx < 0 || idx >= len(col) || now < m.slots[0].Start || now >= m.slots[len(m.slots)-1].End() {
		return
	}
	col[idx] = cell{text: strings.Repeat("─", m.layout.ColWidth), style: m.styles.NowMarkerStyle}
}

func (m Model) coversCursor(t *task.Task) bool {
	if m.nav.CursorSlot >= len(m.slots) {
		return false
	}
	s := m.slots[m.nav.CursorSlot]
	start := task.MinuteOfDay(t.Start)
	return start < s.End() && start+t.Duration() > s.Start
}

// taskLines lays out the text of a block n lines tall.
func taskLines(t *task.Task, n int) []string {
	lines := make([]string, n)
	title := t.Title
	switch {
	case t.Done:
		title = "✓ " + title
	case t.IsEvent():
		title = "★ " + title
	case t.IsRecurring():
		title = "↻ " + title
	}
	lines[0] = title
	if n > 1 {
		lines[1] = t.StartClock() + "-" + endClock(t)
	}
	if n > 2 && t.Memo != "" {
		lines[2] = t.Memo
	}
	return lines
}

func (m Model) renderFooter() string {
	status := m.statusMsg
	style := m.styles.StatusStyle
	if status == "" {
		status = m.statsLine()
		style = m.styles.HelpStyle
	} else if strings.HasPrefix(status, "Error") {
		style = m.styles.WarningStyle
	}
	return style.Render(fit(" "+status, m.width)) + "\n" + m.styles.HelpStyle.Render(fit(" "+m.helpLine(), m.width))
}

func (m Model) statsLine() string {
	if m.nav.Mode == nav.ModeMonthly {
		return dateutil.FormatYearMonth(m.nav.Month)
	}
	week := m.currentWeek()
	if week == nil {
		return ""
	}
	s := week.Stats()
	return fmt.Sprintf("%d blocks · %s · %d%% done", s.TotalBlocks, summary.FormatMinutes(s.Minutes), s.DonePercent())
}

func (m Model) helpLine() string {
	if m.nav.Mode == nav.ModeMonthly {
		return "hjkl move · H/L month · enter open week · t today · m weekly · q quit"
	}
	return "hjkl move · H/L week · a add · enter open · space done · e edit · d delete · y copy · m monthly · q quit"
}
