package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/task"
)

func (m Model) renderMonth() string {
	var b strings.Builder
	title := " " + dateutil.FormatYearMonth(m.nav.Month)
	if m.loading || m.month == nil {
		title += "  loading…"
	}
	b.WriteString(m.styles.TitleStyle.Render(fit(title, m.width)))
	b.WriteString("\n")

	sep := m.styles.SeparatorStyle.Render("│")
	b.WriteString(m.styles.EmptyCellStyle.Render(strings.Repeat(" ", timeColWidth)))
	for d := 0; d < 7; d++ {
		style := m.styles.DayHeaderStyle
		switch d {
		case 5:
			style = m.styles.SaturdayStyle
		case 6:
			style = m.styles.HolidayStyle
		}
		b.WriteString(sep)
		b.WriteString(style.Render(fit(task.WeekdayShortName(d), m.layout.ColWidth)))
	}

	if m.month == nil || m.month.First.Format("2006-01") != m.nav.Month.Format("2006-01") {
		return b.String()
	}

	today := dateutil.TruncateToDay(m.now())
	cursor := m.nav.CursorDate()
	for w := 0; w < m.month.Weeks(); w++ {
		days := m.month.Days[w*7 : w*7+7]
		cols := make([][]cell, 7)
		for d, date := range days {
			cols[d] = m.monthCell(date, today, cursor)
		}
		for line := 0; line < m.layout.MonthLines; line++ {
			b.WriteString("\n")
			label := ""
			if line == 0 {
				_, wk := days[0].ISOWeek()
				label = fmt.Sprintf("W%02d", wk)
			}
			b.WriteString(m.styles.TimeColumnStyle.Render(fitRight(label, timeColWidth-1) + " "))
			for d := range cols {
				b.WriteString(sep)
				c := cols[d][line]
				b.WriteString(c.style.Render(fit(c.text, m.layout.ColWidth)))
			}
		}
	}
	return b.String()
}

// monthCell renders the lines of one date: the day number with its holiday,
// then the events, with a "+N" line when they do not fit.
func (m Model) monthCell(date, today, cursor time.Time) []cell {
	n := m.layout.MonthLines
	base := m.styles.MonthDayStyle
	if !m.month.InMonth(date) {
		base = m.styles.MonthOutsideStyle
	}

	head := fmt.Sprintf("%d", date.Day())
	headStyle := base
	name := m.holidays.Name(date)
	switch {
	case date.Equal(today):
		headStyle = m.styles.MonthTodayStyle
	case name != "" || date.Weekday() == time.Sunday:
		headStyle = m.styles.HolidayStyle
	case date.Weekday() == time.Saturday:
		headStyle = m.styles.SaturdayStyle
	}
	if name != "" {
		head += " " + name
	}
	if date.Equal(cursor) {
		headStyle = m.styles.CursorStyle.Bold(true)
	}

	col := make([]cell, n)
	col[0] = cell{text: head, style: headStyle}
	for i := 1; i < n; i++ {
		col[i] = cell{style: base}
	}

	events := m.month.TasksOn(date)
	room := n - 1
	for i, t := range events {
		if i >= room {
			break
		}
		if i == room-1 && len(events) > room {
			col[i+1] = cell{text: fmt.Sprintf("+%d more", len(events)-i), style: m.styles.MonthOutsideStyle}
			break
		}
		col[i+1] = cell{text: "• " + t.Title, style: m.styles.MonthEventStyle}
	}
	return col
}
