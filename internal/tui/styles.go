package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/weekplan/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	// Title and headers
	TitleStyle          lipgloss.Style
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style
	SaturdayStyle       lipgloss.Style
	HolidayStyle        lipgloss.Style

	// Time column
	TimeColumnStyle lipgloss.Style
	NowMarkerStyle  lipgloss.Style

	// Grid cells
	EmptyCellStyle lipgloss.Style
	PastCellStyle  lipgloss.Style
	CursorStyle    lipgloss.Style
	DragStyle      lipgloss.Style
	SeparatorStyle lipgloss.Style
	EventMarkStyle lipgloss.Style

	// Month cells
	MonthDayStyle     lipgloss.Style
	MonthOutsideStyle lipgloss.Style
	MonthTodayStyle   lipgloss.Style
	MonthEventStyle   lipgloss.Style

	// Footer
	StatusStyle  lipgloss.Style
	WarningStyle lipgloss.Style
	HelpStyle    lipgloss.Style

	// Dialogs
	DialogStyle       lipgloss.Style
	DialogTitleStyle  lipgloss.Style
	DialogLabelStyle  lipgloss.Style
	DialogFocusStyle  lipgloss.Style
	DialogMutedStyle  lipgloss.Style
	DialogErrorStyle  lipgloss.Style
	DialogActiveStyle lipgloss.Style
	DialogPlaceholder lipgloss.Style
	DialogInputText   lipgloss.Style
	DialogInputCursor lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)
	dialogBase := lipgloss.NewStyle().Background(p.Dialog.Bg).Foreground(p.Dialog.Text)

	return &Styles{
		palette: p,

		TitleStyle:          base.Foreground(p.Accent).Bold(true),
		DayHeaderStyle:      base.Bold(true),
		DayHeaderTodayStyle: base.Foreground(p.TextOnCurrent).Background(p.Current).Bold(true),
		SaturdayStyle:       base.Foreground(p.Saturday).Bold(true),
		HolidayStyle:        base.Foreground(p.Holiday).Bold(true),

		TimeColumnStyle: base.Foreground(p.FgMuted),
		NowMarkerStyle:  base.Foreground(p.Current).Bold(true),

		EmptyCellStyle: base,
		PastCellStyle:  base.Foreground(p.FgMuted),
		CursorStyle:    base.Background(p.BgSelection),
		DragStyle:      base.Background(p.Accent).Foreground(p.TextOnAccent),
		SeparatorStyle: base.Foreground(p.BgHighlight),
		EventMarkStyle: lipgloss.NewStyle().Foreground(p.Event).Bold(true),

		MonthDayStyle:     base,
		MonthOutsideStyle: base.Foreground(p.FgMuted),
		MonthTodayStyle:   base.Foreground(p.TextOnCurrent).Background(p.Current).Bold(true),
		MonthEventStyle:   base.Foreground(p.Event),

		StatusStyle:  base.Foreground(p.Accent),
		WarningStyle: base.Foreground(p.Warning).Bold(true),
		HelpStyle:    base.Foreground(p.FgMuted),

		DialogStyle: dialogBase.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Dialog.Border).
			BorderBackground(p.Dialog.Bg).
			Padding(1, 2),
		DialogTitleStyle:  dialogBase.Foreground(p.Accent).Bold(true),
		DialogLabelStyle:  dialogBase.Foreground(p.Dialog.Muted),
		DialogFocusStyle:  dialogBase.Background(p.Dialog.Focus).Bold(true),
		DialogMutedStyle:  dialogBase.Foreground(p.Dialog.Muted),
		DialogErrorStyle:  dialogBase.Foreground(p.Warning).Bold(true),
		DialogActiveStyle: dialogBase.Foreground(p.TextOnAccent).Background(p.Accent).Bold(true),
		DialogPlaceholder: dialogBase.Foreground(p.Dialog.Muted),
		DialogInputText:   dialogBase,
		DialogInputCursor: lipgloss.NewStyle().Foreground(p.Accent),
	}
}

// Task returns the block style for a task color tag.
func (s *Styles) Task(tag string, past, alt bool) lipgloss.Style {
	c := s.palette.Task(tag, past)
	bg := c.Bg
	if alt {
		bg = c.BgAlt
	}
	return lipgloss.NewStyle().Background(bg).Foreground(c.Text)
}

// DayHeader picks the header style for a date.
func (s *Styles) DayHeader(isToday, isSaturday, isHoliday bool) lipgloss.Style {
	switch {
	case isToday:
		return s.DayHeaderTodayStyle
	case isHoliday:
		return s.HolidayStyle
	case isSaturday:
		return s.SaturdayStyle
	default:
		return s.DayHeaderStyle
	}
}
