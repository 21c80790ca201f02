// Package tui provides the terminal user interface for weekplan.
package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekplan/internal/config"
	"github.com/javiermolinar/weekplan/internal/dateutil"
	"github.com/javiermolinar/weekplan/internal/debuglog"
	"github.com/javiermolinar/weekplan/internal/grid"
	"github.com/javiermolinar/weekplan/internal/holiday"
	"github.com/javiermolinar/weekplan/internal/task"
	"github.com/javiermolinar/weekplan/internal/tui/commands"
	"github.com/javiermolinar/weekplan/internal/tui/nav"
	"github.com/javiermolinar/weekplan/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeForm         // add or edit form open
	ModeConfirm      // yes/no question open
	ModeDetail       // task detail open
)

// StateFile is the name of the persisted view state, stored next to the
// database.
const StateFile = "view.json"

// Model is the main TUI model.
type Model struct {
	// Dependencies
	svc      commands.Service
	config   *config.Config
	holidays *holiday.Calendar
	log      *debuglog.Logger
	now      func() time.Time

	statePath string

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// Navigation
	nav   nav.ViewState
	drag  nav.Drag
	slots []grid.TimeSlot

	// Loaded data
	window  *task.WeekWindow
	month   *task.Month
	loading bool

	// Overlays
	mode    Mode
	form    *taskForm
	confirm *confirmDialog
	detail  *task.Task

	// Terminal dimensions and layout
	width  int
	height int
	layout Layout
	scroll int

	// Messages
	statusMsg  string
	statusTime time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *debuglog.Logger) ModelOption {
	return func(m *Model) {
		m.log = l
	}
}

// WithHolidays sets the holiday calendar used for headers and recurrence.
func WithHolidays(c *holiday.Calendar) ModelOption {
	return func(m *Model) {
		m.holidays = c
	}
}

// WithStatePath sets where the view state is loaded from and saved to.
// An empty path disables persistence.
func WithStatePath(path string) ModelOption {
	return func(m *Model) {
		m.statePath = path
	}
}

// StatePath returns the default view state location for cfg.
func StatePath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.Storage.DBPath), StateFile)
}

// New creates a new TUI model.
func New(svc commands.Service, cfg *config.Config, opts ...ModelOption) Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}

	m := Model{
		svc:      svc,
		config:   cfg,
		holidays: holiday.Default(),
		log:      debuglog.Default(),
		now:      time.Now,
		theme:    t,
		styles:   NewStyles(t),
		slots:    grid.BuildSlots(cfg.Week),
		mode:     ModeNormal,
		loading:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.nav = m.restoreState()
	m.layout = computeLayout(0, 0, cfg.UI.SlotLines, 6)
	return m
}

// restoreState loads the saved view state, falling back to today with the
// cursor on the current time.
func (m Model) restoreState() nav.ViewState {
	now := m.now()
	fresh := nav.New(now)
	if idx := grid.SlotIndex(task.MinuteOfDay(now), m.slots); idx >= 0 {
		fresh.CursorSlot = idx
	}
	if m.statePath == "" {
		return fresh
	}

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.log.Error("load_state", err)
		}
		return fresh
	}
	s, err := nav.Decode(data, now.Location())
	if err != nil {
		m.log.Error("load_state", err)
		return fresh
	}
	s.CursorSlot = min(s.CursorSlot, max(0, len(m.slots)-1))
	m.log.Event("STATE_RESTORED", map[string]any{
		"mode":       string(s.Mode),
		"week_start": s.WeekStart.Format("2006-01-02"),
	})
	return s
}

// SaveState writes the view state so the next run reopens the same page.
func (m Model) SaveState() error {
	if m.statePath == "" {
		return nil
	}
	data, err := m.nav.Encode()
	if err != nil {
		return fmt.Errorf("encoding view state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(m.statePath, data, 0o644); err != nil {
		return fmt.Errorf("writing view state: %w", err)
	}
	return nil
}

// ViewState returns the current navigation state.
func (m Model) ViewState() nav.ViewState {
	return m.nav
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.nav.Mode == nav.ModeMonthly {
		return tea.Batch(
			commands.LoadWindow(m.svc, m.nav.WeekStart),
			commands.LoadMonth(m.svc, m.nav.Month),
		)
	}
	return commands.LoadWindow(m.svc, m.nav.WeekStart)
}

// Run starts the TUI and saves the view state on exit.
func Run(svc commands.Service, cfg *config.Config, opts ...ModelOption) error {
	model := New(svc, cfg, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		if err := fm.SaveState(); err != nil {
			fm.log.Error("save_state", err)
			return err
		}
	}
	return nil
}

// currentWeek returns the loaded week shown on the weekly page, or nil while
// it is still loading.
func (m Model) currentWeek() *task.Week {
	if m.window == nil {
		return nil
	}
	for _, w := range []*task.Week{m.window.Previous(), m.window.Current(), m.window.Next()} {
		if w != nil && w.StartDate.Equal(m.nav.WeekStart) {
			return w
		}
	}
	return nil
}

// tasksAt returns the tasks of day d whose span covers slot.
func (m Model) tasksAt(day, slot int) []*task.Task {
	week := m.currentWeek()
	if week == nil || slot < 0 || slot >= len(m.slots) {
		return nil
	}
	s := m.slots[slot]
	var out []*task.Task
	for _, t := range week.Days[day].Tasks() {
		start := task.MinuteOfDay(t.Start)
		end := start + t.Duration()
		if start < s.End() && end > s.Start {
			out = append(out, t)
		}
	}
	return out
}

// selectedTask returns the task under the cursor.
func (m Model) selectedTask() *task.Task {
	if ts := m.tasksAt(m.nav.CursorDay, m.nav.CursorSlot); len(ts) > 0 {
		return ts[0]
	}
	return nil
}

// isPastDay reports whether day d of the visible week lies before today.
func (m Model) isPastDay(d int) bool {
	return m.nav.WeekStart.AddDate(0, 0, d).Before(dateutil.TruncateToDay(m.now()))
}

func (m *Model) setStatus(msg string, d time.Duration) tea.Cmd {
	m.statusMsg = msg
	m.statusTime = m.now().Add(d)
	return tea.Tick(d, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

func (m *Model) ensureCursorVisible() {
	m.scroll = clampScroll(m.scroll, m.nav.CursorSlot, m.layout.VisibleSlots, len(m.slots))
}

func (m *Model) relayout() {
	weeks := 6
	if m.month != nil {
		weeks = m.month.Weeks()
	}
	m.layout = computeLayout(m.width, m.height, m.config.UI.SlotLines, weeks)
	m.ensureCursorVisible()
}
