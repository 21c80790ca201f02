package tui

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/task"
	"github.com/javiermolinar/weekplan/internal/tui/commands"
)

// formField identifies one row of the task form.
type formField int

const (
	fieldTitle formField = iota
	fieldStart
	fieldEnd
	fieldMemo
	fieldKind
	fieldRepeat
	fieldSkipHolidays
	fieldColor
	fieldScope
)

var formKinds = []task.Kind{task.KindSingle, task.KindRecurring, task.KindEvent}

var errTitleRequired = errors.New("title is required")

// taskForm is the add and edit dialog. editing is nil when adding.
type taskForm struct {
	editing *task.Task
	date    time.Time

	inputs [4]textinput.Model // title, start, end, memo
	focus  int                // index into fields()

	kind         task.Kind
	repeat       [7]bool // day offsets from date
	repeatCursor int
	skipHolidays bool
	color        int
	colorTouched bool
	scope        scheduler.Scope

	err string
}

func newInput(placeholder string, limit int, s *Styles) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 32
	ti.Prompt = ""
	ti.PlaceholderStyle = s.DialogPlaceholder
	ti.TextStyle = s.DialogInputText
	ti.Cursor.Style = s.DialogInputCursor
	ti.Cursor.TextStyle = s.DialogInputText
	return ti
}

// newAddForm opens the form for a new task on date between start and end.
func newAddForm(date time.Time, start, end string, color string, s *Styles) *taskForm {
	f := &taskForm{
		date:         date,
		kind:         task.KindSingle,
		skipHolidays: true,
		color:        max(0, slices.Index(task.Colors, color)),
		scope:        scheduler.ScopeSingle,
	}
	f.inputs = [4]textinput.Model{
		newInput("Title", 256, s),
		newInput("HH:MM", 5, s),
		newInput("HH:MM", 5, s),
		newInput("Memo", 1024, s),
	}
	f.inputs[1].SetValue(start)
	f.inputs[2].SetValue(end)
	f.repeat[0] = true
	f.inputs[0].Focus()
	return f
}

// newEditForm opens the form prefilled from t.
func newEditForm(t *task.Task, scope scheduler.Scope, s *Styles) *taskForm {
	f := newAddForm(t.Date(), t.StartClock(), endClock(t), t.Color, s)
	f.editing = t
	f.kind = t.Kind
	f.scope = scope
	f.inputs[0].SetValue(t.Title)
	f.inputs[3].SetValue(t.Memo)
	return f
}

// fields lists the rows shown for the current form state.
func (f *taskForm) fields() []formField {
	if f.editing != nil {
		if f.scope == scheduler.ScopeGroup {
			return []formField{fieldTitle, fieldMemo, fieldColor, fieldScope}
		}
		fs := []formField{fieldTitle, fieldStart, fieldEnd, fieldMemo, fieldColor}
		if f.editing.IsRecurring() {
			fs = append(fs, fieldScope)
		}
		return fs
	}
	fs := []formField{fieldTitle, fieldStart, fieldEnd, fieldMemo, fieldKind}
	if f.kind == task.KindRecurring {
		fs = append(fs, fieldRepeat, fieldSkipHolidays)
	}
	return append(fs, fieldColor)
}

func (f *taskForm) focused() formField {
	fs := f.fields()
	f.focus = min(max(f.focus, 0), len(fs)-1)
	return fs[f.focus]
}

// inputIndex maps a text field to its input, or -1.
func inputIndex(field formField) int {
	switch field {
	case fieldTitle:
		return 0
	case fieldStart:
		return 1
	case fieldEnd:
		return 2
	case fieldMemo:
		return 3
	default:
		return -1
	}
}

func (f *taskForm) moveFocus(delta int) {
	n := len(f.fields())
	f.focus = (f.focus + delta + n) % n
	f.syncFocus()
}

func (f *taskForm) syncFocus() {
	active := inputIndex(f.focused())
	for i := range f.inputs {
		if i == active {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// cycle changes a choice field by delta.
func (f *taskForm) cycle(delta int) {
	switch f.focused() {
	case fieldKind:
		i := slices.Index(formKinds, f.kind)
		f.kind = formKinds[(i+delta+len(formKinds))%len(formKinds)]
	case fieldRepeat:
		f.repeatCursor = (f.repeatCursor + delta + 7) % 7
	case fieldSkipHolidays:
		f.skipHolidays = !f.skipHolidays
	case fieldColor:
		f.color = (f.color + delta + len(task.Colors)) % len(task.Colors)
		f.colorTouched = true
	case fieldScope:
		if f.scope == scheduler.ScopeSingle {
			f.scope = scheduler.ScopeGroup
		} else {
			f.scope = scheduler.ScopeSingle
		}
		f.focus = len(f.fields()) - 1
	}
}

// handleKey processes a key press. done is true when the form closes, with
// cmd carrying the submission, if any.
func (f *taskForm) handleKey(msg tea.KeyMsg, svc commands.Service) (cmd tea.Cmd, done bool) {
	switch msg.String() {
	case "esc":
		return nil, true
	case "enter":
		cmd, err := f.submit(svc)
		if err != nil {
			f.err = err.Error()
			return nil, false
		}
		return cmd, true
	case "tab", "down":
		f.moveFocus(1)
		return nil, false
	case "shift+tab", "up":
		f.moveFocus(-1)
		return nil, false
	}

	if inputIndex(f.focused()) < 0 {
		switch msg.String() {
		case "left", "h":
			f.cycle(-1)
		case "right", "l":
			f.cycle(1)
		case " ":
			if f.focused() == fieldRepeat {
				f.repeat[f.repeatCursor] = !f.repeat[f.repeatCursor]
			} else {
				f.cycle(1)
			}
		}
		return nil, false
	}

	f.err = ""
	_, cmd = f.updateInput(msg)
	return cmd, false
}

// updateInput forwards a message to the focused text input.
func (f *taskForm) updateInput(msg tea.Msg) (*taskForm, tea.Cmd) {
	i := inputIndex(f.focused())
	if i < 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[i], cmd = f.inputs[i].Update(msg)
	return f, cmd
}

func (f *taskForm) value(field formField) string {
	return strings.TrimSpace(f.inputs[inputIndex(field)].Value())
}

func (f *taskForm) repeatDays() []int {
	var days []int
	for i, on := range f.repeat {
		if on {
			days = append(days, i)
		}
	}
	return days
}

// submit validates the form and builds the add or edit command.
func (f *taskForm) submit(svc commands.Service) (tea.Cmd, error) {
	title := f.value(fieldTitle)
	if title == "" {
		return nil, errTitleRequired
	}
	start, end := f.value(fieldStart), f.value(fieldEnd)
	if f.editing == nil || f.scope == scheduler.ScopeSingle {
		if _, err := task.ParseClock(start); err != nil {
			return nil, err
		}
		if _, err := task.ParseClock(end); err != nil {
			return nil, err
		}
	}
	memo := f.value(fieldMemo)
	color := task.Colors[f.color]

	if f.editing == nil {
		req := scheduler.AddRequest{
			Kind:         f.kind,
			Title:        title,
			Date:         f.date,
			Start:        start,
			End:          end,
			Memo:         memo,
			Color:        color,
			SkipHolidays: f.skipHolidays,
		}
		if f.kind == task.KindRecurring {
			req.RepeatDays = f.repeatDays()
		}
		return commands.Add(svc, req), nil
	}

	req := scheduler.EditRequest{Title: &title, Memo: &memo}
	if f.colorTouched {
		req.Color = &color
	}
	if f.scope == scheduler.ScopeSingle {
		if start != f.editing.StartClock() {
			req.Start = &start
		}
		if end != endClock(f.editing) {
			req.End = &end
		}
	}
	return commands.Edit(svc, f.editing.ID, req, f.scope), nil
}

// endClock renders the end of t, keeping a midnight end as "24:00".
func endClock(t *task.Task) string {
	return task.MinutesToTime(task.MinuteOfDay(t.Start) + t.Duration())
}
