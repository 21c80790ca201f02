// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/weekplan/internal/scheduler"
	"github.com/javiermolinar/weekplan/internal/summary"
	"github.com/javiermolinar/weekplan/internal/task"
)

// Service is the part of the scheduler the TUI drives.
type Service interface {
	Window(ctx context.Context, date time.Time) (*task.WeekWindow, error)
	Week(ctx context.Context, date time.Time) (*task.Week, error)
	Month(ctx context.Context, date time.Time) (*task.Month, error)
	Range(ctx context.Context, start, end time.Time) ([]*task.Task, error)
	Add(ctx context.Context, req scheduler.AddRequest) (*scheduler.AddResult, error)
	Edit(ctx context.Context, id string, req scheduler.EditRequest, scope scheduler.Scope) (*scheduler.EditResult, error)
	ToggleDone(ctx context.Context, id string) (*task.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteGroup(ctx context.Context, groupID string) (int, error)
}

var _ Service = (*scheduler.Service)(nil)

// WindowLoadedMsg is sent when the focused week and its neighbours are loaded.
type WindowLoadedMsg struct {
	Window *task.WeekWindow
}

// WeekShiftedMsg is sent when a new edge week is loaded after navigation.
type WeekShiftedMsg struct {
	Week    *task.Week
	Forward bool // true if shifted forward, false if backward
}

// MonthLoadedMsg is sent when a monthly page is loaded.
type MonthLoadedMsg struct {
	Month *task.Month
}

// AddedMsg is sent after tasks were created.
type AddedMsg struct {
	Result *scheduler.AddResult
}

// ConflictMsg is sent when an add or edit was refused because of an overlap.
// Request is set for adds so the user can retry with Replace.
type ConflictMsg struct {
	Err     *task.ConflictError
	Request *scheduler.AddRequest
}

// MutatedMsg is sent after an edit, toggle or delete succeeded.
type MutatedMsg struct {
	Status string
}

// RollbackMsg is sent when a change already shown locally failed to commit.
// Change undoes the local edit.
type RollbackMsg struct {
	Change task.Change
	Err    error
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadWindow loads the week containing date with the weeks around it.
func LoadWindow(svc Service, date time.Time) tea.Cmd {
	return func() tea.Msg {
		w, err := svc.Window(context.Background(), date)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return WindowLoadedMsg{Window: w}
	}
}

// LoadNextWeek loads the week after weekStart, the new trailing edge once
// the window shifted forward.
func LoadNextWeek(svc Service, weekStart time.Time) tea.Cmd {
	return loadEdge(svc, weekStart.AddDate(0, 0, 7), true)
}

// LoadPrevWeek loads the week before weekStart.
func LoadPrevWeek(svc Service, weekStart time.Time) tea.Cmd {
	return loadEdge(svc, weekStart.AddDate(0, 0, -7), false)
}

func loadEdge(svc Service, start time.Time, forward bool) tea.Cmd {
	return func() tea.Msg {
		w, err := svc.Week(context.Background(), start)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return WeekShiftedMsg{Week: w, Forward: forward}
	}
}

// LoadMonth loads the monthly page containing date.
func LoadMonth(svc Service, date time.Time) tea.Cmd {
	return func() tea.Msg {
		m, err := svc.Month(context.Background(), date)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MonthLoadedMsg{Month: m}
	}
}

// Add creates tasks. Conflicts come back as ConflictMsg.
func Add(svc Service, req scheduler.AddRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Add(context.Background(), req)
		if err != nil {
			var conflict *task.ConflictError
			if errors.As(err, &conflict) {
				return ConflictMsg{Err: conflict, Request: &req}
			}
			return ErrMsg{Err: err}
		}
		return AddedMsg{Result: res}
	}
}

// Edit applies an edit with the given scope.
func Edit(svc Service, id string, req scheduler.EditRequest, scope scheduler.Scope) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Edit(context.Background(), id, req, scope)
		if err != nil {
			var conflict *task.ConflictError
			if errors.As(err, &conflict) {
				return ConflictMsg{Err: conflict}
			}
			return ErrMsg{Err: err}
		}
		if scope == scheduler.ScopeGroup {
			return MutatedMsg{Status: fmt.Sprintf("Updated %d tasks", res.Updated)}
		}
		return MutatedMsg{Status: "Task updated"}
	}
}

// ToggleDone flips a task's completion flag. rollback is returned in a
// RollbackMsg if the store refuses.
func ToggleDone(svc Service, id string, rollback task.Change) tea.Cmd {
	return func() tea.Msg {
		t, err := svc.ToggleDone(context.Background(), id)
		if err != nil {
			return RollbackMsg{Change: rollback, Err: err}
		}
		if t.Done {
			return MutatedMsg{Status: "Marked done"}
		}
		return MutatedMsg{Status: "Marked not done"}
	}
}

// Delete removes one task.
func Delete(svc Service, id string, rollback task.Change) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Delete(context.Background(), id); err != nil {
			return RollbackMsg{Change: rollback, Err: err}
		}
		return MutatedMsg{Status: "Task deleted"}
	}
}

// DeleteGroup removes every instance of a recurring group.
func DeleteGroup(svc Service, groupID string) tea.Cmd {
	return func() tea.Msg {
		n, err := svc.DeleteGroup(context.Background(), groupID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MutatedMsg{Status: fmt.Sprintf("Deleted %d tasks", n)}
	}
}

// CopyWeek copies the plain text summary of the week to the clipboard.
func CopyWeek(svc Service, weekStart time.Time, holidays summary.HolidayNamer) tea.Cmd {
	return func() tea.Msg {
		s, err := summary.BuildWeekSummary(context.Background(), svc, weekStart)
		if err != nil {
			return ErrMsg{Err: err}
		}
		if err := writeClipboard(s.Text(holidays)); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied week to clipboard"}
	}
}

// writeClipboard is swapped in tests where no clipboard is available.
var writeClipboard = clipboard.WriteAll
