package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/weekplan/internal/debuglog"
	"github.com/javiermolinar/weekplan/internal/task"
)

// Service errors.
var (
	ErrNothingToAdd   = errors.New("every selected day was skipped")
	ErrNotRecurring   = errors.New("task is not part of a recurring group")
	ErrGroupTimeEdit  = errors.New("time and date can only be edited on a single instance")
	ErrInvalidScope   = errors.New("scope must be 'single' or 'group'")
	ErrReplaceStalled = errors.New("conflicts remained after replacing")
)

// maxReplacePasses bounds the delete-and-recheck loop of Add with Replace.
const maxReplacePasses = 8

// Scope selects how an edit applies to a recurring task.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeGroup  Scope = "group"
)

// ParseScope parses a scope name. Empty means single.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeSingle:
		return ScopeSingle, nil
	case ScopeGroup:
		return ScopeGroup, nil
	default:
		return "", ErrInvalidScope
	}
}

// Service runs task flows for one owner against a repository.
type Service struct {
	repo     task.Repository
	owner    string
	holidays task.HolidayChecker
	log      *debuglog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHolidays lets recurring adds skip public holidays on request.
func WithHolidays(h task.HolidayChecker) Option {
	return func(s *Service) { s.holidays = h }
}

// WithLogger sets the debug logger mutations are written to.
func WithLogger(l *debuglog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service for owner.
func NewService(repo task.Repository, owner string, opts ...Option) *Service {
	s := &Service{repo: repo, owner: owner, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Owner returns the owner id the service acts for.
func (s *Service) Owner() string {
	return s.owner
}

// AddRequest describes a task to create. For recurring tasks Date is the
// anchor and RepeatDays are day offsets from it.
type AddRequest struct {
	Kind         task.Kind
	Title        string
	Date         time.Time
	Start        string // "HH:MM"
	End          string // "HH:MM"
	Memo         string
	Color        string
	RepeatDays   []int
	SkipHolidays bool
	Replace      bool // delete conflicting tasks instead of failing
}

// AddResult reports what Add stored and what it replaced.
type AddResult struct {
	Created  []*task.Task
	Replaced []*task.Task
}

// Add creates the tasks described by req. The whole batch is checked against
// stored tasks first; on conflict a *task.ConflictError is returned unless
// req.Replace is set, in which case the blocking tasks are deleted and the
// check repeats. Nothing is created unless every instance fits.
func (s *Service) Add(ctx context.Context, req AddRequest) (*AddResult, error) {
	candidates, err := s.build(req)
	if err != nil {
		return nil, err
	}

	res := &AddResult{}
	for pass := 0; ; pass++ {
		existing, err := s.around(ctx, candidates)
		if err != nil {
			return nil, err
		}
		err = task.CheckBatch(candidates, existing)
		if err == nil {
			break
		}

		var conflict *task.ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		s.log.Event("ADD_CONFLICT", map[string]any{
			"candidate": conflict.Candidate.Start.Format(time.RFC3339),
			"existing":  conflict.Existing.ID,
			"replace":   req.Replace,
		})
		if !req.Replace {
			return nil, err
		}
		if pass >= maxReplacePasses {
			return nil, fmt.Errorf("%w: %w", ErrReplaceStalled, err)
		}

		removed, err := s.removeConflicts(ctx, candidates, existing)
		if err != nil {
			return nil, err
		}
		res.Replaced = append(res.Replaced, removed...)
	}

	if err := s.repo.CreateTasks(ctx, candidates); err != nil {
		return nil, fmt.Errorf("creating tasks: %w", err)
	}
	res.Created = candidates

	s.log.Event("ADD", map[string]any{
		"kind":     string(req.Kind),
		"title":    debuglog.Truncate(req.Title, 40),
		"created":  len(res.Created),
		"replaced": len(res.Replaced),
	})
	return res, nil
}

func (s *Service) build(req AddRequest) ([]*task.Task, error) {
	kind := req.Kind
	if kind == "" {
		kind = task.KindSingle
	}

	var out []*task.Task
	switch kind {
	case task.KindSingle, task.KindEvent:
		create := task.NewSingle
		if kind == task.KindEvent {
			create = task.NewEvent
		}
		t, err := create(s.owner, req.Title, req.Date, req.Start, req.End)
		if err != nil {
			return nil, err
		}
		t.Memo = req.Memo
		if req.Color != "" {
			t.Color = req.Color
		}
		out = []*task.Task{t}
	case task.KindRecurring:
		var opts []task.ExpandOption
		if req.SkipHolidays && s.holidays != nil {
			opts = append(opts, task.WithHolidaySkip(s.holidays))
		}
		opts = append(opts, task.WithClock(s.now))
		tasks, err := task.Expand(task.Template{
			OwnerID:   s.owner,
			Title:     req.Title,
			StartTime: req.Start,
			EndTime:   req.End,
			Memo:      req.Memo,
			Color:     req.Color,
		}, req.Date, req.RepeatDays, opts...)
		if err != nil {
			return nil, err
		}
		out = tasks
	default:
		return nil, task.ErrInvalidKind
	}

	if len(out) == 0 {
		return nil, ErrNothingToAdd
	}
	for _, t := range out {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// around loads the stored tasks on the days the candidates cover.
func (s *Service) around(ctx context.Context, candidates []*task.Task) ([]*task.Task, error) {
	start, end := candidates[0].Start, candidates[0].End
	for _, c := range candidates[1:] {
		if c.Start.Before(start) {
			start = c.Start
		}
		if c.End.After(end) {
			end = c.End
		}
	}
	existing, err := s.repo.ListTasksByRange(ctx, s.owner, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return existing, nil
}

func (s *Service) removeConflicts(ctx context.Context, candidates, existing []*task.Task) ([]*task.Task, error) {
	seen := make(map[string]bool)
	var removed []*task.Task
	for _, c := range candidates {
		for _, hit := range task.FindConflicts(c.Interval(), existing, c.ID) {
			if seen[hit.ID] {
				continue
			}
			seen[hit.ID] = true
			if err := s.repo.DeleteTask(ctx, hit.ID); err != nil && !errors.Is(err, task.ErrTaskNotFound) {
				return removed, fmt.Errorf("replacing %q: %w", hit.Title, err)
			}
			s.log.Event("REPLACE", map[string]any{"id": hit.ID, "title": debuglog.Truncate(hit.Title, 40)})
			removed = append(removed, hit)
		}
	}
	return removed, nil
}

// EditRequest holds the fields to change. Nil fields are left untouched.
type EditRequest struct {
	Title *string
	Memo  *string
	Color *string
	Date  *time.Time
	Start *string // "HH:MM"
	End   *string // "HH:MM"
}

func (r EditRequest) touchesTime() bool {
	return r.Date != nil || r.Start != nil || r.End != nil
}

// EditResult reports the outcome of Edit. Task is set for single edits and
// Updated counts changed rows.
type EditResult struct {
	Task    *task.Task
	Updated int
}

// Edit changes a task. ScopeSingle edits one instance, detaching it from its
// recurring group, and rejects the change if the new time overlaps another
// task. ScopeGroup applies title, memo and color to every instance.
func (s *Service) Edit(ctx context.Context, id string, req EditRequest, scope Scope) (*EditResult, error) {
	current, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	switch scope {
	case ScopeGroup:
		return s.editGroup(ctx, current, req)
	case ScopeSingle, "":
		return s.editSingle(ctx, current, req)
	default:
		return nil, ErrInvalidScope
	}
}

func (s *Service) editSingle(ctx context.Context, current *task.Task, req EditRequest) (*EditResult, error) {
	t := current.Clone()
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Memo != nil {
		t.Memo = *req.Memo
	}
	if req.Color != nil {
		t.Color = *req.Color
	}
	if req.touchesTime() {
		date := t.Start
		if req.Date != nil {
			date = *req.Date
		}
		start, end := t.StartClock(), endClock(t)
		if req.Start != nil {
			start = *req.Start
		}
		if req.End != nil {
			end = *req.End
		}
		var err error
		if t.Start, err = task.At(date, start); err != nil {
			return nil, fmt.Errorf("start time: %w", err)
		}
		if t.End, err = task.At(date, end); err != nil {
			return nil, fmt.Errorf("end time: %w", err)
		}
		if t.EventDate != nil {
			d := truncate(date)
			t.EventDate = &d
		}
	}
	t.Detach()
	t.UpdatedAt = s.now()
	if err := t.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListTasksByRange(ctx, s.owner, t.Start, t.End)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if hit := task.FindConflict(t.Interval(), existing, t.ID); hit != nil {
		s.log.Event("EDIT_CONFLICT", map[string]any{"id": t.ID, "existing": hit.ID})
		return nil, &task.ConflictError{Candidate: t, Existing: hit}
	}

	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	s.log.Event("EDIT", map[string]any{
		"id":       t.ID,
		"scope":    string(ScopeSingle),
		"detached": current.IsRecurring(),
	})
	return &EditResult{Task: t, Updated: 1}, nil
}

// endClock renders the end of t, keeping midnight as "24:00".
func endClock(t *task.Task) string {
	return task.MinutesToTime(task.MinuteOfDay(t.Start) + t.Duration())
}

func (s *Service) editGroup(ctx context.Context, current *task.Task, req EditRequest) (*EditResult, error) {
	if !current.IsRecurring() {
		return nil, ErrNotRecurring
	}
	if req.touchesTime() {
		return nil, ErrGroupTimeEdit
	}

	patch := task.GroupPatch{Title: current.Title, Memo: current.Memo, Color: current.Color}
	if req.Title != nil {
		patch.Title = strings.TrimSpace(*req.Title)
	}
	if req.Memo != nil {
		patch.Memo = *req.Memo
	}
	if req.Color != nil {
		patch.Color = *req.Color
	}
	if patch.Title == "" {
		return nil, task.ErrEmptyTitle
	}

	n, err := s.repo.UpdateGroup(ctx, current.GroupID, patch)
	if err != nil {
		return nil, fmt.Errorf("updating group: %w", err)
	}
	s.log.Event("EDIT", map[string]any{"group": current.GroupID, "scope": string(ScopeGroup), "updated": n})
	return &EditResult{Updated: n}, nil
}

// ToggleDone flips the completion flag and returns the updated task.
func (s *Service) ToggleDone(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Done = !t.Done
	if err := s.repo.SetDone(ctx, id, t.Done); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	s.log.Event("TOGGLE_DONE", map[string]any{"id": id, "done": t.Done})
	return t, nil
}

// Delete removes one task.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.log.Event("DELETE", map[string]any{"id": id})
	return nil
}

// DeleteGroup removes every instance of a recurring group.
func (s *Service) DeleteGroup(ctx context.Context, groupID string) (int, error) {
	if groupID == "" {
		return 0, ErrNotRecurring
	}
	n, err := s.repo.DeleteGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("deleting group: %w", err)
	}
	s.log.Event("DELETE_GROUP", map[string]any{"group": groupID, "deleted": n})
	return n, nil
}

// DeleteAll removes every task of the owner.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteAll(ctx, s.owner)
	if err != nil {
		return 0, fmt.Errorf("deleting tasks: %w", err)
	}
	s.log.Event("DELETE_ALL", map[string]any{"owner": s.owner, "deleted": n})
	return n, nil
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// Group returns every instance of a recurring group.
func (s *Service) Group(ctx context.Context, groupID string) ([]*task.Task, error) {
	if groupID == "" {
		return nil, ErrNotRecurring
	}
	return s.repo.ListGroup(ctx, groupID)
}

// Range returns the owner's tasks that intersect [start, end).
func (s *Service) Range(ctx context.Context, start, end time.Time) ([]*task.Task, error) {
	tasks, err := s.repo.ListTasksByRange(ctx, s.owner, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return tasks, nil
}

// Week loads the week containing date.
func (s *Service) Week(ctx context.Context, date time.Time) (*task.Week, error) {
	week := task.NewWeek(date)
	tasks, err := s.Range(ctx, week.StartDate, week.StartDate.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	return task.NewWeekFromTasks(date, tasks), nil
}

// Window loads the week containing date together with its neighbours.
func (s *Service) Window(ctx context.Context, date time.Time) (*task.WeekWindow, error) {
	start, end := task.WindowRange(date)
	tasks, err := s.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return task.WindowFromTasks(date, tasks), nil
}

// Month loads the monthly calendar containing date. Only events are kept.
func (s *Service) Month(ctx context.Context, date time.Time) (*task.Month, error) {
	days := task.MonthDays(date)
	tasks, err := s.Range(ctx, days[0], days[len(days)-1].AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return task.NewMonth(date, tasks), nil
}
