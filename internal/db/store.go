// Package db provides the SQL task store backed by SQLite or PostgreSQL.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/weekplan/internal/task"
)

// ErrDuplicateTask is returned when a task id already exists.
var ErrDuplicateTask = errors.New("task already exists")

const (
	dayLayout  = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

// Store implements task.Repository on top of database/sql.
type Store struct {
	db *sqlx.DB
}

var _ task.Repository = (*Store)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)
	return newStore(ctx, db)
}

// OpenPostgres connects to the PostgreSQL server at dsn.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return newStore(ctx, db)
}

// Open dispatches on driver name ("sqlite" or "postgres").
func Open(ctx context.Context, driver, target string) (*Store, error) {
	switch driver {
	case "sqlite", "":
		return OpenSQLite(ctx, target)
	case "postgres":
		return OpenPostgres(ctx, target)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func newStore(ctx context.Context, db *sqlx.DB) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

type taskRow struct {
	ID         string         `db:"id"`
	OwnerID    string         `db:"owner_id"`
	Title      string         `db:"title"`
	Day        string         `db:"day"`
	StartMin   int            `db:"start_min"`
	EndMin     int            `db:"end_min"`
	Done       bool           `db:"done"`
	Memo       string         `db:"memo"`
	Color      string         `db:"color"`
	Kind       string         `db:"kind"`
	EventDate  sql.NullString `db:"event_date"`
	RepeatDays string         `db:"repeat_days"`
	GroupID    sql.NullString `db:"group_id"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
}

const taskColumns = `id, owner_id, title, day, start_min, end_min, done, memo, color,
	kind, event_date, repeat_days, group_id, created_at, updated_at`

func toRow(t *task.Task) taskRow {
	start := task.MinuteOfDay(t.Start)
	r := taskRow{
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		Title:      t.Title,
		Day:        t.Start.Format(dayLayout),
		StartMin:   start,
		EndMin:     start + t.Duration(),
		Done:       t.Done,
		Memo:       t.Memo,
		Color:      t.Color,
		Kind:       string(t.Kind),
		RepeatDays: formatDays(t.RepeatDays),
		CreatedAt:  t.CreatedAt.Format(timeLayout),
		UpdatedAt:  t.UpdatedAt.Format(timeLayout),
	}
	if t.EventDate != nil {
		r.EventDate = sql.NullString{String: t.EventDate.Format(dayLayout), Valid: true}
	}
	if t.GroupID != "" {
		r.GroupID = sql.NullString{String: t.GroupID, Valid: true}
	}
	return r
}

func (r taskRow) toTask() (*task.Task, error) {
	day, err := parseDate(r.Day)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", r.ID, err)
	}
	t := &task.Task{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Title:   r.Title,
		Start:   time.Date(day.Year(), day.Month(), day.Day(), 0, r.StartMin, 0, 0, time.Local),
		End:     time.Date(day.Year(), day.Month(), day.Day(), 0, r.EndMin, 0, 0, time.Local),
		Done:    r.Done,
		Memo:    r.Memo,
		Color:   r.Color,
		Kind:    task.Kind(r.Kind),
		GroupID: r.GroupID.String,
	}
	if r.EventDate.Valid {
		d, err := parseDate(r.EventDate.String)
		if err != nil {
			return nil, fmt.Errorf("task %s event date: %w", r.ID, err)
		}
		t.EventDate = &d
	}
	if t.RepeatDays, err = parseDays(r.RepeatDays); err != nil {
		return nil, fmt.Errorf("task %s repeat days: %w", r.ID, err)
	}
	if t.CreatedAt, err = time.Parse(timeLayout, r.CreatedAt); err != nil {
		return nil, fmt.Errorf("task %s created at: %w", r.ID, err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("task %s updated at: %w", r.ID, err)
	}
	return t, nil
}

func rowsToTasks(rows []taskRow) ([]*task.Task, error) {
	out := make([]*task.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

const insertTask = `INSERT INTO tasks (` + taskColumns + `)
	VALUES (:id, :owner_id, :title, :day, :start_min, :end_min, :done, :memo, :color,
		:kind, :event_date, :repeat_days, :group_id, :created_at, :updated_at)`

func insert(ctx context.Context, ex execer, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("task %q: %w", t.Title, err)
	}
	if t.ID == "" {
		t.ID = task.NewID()
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	if _, err := ex.NamedExecContext(ctx, insertTask, toRow(t)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, t.ID)
		}
		return fmt.Errorf("inserting task %q: %w", t.Title, err)
	}
	return nil
}

// CreateTask adds a new task. An empty ID is filled with a fresh one.
func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	return insert(ctx, s.db, t)
}

// CreateTasks adds every task in one transaction; either all or none are stored.
func (s *Store) CreateTasks(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		if err := insert(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	q := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	var r taskRow
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return r.toTask()
}

// UpdateTask replaces every mutable field of the task.
func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("task %q: %w", t.Title, err)
	}
	t.UpdatedAt = time.Now()

	const q = `UPDATE tasks SET
		title = :title, day = :day, start_min = :start_min, end_min = :end_min,
		done = :done, memo = :memo, color = :color, kind = :kind,
		event_date = :event_date, repeat_days = :repeat_days, group_id = :group_id,
		updated_at = :updated_at
		WHERE id = :id`

	res, err := s.db.NamedExecContext(ctx, q, toRow(t))
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return expectRow(res, t.ID)
}

// UpdateGroup applies patch to every instance of a recurring group.
func (s *Store) UpdateGroup(ctx context.Context, groupID string, patch task.GroupPatch) (int, error) {
	q := s.db.Rebind(`UPDATE tasks SET title = ?, memo = ?, color = ?, updated_at = ? WHERE group_id = ?`)

	res, err := s.db.ExecContext(ctx, q,
		patch.Title, patch.Memo, patch.Color, time.Now().Format(timeLayout), groupID)
	if err != nil {
		return 0, fmt.Errorf("updating group: %w", err)
	}
	return affected(res)
}

// SetDone sets the completion flag of a task.
func (s *Store) SetDone(ctx context.Context, id string, done bool) error {
	q := s.db.Rebind(`UPDATE tasks SET done = ?, updated_at = ? WHERE id = ?`)

	res, err := s.db.ExecContext(ctx, q, done, time.Now().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("setting done: %w", err)
	}
	return expectRow(res, id)
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return expectRow(res, id)
}

// DeleteGroup removes every instance of a recurring group.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE group_id = ?`), groupID)
	if err != nil {
		return 0, fmt.Errorf("deleting group: %w", err)
	}
	return affected(res)
}

// DeleteAll removes every task owned by ownerID.
func (s *Store) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE owner_id = ?`), ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting tasks: %w", err)
	}
	return affected(res)
}

// ListTasksByRange returns the owner's tasks intersecting [start, end) ordered
// by start time.
func (s *Store) ListTasksByRange(ctx context.Context, ownerID string, start, end time.Time) ([]*task.Task, error) {
	if !end.After(start) {
		return nil, nil
	}
	q := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks
		WHERE owner_id = ? AND day >= ? AND day <= ?
		ORDER BY day, start_min, created_at`)

	lastDay := end.Add(-time.Nanosecond)
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, q, ownerID, start.Format(dayLayout), lastDay.Format(dayLayout)); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	all, err := rowsToTasks(rows)
	if err != nil {
		return nil, err
	}

	window := task.Interval{Start: start, End: end}
	out := all[:0]
	for _, t := range all {
		if window.Overlaps(t.Interval()) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListGroup returns every instance of a recurring group ordered by start.
func (s *Store) ListGroup(ctx context.Context, groupID string) ([]*task.Task, error) {
	q := s.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE group_id = ? ORDER BY day, start_min`)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, q, groupID); err != nil {
		return nil, fmt.Errorf("querying group: %w", err)
	}
	return rowsToTasks(rows)
}

func expectRow(res sql.Result, id string) error {
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	return nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseDate parses a stored day as local midnight so it lines up with
// time.Now() based dates in the views.
func parseDate(s string) (time.Time, error) {
	if len(s) >= 10 {
		if t, err := time.ParseInLocation(dayLayout, s[:10], time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

func formatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func parseDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
