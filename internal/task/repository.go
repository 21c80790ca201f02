package task

import (
	"context"
	"time"
)

// GroupPatch holds the fields a whole recurring group can be edited with.
type GroupPatch struct {
	Title string
	Memo  string
	Color string
}

// Repository defines the storage interface for tasks.
type Repository interface {
	// CreateTask adds a new task to the repository.
	CreateTask(ctx context.Context, task *Task) error

	// CreateTasks adds multiple tasks atomically; either all or none are stored.
	CreateTasks(ctx context.Context, tasks []*Task) error

	// GetTask retrieves a task by ID. Returns ErrTaskNotFound if missing.
	GetTask(ctx context.Context, id string) (*Task, error)

	// UpdateTask replaces every mutable field of a task in place.
	UpdateTask(ctx context.Context, task *Task) error

	// UpdateGroup applies a patch to every instance sharing groupID.
	// Returns the number of rows changed.
	UpdateGroup(ctx context.Context, groupID string, patch GroupPatch) (int, error)

	// SetDone sets the completion flag of a task.
	SetDone(ctx context.Context, id string, done bool) error

	// DeleteTask removes a task by ID.
	DeleteTask(ctx context.Context, id string) error

	// DeleteGroup removes every instance of a recurring group.
	DeleteGroup(ctx context.Context, groupID string) (int, error)

	// DeleteAll removes every task owned by ownerID.
	DeleteAll(ctx context.Context, ownerID string) (int, error)

	// ListTasksByRange returns the owner's tasks that intersect [start, end),
	// ordered by start time.
	ListTasksByRange(ctx context.Context, ownerID string, start, end time.Time) ([]*Task, error)

	// ListGroup returns every instance of a recurring group ordered by start.
	ListGroup(ctx context.Context, groupID string) ([]*Task, error)

	// Close releases any resources held by the repository.
	Close() error
}
