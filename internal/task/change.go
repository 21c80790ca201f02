package task

// ChangeOp identifies the kind of row change delivered by the change feed.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is one realtime delta for a single task row.
// Task is set for insert/update, ID for delete.
type Change struct {
	Op   ChangeOp
	Task *Task
	ID   string
}

// Apply returns the collection after applying c, last write wins.
// The input slice is never modified.
func Apply(tasks []*Task, c Change) []*Task {
	out := make([]*Task, 0, len(tasks)+1)
	switch c.Op {
	case OpInsert, OpUpdate:
		if c.Task == nil {
			return append(out, tasks...)
		}
		replaced := false
		for _, t := range tasks {
			if t.ID == c.Task.ID {
				out = append(out, c.Task)
				replaced = true
				continue
			}
			out = append(out, t)
		}
		// An update for a row we never saw behaves like an insert.
		if !replaced {
			out = append(out, c.Task)
		}
	case OpDelete:
		id := c.ID
		if id == "" && c.Task != nil {
			id = c.Task.ID
		}
		for _, t := range tasks {
			if t.ID != id {
				out = append(out, t)
			}
		}
	default:
		out = append(out, tasks...)
	}
	return out
}

// Optimistic applies c locally and returns the change that undoes it when
// the remote commit fails. A change that Apply ignores gets a zero rollback.
func Optimistic(tasks []*Task, c Change) (next []*Task, rollback Change) {
	next = Apply(tasks, c)
	switch c.Op {
	case OpInsert, OpUpdate:
		if c.Task == nil {
			return next, Change{}
		}
		rollback = Change{Op: OpDelete, ID: c.Task.ID}
		if prev := findByID(tasks, c.Task.ID); prev != nil {
			rollback = Change{Op: OpUpdate, Task: prev}
		}
	case OpDelete:
		id := c.ID
		if id == "" && c.Task != nil {
			id = c.Task.ID
		}
		if prev := findByID(tasks, id); prev != nil {
			rollback = Change{Op: OpInsert, Task: prev}
		}
	}
	return next, rollback
}

func findByID(tasks []*Task, id string) *Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
