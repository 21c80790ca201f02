package task

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("time block overlaps with existing task")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// ConflictError reports the existing task that blocks a candidate.
type ConflictError struct {
	Candidate *Task
	Existing  *Task
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %q %s-%s on %s",
		ErrConflict,
		e.Existing.Title,
		e.Existing.StartClock(),
		e.Existing.EndClock(),
		e.Existing.Start.Format("2006-01-02"),
	)
}

// Is makes errors.Is(err, ErrConflict) succeed.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// FindConflict returns the existing task that intersects the candidate, or nil.
// When several tasks intersect, the one starting earliest wins; equal starts
// keep the collection order. The task with excludeID is skipped, which is how
// an edited task avoids conflicting with itself.
func FindConflict(candidate Interval, existing []*Task, excludeID string) *Task {
	var found *Task
	for _, t := range existing {
		if !conflicts(candidate, t, excludeID) {
			continue
		}
		if found == nil || t.Start.Before(found.Start) {
			found = t
		}
	}
	return found
}

// FindConflicts returns every existing task that intersects the candidate,
// sorted by start time.
func FindConflicts(candidate Interval, existing []*Task, excludeID string) []*Task {
	var out []*Task
	for _, t := range existing {
		if conflicts(candidate, t, excludeID) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func conflicts(candidate Interval, t *Task, excludeID string) bool {
	if t == nil {
		return false
	}
	if excludeID != "" && t.ID == excludeID {
		return false
	}
	return candidate.Overlaps(t.Interval())
}

// CheckBatch runs every candidate through FindConflict against existing.
// It stops at the first conflicting candidate so a caller never commits a
// partial batch.
func CheckBatch(candidates, existing []*Task) error {
	for _, c := range candidates {
		if hit := FindConflict(c.Interval(), existing, c.ID); hit != nil {
			return &ConflictError{Candidate: c, Existing: hit}
		}
	}
	return nil
}
