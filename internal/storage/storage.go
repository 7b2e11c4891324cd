// Package storage defines the backend-agnostic interface for task operations.
package storage

import "context"

// Store is the capability set every backend implements. All operations are
// scoped by an opaque, caller-supplied context key; the store never inspects
// the key's format.
//
// Not-found conditions (task id absent in the context, empty undo queue) are
// results, not errors: they come back as false or nil. Errors are reserved for
// I/O and connectivity failures. Every mutating call persists synchronously
// before returning, so a true/non-nil result means the change is durable.
type Store interface {
	// GetTasks returns the ordered task list for a context.
	// An unknown context yields an empty slice, never an error.
	GetTasks(ctx context.Context, contextKey string) ([]Task, error)

	// AddTask appends a new task with status NotStarted and returns its id,
	// drawn from the backend-wide monotonic counter.
	AddTask(ctx context.Context, contextKey, text string) (int64, error)

	// ToggleTask advances the task's status one step along the fixed cycle
	// NotStarted -> InProgress -> Completed -> NotStarted.
	// Returns false if the id is not present in the context.
	ToggleTask(ctx context.Context, contextKey string, id int64) (bool, error)

	// SetTaskStatus sets the task's status directly.
	SetTaskStatus(ctx context.Context, contextKey string, id int64, status Status) (bool, error)

	// EditTask replaces the task's text verbatim.
	EditTask(ctx context.Context, contextKey string, id int64, newText string) (bool, error)

	// RemoveTask moves the task from the live list into the context's undo
	// queue, which holds at most the 3 most recent deletions.
	RemoveTask(ctx context.Context, contextKey string, id int64) (bool, error)

	// UndoDelete restores the most recently deleted task for the context,
	// re-appending it at the end of the live list. Returns nil if the undo
	// queue is empty.
	UndoDelete(ctx context.Context, contextKey string) (*Task, error)

	// MoveTaskUp swaps the task with its immediate predecessor in the
	// ordered list. Returns false if the task is first or not found.
	MoveTaskUp(ctx context.Context, contextKey string, id int64) (bool, error)

	// MoveTaskDown swaps the task with its immediate successor in the
	// ordered list. Returns false if the task is last or not found.
	MoveTaskDown(ctx context.Context, contextKey string, id int64) (bool, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// UndoLimit is the per-context capacity of the undo queue. When a fourth
// deletion occurs, the oldest stored deleted task is discarded for good.
const UndoLimit = 3
