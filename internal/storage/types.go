package storage

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	// StatusNotStarted is the initial status of every new task.
	StatusNotStarted Status = "NotStarted"

	// StatusInProgress marks a task as being worked on.
	StatusInProgress Status = "InProgress"

	// StatusCompleted marks a task as done.
	StatusCompleted Status = "Completed"
)

// Next returns the status that follows s in the toggle cycle:
// NotStarted -> InProgress -> Completed -> NotStarted.
func (s Status) Next() Status {
	switch s {
	case StatusNotStarted:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	case StatusCompleted:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single task item.
// The id is assigned once at creation and never reused, even across contexts:
// every backend allocates ids from one shared monotonic counter.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Status    Status `json:"status"`
	CreatedAt string `json:"created_at"`
}

// NewTask creates a task with the given id and text, status NotStarted,
// and the current time as its RFC3339 creation timestamp.
func NewTask(id int64, text string) Task {
	return Task{
		ID:        id,
		Text:      text,
		Status:    StatusNotStarted,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
