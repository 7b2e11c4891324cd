// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"quill/internal/storage"
)

// FakeStore is an in-memory implementation of storage.Store for testing.
// It mirrors the backend contract (shared id counter, per-context ordering,
// bounded undo queue) without persistence.
type FakeStore struct {
	mu       sync.RWMutex
	contexts map[string][]storage.Task
	deleted  map[string][]storage.Task // newest first
	nextID   int64

	// Error injection for testing
	GetTasksErr      error
	AddTaskErr       error
	ToggleTaskErr    error
	SetTaskStatusErr error
	EditTaskErr      error
	RemoveTaskErr    error
	UndoDeleteErr    error
	MoveTaskErr      error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		contexts: make(map[string][]storage.Task),
		deleted:  make(map[string][]storage.Task),
		nextID:   1,
	}
}

// Seed inserts a task directly, bypassing the counter when the given id is
// higher (so subsequent AddTask calls keep allocating fresh ids).
func (f *FakeStore) Seed(contextKey string, task storage.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contexts[contextKey] = append(f.contexts[contextKey], task)
	if task.ID >= f.nextID {
		f.nextID = task.ID + 1
	}
}

// GetTasks implements storage.Store.
func (f *FakeStore) GetTasks(ctx context.Context, contextKey string) ([]storage.Task, error) {
	if f.GetTasksErr != nil {
		return nil, f.GetTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	tasks := make([]storage.Task, len(f.contexts[contextKey]))
	copy(tasks, f.contexts[contextKey])
	return tasks, nil
}

// AddTask implements storage.Store.
func (f *FakeStore) AddTask(ctx context.Context, contextKey, text string) (int64, error) {
	if f.AddTaskErr != nil {
		return 0, f.AddTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task := storage.NewTask(f.nextID, text)
	f.contexts[contextKey] = append(f.contexts[contextKey], task)
	f.nextID++
	return task.ID, nil
}

// ToggleTask implements storage.Store.
func (f *FakeStore) ToggleTask(ctx context.Context, contextKey string, id int64) (bool, error) {
	if f.ToggleTaskErr != nil {
		return false, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = tasks[i].Status.Next()
			return true, nil
		}
	}
	return false, nil
}

// SetTaskStatus implements storage.Store.
func (f *FakeStore) SetTaskStatus(ctx context.Context, contextKey string, id int64, status storage.Status) (bool, error) {
	if f.SetTaskStatusErr != nil {
		return false, f.SetTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

// EditTask implements storage.Store.
func (f *FakeStore) EditTask(ctx context.Context, contextKey string, id int64, newText string) (bool, error) {
	if f.EditTaskErr != nil {
		return false, f.EditTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Text = newText
			return true, nil
		}
	}
	return false, nil
}

// RemoveTask implements storage.Store.
func (f *FakeStore) RemoveTask(ctx context.Context, contextKey string, id int64) (bool, error) {
	if f.RemoveTaskErr != nil {
		return false, f.RemoveTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			removed := tasks[i]
			f.contexts[contextKey] = append(tasks[:i], tasks[i+1:]...)
			queue := append([]storage.Task{removed}, f.deleted[contextKey]...)
			if len(queue) > storage.UndoLimit {
				queue = queue[:storage.UndoLimit]
			}
			f.deleted[contextKey] = queue
			return true, nil
		}
	}
	return false, nil
}

// UndoDelete implements storage.Store.
func (f *FakeStore) UndoDelete(ctx context.Context, contextKey string) (*storage.Task, error) {
	if f.UndoDeleteErr != nil {
		return nil, f.UndoDeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.deleted[contextKey]
	if len(queue) == 0 {
		return nil, nil
	}
	task := queue[0]
	f.deleted[contextKey] = queue[1:]
	f.contexts[contextKey] = append(f.contexts[contextKey], task)
	return &task, nil
}

// MoveTaskUp implements storage.Store.
func (f *FakeStore) MoveTaskUp(ctx context.Context, contextKey string, id int64) (bool, error) {
	return f.move(contextKey, id, -1)
}

// MoveTaskDown implements storage.Store.
func (f *FakeStore) MoveTaskDown(ctx context.Context, contextKey string, id int64) (bool, error) {
	return f.move(contextKey, id, +1)
}

func (f *FakeStore) move(contextKey string, id int64, delta int) (bool, error) {
	if f.MoveTaskErr != nil {
		return false, f.MoveTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			j := i + delta
			if j < 0 || j >= len(tasks) {
				return false, nil
			}
			tasks[i], tasks[j] = tasks[j], tasks[i]
			return true, nil
		}
	}
	return false, nil
}

// Close implements storage.Store.
func (f *FakeStore) Close(ctx context.Context) error {
	return nil
}
