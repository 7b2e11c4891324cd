// Package local implements storage.Store on a single JSON file.
//
// The whole store lives in one pretty-printed document: the context->task-list
// map, the global id counter, and the per-context undo queues. State is loaded
// once at construction and is authoritative in memory afterwards; every
// mutation rewrites the full file.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"quill/internal/storage"
)

// Store implements storage.Store using a JSON file.
type Store struct {
	path string
	data *fileData
	mu   sync.RWMutex
}

// fileData is the on-disk document. Field names are part of the file format.
type fileData struct {
	Contexts     map[string][]storage.Task `json:"contexts"`
	NextID       int64                     `json:"next_id"`
	DeletedTasks map[string][]storage.Task `json:"deleted_tasks"`
}

// New creates or opens a file-backed store at path. A leading "~/" is
// expanded to the user's home directory. A missing file is not an error;
// the store starts empty and the file appears on the first mutation.
func New(path string) (*Store, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path: expanded,
		data: &fileData{
			Contexts:     make(map[string][]storage.Task),
			NextID:       1,
			DeletedTasks: make(map[string][]storage.Task),
		},
	}

	if _, err := os.Stat(expanded); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
	}

	return s, nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not find home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, s.data); err != nil {
		return err
	}

	for key, tasks := range s.data.Contexts {
		for _, task := range tasks {
			if !task.Status.Valid() {
				return fmt.Errorf("context %q task %d: unknown status %q", key, task.ID, task.Status)
			}
		}
	}

	// Old files may predate one of the maps.
	if s.data.Contexts == nil {
		s.data.Contexts = make(map[string][]storage.Task)
	}
	if s.data.DeletedTasks == nil {
		s.data.DeletedTasks = make(map[string][]storage.Task)
	}
	if s.data.NextID < 1 {
		s.data.NextID = 1
	}
	return nil
}

// save rewrites the whole document. The write goes to a temporary file in the
// same directory followed by a rename, so a crash mid-write cannot leave a
// truncated store behind.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".todos-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// GetTasks returns a copy of the ordered task list for a context.
func (s *Store) GetTasks(ctx context.Context, contextKey string) ([]storage.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]storage.Task, len(s.data.Contexts[contextKey]))
	copy(tasks, s.data.Contexts[contextKey])
	return tasks, nil
}

// AddTask appends a task and returns its id.
func (s *Store) AddTask(ctx context.Context, contextKey, text string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := storage.NewTask(s.data.NextID, text)
	s.data.Contexts[contextKey] = append(s.data.Contexts[contextKey], task)
	s.data.NextID++

	if err := s.save(); err != nil {
		return 0, err
	}
	return task.ID, nil
}

// ToggleTask cycles the task's status.
func (s *Store) ToggleTask(ctx context.Context, contextKey string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.data.Contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = tasks[i].Status.Next()
			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// SetTaskStatus sets the task's status directly.
func (s *Store) SetTaskStatus(ctx context.Context, contextKey string, id int64, status storage.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.data.Contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = status
			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// EditTask replaces the task's text.
func (s *Store) EditTask(ctx context.Context, contextKey string, id int64, newText string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.data.Contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Text = newText
			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// RemoveTask moves the task into the undo queue, newest first, and trims the
// queue to storage.UndoLimit entries.
func (s *Store) RemoveTask(ctx context.Context, contextKey string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.data.Contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			removed := tasks[i]
			s.data.Contexts[contextKey] = append(tasks[:i], tasks[i+1:]...)

			queue := append([]storage.Task{removed}, s.data.DeletedTasks[contextKey]...)
			if len(queue) > storage.UndoLimit {
				queue = queue[:storage.UndoLimit]
			}
			s.data.DeletedTasks[contextKey] = queue

			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// UndoDelete pops the newest deleted task and re-appends it to the live list.
func (s *Store) UndoDelete(ctx context.Context, contextKey string) (*storage.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.data.DeletedTasks[contextKey]
	if len(queue) == 0 {
		return nil, nil
	}

	task := queue[0]
	s.data.DeletedTasks[contextKey] = queue[1:]
	s.data.Contexts[contextKey] = append(s.data.Contexts[contextKey], task)

	if err := s.save(); err != nil {
		return nil, err
	}
	return &task, nil
}

// MoveTaskUp swaps the task with its predecessor.
func (s *Store) MoveTaskUp(ctx context.Context, contextKey string, id int64) (bool, error) {
	return s.move(contextKey, id, -1)
}

// MoveTaskDown swaps the task with its successor.
func (s *Store) MoveTaskDown(ctx context.Context, contextKey string, id int64) (bool, error) {
	return s.move(contextKey, id, +1)
}

func (s *Store) move(contextKey string, id int64, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.data.Contexts[contextKey]
	for i := range tasks {
		if tasks[i].ID == id {
			j := i + delta
			if j < 0 || j >= len(tasks) {
				return false, nil
			}
			tasks[i], tasks[j] = tasks[j], tasks[i]
			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op; the file store holds no open resources.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Path returns the resolved storage file path.
func (s *Store) Path() string {
	return s.path
}
