// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"quill/internal/storage"
)

// StatusMarker returns the three-character marker rendered before a task.
func StatusMarker(s storage.Status) string {
	switch s {
	case storage.StatusInProgress:
		return "[~]"
	case storage.StatusCompleted:
		return "[x]"
	default:
		return "[ ]"
	}
}

// FormatTask formats a task line.
// Format: "{ID:>4}  {MARKER} {TEXT}\n" (4-wide right-aligned id).
func FormatTask(w io.Writer, task storage.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", task.ID, StatusMarker(task.Status), normalizeText(task.Text))
}

// FormatTaskList writes every task in order, or a placeholder when empty.
func FormatTaskList(w io.Writer, tasks []storage.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, task := range tasks {
		FormatTask(w, task)
	}
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
