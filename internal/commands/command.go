// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quill/internal/config"
	"quill/internal/storage"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command requires a constructed backend.
	// Commands like help, version, context return false.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings, context key).
	// store is nil if NeedsStore() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int
}

// ErrIDRequired is the parse failure for a missing task id argument.
var ErrIDRequired = fmt.Errorf("task id required")

// parseID parses a positive numeric task id from the first argument.
func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, ErrIDRequired
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// parseStatus maps a command-line token to a task status.
func parseStatus(arg string) (storage.Status, error) {
	switch strings.ToLower(arg) {
	case "not-started", "notstarted":
		return storage.StatusNotStarted, nil
	case "in-progress", "inprogress":
		return storage.StatusInProgress, nil
	case "completed", "done":
		return storage.StatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid status: %s (want not-started, in-progress, or completed)", arg)
	}
}
