package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"quill/internal/config"
	"quill/internal/exitcode"
	"quill/internal/output"
	"quill/internal/storage"
)

func init() {
	Register(&RmCmd{})
	Register(&UndoCmd{})
}

// RmCmd deletes a task, keeping it restorable via undo.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"remove"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task (restorable with undo)" }
func (c *RmCmd) Usage() string     { return "quill rm <id>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ok, err := store.RemoveTask(ctx, cfg.ContextKey, id)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// UndoCmd restores the most recently deleted task.
type UndoCmd struct{}

func (c *UndoCmd) Name() string      { return "undo" }
func (c *UndoCmd) Aliases() []string { return nil }
func (c *UndoCmd) Synopsis() string  { return "Restore the most recently deleted task" }
func (c *UndoCmd) Usage() string     { return "quill undo" }
func (c *UndoCmd) NeedsStore() bool  { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	task, err := store.UndoDelete(ctx, cfg.ContextKey)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if task == nil {
		fmt.Fprintln(errOut, "error: nothing to undo")
		return exitcode.UserError
	}

	if !cfg.Quiet {
		output.FormatTask(out, *task)
	}
	return exitcode.Success
}
