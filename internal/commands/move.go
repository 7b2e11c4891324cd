package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"quill/internal/config"
	"quill/internal/exitcode"
	"quill/internal/storage"
)

func init() {
	Register(&UpCmd{})
	Register(&DownCmd{})
}

// UpCmd swaps a task with its predecessor in presentation order.
type UpCmd struct{}

func (c *UpCmd) Name() string      { return "up" }
func (c *UpCmd) Aliases() []string { return nil }
func (c *UpCmd) Synopsis() string  { return "Move a task up one position" }
func (c *UpCmd) Usage() string     { return "quill up <id>" }
func (c *UpCmd) NeedsStore() bool  { return true }

func (c *UpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UpCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	return runMove(ctx, cfg, store.MoveTaskUp, "already first", args, out, errOut)
}

// DownCmd swaps a task with its successor in presentation order.
type DownCmd struct{}

func (c *DownCmd) Name() string      { return "down" }
func (c *DownCmd) Aliases() []string { return nil }
func (c *DownCmd) Synopsis() string  { return "Move a task down one position" }
func (c *DownCmd) Usage() string     { return "quill down <id>" }
func (c *DownCmd) NeedsStore() bool  { return true }

func (c *DownCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DownCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	return runMove(ctx, cfg, store.MoveTaskDown, "already last", args, out, errOut)
}

// runMove is the shared implementation for up and down.
func runMove(ctx context.Context, cfg *config.Config, move func(context.Context, string, int64) (bool, error), edge string, args []string, out, errOut io.Writer) int {
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ok, err := move(ctx, cfg.ContextKey, id)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if !ok {
		fmt.Fprintf(errOut, "error: cannot move task %d (%s or not found)\n", id, edge)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
