package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"quill/internal/config"
	"quill/internal/exitcode"
	"quill/internal/storage"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd appends a new task to the current context.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Add a task" }
func (c *AddCmd) Usage() string     { return "quill add <text...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}

	id, err := store.AddTask(ctx, cfg.ContextKey, text)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "added task %d\n", id)
	}
	return exitcode.Success
}
