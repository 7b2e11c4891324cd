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
	Register(&ListCmd{})
}

// ListCmd prints the ordered task list for the current context.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "Show tasks for the current context" }
func (c *ListCmd) Usage() string     { return "quill list" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	tasks, err := store.GetTasks(ctx, cfg.ContextKey)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	output.FormatTaskList(out, tasks)
	return exitcode.Success
}
