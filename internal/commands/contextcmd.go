package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"quill/internal/config"
	"quill/internal/exitcode"
	"quill/internal/gitctx"
	"quill/internal/storage"
)

func init() {
	Register(&ContextCmd{})
}

// ContextCmd prints the context key the current invocation addresses.
type ContextCmd struct{}

func (c *ContextCmd) Name() string      { return "context" }
func (c *ContextCmd) Aliases() []string { return nil }
func (c *ContextCmd) Synopsis() string  { return "Show the current context key" }
func (c *ContextCmd) Usage() string     { return "quill context" }
func (c *ContextCmd) NeedsStore() bool  { return false }

func (c *ContextCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ContextCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	key := cfg.ContextKey
	if key == "" {
		gc, err := gitctx.FromDir(".")
		if err != nil {
			fmt.Fprintf(errOut, "error: %v (use --context to set one explicitly)\n", err)
			return exitcode.ConfigError
		}
		key = gc.Key()
	}

	fmt.Fprintln(out, key)
	return exitcode.Success
}
