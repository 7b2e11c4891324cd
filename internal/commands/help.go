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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. The command table is rendered from
// the registry, so new commands show up without touching this file.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "quill help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  quill <command> [flags] [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-14s %s\n", name, cmd.Synopsis())
	}
	fmt.Fprint(out, helpTrailer)
	return exitcode.Success
}

const helpTrailer = `
Common flags:
  --config <dir>    Override config directory (default ~/.quill)
  --context <key>   Use an explicit context key instead of git derivation
  --quiet           Suppress informational output

Running quill with no arguments lists tasks for the current context.
`
