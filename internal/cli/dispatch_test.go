package cli_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/cli"
	"quill/internal/commands"
	"quill/internal/config"
	"quill/internal/exitcode"
	"quill/internal/storage"
	"quill/internal/testutil"
)

// recordCmd is a minimal command used to observe dispatch behavior.
type recordCmd struct {
	name       string
	aliases    []string
	needsStore bool

	called bool
	args   []string
	cfg    *config.Config
}

func (c *recordCmd) Name() string                      { return c.name }
func (c *recordCmd) Aliases() []string                 { return c.aliases }
func (c *recordCmd) Synopsis() string                  { return c.name }
func (c *recordCmd) Usage() string                     { return "quill " + c.name }
func (c *recordCmd) NeedsStore() bool                  { return c.needsStore }
func (c *recordCmd) RegisterFlags(fs *flag.FlagSet)    {}
func (c *recordCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	c.called = true
	c.args = args
	c.cfg = cfg
	return exitcode.Success
}

func newTestDispatcher(t *testing.T, store *testutil.FakeStore, cmds ...commands.Command) *cli.Dispatcher {
	t.Helper()

	registry := commands.NewRegistry()
	for _, cmd := range cmds {
		if err := registry.Register(cmd); err != nil {
			t.Fatalf("register %s: %v", cmd.Name(), err)
		}
	}

	factory := func(ctx context.Context, cfg *config.Config) (storage.Store, error) {
		return store, nil
	}
	return cli.NewDispatcher(registry, factory)
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := newTestDispatcher(t, nil)

	_, stderr, code := run(t, d, "bogus")

	if code != exitcode.UserError {
		t.Errorf("expected user error, got %d", code)
	}
	if !strings.Contains(stderr, "unknown command: bogus") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d := newTestDispatcher(t, nil, &commands.VersionCmd{})

	_, stderr, code := run(t, d, "--version")

	if code != exitcode.UserError {
		t.Errorf("expected user error, got %d", code)
	}
	if !strings.Contains(stderr, "unknown command: --version") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NoArgsDispatchesToList(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	list := &recordCmd{name: "list"}
	d := newTestDispatcher(t, nil, list)

	_, stderr, code := run(t, d)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (stderr %q)", code, stderr)
	}
	if !list.called {
		t.Error("expected list command to run")
	}
	if len(list.args) != 0 {
		t.Errorf("expected no positional args, got %v", list.args)
	}
}

func TestDispatcher_CommandAlias(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	list := &recordCmd{name: "list", aliases: []string{"ls"}}
	d := newTestDispatcher(t, nil, list)

	_, _, code := run(t, d, "ls")

	if code != exitcode.Success || !list.called {
		t.Errorf("expected alias to dispatch (code %d, called %v)", code, list.called)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	d := newTestDispatcher(t, nil, &recordCmd{name: "list"})

	_, stderr, code := run(t, d, "list", "--bogus")

	if code != exitcode.UserError {
		t.Errorf("expected user error, got %d", code)
	}
	if !strings.Contains(stderr, "unknown flag: -bogus") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	d := newTestDispatcher(t, nil, &recordCmd{name: "list"})

	_, stderr, code := run(t, d, "list", "--context")

	if code != exitcode.UserError {
		t.Errorf("expected user error, got %d", code)
	}
	if !strings.Contains(stderr, "flag needs an argument: -context") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DashAfterTerminator(t *testing.T) {
	d := newTestDispatcher(t, nil, &recordCmd{name: "list"})

	_, stderr, code := run(t, d, "list", "--", "-x")

	if code != exitcode.UserError {
		t.Errorf("expected user error, got %d", code)
	}
	if !strings.Contains(stderr, "unknown flag: -x") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_CommonFlags(t *testing.T) {
	cmd := &recordCmd{name: "probe"}
	d := newTestDispatcher(t, nil, cmd)

	configDir := t.TempDir()
	_, stderr, code := run(t, d, "probe", "--config", configDir, "--context", "acme:widgets:main", "--quiet", "extra")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (stderr %q)", code, stderr)
	}
	if cmd.cfg.Dir != configDir {
		t.Errorf("expected config dir %q, got %q", configDir, cmd.cfg.Dir)
	}
	if cmd.cfg.ContextKey != "acme:widgets:main" {
		t.Errorf("unexpected context key %q", cmd.cfg.ContextKey)
	}
	if !cmd.cfg.Quiet {
		t.Error("expected quiet mode")
	}
	if len(cmd.args) != 1 || cmd.args[0] != "extra" {
		t.Errorf("unexpected positional args %v", cmd.args)
	}
}

func TestDispatcher_StoreCommand(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed("acme:widgets:main", storage.Task{ID: 1, Text: "Buy milk", Status: storage.StatusNotStarted})

	d := newTestDispatcher(t, store, &commands.ListCmd{})

	stdout, stderr, code := run(t, d, "list", "--config", t.TempDir(), "--context", "acme:widgets:main")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (stderr %q)", code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_StoreConstructionFailure(t *testing.T) {
	registry := commands.NewRegistry()
	if err := registry.Register(&commands.ListCmd{}); err != nil {
		t.Fatal(err)
	}
	factory := func(ctx context.Context, cfg *config.Config) (storage.Store, error) {
		return nil, errors.New("file locked")
	}
	d := cli.NewDispatcher(registry, factory)

	_, stderr, code := run(t, d, "list", "--config", t.TempDir(), "--context", "acme:widgets:main")

	if code != exitcode.ConfigError {
		t.Errorf("expected config error, got %d", code)
	}
	if !strings.Contains(stderr, "failed to open local storage: file locked") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_MalformedSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.SettingsFile)
	if err := os.WriteFile(path, []byte("storage: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}

	factoryCalled := false
	registry := commands.NewRegistry()
	if err := registry.Register(&commands.ListCmd{}); err != nil {
		t.Fatal(err)
	}
	d := cli.NewDispatcher(registry, func(ctx context.Context, cfg *config.Config) (storage.Store, error) {
		factoryCalled = true
		return testutil.NewFakeStore(), nil
	})

	_, _, code := run(t, d, "list", "--config", dir, "--context", "k")

	if code != exitcode.ConfigError {
		t.Errorf("expected config error, got %d", code)
	}
	if factoryCalled {
		t.Error("factory should not run when settings are malformed")
	}
}
