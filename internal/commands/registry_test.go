package commands

import (
	"context"
	"flag"
	"io"
	"testing"

	"quill/internal/config"
	"quill/internal/exitcode"
	"quill/internal/storage"
)

// stubCmd is a minimal command for registry tests.
type stubCmd struct {
	name    string
	aliases []string
}

func (c *stubCmd) Name() string                   { return c.name }
func (c *stubCmd) Aliases() []string              { return c.aliases }
func (c *stubCmd) Synopsis() string               { return c.name }
func (c *stubCmd) Usage() string                  { return "quill " + c.name }
func (c *stubCmd) NeedsStore() bool               { return false }
func (c *stubCmd) RegisterFlags(fs *flag.FlagSet) {}
func (c *stubCmd) Run(ctx context.Context, cfg *config.Config, store storage.Store, args []string, out, errOut io.Writer) int {
	return exitcode.Success
}

func TestRegistryFindByNameAndAlias(t *testing.T) {
	r := NewRegistry()
	cmd := &stubCmd{name: "list", aliases: []string{"ls"}}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, name := range []string{"list", "ls"} {
		got, ok := r.Find(name)
		if !ok || got != Command(cmd) {
			t.Errorf("Find(%q) = %v, %v; want the registered command", name, got, ok)
		}
	}
	if _, ok := r.Find("missing"); ok {
		t.Error("Find should miss an unregistered name")
	}
}

func TestRegistryRejectsCollisions(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubCmd{name: "rm", aliases: []string{"remove"}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Register(&stubCmd{name: "rm"}); err == nil {
		t.Error("expected an error for a duplicate name")
	}
	if err := r.Register(&stubCmd{name: "purge", aliases: []string{"remove"}}); err == nil {
		t.Error("expected an error for a duplicate alias")
	}

	// The colliding registration must not have claimed its other names.
	if _, ok := r.Find("purge"); ok {
		t.Error("failed registration should leave the registry untouched")
	}
}

func TestRegistryAllSortedAndDeduplicated(t *testing.T) {
	r := NewRegistry()
	for _, cmd := range []*stubCmd{
		{name: "undo"},
		{name: "add"},
		{name: "list", aliases: []string{"ls"}},
	} {
		if err := r.Register(cmd); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	all := r.All()
	want := []string{"add", "list", "undo"}
	if len(all) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(all))
	}
	for i, name := range want {
		if all[i].Name() != name {
			t.Errorf("slot %d: expected %q, got %q", i, name, all[i].Name())
		}
	}
}
