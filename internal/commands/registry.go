package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names and aliases to their implementations.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register adds cmd under its primary name and every alias. Registration is
// all-or-nothing: on a name collision the registry is left untouched.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, name := range names {
		if existing, taken := r.cmds[name]; taken {
			return fmt.Errorf("%q is already registered to %q", name, existing.Name())
		}
	}
	for _, name := range names {
		r.cmds[name] = cmd
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns each registered command once, sorted by primary name.
// Aliases do not produce duplicates.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cmds []Command
	seen := make(map[string]bool)
	for _, cmd := range r.cmds {
		if seen[cmd.Name()] {
			continue
		}
		seen[cmd.Name()] = true
		cmds = append(cmds, cmd)
	}

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name() < cmds[j].Name()
	})
	return cmds
}

// DefaultRegistry holds every command in this package; each command file
// registers itself from init.
var DefaultRegistry = NewRegistry()

// Register adds cmd to DefaultRegistry. Collisions only happen when two
// command files claim the same name, so they panic at startup rather than
// surface as a runtime error.
func Register(cmd Command) {
	if err := DefaultRegistry.Register(cmd); err != nil {
		panic(err)
	}
}
