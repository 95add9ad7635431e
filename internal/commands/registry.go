package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names and aliases to their implementations. The
// taskdeck subcommands register themselves into DefaultRegistry from their
// init functions; the dispatcher only ever reads it.
type Registry struct {
	mu    sync.RWMutex
	index map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]Command)}
}

// Register adds a command under its name and every alias. A name or alias
// that is already taken is an error; two commands answering to the same
// word would make dispatch ambiguous.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := append([]string{c.Name()}, c.Aliases()...)
	for _, w := range words {
		if _, taken := r.index[w]; taken {
			return fmt.Errorf("command name taken: %s", w)
		}
	}
	for _, w := range words {
		r.index[w] = c
	}
	return nil
}

// Find resolves a name or alias to its command.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.index[name]
	return c, ok
}

// All returns every registered command once, ordered by primary name.
// Aliases do not produce duplicates.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]Command)
	for _, c := range r.index {
		byName[c.Name()] = c
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Command, len(names))
	for i, name := range names {
		out[i] = byName[name]
	}
	return out
}

// DefaultRegistry holds the commands built into the taskdeck binary.
var DefaultRegistry = NewRegistry()

// Register adds a command to DefaultRegistry, panicking on a name clash.
// Clashes are programmer errors caught on the first run of any test.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
