// Package flags provides namespaced boolean feature flags.
//
// Flags are declared once, usually as package-level variables, through a
// Namespace. Evaluation never consults global state: callers receive a
// Checker (normally an immutable Set snapshot) and ask it about a Flag.
package flags

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Flag is a registered boolean switch identified by namespace and name.
type Flag struct {
	namespace   string
	name        string
	description string
}

// Key returns the fully qualified "namespace.name" identifier.
func (f Flag) Key() string {
	return f.namespace + "." + f.name
}

// Namespace returns the namespace the flag belongs to.
func (f Flag) Namespace() string { return f.namespace }

// Name returns the flag name within its namespace.
func (f Flag) Name() string { return f.name }

// Description returns the human readable description given at registration.
func (f Flag) Description() string { return f.description }

// String implements fmt.Stringer.
func (f Flag) String() string { return f.Key() }

// Checker reports whether a flag is active.
type Checker interface {
	IsEnabled(flag Flag) bool
}

// Namespace groups flags under a common prefix.
type Namespace struct {
	Name string

	registry *Registry
}

// NewNamespace returns a namespace registering into the default registry.
func NewNamespace(name string) Namespace {
	return Namespace{Name: name}
}

// Flag declares and registers a flag in the namespace. Flags are off
// unless a snapshot turns them on.
func (n Namespace) Flag(name, description string) Flag {
	flag := Flag{namespace: n.Name, name: name, description: description}
	registry := n.registry
	if registry == nil {
		registry = defaultRegistry
	}
	if err := registry.Register(flag); err != nil {
		// ALLOW-PANIC: flags are declared at package init
		panic(err)
	}
	return flag
}

// Registry records every declared flag.
type Registry struct {
	mu    sync.RWMutex
	flags map[string]Flag
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{flags: make(map[string]Flag)}
}

// Namespace returns a namespace bound to this registry.
func (r *Registry) Namespace(name string) Namespace {
	return Namespace{Name: name, registry: r}
}

// Register adds a flag. Empty parts, dots inside parts and duplicate keys
// are rejected.
func (r *Registry) Register(flag Flag) error {
	if flag.namespace == "" || flag.name == "" {
		return fmt.Errorf("flag namespace and name cannot be empty: %q", flag.Key())
	}
	if strings.Contains(flag.namespace, ".") || strings.Contains(flag.name, ".") {
		return fmt.Errorf("flag namespace and name cannot contain dots: %q", flag.Key())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.flags[flag.Key()]; exists {
		return fmt.Errorf("flag %q already registered", flag.Key())
	}
	r.flags[flag.Key()] = flag
	return nil
}

// Lookup finds a registered flag by its key.
func (r *Registry) Lookup(key string) (Flag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	flag, ok := r.flags[key]
	return flag, ok
}

// All returns every registered flag ordered by key.
func (r *Registry) All() []Flag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Flag, 0, len(r.flags))
	for _, flag := range r.flags {
		all = append(all, flag)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })
	return all
}

var defaultRegistry = NewRegistry()

// All returns every flag in the default registry ordered by key.
func All() []Flag {
	return defaultRegistry.All()
}

// Lookup finds a flag in the default registry.
func Lookup(key string) (Flag, bool) {
	return defaultRegistry.Lookup(key)
}
