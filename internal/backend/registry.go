package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the backends available to a session, keyed by name.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend. Names must be unique.
func (r *Registry) Register(b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := b.Name()
	if _, ok := r.backends[name]; ok {
		return fmt.Errorf("backend %q is already registered", name)
	}
	r.backends[name] = b
	return nil
}

// Get looks a backend up by name.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (registered: %v)", name, r.names())
	}
	return b, nil
}

// Names lists registered backends in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the backends in name order.
func (r *Registry) All() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Backend, 0, len(r.backends))
	for _, name := range r.names() {
		all = append(all, r.backends[name])
	}
	return all
}
