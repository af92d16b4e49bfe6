package mapper

import (
	"sort"
	"sync"
)

// Registry holds named mapper factories. Schemas resolve names against it once,
// when they are compiled.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry. The none mapper is always available.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds f under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || name == NoneName {
		return newError(ErrReserved, "%q", name)
	}
	if f == nil {
		return newError(ErrConstruction, "mapper %q has no factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return newError(ErrDuplicate, "%q", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register that panics on error, for package level setup.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Resolve returns the factory registered under name. An empty name and
// NoneName resolve to the None mapper, even on a nil registry.
func (r *Registry) Resolve(name string) (Factory, error) {
	if name == "" || name == NoneName {
		return NoneFactory, nil
	}
	if r == nil {
		return nil, newError(ErrUnknown, "%q", name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, newError(ErrUnknown, "%q", name)
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
