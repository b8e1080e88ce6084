package source

import (
	"fmt"

	"dossier/internal/search/models"
)

// Registry holds the configured adapters. Registration happens once at boot;
// lookups afterwards are read-only, so no synchronization is needed.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(a Adapter) error {
	name := a.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("adapter %s already registered", name)
	}
	r.byName[name] = a
	r.adapters = append(r.adapters, a)
	return nil
}

// ForKind returns all adapters able to look up the given attribute kind, in
// registration order.
func (r *Registry) ForKind(kind models.AttributeKind) []Adapter {
	var matched []Adapter
	for _, a := range r.adapters {
		for _, k := range a.Kinds() {
			if k == kind {
				matched = append(matched, a)
				break
			}
		}
	}
	return matched
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Adapter {
	return r.adapters
}
