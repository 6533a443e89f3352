package core

// This file contains the adapter registry, a name-keyed directory for
// constructing and filtering adapters by target-software category. The
// registry is an explicit object owned by the orchestrator rather than
// package-global state.

import "github.com/rs/zerolog"

// Constructor builds a fresh adapter instance. Adapters are created per
// session; constructors must not share mutable state between instances.
type Constructor func(logger zerolog.Logger) Adapter

// Registration describes one adapter entry: its lookup name, the software
// category it declares, and its constructor.
type Registration struct {
	Name string
	Type SoftwareType
	New  Constructor
}

// Registry maps adapter names to constructors.
type Registry struct {
	logger  zerolog.Logger
	entries map[string]Registration
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		logger:  logger,
		entries: make(map[string]Registration),
	}
}

// Register adds an adapter entry. A name collision overwrites the previous
// entry silently; last registration wins.
func (r *Registry) Register(reg Registration) {
	if _, exists := r.entries[reg.Name]; !exists {
		r.order = append(r.order, reg.Name)
	}
	r.entries[reg.Name] = reg
	r.logger.Debug().
		Str("adapter", reg.Name).
		Str("type", string(reg.Type)).
		Msg("Adapter registered")
}

// Create constructs a new instance of the named adapter, or nil when the
// name is not registered.
func (r *Registry) Create(name string) Adapter {
	reg, ok := r.entries[name]
	if !ok {
		r.logger.Debug().Str("adapter", name).Msg("Adapter not registered")
		return nil
	}
	return reg.New(r.logger)
}

// Names returns all registered adapter names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// ListByType returns the names of adapters whose declared software category
// matches t, in registration order.
func (r *Registry) ListByType(t SoftwareType) []string {
	var names []string
	for _, name := range r.order {
		if r.entries[name].Type == t {
			names = append(names, name)
		}
	}
	return names
}

// Clear removes all registered adapters.
func (r *Registry) Clear() {
	r.entries = make(map[string]Registration)
	r.order = nil
}
