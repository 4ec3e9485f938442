package markup

import (
	"github.com/roach88/weft/internal/node"
)

// Registry maps names used in tree files to components and event handlers.
type Registry struct {
	components map[string]*node.ComponentType
	handlers   map[string]node.Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]*node.ComponentType),
		handlers:   make(map[string]node.Handler),
	}
}

// Register adds components under their names. A later registration with the
// same name replaces the earlier one.
func (r *Registry) Register(components ...*node.ComponentType) *Registry {
	for _, c := range components {
		r.components[c.Name] = c
	}
	return r
}

// Handle adds a named event handler.
func (r *Registry) Handle(name string, h node.Handler) *Registry {
	r.handlers[name] = h
	return r
}

// Component looks up a component by name.
func (r *Registry) Component(name string) (*node.ComponentType, bool) {
	c, ok := r.components[name]
	return c, ok
}

// Handler looks up a handler by name.
func (r *Registry) Handler(name string) (node.Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Components returns the registered component names, sorted.
func (r *Registry) Components() []string {
	return node.SortedKeys(r.components)
}
