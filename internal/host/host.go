// Package host defines the host-tree collaborator the engine mutates during
// commit, and ships Memory, an in-process host tree used by tests, the
// scenario harness and the CLI.
//
// The engine never inspects a Handle; it only passes handles back to the Host
// that created them.
package host

import "github.com/roach88/weft/internal/node"

// Handle is an opaque reference to one node of the host tree.
type Handle any

// Host is the set of primitive mutations the committer applies.
//
// Errors are not retried by the engine; they abort the current pass and are
// returned from the tick that hit them.
type Host interface {
	// CreateHandle creates a detached node of the given kind with its initial
	// plain attributes. Event handlers are bound separately during commit.
	CreateHandle(kind node.Kind, attrs node.Props) (Handle, error)

	SetProperty(h Handle, name string, value any) error
	RemoveProperty(h Handle, name string) error

	BindEvent(h Handle, event string, fn node.Handler) error
	UnbindEvent(h Handle, event string, fn node.Handler) error

	AppendChild(parent, child Handle) error
	RemoveChild(parent, child Handle) error
}

// Inserter is implemented by hosts that can place a child before an existing
// sibling. When available, the committer uses it so that placements keep
// descriptor order instead of always landing at the end of the parent.
type Inserter interface {
	InsertBefore(parent, child, before Handle) error
}
