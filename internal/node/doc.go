// Package node defines the immutable tree descriptions consumed by the
// reconciliation engine.
//
// A Descriptor says "what should exist here": a Kind, a property bag and an
// ordered list of child descriptors. Descriptors are produced by the authoring
// helpers in this package (H, Text, Define) or loaded from tree files by
// internal/markup, and are never mutated after construction, so subtrees may be
// shared freely between renders.
//
// Key design constraints:
//   - Kind is a closed variant: host element, text, or component.
//   - Component identity is the *ComponentType pointer, never the function value
//     (Go funcs are not comparable).
//   - The "children" property key is reserved and never reaches the host.
//
// This package imports nothing internal; every other package may import it.
package node
