package engine

import (
	"strconv"
	"strings"

	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/node"
)

// Effect is the commit action pending for a fiber.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectPlacement
	EffectUpdate
	EffectDeletion
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectPlacement:
		return "placement"
	case EffectUpdate:
		return "update"
	case EffectDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// ParseEffect is the inverse of Effect.String.
func ParseEffect(s string) (Effect, bool) {
	for e := EffectNone; e <= EffectDeletion; e++ {
		if e.String() == s {
			return e, true
		}
	}
	return EffectNone, false
}

// fiber is one tree position in one pass.
type fiber struct {
	self     fiberRef
	kind     node.Kind
	props    node.Props
	children []*node.Descriptor

	// handle is nil for components and for the synthetic root's parent.
	handle host.Handle

	parent    fiberRef
	child     fiberRef
	sibling   fiberRef
	alternate fiberRef

	effect Effect
	cells  []*cell

	// listeners holds the exact handlers bound on handle, by event name, so
	// the next update can unbind them.
	listeners map[string]node.Handler
}

func (f *fiber) isHost() bool {
	return !f.kind.IsComponent() && !f.kind.IsZero()
}

// path renders f's position as "div[0]/h1[0]/#text[1]" for logs and commit
// records. The root contributes nothing.
func (a *arena) path(f *fiber) string {
	var parts []string
	for f != nil && !f.kind.IsZero() {
		parent := a.get(f.parent)
		idx := 0
		if parent != nil {
			for c := a.get(parent.child); c != nil && c != f; c = a.get(c.sibling) {
				idx++
			}
		}
		parts = append(parts, f.kind.String()+"["+strconv.Itoa(idx)+"]")
		f = parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}
