package node

import "fmt"

// KindTag distinguishes the variants of Kind.
type KindTag uint8

const (
	// KindNone is the zero Kind, used only by the synthetic root fiber.
	KindNone KindTag = iota
	// KindHost is a primitive host element such as "div".
	KindHost
	// KindText is the reserved text node kind; its value lives in NodeValueKey.
	KindText
	// KindComponent is a reference to a ComponentType.
	KindComponent
)

func (t KindTag) String() string {
	switch t {
	case KindNone:
		return "none"
	case KindHost:
		return "host"
	case KindText:
		return "text"
	case KindComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Kind identifies what a descriptor or fiber is. Kind values are comparable
// with ==, which is exactly the "same type" test used by the reconciler.
type Kind struct {
	tag  KindTag
	name string
	comp *ComponentType
}

// Host returns the Kind of a primitive host element.
func Host(tag string) Kind {
	return Kind{tag: KindHost, name: tag}
}

// TextKind is the Kind of text nodes.
var TextKind = Kind{tag: KindText}

// Component returns the Kind referring to c.
func Component(c *ComponentType) Kind {
	return Kind{tag: KindComponent, comp: c}
}

// Tag returns the variant of k.
func (k Kind) Tag() KindTag { return k.tag }

// IsZero reports whether k is the root kind.
func (k Kind) IsZero() bool { return k.tag == KindNone }

// IsComponent reports whether k refers to a component.
func (k Kind) IsComponent() bool { return k.tag == KindComponent }

// IsText reports whether k is the text kind.
func (k Kind) IsText() bool { return k.tag == KindText }

// HostTag returns the element tag for host kinds and "" otherwise.
func (k Kind) HostTag() string {
	if k.tag != KindHost {
		return ""
	}
	return k.name
}

// ComponentType returns the referenced component, or nil.
func (k Kind) ComponentType() *ComponentType { return k.comp }

// String renders k for logs and dumps: "div", "#text", "<Counter>".
func (k Kind) String() string {
	switch k.tag {
	case KindHost:
		return k.name
	case KindText:
		return "#text"
	case KindComponent:
		if k.comp == nil {
			return "<nil>"
		}
		return fmt.Sprintf("<%s>", k.comp.Name)
	default:
		return "#root"
	}
}
