package node

import (
	"fmt"
	"strconv"
)

// Props is a descriptor's property bag. Iteration order is irrelevant.
type Props map[string]any

// Reserved property keys.
const (
	// ChildrenKey is never applied to the host as an attribute.
	ChildrenKey = "children"
	// NodeValueKey carries the text of a text node.
	NodeValueKey = "nodeValue"
)

// Descriptor is an immutable description of one tree position.
type Descriptor struct {
	Kind     Kind
	Props    Props
	Children []*Descriptor
}

// Scope gives a running component access to its ordered local-state cells.
// It is implemented by the engine; components normally go through
// engine.UseState rather than calling State directly.
type Scope interface {
	// State returns the current value of the next cell in call order, seeding
	// it with initial on first use, and a function that queues an update.
	State(initial any) (current any, enqueue func(update func(any) any))
}

// RenderFunc maps a property bag to a single child descriptor. A nil result
// renders nothing.
type RenderFunc func(s Scope, props Props) *Descriptor

// ComponentType is a named component. Its pointer is its identity.
type ComponentType struct {
	Name   string
	Render RenderFunc
}

// Define creates a component type.
func Define(name string, render RenderFunc) *ComponentType {
	return &ComponentType{Name: name, Render: render}
}

// Text returns a text descriptor holding value.
func Text(value string) *Descriptor {
	return &Descriptor{
		Kind:  TextKind,
		Props: Props{NodeValueKey: value},
	}
}

// H builds a descriptor. kind may be a Kind, a host tag string or a
// *ComponentType. Children are flattened one level deep from slices; strings,
// numbers, bools and fmt.Stringers become text nodes; nil children are dropped.
//
//	H("div", nil,
//		H("h1", nil, "Count: ", count),
//		H("button", Props{"onClick": inc}, "+"),
//	)
func H(kind any, props Props, children ...any) *Descriptor {
	d := &Descriptor{Kind: kindOf(kind), Props: Props{}}
	for k, v := range props {
		if k == ChildrenKey {
			continue
		}
		d.Props[k] = v
	}
	d.Children = flatten(children, nil)
	return d
}

func kindOf(kind any) Kind {
	switch k := kind.(type) {
	case Kind:
		return k
	case string:
		return Host(k)
	case *ComponentType:
		return Component(k)
	default:
		panic(fmt.Sprintf("node.H: unsupported kind %T", kind))
	}
}

func flatten(children []any, out []*Descriptor) []*Descriptor {
	for _, c := range children {
		switch v := c.(type) {
		case nil:
		case *Descriptor:
			if v != nil {
				out = append(out, v)
			}
		case []*Descriptor:
			for _, d := range v {
				if d != nil {
					out = append(out, d)
				}
			}
		case []any:
			out = flatten(v, out)
		default:
			out = append(out, Text(textOf(v)))
		}
	}
	return out
}

func textOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Attrs returns the props that are plain attributes: everything except event
// handlers and the reserved children key.
func (p Props) Attrs() Props {
	out := make(Props, len(p))
	for k, v := range p {
		if k == ChildrenKey || IsEventKey(k) {
			continue
		}
		out[k] = v
	}
	return out
}
