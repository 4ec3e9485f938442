package markup

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/weft/internal/node"
)

// Build converts a CUE node value into a descriptor tree.
func Build(v cue.Value, reg *Registry) (*node.Descriptor, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	b := &builder{reg: reg}
	return b.node(v, "tree")
}

type builder struct {
	reg *Registry
}

func (b *builder) node(v cue.Value, path string) (*node.Descriptor, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(ErrCodeSyntax, err)
	}
	if v.Kind() == cue.StringKind {
		s, _ := v.String()
		return node.Text(s), nil
	}
	if v.Kind() != cue.StructKind {
		return nil, b.errorf(ErrCodeNodeShape, v, path, "node must be a struct or a string, got %v", v.Kind())
	}

	tag := v.LookupPath(cue.ParsePath("tag"))
	text := v.LookupPath(cue.ParsePath("text"))
	comp := v.LookupPath(cue.ParsePath("component"))
	set := 0
	for _, f := range []cue.Value{tag, text, comp} {
		if f.Exists() {
			set++
		}
	}
	if set != 1 {
		return nil, b.errorf(ErrCodeNodeShape, v, path, "node needs exactly one of tag, text, component")
	}

	if text.Exists() {
		s, err := b.textValue(text, path+".text")
		if err != nil {
			return nil, err
		}
		return node.Text(s), nil
	}

	props, err := b.props(v, path)
	if err != nil {
		return nil, err
	}
	children := v.LookupPath(cue.ParsePath("children"))

	if comp.Exists() {
		name, err := comp.String()
		if err != nil {
			return nil, b.errorf(ErrCodeNodeShape, comp, path+".component", "component must be a string")
		}
		c, ok := b.reg.Component(name)
		if !ok {
			return nil, b.errorf(ErrCodeUnknownComponent, comp, path+".component", "unknown component %q", name)
		}
		if children.Exists() {
			return nil, b.errorf(ErrCodeComponentKids, children, path+".children", "component nodes cannot have children")
		}
		return node.H(c, props), nil
	}

	name, err := tag.String()
	if err != nil || name == "" {
		return nil, b.errorf(ErrCodeNodeShape, tag, path+".tag", "tag must be a non-empty string")
	}
	var kids []any
	if children.Exists() {
		iter, err := children.List()
		if err != nil {
			return nil, b.errorf(ErrCodeNodeShape, children, path+".children", "children must be a list")
		}
		for i := 0; iter.Next(); i++ {
			d, err := b.node(iter.Value(), fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			kids = append(kids, d)
		}
	}
	return node.H(name, props, kids...), nil
}

// props merges the props struct with handlers named in "on".
func (b *builder) props(v cue.Value, path string) (node.Props, error) {
	props := node.Props{}
	pv := v.LookupPath(cue.ParsePath("props"))
	if pv.Exists() {
		iter, err := pv.Fields()
		if err != nil {
			return nil, b.errorf(ErrCodeNodeShape, pv, path+".props", "props must be a struct")
		}
		for iter.Next() {
			key := iter.Selector().Unquoted()
			val, err := b.propValue(iter.Value(), path+".props."+key)
			if err != nil {
				return nil, err
			}
			props[key] = val
		}
	}

	on := v.LookupPath(cue.ParsePath("on"))
	if on.Exists() {
		iter, err := on.Fields()
		if err != nil {
			return nil, b.errorf(ErrCodeNodeShape, on, path+".on", "on must be a struct of handler names")
		}
		for iter.Next() {
			event := iter.Selector().Unquoted()
			name, err := iter.Value().String()
			if err != nil {
				return nil, b.errorf(ErrCodeInvalidValue, iter.Value(), path+".on."+event, "handler name must be a string")
			}
			h, ok := b.reg.Handler(name)
			if !ok {
				return nil, b.errorf(ErrCodeUnknownHandler, iter.Value(), path+".on."+event, "unknown handler %q", name)
			}
			props[eventKey(event)] = h
		}
	}
	return props, nil
}

// propValue accepts strings, ints, bools and structs of strings (style maps).
func (b *builder) propValue(v cue.Value, path string) (any, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, _ := v.String()
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, b.errorf(ErrCodeInvalidValue, v, path, "int out of range")
		}
		return int(n), nil
	case cue.BoolKind:
		x, _ := v.Bool()
		return x, nil
	case cue.StructKind:
		out := map[string]string{}
		iter, _ := v.Fields()
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return nil, b.errorf(ErrCodeInvalidValue, iter.Value(), path+"."+iter.Selector().Unquoted(), "nested prop values must be strings")
			}
			out[iter.Selector().Unquoted()] = s
		}
		return out, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, b.errorf(ErrCodeInvalidValue, v, path, "float values are forbidden - use int instead")
	default:
		return nil, b.errorf(ErrCodeInvalidValue, v, path, "unsupported prop value kind %v", v.Kind())
	}
}

func (b *builder) textValue(v cue.Value, path string) (string, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, _ := v.String()
		return s, nil
	case cue.IntKind, cue.BoolKind:
		x, err := b.propValue(v, path)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(x), nil
	default:
		return "", b.errorf(ErrCodeInvalidValue, v, path, "text must be a string, int or bool")
	}
}

func (b *builder) errorf(code string, v cue.Value, path, format string, args ...any) error {
	return &LoadError{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Pos:     v.Pos(),
	}
}

// eventKey maps a host event name to its prop key: "click" -> "onClick".
func eventKey(event string) string {
	if event == "" {
		return "on"
	}
	return "on" + strings.ToUpper(event[:1]) + event[1:]
}
