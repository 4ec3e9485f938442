package host

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/weft/internal/node"
)

var (
	// ErrForeignHandle is returned for handles not created by this Memory.
	ErrForeignHandle = errors.New("host: handle does not belong to this tree")

	// ErrNotChild is returned by RemoveChild when child is not attached to parent.
	ErrNotChild = errors.New("host: node is not a child of parent")

	// ErrTextChildren is returned when attaching children to a text node.
	ErrTextChildren = errors.New("host: text nodes cannot have children")
)

// Element is one node of a Memory host tree.
type Element struct {
	ID       int
	Tag      string // "" for text nodes
	Text     string // text nodes only
	Attrs    map[string]string
	Parent   *Element
	Children []*Element

	handlers map[string][]node.Handler
	owner    *Memory
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool { return e.Tag == "" }

// Handlers returns the event names that currently have at least one binding.
func (e *Element) Handlers() []string {
	var names []string
	for _, name := range node.SortedKeys(e.handlers) {
		if len(e.handlers[name]) > 0 {
			names = append(names, name)
		}
	}
	return names
}

// TextContent returns the concatenated text of e and its descendants.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.Text
	}
	var sb strings.Builder
	for _, c := range e.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Memory is an in-process host tree. It records every mutation in an op log
// and can be told to fail a specific operation, which tests use to exercise
// the engine's host-failure path.
//
// Memory is not safe for concurrent use; the engine drives it from a single
// goroutine.
type Memory struct {
	nextID int
	ops    []Op
	failOn map[OpKind]error
}

// NewMemory creates an empty host tree.
func NewMemory() *Memory {
	return &Memory{failOn: make(map[OpKind]error)}
}

// Container creates a detached element to render into. Container creation is
// not recorded in the op log.
func (m *Memory) Container(tag string) *Element {
	return m.newElement(tag)
}

func (m *Memory) newElement(tag string) *Element {
	m.nextID++
	return &Element{
		ID:       m.nextID,
		Tag:      tag,
		Attrs:    make(map[string]string),
		handlers: make(map[string][]node.Handler),
		owner:    m,
	}
}

// FailNext makes the next operation of kind k return err.
func (m *Memory) FailNext(k OpKind, err error) {
	m.failOn[k] = err
}

func (m *Memory) check(k OpKind) error {
	if err, ok := m.failOn[k]; ok {
		delete(m.failOn, k)
		return err
	}
	return nil
}

// Ops returns the recorded operations since the last ResetOps.
func (m *Memory) Ops() []Op {
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// ResetOps clears the op log.
func (m *Memory) ResetOps() {
	m.ops = m.ops[:0]
}

func (m *Memory) record(op Op) {
	m.ops = append(m.ops, op)
}

func (m *Memory) element(h Handle) (*Element, error) {
	e, ok := h.(*Element)
	if !ok || e == nil || e.owner != m {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, h)
	}
	return e, nil
}

// CreateHandle implements Host.
func (m *Memory) CreateHandle(kind node.Kind, attrs node.Props) (Handle, error) {
	if err := m.check(OpCreate); err != nil {
		return nil, err
	}
	var e *Element
	if kind.IsText() {
		e = m.newElement("")
		e.Text = stringify(attrs[node.NodeValueKey])
	} else {
		e = m.newElement(kind.HostTag())
		for _, k := range node.SortedKeys(attrs) {
			name, value := attribute(k, attrs[k])
			e.Attrs[name] = value
		}
	}
	m.record(Op{Kind: OpCreate, Target: e.ID, Name: kindLabel(kind)})
	return e, nil
}

// SetProperty implements Host. On text nodes only nodeValue is meaningful.
func (m *Memory) SetProperty(h Handle, name string, value any) error {
	e, err := m.element(h)
	if err != nil {
		return err
	}
	if err := m.check(OpSetProperty); err != nil {
		return err
	}
	if e.IsText() {
		if name != node.NodeValueKey {
			return nil
		}
		e.Text = stringify(value)
		m.record(Op{Kind: OpSetProperty, Target: e.ID, Name: name, Value: e.Text})
		return nil
	}
	attr, s := attribute(name, value)
	e.Attrs[attr] = s
	m.record(Op{Kind: OpSetProperty, Target: e.ID, Name: attr, Value: s})
	return nil
}

// RemoveProperty implements Host.
func (m *Memory) RemoveProperty(h Handle, name string) error {
	e, err := m.element(h)
	if err != nil {
		return err
	}
	if err := m.check(OpRemoveProp); err != nil {
		return err
	}
	if e.IsText() {
		if name == node.NodeValueKey {
			e.Text = ""
		}
		return nil
	}
	attr, _ := attribute(name, nil)
	delete(e.Attrs, attr)
	m.record(Op{Kind: OpRemoveProp, Target: e.ID, Name: attr})
	return nil
}

// BindEvent implements Host.
func (m *Memory) BindEvent(h Handle, event string, fn node.Handler) error {
	e, err := m.element(h)
	if err != nil {
		return err
	}
	if err := m.check(OpBindEvent); err != nil {
		return err
	}
	e.handlers[event] = append(e.handlers[event], fn)
	m.record(Op{Kind: OpBindEvent, Target: e.ID, Name: event})
	return nil
}

// UnbindEvent implements Host. Go funcs are not comparable, so bindings are
// matched by code pointer; the first match is removed.
func (m *Memory) UnbindEvent(h Handle, event string, fn node.Handler) error {
	e, err := m.element(h)
	if err != nil {
		return err
	}
	if err := m.check(OpUnbindEvent); err != nil {
		return err
	}
	bound := e.handlers[event]
	want := funcPointer(fn)
	for i, b := range bound {
		if funcPointer(b) == want {
			e.handlers[event] = append(bound[:i:i], bound[i+1:]...)
			m.record(Op{Kind: OpUnbindEvent, Target: e.ID, Name: event})
			return nil
		}
	}
	return nil
}

// AppendChild implements Host. A child that is already attached elsewhere is
// moved.
func (m *Memory) AppendChild(parent, child Handle) error {
	p, c, err := m.pair(parent, child)
	if err != nil {
		return err
	}
	if err := m.check(OpAppendChild); err != nil {
		return err
	}
	detach(c)
	c.Parent = p
	p.Children = append(p.Children, c)
	m.record(Op{Kind: OpAppendChild, Target: p.ID, Other: c.ID})
	return nil
}

// InsertBefore implements Inserter. A nil before appends.
func (m *Memory) InsertBefore(parent, child, before Handle) error {
	if before == nil {
		return m.AppendChild(parent, child)
	}
	p, c, err := m.pair(parent, child)
	if err != nil {
		return err
	}
	b, err := m.element(before)
	if err != nil {
		return err
	}
	if err := m.check(OpInsertBefore); err != nil {
		return err
	}
	if b.Parent != p {
		return fmt.Errorf("insert before #%d: %w", b.ID, ErrNotChild)
	}
	detach(c)
	idx := indexOf(p.Children, b)
	p.Children = append(p.Children[:idx], append([]*Element{c}, p.Children[idx:]...)...)
	c.Parent = p
	m.record(Op{Kind: OpInsertBefore, Target: p.ID, Other: c.ID, Value: "#" + strconv.Itoa(b.ID)})
	return nil
}

// RemoveChild implements Host.
func (m *Memory) RemoveChild(parent, child Handle) error {
	p, c, err := m.pair(parent, child)
	if err != nil {
		return err
	}
	if err := m.check(OpRemoveChild); err != nil {
		return err
	}
	if c.Parent != p {
		return fmt.Errorf("remove #%d from #%d: %w", c.ID, p.ID, ErrNotChild)
	}
	detach(c)
	m.record(Op{Kind: OpRemoveChild, Target: p.ID, Other: c.ID})
	return nil
}

func (m *Memory) pair(parent, child Handle) (*Element, *Element, error) {
	p, err := m.element(parent)
	if err != nil {
		return nil, nil, err
	}
	c, err := m.element(child)
	if err != nil {
		return nil, nil, err
	}
	if p.IsText() {
		return nil, nil, ErrTextChildren
	}
	return p, c, nil
}

// Dispatch invokes the handlers bound to event on h, in binding order, and
// returns how many ran. Handlers run synchronously on the caller's goroutine.
func (m *Memory) Dispatch(h Handle, event string, data map[string]any) (int, error) {
	e, err := m.element(h)
	if err != nil {
		return 0, err
	}
	bound := append([]node.Handler(nil), e.handlers[event]...)
	for _, fn := range bound {
		fn(node.Event{Name: event, Target: e, Data: data})
	}
	return len(bound), nil
}

func detach(c *Element) {
	if c.Parent == nil {
		return
	}
	p := c.Parent
	if i := indexOf(p.Children, c); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	c.Parent = nil
}

func indexOf(list []*Element, e *Element) int {
	for i, x := range list {
		if x == e {
			return i
		}
	}
	return -1
}

func funcPointer(fn node.Handler) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

func kindLabel(k node.Kind) string {
	if k.IsText() {
		return "#text"
	}
	return k.HostTag()
}

// attribute maps a property to the attribute it is stored under:
// className becomes class and style maps are serialized with sorted keys.
func attribute(name string, value any) (string, string) {
	if name == "className" {
		name = "class"
	}
	if name == "style" {
		if styles, ok := value.(map[string]string); ok {
			parts := make([]string, 0, len(styles))
			for _, k := range node.SortedKeys(styles) {
				parts = append(parts, k+": "+styles[k])
			}
			return name, strings.Join(parts, "; ")
		}
	}
	return name, stringify(value)
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
