package host

import "fmt"

// OpKind names a host mutation.
type OpKind string

const (
	OpCreate       OpKind = "create"
	OpSetProperty  OpKind = "set"
	OpRemoveProp   OpKind = "remove"
	OpBindEvent    OpKind = "bind"
	OpUnbindEvent  OpKind = "unbind"
	OpAppendChild  OpKind = "append"
	OpInsertBefore OpKind = "insert"
	OpRemoveChild  OpKind = "detach"
)

// Op is one recorded host mutation. Handles are identified by the Memory
// node id so that op logs are stable across runs.
type Op struct {
	Kind   OpKind `json:"op"`
	Target int    `json:"target"`
	Other  int    `json:"other,omitempty"` // child for append/insert/detach
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}

func (o Op) String() string {
	switch o.Kind {
	case OpCreate:
		return fmt.Sprintf("create #%d %s", o.Target, o.Name)
	case OpSetProperty:
		return fmt.Sprintf("set #%d %s=%q", o.Target, o.Name, o.Value)
	case OpRemoveProp:
		return fmt.Sprintf("remove #%d %s", o.Target, o.Name)
	case OpBindEvent, OpUnbindEvent:
		return fmt.Sprintf("%s #%d %s", o.Kind, o.Target, o.Name)
	case OpAppendChild, OpRemoveChild:
		return fmt.Sprintf("%s #%d <- #%d", o.Kind, o.Target, o.Other)
	case OpInsertBefore:
		return fmt.Sprintf("insert #%d <- #%d before %s", o.Target, o.Other, o.Value)
	default:
		return string(o.Kind)
	}
}

// Count returns how many ops of kind k are in ops.
func Count(ops []Op, k OpKind) int {
	n := 0
	for _, o := range ops {
		if o.Kind == k {
			n++
		}
	}
	return n
}
