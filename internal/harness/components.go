package harness

import (
	"fmt"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/markup"
	"github.com/roach88/weft/internal/node"
)

// Counter shows a count with increment and decrement buttons. Prop "start"
// seeds the count.
var Counter = node.Define("Counter", func(s node.Scope, props node.Props) *node.Descriptor {
	start, _ := props["start"].(int)
	count, set := engine.UseState(s, start)
	return node.H("div", node.Props{"className": "counter"},
		node.H("span", node.Props{"id": "count"}, "Count: ", count),
		node.H("button", node.Props{"id": "inc", "onClick": func() { set(func(c int) int { return c + 1 }) }}, "+"),
		node.H("button", node.Props{"id": "dec", "onClick": func() { set(func(c int) int { return c - 1 }) }}, "-"),
	)
})

// Toggle hides or shows a paragraph holding prop "label".
var Toggle = node.Define("Toggle", func(s node.Scope, props node.Props) *node.Descriptor {
	label, _ := props["label"].(string)
	open, set := engine.UseState(s, false)
	var body *node.Descriptor
	if open {
		body = node.H("p", node.Props{"id": "details"}, label)
	}
	return node.H("section", nil,
		body,
		node.H("button", node.Props{"id": "toggle", "onClick": func() { set(func(o bool) bool { return !o }) }}, "toggle"),
	)
})

// TodoList renders "count" items and appends one per click on #add.
var TodoList = node.Define("TodoList", func(s node.Scope, props node.Props) *node.Descriptor {
	n, _ := props["count"].(int)
	items, set := engine.UseState(s, n)
	lis := make([]*node.Descriptor, 0, items)
	for i := 1; i <= items; i++ {
		lis = append(lis, node.H("li", node.Props{"className": "item"}, fmt.Sprintf("item %d", i)))
	}
	return node.H("div", nil,
		node.H("ul", node.Props{"id": "items"}, lis),
		node.H("button", node.Props{"id": "add", "onClick": func() { set(func(c int) int { return c + 1 }) }}, "add"),
	)
})

// Registry returns the components and handlers scenario and demo trees can
// name.
func Registry() *markup.Registry {
	return markup.NewRegistry().
		Register(Counter, Toggle, TodoList).
		Handle("noop", func(node.Event) {})
}
