package node

import (
	"strings"
	"unicode"
)

// Event is delivered to bound handlers by the host.
type Event struct {
	// Name is the host event name, e.g. "click".
	Name string
	// Target is the host handle the event was dispatched on.
	Target any
	// Data carries host-specific payload (input value, key, ...).
	Data map[string]any
}

// Handler is an event-handler property value.
type Handler func(Event)

// AsHandler converts an event property value to a Handler. Both Handler and
// plain func() values are accepted.
func AsHandler(v any) (Handler, bool) {
	switch f := v.(type) {
	case Handler:
		return f, f != nil
	case func(Event):
		return f, f != nil
	case func():
		if f == nil {
			return nil, false
		}
		return func(Event) { f() }, true
	default:
		return nil, false
	}
}

// IsEventKey reports whether key names an event binding: "on" followed by
// an upper-case letter. The value does not matter; a nil or non-handler
// value under an event key binds nothing and is never an attribute.
func IsEventKey(key string) bool {
	if len(key) < 3 || !strings.HasPrefix(key, "on") {
		return false
	}
	return unicode.IsUpper(rune(key[2]))
}

// EventName maps an event property key to the host event name:
// "onClick" -> "click".
func EventName(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, "on"))
}
