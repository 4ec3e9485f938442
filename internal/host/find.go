package host

import "strings"

// Find returns the first element in pre-order under root (root included)
// matching sel, or nil. A selector is a tag name ("button"), an id attribute
// ("#count"), a class (".item") or a tag with an index ("li:1", zero-based
// among matches).
func Find(root *Element, sel string) *Element {
	base, nth := splitIndex(sel)
	var found *Element
	i := 0
	walk(root, func(e *Element) bool {
		if !matches(e, base) {
			return true
		}
		if i == nth {
			found = e
			return false
		}
		i++
		return true
	})
	return found
}

// FindAll returns every element under root matching sel in pre-order.
func FindAll(root *Element, sel string) []*Element {
	base, _ := splitIndex(sel)
	var out []*Element
	walk(root, func(e *Element) bool {
		if matches(e, base) {
			out = append(out, e)
		}
		return true
	})
	return out
}

func splitIndex(sel string) (string, int) {
	base, idx, ok := strings.Cut(sel, ":")
	if !ok {
		return sel, 0
	}
	n := 0
	for _, r := range idx {
		if r < '0' || r > '9' {
			return sel, 0
		}
		n = n*10 + int(r-'0')
	}
	return base, n
}

func matches(e *Element, sel string) bool {
	if e.IsText() || sel == "" {
		return false
	}
	switch sel[0] {
	case '#':
		return e.Attrs["id"] == sel[1:]
	case '.':
		for _, c := range strings.Fields(e.Attrs["class"]) {
			if c == sel[1:] {
				return true
			}
		}
		return false
	default:
		return e.Tag == sel
	}
}

func walk(e *Element, visit func(*Element) bool) bool {
	if !visit(e) {
		return false
	}
	for _, c := range e.Children {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}
