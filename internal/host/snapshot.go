package host

import "github.com/roach88/weft/internal/node"

// Snapshot returns a plain-value rendering of the subtree rooted at e,
// suitable for node.MarshalCanonical. Node ids are omitted so snapshots of
// equal trees are equal.
func Snapshot(e *Element) map[string]any {
	if e.IsText() {
		return map[string]any{"text": e.Text}
	}
	out := map[string]any{"tag": e.Tag}
	if len(e.Attrs) > 0 {
		attrs := make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			attrs[k] = v
		}
		out["attrs"] = attrs
	}
	if events := e.Handlers(); len(events) > 0 {
		out["events"] = events
	}
	if len(e.Children) > 0 {
		children := make([]any, 0, len(e.Children))
		for _, c := range e.Children {
			children = append(children, Snapshot(c))
		}
		out["children"] = children
	}
	return out
}

// CanonicalSnapshot is Snapshot encoded as canonical JSON.
func CanonicalSnapshot(e *Element) (string, error) {
	data, err := node.MarshalCanonical(Snapshot(e))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
