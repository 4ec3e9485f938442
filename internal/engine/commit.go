package engine

import (
	"reflect"

	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/node"
)

// commitRoot applies the finished pass to the host in one uninterrupted run:
// deletions first, then placements and updates in pre-order. The pass then
// becomes the committed baseline and the generation it superseded is
// dropped, making deleted fibers unreachable.
func (r *Root) commitRoot() error {
	root := r.arena.get(r.wip)
	r.mutations = 0
	rec := CommitRecord{RootID: r.id, Pass: r.pass, Units: r.quota.Current()}

	for _, ref := range r.deletions {
		f := r.arena.get(ref)
		if f == nil {
			continue
		}
		rec.Effects = append(rec.Effects, EffectRecord{
			Effect: EffectDeletion,
			Kind:   f.kind.String(),
			Path:   r.arena.path(f),
		})
		if err := r.commitDeletion(f); err != nil {
			return err
		}
	}

	for f := r.arena.get(root.child); f != nil; f = r.arena.get(r.nextUnit(f)) {
		if err := r.commitWork(f, &rec); err != nil {
			return err
		}
	}

	prev := r.current
	r.current = r.wip
	r.wip = fiberRef{}
	r.pending = fiberRef{}
	r.deletions = nil
	if !prev.isNil() {
		r.arena.drop(prev.gen)
	}

	r.metrics.Committed(rec)
	r.logger.Info("pass committed",
		"root", r.id,
		"pass", rec.Pass,
		"units", rec.Units,
		"placements", rec.Count(EffectPlacement),
		"updates", rec.Count(EffectUpdate),
		"deletions", rec.Count(EffectDeletion),
	)
	for _, o := range r.observers {
		o.OnCommit(rec)
	}
	return nil
}

func (r *Root) commitWork(f *fiber, rec *CommitRecord) error {
	effect := f.effect
	f.effect = EffectNone
	if effect == EffectNone || effect == EffectDeletion {
		return nil
	}
	rec.Effects = append(rec.Effects, EffectRecord{
		Effect: effect,
		Kind:   f.kind.String(),
		Path:   r.arena.path(f),
	})

	if f.handle == nil {
		return nil
	}
	parent := r.hostParent(f)
	if parent == nil {
		return nil
	}

	switch effect {
	case EffectPlacement:
		listeners, err := r.bindListeners(f)
		if err != nil {
			return err
		}
		f.listeners = listeners
		return r.attach(f, parent)
	case EffectUpdate:
		return r.updateProps(f)
	}
	return nil
}

// attach places f's handle under parent. With an Inserter host the handle
// goes before the next sibling that is already attached, so a placement in
// the middle of a child list lands in descriptor order.
func (r *Root) attach(f *fiber, parent host.Handle) error {
	if ins, ok := r.host.(host.Inserter); ok {
		if before := r.hostSibling(f); before != nil {
			return r.applied("insert child", r.arena.path(f), ins.InsertBefore(parent, f.handle, before))
		}
	}
	return r.applied("append child", r.arena.path(f), r.host.AppendChild(parent, f.handle))
}

// commitDeletion removes the first host handle at or below f from the
// nearest host ancestor. A subtree that owns no handle is a no-op.
func (r *Root) commitDeletion(f *fiber) error {
	target := f
	for target != nil && target.handle == nil {
		target = r.arena.get(target.child)
	}
	if target == nil {
		return nil
	}
	parent := r.hostParent(f)
	if parent == nil {
		return nil
	}
	return r.applied("remove child", r.arena.path(f), r.host.RemoveChild(parent, target.handle))
}

// applied records the outcome of one host mutation made by the running
// commit. Successful mutations are counted so a later failure can tell whether
// the host has already moved away from the committed tree.
func (r *Root) applied(op, path string, err error) error {
	if err != nil {
		return newHostError(op, path, err)
	}
	r.mutations++
	return nil
}

// hostParent returns the handle of the nearest ancestor that owns one.
func (r *Root) hostParent(f *fiber) host.Handle {
	for p := r.arena.get(f.parent); p != nil; p = r.arena.get(p.parent) {
		if p.handle != nil {
			return p.handle
		}
	}
	return nil
}

// hostSibling finds the handle f should be inserted before: the first host
// handle after f in the same host parent that is not itself being placed in
// this commit. Components are looked through.
func (r *Root) hostSibling(f *fiber) host.Handle {
	n := f
siblings:
	for {
		for n.sibling.isNil() {
			p := r.arena.get(n.parent)
			if p == nil || p.handle != nil {
				return nil
			}
			n = p
		}
		n = r.arena.get(n.sibling)

		for n.handle == nil {
			if n.effect == EffectPlacement || n.child.isNil() {
				continue siblings
			}
			n = r.arena.get(n.child)
		}
		if n.effect != EffectPlacement {
			return n.handle
		}
	}
}

func (r *Root) bindListeners(f *fiber) (map[string]node.Handler, error) {
	var listeners map[string]node.Handler
	for _, k := range node.SortedKeys(f.props) {
		if !node.IsEventKey(k) {
			continue
		}
		fn, ok := node.AsHandler(f.props[k])
		if !ok {
			continue
		}
		event := node.EventName(k)
		if err := r.applied("bind "+event, r.arena.path(f), r.host.BindEvent(f.handle, event, fn)); err != nil {
			return nil, err
		}
		if listeners == nil {
			listeners = make(map[string]node.Handler)
		}
		listeners[event] = fn
	}
	return listeners, nil
}

// updateProps applies the difference between the alternate's props and f's
// props. Text handles only take nodeValue. Handlers are always rebound
// because Go funcs cannot be compared; unchanged attributes are not written.
func (r *Root) updateProps(f *fiber) error {
	var prev node.Props
	if alt := r.arena.get(f.alternate); alt != nil {
		prev = alt.props
	}
	next := f.props
	h := f.handle
	path := r.arena.path(f)

	if f.kind.IsText() {
		if reflect.DeepEqual(prev[node.NodeValueKey], next[node.NodeValueKey]) {
			return nil
		}
		return r.applied("set nodeValue", path, r.host.SetProperty(h, node.NodeValueKey, next[node.NodeValueKey]))
	}

	for _, event := range node.SortedKeys(f.listeners) {
		if err := r.applied("unbind "+event, path, r.host.UnbindEvent(h, event, f.listeners[event])); err != nil {
			return err
		}
	}
	f.listeners = nil

	for _, k := range node.SortedKeys(prev) {
		if k == node.ChildrenKey || node.IsEventKey(k) {
			continue
		}
		if _, ok := next[k]; !ok {
			if err := r.applied("remove "+k, path, r.host.RemoveProperty(h, k)); err != nil {
				return err
			}
		}
	}

	for _, k := range node.SortedKeys(next) {
		v := next[k]
		if k == node.ChildrenKey || node.IsEventKey(k) {
			continue
		}
		if old, ok := prev[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		if err := r.applied("set "+k, path, r.host.SetProperty(h, k, v)); err != nil {
			return err
		}
	}

	listeners, err := r.bindListeners(f)
	if err != nil {
		return err
	}
	f.listeners = listeners
	return nil
}
