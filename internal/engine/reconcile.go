package engine

import "github.com/roach88/weft/internal/node"

// reconcileChildren builds wip's child chain from the new descriptors and the
// old chain under wip.alternate.
//
// Matching is positional only. At each index the descriptor is compared with
// the old fiber at the same index; equal kinds produce an update that carries
// the old handle, anything else produces a placement, and an old fiber that
// is not matched is tagged for deletion. A reordered child list without keys
// is therefore a run of deletions and placements, never a move.
func (r *Root) reconcileChildren(wip *fiber, children []*node.Descriptor) {
	var old *fiber
	if alt := r.arena.get(wip.alternate); alt != nil {
		old = r.arena.get(alt.child)
	}

	wip.child = fiberRef{}
	var prev *fiber
	for _, d := range children {
		if d == nil {
			continue
		}

		var nf *fiber
		if old != nil && old.kind == d.Kind {
			nf = &fiber{
				kind:      d.Kind,
				props:     d.Props,
				children:  d.Children,
				handle:    old.handle,
				parent:    wip.self,
				alternate: old.self,
				effect:    EffectUpdate,
				listeners: old.listeners,
			}
		} else {
			if old != nil {
				r.markDeletion(old)
			}
			nf = &fiber{
				kind:     d.Kind,
				props:    d.Props,
				children: d.Children,
				parent:   wip.self,
				effect:   EffectPlacement,
			}
		}
		ref := r.arena.alloc(wip.self.gen, nf)

		if prev == nil {
			wip.child = ref
		} else {
			prev.sibling = ref
		}
		prev = nf

		if old != nil {
			old = r.arena.get(old.sibling)
		}
	}

	for old != nil {
		r.markDeletion(old)
		old = r.arena.get(old.sibling)
	}
}

func (r *Root) markDeletion(old *fiber) {
	old.effect = EffectDeletion
	r.deletions = append(r.deletions, old.self)
}
