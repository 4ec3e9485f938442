package engine

// fiberRef addresses a fiber in the arena. The zero value is the nil ref.
//
// A ref resolves only while its generation is live: dropping a generation
// makes every ref into it resolve to nil, which is how abandoned passes and
// superseded trees become unreachable without walking them.
type fiberRef struct {
	gen uint32
	idx uint32
}

func (r fiberRef) isNil() bool { return r.gen == 0 }

type generation struct {
	fibers []*fiber
}

// arena owns every fiber of one Root. Each render pass allocates into its
// own generation.
type arena struct {
	gens map[uint32]*generation
	next uint32
}

func newArena() *arena {
	return &arena{gens: make(map[uint32]*generation)}
}

// newGen opens a generation and returns its id. Ids are never reused.
func (a *arena) newGen() uint32 {
	a.next++
	a.gens[a.next] = &generation{fibers: make([]*fiber, 0, 32)}
	return a.next
}

func (a *arena) alloc(gen uint32, f *fiber) fiberRef {
	g := a.gens[gen]
	ref := fiberRef{gen: gen, idx: uint32(len(g.fibers))}
	f.self = ref
	g.fibers = append(g.fibers, f)
	return ref
}

// get resolves r, returning nil for the nil ref and for dropped generations.
func (a *arena) get(r fiberRef) *fiber {
	if r.isNil() {
		return nil
	}
	g, ok := a.gens[r.gen]
	if !ok || int(r.idx) >= len(g.fibers) {
		return nil
	}
	return g.fibers[r.idx]
}

func (a *arena) drop(gen uint32) {
	delete(a.gens, gen)
}

// live returns the number of live generations.
func (a *arena) live() int { return len(a.gens) }

// size returns the number of fibers allocated in gen.
func (a *arena) size(gen uint32) int {
	if g, ok := a.gens[gen]; ok {
		return len(g.fibers)
	}
	return 0
}
