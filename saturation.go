// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// saturation holds the state of a least fixpoint computation. Relations are
// grouped by their top level, the first position they read or write. A node
// at a given level is saturated when its children are saturated and when no
// relation of this level adds new vectors.
type saturation struct {
	b     *tables
	rels  []*Relation
	top   [][]int  // indices of the relations for each level
	proj  []*Set   // projection of the states on the read positions, for expand
	roots []NodeID // diagrams of the relations when the computation starts
	scope NodeID   // identifies the list of relations in the cache
}

// LeastFixpoint sets s to the smallest set containing src and closed by the
// relations in rels, using saturation. Relations with an expand callback are
// grown during the computation. Both sets must be defined over all
// positions.
func (s *Set) LeastFixpoint(src *Set, rels ...*Relation) {
	s.compatible(src)
	src.unprojected()
	d := s.d
	for _, rel := range rels {
		d.checkf(rel.d == d, ErrProjection, "relation from a different domain")
	}
	defer d.protect(src.root)()
	sat := d.newsaturation(rels)
	defer sat.destroy()
	res := d.pushref(sat.saturate(0, src.root))
	// relations that do not read anything are only expanded once we are done
	for k, rel := range rels {
		if len(rel.read) == 0 && rel.expand != nil {
			p := sat.proj[k]
			p.root = d.project(p.pid, res, 0, nil)
			rel.expand(rel, p)
		}
	}
	s.root = res
}

func (d *Domain) newsaturation(rels []*Relation) *saturation {
	sat := &saturation{
		b:     &d.tables,
		rels:  rels,
		top:   make([][]int, d.size),
		proj:  make([]*Set, len(rels)),
		roots: make([]NodeID, len(rels)),
	}
	slot := d.newacc(Empty)
	for k, rel := range rels {
		sat.roots[k] = rel.root
		// one node per relation, with a chain giving its diagram and projection
		e := d.pushref(d.single(1, copyDontCare, rel.pid))
		e = d.makenode(0, copyDontCare, rel.root, e)
		d.popref(1)
		d.pushref(e)
		scope := d.makenode(uint32(len(rels)-k), copyDontCare, e, d.accget(slot))
		d.popref(1)
		d.refstack[slot] = scope
		if rel.expand != nil {
			sat.proj[k] = d.NewProjectedSet(rel.read)
		}
		level := -1
		switch {
		case len(rel.read) > 0 && len(rel.write) > 0:
			level = rel.read[0]
			if rel.write[0] < level {
				level = rel.write[0]
			}
		case len(rel.read) > 0:
			level = rel.read[0]
		case len(rel.write) > 0:
			level = rel.write[0]
		}
		if level >= 0 {
			sat.top[level] = append(sat.top[level], k)
		}
	}
	// the scope stays on the refstack until the end of the computation
	sat.scope = d.accget(slot)
	return sat
}

// destroy releases the projections used by expand. Results in the cache are
// keyed on the diagrams the relations had at the start. When a relation grew,
// another list of relations could build the same scope later, so the entries
// of this computation are dropped.
func (sat *saturation) destroy() {
	for _, p := range sat.proj {
		if p != nil {
			p.Destroy()
		}
	}
	for k, rel := range sat.rels {
		if rel.root != sat.roots[k] {
			sat.b.cache.cacheclear(opSat)
			sat.b.cache.cacheclear(opRelProd)
			return
		}
	}
}

// saturate returns the saturation of n, a node at position level.
func (sat *saturation) saturate(level int, n NodeID) NodeID {
	b := sat.b
	if n < 2 {
		return n
	}
	if res, ok := b.match(opSat, n, sat.scope, 0, 0); ok {
		return res
	}
	var items []link
	for m := n; m > 1; m = b.right(m) {
		items = b.appendlink(items, b.val(m), copyDontCare, sat.saturate(level+1, b.down(m)))
	}
	res := b.pushref(b.build(items, Empty))
	res = sat.fixpoint(level, res)
	b.popref(1)
	return b.set(opSat, n, sat.scope, 0, 0, res)
}

// fixpoint applies the relations with top level until set is stable. The
// children of set must be saturated.
func (sat *saturation) fixpoint(level int, set NodeID) NodeID {
	b := sat.b
	if set == Empty || len(sat.top[level]) == 0 {
		return set
	}
	old := b.newacc(Empty)
	slot := b.newacc(set)
	for b.refstack[old] != b.refstack[slot] {
		b.refstack[old] = b.refstack[slot]
		for _, k := range sat.top[level] {
			rel := sat.rels[k]
			if rel.expand != nil {
				p := sat.proj[k]
				p.root = b.project(p.pid, b.accget(slot), level, rel.read)
				rel.expand(rel, p)
				p.root = Empty
			}
			res := sat.relfixpoint(rel.pid, b.accget(slot), rel.root, level, rel.read, rel.write)
			b.refstack[slot] = res
		}
	}
	res := b.accget(slot)
	b.popref(2)
	return res
}

// find returns the sibling of n with value v, which must exist.
func (b *tables) find(n NodeID, v uint32) NodeID {
	for n > 1 && b.val(n) != v {
		n = b.right(n)
	}
	if n < 2 {
		b.fatalf(ErrMissingCase, "no value %d in chain", v)
	}
	return n
}

// relfixpoint returns the union of set with the saturated image of set by
// rel. Position idx is the top level of the relation. Successors are computed
// from the result as it grows, so more than one step can be done at once.
func (sat *saturation) relfixpoint(pid, set, rel NodeID, idx int, r, w []int) NodeID {
	b := sat.b
	if set == Empty || rel == Empty || (len(r) == 0 && len(w) == 0) {
		return set
	}
	slot := b.newacc(set)
	switch rd, wr := b.position(idx, r, w); {
	case rd && wr:
		s, q := set, rel
		for s > 1 && q > 1 {
			switch vs, vq := b.val(s), b.val(q); {
			case vs < vq:
				s = b.right(s)
			case vs > vq:
				q = b.right(q)
			default:
				nd := b.pushref(b.down(b.find(b.accget(slot), vs)))
				for v := b.down(q); v > 1; v = b.right(v) {
					b.accadd(slot, b.val(v), sat.relprod(b.down(b.down(pid)), nd, b.down(v), idx+1, r[1:], w[1:]))
				}
				b.popref(1)
				s, q = b.right(s), b.right(q)
			}
		}
	case wr:
		for s := set; s > 1; s = b.right(s) {
			for v := rel; v > 1; v = b.right(v) {
				val := b.val(v)
				if b.cpy(v) == copyCopy {
					val = b.val(s)
				}
				b.accadd(slot, val, sat.relprod(b.down(pid), b.down(s), b.down(v), idx+1, r, w[1:]))
			}
		}
	case rd:
		s, q := set, rel
		for s > 1 && q > 1 {
			switch vs, vq := b.val(s), b.val(q); {
			case vs < vq:
				s = b.right(s)
			case vs > vq:
				q = b.right(q)
			default:
				nd := b.pushref(b.down(b.find(b.accget(slot), vs)))
				b.accadd(slot, vs, sat.relprod(b.down(pid), nd, b.down(q), idx+1, r[1:], w))
				b.popref(1)
				s, q = b.right(s), b.right(q)
			}
		}
	default:
		b.fatalf(ErrMissingCase, "relation not active at its top level %d", idx)
	}
	return b.accend(slot)
}

// relprod returns the saturation of the image of set by rel.
func (sat *saturation) relprod(pid, set, rel NodeID, idx int, r, w []int) NodeID {
	b := sat.b
	if len(r) == 0 && len(w) == 0 {
		return set
	}
	if set == Empty || rel == Empty {
		return Empty
	}
	if set == Epsilon || rel == Epsilon {
		b.fatalf(ErrMissingCase, "relprod(%d, %d) at position %d", set, rel, idx)
	}
	if res, ok := b.match(opRelProd, set, rel, pid, sat.scope); ok {
		return res
	}
	var res NodeID
	if rd, wr := b.position(idx, r, w); rd || wr {
		res = sat.applyrelprod(pid, set, rel, idx, r, w)
	} else {
		var items []link
		for s := set; s > 1; s = b.right(s) {
			items = b.appendlink(items, b.val(s), copyDontCare, sat.relprod(pid, b.down(s), rel, idx+1, r, w))
		}
		res = b.build(items, Empty)
	}
	b.pushref(res)
	res = sat.saturate(idx, res)
	b.popref(1)
	return b.set(opRelProd, set, rel, pid, sat.scope, res)
}

// applyrelprod is relprod at a position where rel is active.
func (sat *saturation) applyrelprod(pid, set, rel NodeID, idx int, r, w []int) NodeID {
	b := sat.b
	switch rd, wr := b.position(idx, r, w); {
	case rd && wr:
		slot := b.newacc(Empty)
		s, q := set, rel
		for s > 1 && q > 1 {
			switch vs, vq := b.val(s), b.val(q); {
			case vs < vq:
				s = b.right(s)
			case vs > vq:
				q = b.right(q)
			default:
				for v := b.down(q); v > 1; v = b.right(v) {
					b.accadd(slot, b.val(v), sat.relprod(b.down(b.down(pid)), b.down(s), b.down(v), idx+1, r[1:], w[1:]))
				}
				s, q = b.right(s), b.right(q)
			}
		}
		return b.accend(slot)
	case wr:
		slot := b.newacc(Empty)
		for s := set; s > 1; s = b.right(s) {
			for v := rel; v > 1; v = b.right(v) {
				val := b.val(v)
				if b.cpy(v) == copyCopy {
					val = b.val(s)
				}
				b.accadd(slot, val, sat.relprod(b.down(pid), b.down(s), b.down(v), idx+1, r, w[1:]))
			}
		}
		return b.accend(slot)
	default:
		var items []link
		s, q := set, rel
		for s > 1 && q > 1 {
			switch vs, vq := b.val(s), b.val(q); {
			case vs < vq:
				s = b.right(s)
			case vs > vq:
				q = b.right(q)
			default:
				items = b.appendlink(items, vs, copyDontCare, sat.relprod(b.down(pid), b.down(s), b.down(q), idx+1, r[1:], w))
				s, q = b.right(s), b.right(q)
			}
		}
		return b.build(items, Empty)
	}
}
