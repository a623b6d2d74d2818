// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// Relational product. The kernels walk the set and the relation in lock-step,
// one position at a time, with idx the current position, and r and w the
// read and write positions not yet consumed. Identifier pid is the suffix of
// the relation projection chain matching r and w; it is used to scope the
// cache entries. There are four cases at each position:
//
//   - read and write: match the value of the set with the read value, then
//     produce every write value nested below it;
//   - read only: match the values and keep them;
//   - write only: produce the write values (or the value of the set for a
//     copy node) for every value of the set;
//   - untouched: keep the values of the set.

func (b *tables) position(idx int, r, w []int) (rd, wr bool) {
	return len(r) > 0 && r[0] == idx, len(w) > 0 && w[0] == idx
}

// next returns the image of set by rel.
func (b *tables) next(pid, set, rel NodeID, idx int, r, w []int) NodeID {
	if set == Empty || rel == Empty {
		return Empty
	}
	if len(r) == 0 && len(w) == 0 {
		return set
	}
	if set == Epsilon || rel == Epsilon {
		b.fatalf(ErrMissingCase, "next(%d, %d) at position %d", set, rel, idx)
	}
	if res, ok := b.match(opNext, set, rel, pid, 0); ok {
		return res
	}
	var res NodeID
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
					b.accadd(slot, b.val(v), b.next(b.down(b.down(pid)), b.down(s), b.down(v), idx+1, r[1:], w[1:]))
				}
				s, q = b.right(s), b.right(q)
			}
		}
		res = b.accend(slot)
	case rd:
		var items []link
		s, q := set, rel
		for s > 1 && q > 1 {
			switch vs, vq := b.val(s), b.val(q); {
			case vs < vq:
				s = b.right(s)
			case vs > vq:
				q = b.right(q)
			default:
				items = b.appendlink(items, vs, copyDontCare, b.next(b.down(pid), b.down(s), b.down(q), idx+1, r[1:], w))
				s, q = b.right(s), b.right(q)
			}
		}
		res = b.build(items, Empty)
	case wr:
		slot := b.newacc(Empty)
		for s := set; s > 1; s = b.right(s) {
			for v := rel; v > 1; v = b.right(v) {
				val := b.val(v)
				if b.cpy(v) == copyCopy {
					val = b.val(s)
				}
				b.accadd(slot, val, b.next(b.down(pid), b.down(s), b.down(v), idx+1, r, w[1:]))
			}
		}
		res = b.accend(slot)
	default:
		var items []link
		for s := set; s > 1; s = b.right(s) {
			items = b.appendlink(items, b.val(s), copyDontCare, b.next(pid, b.down(s), rel, idx+1, r, w))
		}
		res = b.build(items, Empty)
	}
	return b.set(opNext, set, rel, pid, 0, res)
}

// ************************************************************

// prev returns the vectors of univ that have a successor in set by rel.
func (b *tables) prev(pid, set, rel, univ NodeID, idx int, r, w []int) NodeID {
	if set == Empty || rel == Empty || univ == Empty {
		return Empty
	}
	if len(r) == 0 && len(w) == 0 {
		return b.intersect(univ, set)
	}
	if set == Epsilon || rel == Epsilon || univ == Epsilon {
		b.fatalf(ErrMissingCase, "prev(%d, %d, %d) at position %d", set, rel, univ, idx)
	}
	if res, ok := b.match(opPrev, set, rel, univ, pid); ok {
		return res
	}
	var res NodeID
	switch rd, wr := b.position(idx, r, w); {
	case rd && wr:
		// the read value must be in univ, the written one in set
		var items []link
		q, u := rel, univ
		for q > 1 && u > 1 {
			switch vq, vu := b.val(q), b.val(u); {
			case vq < vu:
				q = b.right(q)
			case vq > vu:
				u = b.right(u)
			default:
				items = b.appendlink(items, vq, copyDontCare, b.prevwrite(b.down(pid), set, b.down(q), u, idx, r[1:], w[1:]))
				q, u = b.right(q), b.right(u)
			}
		}
		res = b.build(items, Empty)
	case rd:
		var items []link
		s, q, u := set, rel, univ
		for s > 1 && q > 1 && u > 1 {
			vs, vq, vu := b.val(s), b.val(q), b.val(u)
			switch {
			case vs < vq || vs < vu:
				s = b.right(s)
			case vq < vs || vq < vu:
				q = b.right(q)
			case vu < vs || vu < vq:
				u = b.right(u)
			default:
				items = b.appendlink(items, vs, copyDontCare, b.prev(b.down(pid), b.down(s), b.down(q), b.down(u), idx+1, r[1:], w))
				s, q, u = b.right(s), b.right(q), b.right(u)
			}
		}
		res = b.build(items, Empty)
	case wr:
		// copy nodes always come first in a chain
		rest := rel
		if b.cpy(rel) == copyCopy {
			rest = b.right(rel)
		}
		var items []link
		if rest > 1 {
			for u := univ; u > 1; u = b.right(u) {
				items = b.appendlink(items, b.val(u), copyDontCare, b.prevwrite(pid, set, rest, u, idx, r, w[1:]))
			}
		}
		res = b.build(items, Empty)
		if rest != rel {
			b.pushref(res)
			cp := b.pushref(b.prevcopy(b.down(pid), set, b.down(rel), univ, idx, r, w[1:]))
			res = b.union(res, cp)
			b.popref(2)
		}
	default:
		res = b.prevcopy(pid, set, rel, univ, idx, r, w)
	}
	return b.set(opPrev, set, rel, univ, pid, res)
}

// prevwrite returns the predecessors below the node u of univ (the value read
// at position idx), where rel is the chain of values written at idx. The
// result is the sub-diagram below u: the caller adds the node for u.
func (b *tables) prevwrite(pid, set, rel, u NodeID, idx int, r, w []int) NodeID {
	slot := b.newacc(Empty)
	s, q := set, rel
	for s > 1 && q > 1 {
		switch vs, vq := b.val(s), b.val(q); {
		case vs < vq:
			s = b.right(s)
		case vs > vq:
			q = b.right(q)
		default:
			b.accunion(slot, b.prev(b.down(pid), b.down(s), b.down(q), b.down(u), idx+1, r, w))
			s, q = b.right(s), b.right(q)
		}
	}
	return b.accend(slot)
}

// prevcopy handles a position where the value is kept: it must be in both set
// and univ.
func (b *tables) prevcopy(pid, set, rel, univ NodeID, idx int, r, w []int) NodeID {
	if set == Empty || rel == Empty || univ == Empty {
		return Empty
	}
	if res, ok := b.match(opPrevCopy, set, rel, univ, pid); ok {
		return res
	}
	var items []link
	s, u := set, univ
	for s > 1 && u > 1 {
		switch vs, vu := b.val(s), b.val(u); {
		case vs < vu:
			s = b.right(s)
		case vs > vu:
			u = b.right(u)
		default:
			items = b.appendlink(items, vs, copyDontCare, b.prev(pid, b.down(s), rel, b.down(u), idx+1, r, w))
			s, u = b.right(s), b.right(u)
		}
	}
	res := b.build(items, Empty)
	return b.set(opPrevCopy, set, rel, univ, pid, res)
}
