// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// Folder computes a value bottom-up over the nodes of a diagram.
type Folder interface {
	// Terminal returns the value for the empty set, or for the set containing
	// only the empty vector when epsilon is true.
	Terminal(epsilon bool) interface{}
	// Node returns the value for the set made of the vectors starting with
	// val and continuing in down, plus the vectors in right (the siblings
	// with a larger first value).
	Node(val int, down, right interface{}) interface{}
}

// Fold returns the value computed by f on s. Results are memoized in the
// operation cache, using op, so that shared sub-diagrams are only visited
// once, and may be reused by subsequent calls with the same op. The cache is
// not reliable: Node may be called more than once on the same arguments.
// Use Domain.ClearCache when f changes. The methods of f must not modify the
// domain.
func (s *Set) Fold(op CacheOp, f Folder) interface{} {
	s.d.checkf(opcode(op) >= opFold && opcode(op) < s.d.nextop, ErrMissingCase, "fold: unknown operation %d", op)
	return s.d.fold(opcode(op), s.root, f)
}

func (b *tables) fold(op opcode, n NodeID, f Folder) interface{} {
	if n < 2 {
		return f.Terminal(n == Epsilon)
	}
	var res interface{}
	found := false
	var chain []NodeID
	for m := n; m > 1; m = b.right(m) {
		if v, ok := b.matchany(op, m); ok {
			res, found = v, true
			break
		}
		chain = append(chain, m)
	}
	if !found {
		res = f.Terminal(false)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		down := b.fold(op, b.down(chain[i]), f)
		res = b.setany(op, chain[i], f.Node(int(b.val(chain[i])), down, res))
	}
	return res
}
