// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"math/big"
	"math/rand"
)

// All the kernels follow the same pattern. Siblings are visited with a loop
// and the kernel only recurses on down edges. Intermediate results are kept
// on the refstack (see appendlink and newacc) until they are linked into a
// node. Results are memoized on the head of the chains.

// union returns the union of x and y, two diagrams for vectors of the same
// length.
func (b *tables) union(x, y NodeID) NodeID {
	if x == y || y == Empty {
		return x
	}
	if x == Empty {
		return y
	}
	if x == Epsilon || y == Epsilon {
		b.fatalf(ErrMissingCase, "union(%d, %d)", x, y)
	}
	if y < x {
		x, y = y, x
	}
	if res, ok := b.match(opUnion, x, y, 0, 0); ok {
		return res
	}
	var items []link
	l, r := x, y
	for l > 1 && r > 1 {
		kl, kr := b.key(l), b.key(r)
		switch {
		case kl < kr:
			items = b.appendlink(items, b.val(l), b.cpy(l), b.down(l))
			l = b.right(l)
		case kl > kr:
			items = b.appendlink(items, b.val(r), b.cpy(r), b.down(r))
			r = b.right(r)
		default:
			items = b.appendlink(items, b.val(l), b.cpy(l), b.union(b.down(l), b.down(r)))
			l, r = b.right(l), b.right(r)
		}
	}
	tail := l
	if l == Empty {
		tail = r
	}
	res := b.build(items, tail)
	return b.set(opUnion, x, y, 0, 0, res)
}

// intersect returns the intersection of x and y.
func (b *tables) intersect(x, y NodeID) NodeID {
	if x == y {
		return x
	}
	if x == Empty || y == Empty {
		return Empty
	}
	if x == Epsilon || y == Epsilon {
		b.fatalf(ErrMissingCase, "intersect(%d, %d)", x, y)
	}
	if y < x {
		x, y = y, x
	}
	if res, ok := b.match(opIntersect, x, y, 0, 0); ok {
		return res
	}
	var items []link
	l, r := x, y
	for l > 1 && r > 1 {
		kl, kr := b.key(l), b.key(r)
		switch {
		case kl < kr:
			l = b.right(l)
		case kl > kr:
			r = b.right(r)
		default:
			items = b.appendlink(items, b.val(l), b.cpy(l), b.intersect(b.down(l), b.down(r)))
			l, r = b.right(l), b.right(r)
		}
	}
	res := b.build(items, Empty)
	return b.set(opIntersect, x, y, 0, 0, res)
}

// minus returns the vectors of x that are not in y.
func (b *tables) minus(x, y NodeID) NodeID {
	if x == y || x == Empty {
		return Empty
	}
	if y == Empty {
		return x
	}
	if x == Epsilon || y == Epsilon {
		b.fatalf(ErrMissingCase, "minus(%d, %d)", x, y)
	}
	if res, ok := b.match(opMinus, x, y, 0, 0); ok {
		return res
	}
	var items []link
	l, r := x, y
	for l > 1 && r > 1 {
		kl, kr := b.key(l), b.key(r)
		switch {
		case kl < kr:
			items = b.appendlink(items, b.val(l), b.cpy(l), b.down(l))
			l = b.right(l)
		case kl > kr:
			r = b.right(r)
		default:
			items = b.appendlink(items, b.val(l), b.cpy(l), b.minus(b.down(l), b.down(r)))
			l, r = b.right(l), b.right(r)
		}
	}
	res := b.build(items, l)
	return b.set(opMinus, x, y, 0, 0, res)
}

// ************************************************************

// member tests whether vec is in n. The length of vec must match the length of
// the vectors in n.
func (b *tables) member(n NodeID, vec []uint32) bool {
	for _, v := range vec {
		for n > 1 && b.val(n) < v {
			n = b.right(n)
		}
		if n < 2 || b.val(n) != v {
			return false
		}
		n = b.down(n)
	}
	return n == Epsilon
}

// put returns the union of n with the singleton vec. Slice cpy gives the copy
// mode of each entry, or is nil for sets. The result is n when vec was
// already in n.
func (b *tables) put(n NodeID, vec []uint32, cpy []copyMode) NodeID {
	if len(vec) == 0 {
		if n > 1 {
			b.fatalf(ErrNonUniform, "put: vector too short")
		}
		return Epsilon
	}
	if n == Epsilon {
		b.fatalf(ErrNonUniform, "put: vector too long")
	}
	cp, rest := copyDontCare, []copyMode(nil)
	if cpy != nil {
		cp, rest = cpy[0], cpy[1:]
	}
	k := mkkey(vec[0], cp)
	var items []link
	m := n
	for m > 1 && b.key(m) < k {
		items = b.appendlink(items, b.val(m), b.cpy(m), b.down(m))
		m = b.right(m)
	}
	var head NodeID
	if m > 1 && b.key(m) == k {
		down := b.put(b.down(m), vec[1:], rest)
		if down == b.down(m) {
			b.popref(len(items))
			return n
		}
		b.pushref(down)
		head = b.makenode(vec[0], cp, down, b.right(m))
		b.popref(1)
	} else {
		down := b.put(Empty, vec[1:], rest)
		b.pushref(down)
		head = b.makenode(vec[0], cp, down, m)
		b.popref(1)
	}
	return b.build(items, head)
}

// enum calls f on every vector of n. Slice vec is used as a buffer, its length
// is the length of the vectors.
func (b *tables) enum(n NodeID, vec []int, idx int, f func([]int) error) error {
	if n == Empty {
		return nil
	}
	if idx == len(vec) {
		if n != Epsilon {
			b.fatalf(ErrNonUniform, "enum: vector too short")
		}
		return f(vec)
	}
	if n == Epsilon {
		b.fatalf(ErrNonUniform, "enum: vector too long")
	}
	for ; n > 1; n = b.right(n) {
		vec[idx] = int(b.val(n))
		if err := b.enum(b.down(n), vec, idx+1, f); err != nil {
			return err
		}
	}
	return nil
}

// ************************************************************

// count returns the number of vectors in n as a float.
func (b *tables) count(n NodeID) float64 {
	if n < 2 {
		return float64(n)
	}
	res := 0.0
	var chain []NodeID
	for m := n; m > 1; m = b.right(m) {
		if c, ok := b.matchcount(m); ok {
			res = c
			break
		}
		chain = append(chain, m)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		res += b.count(b.down(chain[i]))
		b.setcount(chain[i], res)
	}
	return res
}

// countexact is the arbitrary precision version of count. We use a map for
// the memoization since the operation cache only stores floats.
func (b *tables) countexact(n NodeID, memo map[NodeID]*big.Int) *big.Int {
	if n < 2 {
		return big.NewInt(int64(n))
	}
	if res, ok := memo[n]; ok {
		return res
	}
	res := new(big.Int)
	var chain []NodeID
	for m := n; m > 1; m = b.right(m) {
		if c, ok := memo[m]; ok {
			res.Set(c)
			break
		}
		chain = append(chain, m)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		res = new(big.Int).Add(res, b.countexact(b.down(chain[i]), memo))
		memo[chain[i]] = res
	}
	return res
}

// nodecount returns the number of nodes in n, including the two terminals.
func (b *tables) nodecount(n NodeID) int {
	used := b.used
	b.used = 0
	b.markrec(n)
	res := b.used
	b.unmarkrec(n)
	b.used = used
	return res + 2
}

func (b *tables) unmarkrec(n NodeID) {
	for n > 1 && b.nodes[n].state == nodeMarked {
		b.nodes[n].state = nodeLive
		b.unmarkrec(b.nodes[n].down)
		n = b.nodes[n].right
	}
}

// ************************************************************

// project returns the projection of n on the positions in proj; the first
// level of n is at position idx. Identifier pid is the chain representing
// proj and is used as a key in the cache.
func (b *tables) project(pid, n NodeID, idx int, proj []int) NodeID {
	if n == Empty {
		return Empty
	}
	if len(proj) == 0 {
		return Epsilon
	}
	if n == Epsilon {
		b.fatalf(ErrNonUniform, "project: vector too short")
	}
	if res, ok := b.match(opProject, n, pid, 0, 0); ok {
		return res
	}
	var res NodeID
	if proj[0] == idx {
		var items []link
		for m := n; m > 1; m = b.right(m) {
			items = b.appendlink(items, b.val(m), copyDontCare, b.project(b.down(pid), b.down(m), idx+1, proj[1:]))
		}
		res = b.build(items, Empty)
	} else {
		slot := b.newacc(Empty)
		for m := n; m > 1; m = b.right(m) {
			b.accunion(slot, b.project(pid, b.down(m), idx+1, proj))
		}
		res = b.accend(slot)
	}
	return b.set(opProject, n, pid, 0, 0, res)
}

// copymatch returns the vectors of n whose values at the positions in proj are
// the ones found along the single path of pattern.
func (b *tables) copymatch(pid, n, pattern NodeID, idx int, proj []int) NodeID {
	if n < 2 || len(proj) == 0 {
		return n
	}
	if res, ok := b.match(opCopyMatch, n, pattern, pid, 0); ok {
		return res
	}
	var res NodeID
	if proj[0] == idx {
		v := b.val(pattern)
		m := n
		for m > 1 && b.val(m) < v {
			m = b.right(m)
		}
		if m > 1 && b.val(m) == v {
			res = b.single(v, copyDontCare, b.copymatch(b.down(pid), b.down(m), b.down(pattern), idx+1, proj[1:]))
		}
	} else {
		var items []link
		for m := n; m > 1; m = b.right(m) {
			items = b.appendlink(items, b.val(m), copyDontCare, b.copymatch(pid, b.down(m), pattern, idx+1, proj))
		}
		res = b.build(items, Empty)
	}
	return b.set(opCopyMatch, n, pattern, pid, 0, res)
}

// values returns the chain of all the values found at depth level of n, each
// one followed by down. Results are memoized in memo and kept on the refstack
// by the caller.
func (b *tables) values(n NodeID, level int, down NodeID, memo map[NodeID]NodeID) NodeID {
	if n < 2 {
		return Empty
	}
	if res, ok := memo[n]; ok {
		return res
	}
	var res NodeID
	if level == 0 {
		var items []link
		for m := n; m > 1; m = b.right(m) {
			items = b.appendlink(items, b.val(m), copyDontCare, down)
		}
		res = b.build(items, Empty)
	} else {
		slot := b.newacc(Empty)
		for m := n; m > 1; m = b.right(m) {
			b.accunion(slot, b.values(b.down(m), level-1, down, memo))
		}
		res = b.accend(slot)
	}
	memo[n] = b.pushref(res)
	return res
}

// example returns the smallest vector in n, using the lexicographic order.
func (b *tables) example(n NodeID, vec []int) {
	for idx := range vec {
		vec[idx] = int(b.val(n))
		n = b.down(n)
	}
}

// random picks one vector of n, choosing uniformly among the siblings at each
// level.
func (b *tables) random(n NodeID, vec []int, rnd *rand.Rand) {
	for idx := range vec {
		k := 0
		for m := n; m > 1; m = b.right(m) {
			k++
		}
		for i := rnd.Intn(k); i > 0; i-- {
			n = b.right(n)
		}
		vec[idx] = int(b.val(n))
		n = b.down(n)
	}
}
