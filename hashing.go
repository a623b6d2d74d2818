// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// Hash functions. We use the 96 bits mix of Bob Jenkins, which is cheap and
// spreads well enough for tables whose size is not a power of two.

func mix(a, b, c uint32) uint32 {
	a -= b
	a -= c
	a ^= c >> 13
	b -= c
	b -= a
	b ^= a << 8
	c -= a
	c -= b
	c ^= b >> 13
	a -= b
	a -= c
	a ^= c >> 12
	b -= c
	b -= a
	b ^= a << 16
	c -= a
	c -= b
	c ^= b >> 5
	a -= b
	a -= c
	a ^= c >> 3
	b -= c
	b -= a
	b ^= a << 10
	c -= a
	c -= b
	c ^= b >> 15
	return c
}

// ************************************************************

// The hash function for nodes is #(val|copy, down, right).

func (b *tables) nodehash(val uint32, cp copyMode, down, right NodeID) int {
	return int(mix(val^uint32(cp)<<30, uint32(down), uint32(right)) % uint32(len(b.unique)))
}

func (b *tables) ptrhash(n NodeID) int {
	return b.nodehash(b.nodes[n].val, b.nodes[n].copy, b.nodes[n].down, b.nodes[n].right)
}

// ************************************************************

// The hash function for the operation cache is #(op, a, #(b, c, d)).

func cachehash(op opcode, a, b, c, d NodeID, size int) int {
	return int(mix(uint32(op), uint32(a), mix(uint32(b), uint32(c), uint32(d))) % uint32(size))
}

func (b *tables) match(op opcode, x, y, z, w NodeID) (NodeID, bool) {
	entry := &b.cache.table[cachehash(op, x, y, z, w, len(b.cache.table))]
	if entry.op == op && entry.a == x && entry.b == y && entry.c == z && entry.d == w {
		b.cacheStat.opHit++
		return entry.res, true
	}
	b.cacheStat.opMiss++
	return 0, false
}

// set stores a result in the cache and returns it, so that calls can be
// chained. The slot is computed again since a collection may have resized the
// cache during the computation of res.
func (b *tables) set(op opcode, x, y, z, w, res NodeID) NodeID {
	b.cache.table[cachehash(op, x, y, z, w, len(b.cache.table))] = cacheData{
		op:  op,
		a:   x,
		b:   y,
		c:   z,
		d:   w,
		res: res,
	}
	return res
}

// The count cache stores a float result keyed on a single node.

func (b *tables) matchcount(n NodeID) (float64, bool) {
	entry := &b.cache.table[cachehash(opCount, n, 0, 0, 0, len(b.cache.table))]
	if entry.op == opCount && entry.a == n {
		b.cacheStat.opHit++
		return entry.count, true
	}
	b.cacheStat.opMiss++
	return 0, false
}

func (b *tables) setcount(n NodeID, count float64) float64 {
	b.cache.table[cachehash(opCount, n, 0, 0, 0, len(b.cache.table))] = cacheData{
		op:    opCount,
		a:     n,
		count: count,
	}
	return count
}

// The fold cache stores an opaque value keyed on a single node and a user op.

func (b *tables) matchany(op opcode, n NodeID) (interface{}, bool) {
	entry := &b.cache.table[cachehash(op, n, 0, 0, 0, len(b.cache.table))]
	if entry.op == op && entry.a == n {
		b.cacheStat.opHit++
		return entry.payload, true
	}
	b.cacheStat.opMiss++
	return nil, false
}

func (b *tables) setany(op opcode, n NodeID, v interface{}) interface{} {
	b.cache.table[cachehash(op, n, 0, 0, 0, len(b.cache.table))] = cacheData{
		op:      op,
		a:       n,
		payload: v,
	}
	return v
}
