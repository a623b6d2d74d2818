// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"log/slog"
)

// tables holds the state of the engine for one Domain: the node table, the
// unique table, the operation cache and the roots used by the collector.
type tables struct {
	nodes     []mddnode // node table; len(nodes) is always fib(nodestep)
	unique    []NodeID  // heads of the unique table buckets
	freepos   NodeID    // first free node, or 0 if the free list is empty
	freenum   int       // number of free nodes
	produced  int       // total number of nodes ever created
	nodestep  int       // current step in the Fibonacci sequence
	cachestep int       // offset between node table and cache steps
	maxstep   int       // largest step for the node table
	maxstack  int       // largest height for the refstack
	refstack  []NodeID  // transient roots
	loadroots []NodeID  // roots of a diagram being loaded
	sets      map[*Set]struct{}
	rels      map[*Relation]struct{}
	cache     cache
	nextop    opcode // next opcode returned by NewCacheOp
	log       *slog.Logger
	cacheStat
	gcstat
}

func (b *tables) tablesinit(c *configs) {
	b.nodestep = c.nodestep
	b.cachestep = c.cachestep
	b.maxstep = c.maxstep
	b.maxstack = c.maxstack
	b.log = c.logger
	b.nextop = opFold
	size := fib(b.nodestep)
	b.nodes = make([]mddnode, size)
	b.nodes[0].state = nodeLive
	b.nodes[1].state = nodeLive
	b.unique = make([]NodeID, fib(b.nodestep+1))
	for k := size - 1; k > 1; k-- {
		b.nodes[k].next = b.freepos
		b.freepos = NodeID(k)
	}
	b.freenum = size - 2
	b.cache.cacheinit(fib(b.nodestep + b.cachestep))
	b.refstack = make([]NodeID, 0, min(fib(c.stackstep), c.maxstack))
	b.sets = make(map[*Set]struct{})
	b.rels = make(map[*Relation]struct{})
}

// makenode returns the unique node with the given attributes. It may trigger
// a collection, so the caller must make sure that down and right, and every
// other transient result it still needs, are protected.
func (b *tables) makenode(val uint32, cp copyMode, down, right NodeID) NodeID {
	// reduction rule: a value leading to the empty set is pruned
	if down == Empty {
		return right
	}
	if right == Epsilon || (right > 1 && b.key(right) <= mkkey(val, cp)) {
		b.fatalf(ErrOrder, "makenode(%d, %d, %d)", val, down, right)
	}
	b.uniqueAccess++
	hash := b.nodehash(val, cp, down, right)
	for res := b.unique[hash]; res != 0; res = b.nodes[res].next {
		n := &b.nodes[res]
		if n.val == val && n.copy == cp && n.down == down && n.right == right {
			b.uniqueHit++
			return res
		}
		b.uniqueChain++
	}
	b.uniqueMiss++
	if b.freepos == 0 {
		b.gbc(down, right)
		if b.freepos == 0 {
			b.fatalf(ErrTableFull, "%d nodes", len(b.nodes))
		}
		// the unique table may have been resized
		hash = b.nodehash(val, cp, down, right)
	}
	res := b.freepos
	b.freepos = b.nodes[res].next
	b.freenum--
	b.produced++
	b.nodes[res] = mddnode{
		val:   val,
		copy:  cp,
		state: nodeLive,
		down:  down,
		right: right,
		next:  b.unique[hash],
	}
	b.unique[hash] = res
	return res
}

// ************************************************************

// link is one sibling of a chain under construction.
type link struct {
	val  uint32
	copy copyMode
	down NodeID
}

// appendlink adds a sibling to items, unless down is empty. The down node is
// pushed on the refstack and stays there until the chain is built.
func (b *tables) appendlink(items []link, val uint32, cp copyMode, down NodeID) []link {
	if down == Empty {
		return items
	}
	b.pushref(down)
	return append(items, link{val: val, copy: cp, down: down})
}

// build returns the chain made of items followed by tail. Items must be sorted
// by increasing key and their down nodes must be the last entries on the
// refstack (see appendlink); they are popped on return.
func (b *tables) build(items []link, tail NodeID) NodeID {
	res := b.pushref(tail)
	top := len(b.refstack) - 1
	for i := len(items) - 1; i >= 0; i-- {
		res = b.makenode(items[i].val, items[i].copy, items[i].down, res)
		b.refstack[top] = res
	}
	b.popref(len(items) + 1)
	return res
}

// single returns the chain with one sibling.
func (b *tables) single(val uint32, cp copyMode, down NodeID) NodeID {
	b.pushref(down)
	res := b.makenode(val, cp, down, Empty)
	b.popref(1)
	return res
}

// ************************************************************

// An accumulator is a slot on the refstack holding the union of the chains
// added so far.

func (b *tables) newacc(init NodeID) int {
	b.pushref(init)
	return len(b.refstack) - 1
}

func (b *tables) accunion(slot int, n NodeID) {
	b.pushref(n)
	res := b.union(b.refstack[slot], n)
	b.refstack[slot] = res
	b.popref(1)
}

func (b *tables) accadd(slot int, val uint32, down NodeID) {
	if down == Empty {
		return
	}
	b.accunion(slot, b.single(val, copyDontCare, down))
}

func (b *tables) accget(slot int) NodeID {
	return b.refstack[slot]
}

// accend pops the accumulator, that must be the top of the refstack, and
// returns its value.
func (b *tables) accend(slot int) NodeID {
	res := b.refstack[slot]
	b.popref(len(b.refstack) - slot)
	return res
}
