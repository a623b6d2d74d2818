// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"time"
)

// gcstat stores status information about garbage collections. We use a stack
// (slice) of objects to record the sequence of GC during a computation.
type gcstat struct {
	used    int       // number of nodes marked during the last collection
	resizes int       // number of times the node table was resized
	history []gcpoint // Snaphot of GC stats at each occurrence
}

type gcpoint struct {
	nodes     int           // Total number of allocated nodes in the nodetable
	freenodes int           // Number of free nodes after the collection
	used      int           // Number of live nodes found by the marking phase
	cached    int           // Number of cache entries that survived
	resized   bool          // Whether the tables were resized
	elapsed   time.Duration // Duration of the collection
}

// *************************************************************************

// gbc is the garbage collector called for reclaiming memory, inside a call to
// makenode, when there are no free positions available. Nodes a and b are
// marked together with the registered sets and relations and the refstack.
// Live nodes never move: when the tables grow, the node table is extended and
// survivors are rehashed in a new unique table.
func (b *tables) gbc(x, y NodeID) {
	start := time.Now()
	b.log.Debug("mdd: starting GC", "nodes", len(b.nodes), "free", b.freenum)

	b.used = 0
	b.markrec(x)
	b.markrec(y)
	for s := range b.sets {
		b.markrec(s.root)
		b.markrec(s.pid)
	}
	for r := range b.rels {
		b.markrec(r.root)
		b.markrec(r.pid)
	}
	for _, n := range b.refstack {
		b.markrec(n)
	}
	for _, n := range b.loadroots {
		b.markrec(n)
	}

	resize := b.used > fib(b.nodestep-1) && b.nodestep < b.maxstep
	if resize {
		b.nodestep++
		b.resizes++
	}
	cached := b.cachegc(fib(b.nodestep + b.cachestep))
	if resize {
		b.nodes = append(b.nodes, make([]mddnode, fib(b.nodestep)-len(b.nodes))...)
		b.unique = make([]NodeID, fib(b.nodestep+1))
	} else {
		for k := range b.unique {
			b.unique[k] = 0
		}
	}

	// we do a pass through the nodes list to update the hash chains and void
	// the unmarked nodes. After finishing this pass, b.freepos points to the
	// first free position in b.nodes, or it is 0 if we found none.
	b.freepos = 0
	b.freenum = 0
	for n := NodeID(len(b.nodes) - 1); n > 1; n-- {
		if b.nodes[n].state == nodeMarked {
			b.nodes[n].state = nodeLive
			hash := b.ptrhash(n)
			b.nodes[n].next = b.unique[hash]
			b.unique[hash] = n
			continue
		}
		b.nodes[n] = mddnode{next: b.freepos}
		b.freepos = n
		b.freenum++
	}

	point := gcpoint{
		nodes:     len(b.nodes),
		freenodes: b.freenum,
		used:      b.used,
		cached:    cached,
		resized:   resize,
		elapsed:   time.Since(start),
	}
	b.history = append(b.history, point)
	if resize {
		b.log.Debug("mdd: resized tables",
			"nodes", point.nodes,
			"unique", len(b.unique),
			"cache", len(b.cache.table))
	}
	b.log.Debug("mdd: end GC",
		"used", point.used,
		"free", point.freenodes,
		"cached", point.cached,
		"elapsed", point.elapsed)
}

// *************************************************************************

// markrec marks all the nodes reachable from n. We iterate along the sibling
// chain and only recurse on down edges, so the depth of the recursion is
// bounded by the length of the vectors.
func (b *tables) markrec(n NodeID) {
	for n > 1 && b.nodes[n].state == nodeLive {
		b.nodes[n].state = nodeMarked
		b.used++
		b.markrec(b.nodes[n].down)
		n = b.nodes[n].right
	}
}

// *************************************************************************
// private functions to manipulate the refstack; used to prevent nodes that are
// currently being built (e.g. transient nodes built during a union) to be
// reclaimed during GC.

func (b *tables) pushref(n NodeID) NodeID {
	if len(b.refstack) >= b.maxstack {
		b.fatalf(ErrStackOverflow, "%d entries", len(b.refstack))
	}
	b.refstack = append(b.refstack, n)
	return n
}

func (b *tables) popref(a int) {
	if a > len(b.refstack) {
		b.fatalf(ErrStackOverflow, "underflow, pop %d out of %d", a, len(b.refstack))
	}
	b.refstack = b.refstack[:len(b.refstack)-a]
}

// protect pushes ids on the refstack and returns a function that restores the
// stack to its previous height. It is used by the entry points of the API
// with a defer, so that the stack is also restored on a panic.
func (b *tables) protect(ids ...NodeID) func() {
	mark := len(b.refstack)
	for _, n := range ids {
		b.pushref(n)
	}
	return func() {
		b.refstack = b.refstack[:mark]
	}
}
