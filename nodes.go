// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// NodeID is the index of a node in the node table of a Domain. Ids are only
// meaningful for the domain that created them.
type NodeID uint32

const (
	// Empty is the terminal for the empty set.
	Empty NodeID = 0
	// Epsilon is the terminal for the set containing only the empty vector. It
	// marks the end of every accepted path.
	Epsilon NodeID = 1
)

// copyMode is only used in relations. A write node with copyCopy stands for
// "write the value read in the source", in which case val is 0.
type copyMode uint8

const (
	copyWrite copyMode = iota
	copyCopy
	copyDontCare
)

type nodeState uint8

const (
	nodeFree nodeState = iota
	nodeLive
	nodeMarked
)

type mddnode struct {
	val   uint32
	copy  copyMode
	state nodeState
	down  NodeID
	right NodeID
	next  NodeID // bucket chain when live, free list when free
}

// ************************************************************

// key gives the order of siblings in a chain: copy nodes come first, then
// nodes by increasing value.
func mkkey(val uint32, cp copyMode) uint64 {
	if cp == copyCopy {
		return uint64(val)
	}
	return 1<<32 | uint64(val)
}

func (b *tables) key(n NodeID) uint64 {
	return mkkey(b.nodes[n].val, b.nodes[n].copy)
}

func (b *tables) val(n NodeID) uint32 {
	return b.nodes[n].val
}

func (b *tables) down(n NodeID) NodeID {
	return b.nodes[n].down
}

func (b *tables) right(n NodeID) NodeID {
	return b.nodes[n].right
}

func (b *tables) cpy(n NodeID) copyMode {
	return b.nodes[n].copy
}

func (b *tables) ismarked(n NodeID) bool {
	return b.nodes[n].state == nodeMarked
}
