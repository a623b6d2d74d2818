// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"fmt"
)

// Domain is the context shared by sets and relations over vectors of a given
// length. It owns the node table and the operation cache. A Domain, and the
// sets and relations created from it, must not be used concurrently.
type Domain struct {
	tables
	size int
	bits []int
}

// New returns a new Domain for vectors of length size. The options are
// functions, such as Nodestep or Logger, used to configure the tables.
//
//   d, err := mdd.New(3, mdd.Nodestep(12), mdd.Bits(4, 4, 4))
func New(size int, options ...func(*configs)) (*Domain, error) {
	c := makeconfigs(size)
	for _, f := range options {
		f(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	d := &Domain{size: size, bits: c.bits}
	d.tablesinit(c)
	d.log.Debug("mdd: new domain",
		"size", size,
		"nodes", len(d.nodes),
		"unique", len(d.unique),
		"cache", len(d.cache.table))
	return d, nil
}

// Size returns the length of the vectors in the domain.
func (d *Domain) Size() int {
	return d.size
}

// GC forces a garbage collection. Nodes that are not reachable from a live
// Set or Relation are reclaimed. Tables may grow if they are too full.
func (d *Domain) GC() {
	d.gbc(Empty, Empty)
}

// CacheOp identifies a user operation memoized in the operation cache, see
// Set.Fold.
type CacheOp uint32

// NewCacheOp returns a fresh operation identifier.
func (d *Domain) NewCacheOp() CacheOp {
	op := d.nextop
	d.nextop++
	return CacheOp(op)
}

// ClearCache removes all the cached results of operation op.
func (d *Domain) ClearCache(op CacheOp) {
	d.cache.cacheclear(opcode(op))
}

// ************************************************************

// checkproj verifies that proj is a strictly increasing list of positions.
func (d *Domain) checkproj(proj []int) {
	for k, p := range proj {
		d.checkf(p >= 0 && p < d.size, ErrProjection, "position %d out of range", p)
		d.checkf(k == 0 || proj[k-1] < p, ErrProjection, "positions %v not sorted", proj)
	}
}

// vector converts vec, with values for positions pos (or all positions when
// pos is nil), checking the values against the bits of each position.
func (d *Domain) vector(vec []int, pos []int) []uint32 {
	res := make([]uint32, len(vec))
	for k, v := range vec {
		p := k
		if pos != nil {
			p = pos[k]
		}
		d.checkf(v >= 0 && uint64(v) <= 0xFFFFFFFF, ErrValue, "value %d at position %d", v, p)
		if d.bits != nil && d.bits[p] > 0 && d.bits[p] < _MAXBITS {
			d.checkf(v < 1<<uint(d.bits[p]), ErrValue, "value %d at position %d needs more than %d bits", v, p, d.bits[p])
		}
		res[k] = uint32(v)
	}
	return res
}

// projid returns the chain identifying a set projection: one node for each
// position, in order.
func (d *Domain) projid(proj []int) NodeID {
	pid := Epsilon
	for i := len(proj) - 1; i >= 0; i-- {
		pid = d.single(uint32(proj[i]), copyDontCare, pid)
	}
	return pid
}

// relid returns the chain identifying the projections of a relation. We have
// one node per read position and one per write position, ordered by
// positions, and with the read node first when a position is both read and
// written. The low bit of the value tells if it is a write.
func (d *Domain) relid(read, write []int) NodeID {
	pid := Epsilon
	i, j := len(read)-1, len(write)-1
	for i >= 0 || j >= 0 {
		if j >= 0 && (i < 0 || write[j] >= read[i]) {
			pid = d.single(uint32(write[j])<<1|1, copyDontCare, pid)
			j--
			continue
		}
		pid = d.single(uint32(read[i])<<1, copyDontCare, pid)
		i--
	}
	return pid
}

func (d *Domain) String() string {
	return fmt.Sprintf("mdd.Domain(size: %d, nodes: %d, free: %d)", d.size, len(d.nodes), d.freenum)
}
