// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package mdd defines concrete types for Multi-valued Decision Diagrams (MDD), a
data structure used to efficiently represent sets of integer vectors with a
fixed length, and binary relations over these vectors. It is meant to be used
for the symbolic computation of the state space of finite systems.

Basics

Vectors live in a Domain, created with New, that fixes their length. A domain
owns a table of nodes; each node holds a value, a "down" edge to the rest of
the vector when the current position has this value, and a "right" edge to the
next (larger) value possible at the same position. We use integers to
represent the address of nodes, with the convention that 0 is the empty set
and 1 is the set containing only the empty vector. Nodes are hash-consed, so
that two sets are equal if and only if they have the same root.

Clients manipulate sets of vectors using handles of type *Set, and relations
using handles of type *Relation. Handles are mutable: an operation such as
Union changes the root of its receiver. A set can be projected on a subset of
the positions. A relation has a list of read positions and a list of write
positions; positions that are not written keep their value.

	d, _ := mdd.New(2)
	s := d.NewSet()
	s.Add([]int{1, 2})
	s.Add([]int{1, 3})
	_, n := s.Count() // n == 2

Reachability

Methods Next and Prev compute the image and pre-image of a set by a relation.
Method LeastFixpoint computes the set of vectors reachable using a list of
relations with the saturation strategy: positions are saturated from the last
one to the first, so that deeper levels of the diagram are stable before the
relations that modify upper levels are applied. Relations can be built on the
fly, during saturation, using an expand callback (see SetExpand).

Automatic memory management

Unused nodes are reclaimed by a mark and sweep garbage collector that runs
when the node table is full. The roots of the collector are the sets and
relations that have not been destroyed, so handles must be released with
Destroy when they are no longer needed. The tables grow when too few nodes can
be reclaimed; their sizes follow the Fibonacci sequence (see Nodestep).

Errors

Invariant violations, such as adding a vector with the wrong length, and
running out of nodes are fatal: the library panics with an error wrapping one
of the sentinel errors of this package (for instance ErrNonUniform or
ErrTableFull). Input and output errors are returned to the caller.
*/
package mdd
