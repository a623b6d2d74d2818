// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"math/big"
	"math/rand"
)

// Set is a mutable handle on a set of vectors of a Domain. A set can be
// projected on a subset of the positions, in which case its vectors only have
// values for these positions. Operations such as Union store their result in
// the receiver.
//
// Sets are registered in their domain until a call to Destroy, and the
// vectors they hold are never reclaimed by the garbage collector.
type Set struct {
	d    *Domain
	root NodeID
	pid  NodeID
	proj []int // nil when the set is defined on all positions
}

// NewSet returns an empty set defined over all positions.
func (d *Domain) NewSet() *Set {
	s := &Set{d: d, pid: Epsilon}
	d.sets[s] = struct{}{}
	return s
}

// NewProjectedSet returns an empty set defined over the positions in proj,
// which must be sorted in strictly increasing order. The projection can be
// empty, in which case the set is either empty or contains the empty vector.
func (d *Domain) NewProjectedSet(proj []int) *Set {
	d.checkproj(proj)
	s := &Set{d: d, proj: append([]int{}, proj...)}
	s.pid = d.projid(s.proj)
	d.sets[s] = struct{}{}
	return s
}

// Destroy unregisters s from its domain. The set must not be used afterwards.
func (s *Set) Destroy() {
	delete(s.d.sets, s)
	s.root = Empty
	s.pid = Empty
}

// Domain returns the domain of s.
func (s *Set) Domain() *Domain {
	return s.d
}

// Projection returns the positions of s, or nil if s is defined over all
// positions.
func (s *Set) Projection() []int {
	if s.proj == nil {
		return nil
	}
	return append([]int{}, s.proj...)
}

// Len returns the length of the vectors in s.
func (s *Set) Len() int {
	if s.proj == nil {
		return s.d.size
	}
	return len(s.proj)
}

// positions returns the positions of s.
func (s *Set) positions() []int {
	if s.proj != nil {
		return s.proj
	}
	res := make([]int, s.d.size)
	for k := range res {
		res[k] = k
	}
	return res
}

// sameproj is true when s and t are defined on the same positions. Both the
// full domain and the empty projection use Epsilon as identifier.
func (s *Set) sameproj(t *Set) bool {
	return s.pid == t.pid && (s.proj == nil) == (t.proj == nil)
}

func (s *Set) compatible(t *Set) {
	s.d.checkf(s.d == t.d, ErrProjection, "sets from different domains")
	s.d.checkf(s.sameproj(t), ErrProjection, "sets with different projections")
}

func (s *Set) unprojected() {
	s.d.checkf(s.proj == nil, ErrProjection, "set must be defined over all positions")
}

// ************************************************************

// IsEmpty returns true if s has no vectors.
func (s *Set) IsEmpty() bool {
	return s.root == Empty
}

// Equal returns true if s and t hold the same vectors. This is a constant time
// operation.
func (s *Set) Equal(t *Set) bool {
	s.compatible(t)
	return s.root == t.root
}

// Clear removes all the vectors of s.
func (s *Set) Clear() {
	s.root = Empty
}

// Copy sets s to the value of src.
func (s *Set) Copy(src *Set) {
	s.compatible(src)
	s.root = src.root
}

// Add inserts vector vec in s and returns true if it was not already in s.
func (s *Set) Add(vec []int) bool {
	s.d.checkf(len(vec) == s.Len(), ErrNonUniform, "add: vector of length %d in set of length %d", len(vec), s.Len())
	v := s.d.vector(vec, s.proj)
	defer s.d.protect(s.root)()
	res := s.d.put(s.root, v, nil)
	isnew := res != s.root
	s.root = res
	return isnew
}

// Member returns true if vec is in s.
func (s *Set) Member(vec []int) bool {
	s.d.checkf(len(vec) == s.Len(), ErrNonUniform, "member: vector of length %d in set of length %d", len(vec), s.Len())
	v := s.d.vector(vec, s.proj)
	return s.d.member(s.root, v)
}

// Enumerate calls f on every vector of s, in lexicographic order, and stops on
// the first error returned by f. The slice given to f is reused between
// calls and must be copied if it needs to be retained.
func (s *Set) Enumerate(f func(vec []int) error) error {
	defer s.d.protect(s.root)()
	return s.d.enum(s.root, make([]int, s.Len()), 0, f)
}

// Count returns the number of nodes used by s, including the two terminals,
// and the number of vectors in s (as a float, which may be approximate for
// very large sets).
func (s *Set) Count() (nodes int, elements float64) {
	return s.d.nodecount(s.root), s.d.count(s.root)
}

// CountExact returns the number of vectors in s.
func (s *Set) CountExact() *big.Int {
	return s.d.countexact(s.root, make(map[NodeID]*big.Int))
}

// Union adds the vectors of src to s.
func (s *Set) Union(src *Set) {
	s.compatible(src)
	defer s.d.protect(s.root, src.root)()
	s.root = s.d.union(s.root, src.root)
}

// Intersect removes from s the vectors that are not in src.
func (s *Set) Intersect(src *Set) {
	s.compatible(src)
	defer s.d.protect(s.root, src.root)()
	s.root = s.d.intersect(s.root, src.root)
}

// Minus removes from s the vectors that are in src.
func (s *Set) Minus(src *Set) {
	s.compatible(src)
	defer s.d.protect(s.root, src.root)()
	s.root = s.d.minus(s.root, src.root)
}

// Project sets s to the projection of src on the positions of s. If both sets
// have the same projection, this is a copy. Otherwise src must be defined over
// all positions.
func (s *Set) Project(src *Set) {
	s.d.checkf(s.d == src.d, ErrProjection, "sets from different domains")
	if s.sameproj(src) {
		s.root = src.root
		return
	}
	src.unprojected()
	defer s.d.protect(src.root)()
	s.root = s.d.project(s.pid, src.root, 0, s.proj)
}

// Example returns the smallest vector of s in the lexicographic order, or nil
// if s is empty.
func (s *Set) Example() []int {
	if s.root == Empty {
		return nil
	}
	vec := make([]int, s.Len())
	s.d.example(s.root, vec)
	return vec
}

// Random returns a vector of s, chosen by picking uniformly a value at each
// position (so the distribution is not uniform over the vectors of s), or nil
// if s is empty.
func (s *Set) Random(rnd *rand.Rand) []int {
	if s.root == Empty {
		return nil
	}
	vec := make([]int, s.Len())
	s.d.random(s.root, vec, rnd)
	return vec
}

// CopyMatch sets s to the vectors of src whose values at positions proj are
// the ones in match. Both sets must be defined over all positions.
func (s *Set) CopyMatch(src *Set, proj []int, match []int) {
	s.compatible(src)
	src.unprojected()
	s.d.checkproj(proj)
	s.d.checkf(len(proj) == len(match), ErrNonUniform, "copymatch: %d positions for %d values", len(proj), len(match))
	v := s.d.vector(match, proj)
	defer s.d.protect(src.root)()
	pattern := s.d.pushref(s.d.put(Empty, v, nil))
	pid := s.d.pushref(s.d.projid(proj))
	s.root = s.d.copymatch(pid, src.root, pattern, 0, proj)
}

// EnumMatch calls f on the vectors of s whose values at positions proj are the
// ones in match.
func (s *Set) EnumMatch(proj []int, match []int, f func(vec []int) error) error {
	tmp := s.d.NewSet()
	defer tmp.Destroy()
	tmp.CopyMatch(s, proj, match)
	return tmp.Enumerate(f)
}

// Universe sets s to the cartesian product, over the positions of s, of the
// values found at each position in src. Set src must be defined over all
// positions. The result is a superset of the projection of src.
func (s *Set) Universe(src *Set) {
	s.d.checkf(s.d == src.d, ErrProjection, "sets from different domains")
	src.unprojected()
	defer s.d.protect(src.root)()
	if src.root == Empty {
		s.root = Empty
		return
	}
	pos := s.positions()
	res := s.d.pushref(Epsilon)
	top := len(s.d.refstack) - 1
	for i := len(pos) - 1; i >= 0; i-- {
		res = s.d.values(src.root, pos[i], res, make(map[NodeID]NodeID))
		s.d.refstack[top] = res
	}
	s.root = res
}
