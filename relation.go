// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// ExpandFunc is the type of the callbacks used to build a relation on the fly
// during a least fixpoint computation. The callback receives the projection,
// on the read positions of rel, of states that were just reached, and should
// add to rel the pairs starting from these states.
type ExpandFunc func(rel *Relation, states *Set)

// Relation is a mutable handle on a set of pairs of vectors. A relation
// reads the values of the source vector at its read positions and writes the
// values of the destination at its write positions; positions that are not
// written keep their value.
//
// The diagram of a relation interleaves, for each position in the union of
// the read and write positions, the value read followed by the value written.
// A write-only position may be marked as a copy, in which case the value is
// left unchanged.
type Relation struct {
	d      *Domain
	root   NodeID
	pid    NodeID
	read   []int
	write  []int
	expand ExpandFunc
}

// NewRelation returns an empty relation with the given read and write
// positions, both sorted in strictly increasing order.
func (d *Domain) NewRelation(read, write []int) *Relation {
	d.checkproj(read)
	d.checkproj(write)
	r := &Relation{
		d:     d,
		read:  append([]int{}, read...),
		write: append([]int{}, write...),
	}
	r.pid = d.relid(r.read, r.write)
	d.rels[r] = struct{}{}
	return r
}

// Destroy unregisters r from its domain.
func (r *Relation) Destroy() {
	delete(r.d.rels, r)
	r.root = Empty
	r.pid = Empty
}

// Read returns the read positions of r.
func (r *Relation) Read() []int {
	return append([]int{}, r.read...)
}

// Write returns the write positions of r.
func (r *Relation) Write() []int {
	return append([]int{}, r.write...)
}

// SetExpand sets the callback used to grow r during a least fixpoint.
func (r *Relation) SetExpand(f ExpandFunc) {
	r.expand = f
}

// IsEmpty returns true if r has no pairs.
func (r *Relation) IsEmpty() bool {
	return r.root == Empty
}

// Add inserts in r the pair made of the values src at the read positions and
// dst at the write positions.
func (r *Relation) Add(src, dst []int) {
	r.AddCopy(src, dst, nil)
}

// AddCopy is like Add, but the write positions for which cpy is true keep
// their value instead of taking the one in dst. Copy flags are only
// meaningful on positions that are written but not read, and ignored
// otherwise. Slice cpy can be nil.
func (r *Relation) AddCopy(src, dst []int, cpy []bool) {
	d := r.d
	d.checkf(len(src) == len(r.read), ErrNonUniform, "relation: %d values for %d read positions", len(src), len(r.read))
	d.checkf(len(dst) == len(r.write), ErrNonUniform, "relation: %d values for %d write positions", len(dst), len(r.write))
	d.checkf(cpy == nil || len(cpy) == len(r.write), ErrNonUniform, "relation: %d copy flags for %d write positions", len(cpy), len(r.write))
	vsrc := d.vector(src, r.read)
	vdst := d.vector(dst, r.write)
	vec := make([]uint32, 0, len(src)+len(dst))
	modes := make([]copyMode, 0, len(src)+len(dst))
	i, j := 0, 0
	for i < len(r.read) || j < len(r.write) {
		switch {
		case j == len(r.write) || (i < len(r.read) && r.read[i] < r.write[j]):
			vec = append(vec, vsrc[i])
			modes = append(modes, copyDontCare)
			i++
		case i < len(r.read) && r.read[i] == r.write[j]:
			vec = append(vec, vsrc[i], vdst[j])
			modes = append(modes, copyDontCare, copyDontCare)
			i++
			j++
		case cpy != nil && cpy[j]:
			vec = append(vec, 0)
			modes = append(modes, copyCopy)
			j++
		default:
			vec = append(vec, vdst[j])
			modes = append(modes, copyWrite)
			j++
		}
	}
	defer d.protect(r.root)()
	r.root = d.put(r.root, vec, modes)
}

// Count returns the number of nodes used by r, including the two terminals,
// and its number of pairs. A copy counts as a single value.
func (r *Relation) Count() (nodes int, elements float64) {
	return r.d.nodecount(r.root), r.d.count(r.root)
}

// ************************************************************

// Next sets s to the successors of the vectors of src by rel. Both sets must
// be defined over all positions.
func (s *Set) Next(src *Set, rel *Relation) {
	s.compatible(src)
	src.unprojected()
	s.d.checkf(rel.d == s.d, ErrProjection, "relation from a different domain")
	defer s.d.protect(src.root, rel.root)()
	s.root = s.d.next(rel.pid, src.root, rel.root, 0, rel.read, rel.write)
}

// Prev sets s to the predecessors of the vectors of src by rel that are in
// univ. All the sets must be defined over all positions.
func (s *Set) Prev(src *Set, rel *Relation, univ *Set) {
	s.compatible(src)
	s.compatible(univ)
	src.unprojected()
	s.d.checkf(rel.d == s.d, ErrProjection, "relation from a different domain")
	defer s.d.protect(src.root, rel.root, univ.root)()
	s.root = s.d.prev(rel.pid, src.root, rel.root, univ.root, 0, rel.read, rel.write)
}
