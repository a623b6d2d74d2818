// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package mdd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// stats returns information about the node table
func (b *tables) stats() string {
	res := fmt.Sprintf("Allocated:  %d\n", len(b.nodes))
	res += fmt.Sprintf("Produced:   %d\n", b.produced)
	r := (float64(b.freenum) / float64(len(b.nodes))) * 100
	res += fmt.Sprintf("Free:       %d  (%.3g %%)\n", b.freenum, r)
	res += fmt.Sprintf("Used:       %d  (%.3g %%)\n", len(b.nodes)-b.freenum, (100.0 - r))
	res += fmt.Sprintf("Cache:      %d", len(b.cache.table))
	return res
}

func (b *tables) gcstats() string {
	res := fmt.Sprintf("# of GC:    %d\n", len(b.history))
	res += fmt.Sprintf("# resizes:  %d", b.resizes)
	if len(b.history) > 0 {
		last := b.history[len(b.history)-1]
		res += fmt.Sprintf("\nLast GC:    %d live, %d free, %s", last.used, last.freenodes, last.elapsed)
	}
	return res
}

// Stats returns a textual description of the state of the tables.
func (d *Domain) Stats() string {
	res := "==============\n"
	res += d.stats() + "\n"
	res += "==============\n"
	res += d.gcstats() + "\n"
	res += "==============\n"
	res += d.cacheStat.String() + "\n"
	res += "=============="
	return res
}

// ******************************************************************************************************

// The binary format of a diagram is a sequence of big-endian integers. The
// header is a node count n: 0 for the empty set, 1 for the set holding only
// the empty vector and, otherwise, the number of nodes including the two
// terminals. It is followed by n-2 node records, in an order where children
// come before their parents, with ids starting at 2. The root is the last
// node. A record is the id (u64), the value (u32), the copy mode (u32), then
// the ids of the down and right nodes (u64). All the paths of a diagram have
// the same length.

type noderecord struct {
	ID    uint64
	Val   uint32
	Copy  uint32
	Down  uint64
	Right uint64
}

func (b *tables) save(w io.Writer, n NodeID) error {
	if n < 2 {
		return binary.Write(w, binary.BigEndian, uint64(n))
	}
	ids := map[NodeID]uint64{Empty: 0, Epsilon: 1}
	var order []NodeID
	var visit func(n NodeID)
	visit = func(n NodeID) {
		var chain []NodeID
		for m := n; m > 1; m = b.right(m) {
			if _, ok := ids[m]; ok {
				break
			}
			chain = append(chain, m)
		}
		for _, m := range chain {
			visit(b.down(m))
		}
		for i := len(chain) - 1; i >= 0; i-- {
			ids[chain[i]] = uint64(len(order) + 2)
			order = append(order, chain[i])
		}
	}
	visit(n)
	if err := binary.Write(w, binary.BigEndian, uint64(len(order)+2)); err != nil {
		return err
	}
	for _, m := range order {
		rec := noderecord{
			ID:    ids[m],
			Val:   b.val(m),
			Copy:  uint32(b.cpy(m)),
			Down:  ids[b.down(m)],
			Right: ids[b.right(m)],
		}
		if err := binary.Write(w, binary.BigEndian, &rec); err != nil {
			return err
		}
	}
	return nil
}

func (b *tables) load(r io.Reader) (NodeID, error) {
	var count uint64
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return Empty, err
	}
	if count < 2 {
		return NodeID(count), nil
	}
	if count > uint64(fib(b.maxstep)) {
		return Empty, errors.Wrapf(ErrFormat, "%d nodes", count)
	}
	capacity := count
	if capacity > 1<<16 {
		capacity = 1 << 16
	}
	ids := make([]NodeID, 2, capacity)
	ids[0], ids[1] = Empty, Epsilon
	// length of the paths below each node
	depths := make([]int, 2, capacity)
	mark := len(b.loadroots)
	defer func() {
		b.loadroots = b.loadroots[:mark]
	}()
	for uint64(len(ids)) < count {
		var rec noderecord
		if err := binary.Read(r, binary.BigEndian, &rec); err != nil {
			return Empty, err
		}
		if rec.ID != uint64(len(ids)) || rec.Down == 0 || rec.Down >= rec.ID || rec.Right >= rec.ID || rec.Right == 1 || rec.Copy > uint32(copyDontCare) {
			return Empty, errors.Wrapf(ErrFormat, "bad node %d", len(ids))
		}
		depth := depths[rec.Down] + 1
		if rec.Right > 1 && depths[rec.Right] != depth {
			return Empty, errors.Wrapf(ErrFormat, "paths of different lengths in node %d", rec.ID)
		}
		down, right := ids[rec.Down], ids[rec.Right]
		if right > 1 && b.key(right) <= mkkey(rec.Val, copyMode(rec.Copy)) {
			return Empty, errors.Wrapf(ErrFormat, "bad order in node %d", rec.ID)
		}
		n := b.makenode(rec.Val, copyMode(rec.Copy), down, right)
		b.loadroots = append(b.loadroots, n)
		ids = append(ids, n)
		depths = append(depths, depth)
	}
	return ids[len(ids)-1], nil
}

// depth returns the length of the first path of n, which is the length of
// all the paths for a loaded diagram.
func (b *tables) depth(n NodeID) int {
	k := 0
	for ; n > 1; n = b.down(n) {
		k++
	}
	return k
}

func writeproj(w io.Writer, proj []int) error {
	if proj == nil {
		return binary.Write(w, binary.BigEndian, int32(-1))
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(proj))); err != nil {
		return err
	}
	for _, p := range proj {
		if err := binary.Write(w, binary.BigEndian, int32(p)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Domain) readproj(r io.Reader) ([]int, error) {
	var k int32
	if err := binary.Read(r, binary.BigEndian, &k); err != nil {
		return nil, err
	}
	if k == -1 {
		return nil, nil
	}
	if k < 0 || int(k) > d.size {
		return nil, errors.Wrapf(ErrFormat, "projection of length %d", k)
	}
	proj := make([]int, k)
	for i := range proj {
		var p int32
		if err := binary.Read(r, binary.BigEndian, &p); err != nil {
			return nil, err
		}
		if p < 0 || int(p) >= d.size || (i > 0 && int(p) <= proj[i-1]) {
			return nil, errors.Wrapf(ErrFormat, "bad projection")
		}
		proj[i] = int(p)
	}
	return proj, nil
}

// Save writes s to w using a binary format. The vectors can be read back,
// possibly in another Domain with the same size, with LoadSet.
func (s *Set) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeproj(bw, s.proj); err != nil {
		return errors.Wrap(err, "saving set")
	}
	if err := s.d.save(bw, s.root); err != nil {
		return errors.Wrap(err, "saving set")
	}
	return errors.Wrap(bw.Flush(), "saving set")
}

// LoadSet reads a set written with Save.
func (d *Domain) LoadSet(r io.Reader) (*Set, error) {
	br := bufio.NewReader(r)
	proj, err := d.readproj(br)
	if err != nil {
		return nil, errors.Wrap(err, "loading set")
	}
	var s *Set
	if proj == nil {
		s = d.NewSet()
	} else {
		s = d.NewProjectedSet(proj)
	}
	root, err := d.load(br)
	if err != nil {
		s.Destroy()
		return nil, errors.Wrap(err, "loading set")
	}
	if root != Empty && d.depth(root) != s.Len() {
		s.Destroy()
		return nil, errors.Wrapf(ErrFormat, "loading set: vectors of length %d", d.depth(root))
	}
	s.root = root
	return s, nil
}

// Save writes r, with its projections, to w using a binary format.
func (r *Relation) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeproj(bw, r.read); err != nil {
		return errors.Wrap(err, "saving relation")
	}
	if err := writeproj(bw, r.write); err != nil {
		return errors.Wrap(err, "saving relation")
	}
	if err := r.d.save(bw, r.root); err != nil {
		return errors.Wrap(err, "saving relation")
	}
	return errors.Wrap(bw.Flush(), "saving relation")
}

// LoadRelation reads a relation written with Save.
func (d *Domain) LoadRelation(r io.Reader) (*Relation, error) {
	br := bufio.NewReader(r)
	read, err := d.readproj(br)
	if err != nil {
		return nil, errors.Wrap(err, "loading relation")
	}
	write, err := d.readproj(br)
	if err != nil {
		return nil, errors.Wrap(err, "loading relation")
	}
	if read == nil || write == nil {
		return nil, errors.Wrap(ErrFormat, "loading relation")
	}
	rel := d.NewRelation(read, write)
	root, err := d.load(br)
	if err != nil {
		rel.Destroy()
		return nil, errors.Wrap(err, "loading relation")
	}
	if root != Empty && d.depth(root) != len(read)+len(write) {
		rel.Destroy()
		return nil, errors.Wrapf(ErrFormat, "loading relation: pairs of length %d", d.depth(root))
	}
	rel.root = root
	return rel, nil
}

// ******************************************************************************************************

// Dot writes a description of s in the DOT format of Graphviz. Each chain of
// siblings is drawn as a record, with one field per value.
func (s *Set) Dot(w io.Writer) error {
	return s.d.dot(w, s.root)
}

// Dot writes a description of r in the DOT format of Graphviz. Copy nodes are
// labelled with a 'c'.
func (r *Relation) Dot(w io.Writer) error {
	return r.d.dot(w, r.root)
}

func (b *tables) dot(w io.Writer, n NodeID) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintln(bw, "\tnode [shape=record];")
	fmt.Fprintln(bw, "\tn0 [shape=box, label=\"0\"];")
	fmt.Fprintln(bw, "\tn1 [shape=box, label=\"1\"];")
	if n > 1 {
		fmt.Fprintf(bw, "\troot [shape=plaintext, label=\"\"];\n\troot -> n%d;\n", n)
	}
	done := map[NodeID]bool{}
	var visit func(n NodeID)
	visit = func(n NodeID) {
		if n < 2 || done[n] {
			return
		}
		done[n] = true
		fmt.Fprintf(bw, "\tn%d [label=\"", n)
		for m := n; m > 1; m = b.right(m) {
			if m != n {
				fmt.Fprint(bw, "|")
			}
			if b.cpy(m) == copyCopy {
				fmt.Fprintf(bw, "<f%d> c", m)
			} else {
				fmt.Fprintf(bw, "<f%d> %d", m, b.val(m))
			}
		}
		fmt.Fprintln(bw, "\"];")
		for m := n; m > 1; m = b.right(m) {
			fmt.Fprintf(bw, "\tn%d:f%d -> n%d;\n", n, m, b.down(m))
			visit(b.down(m))
		}
	}
	visit(n)
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
