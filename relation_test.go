// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pair is an explicit transition of a relation, used to compute images by
// brute force.
type pair struct {
	src, dst []int
	cpy      []bool
}

// apply returns the successor of vec by p, or nil if p does not apply.
func (p pair) apply(vec, read, write []int) []int {
	for k, r := range read {
		if vec[r] != p.src[k] {
			return nil
		}
	}
	res := append([]int{}, vec...)
	for k, w := range write {
		if p.cpy != nil && p.cpy[k] && !contains(read, w) {
			continue
		}
		res[w] = p.dst[k]
	}
	return res
}

func contains(pos []int, p int) bool {
	k := sort.SearchInts(pos, p)
	return k < len(pos) && pos[k] == p
}

func bruteNext(vecs [][]int, pairs []pair, read, write []int) [][]int {
	res := [][]int{}
	for _, v := range vecs {
		for _, p := range pairs {
			if w := p.apply(v, read, write); w != nil {
				res = append(res, w)
			}
		}
	}
	return sorted(res)
}

func bruteprev(univ, vecs [][]int, pairs []pair, read, write []int) [][]int {
	target := map[string]bool{}
	for _, v := range vecs {
		target[fmt.Sprint(v)] = true
	}
	res := [][]int{}
	for _, u := range univ {
		for _, p := range pairs {
			if w := p.apply(u, read, write); w != nil && target[fmt.Sprint(w)] {
				res = append(res, u)
				break
			}
		}
	}
	return sorted(res)
}

// randpos returns a random sorted subset of [0..size).
func randpos(rnd *rand.Rand, size int) []int {
	res := []int{}
	for k := 0; k < size; k++ {
		if rnd.Intn(2) == 0 {
			res = append(res, k)
		}
	}
	return res
}

func TestNextScenario(t *testing.T) {
	d := newDomain(t, 2)
	rel := d.NewRelation([]int{0}, []int{1})
	rel.Add([]int{0}, []int{5})
	rel.Add([]int{1}, []int{6})
	_, count := rel.Count()
	assert.Equal(t, 2.0, count)
	s := fromvecs(d, [][]int{{0, 9}, {1, 9}})
	succ := d.NewSet()
	succ.Next(s, rel)
	assert.Equal(t, [][]int{{0, 5}, {1, 6}}, elements(t, succ))

	// the pre-image of the successors, in a universe with all values of s
	pred := d.NewSet()
	pred.Prev(succ, rel, s)
	assert.True(t, pred.Equal(s))
	univ := fromvecs(d, [][]int{{0, 9}, {0, 7}, {2, 9}})
	pred.Prev(succ, rel, univ)
	assert.Equal(t, [][]int{{0, 7}, {0, 9}}, elements(t, pred))

	// no successors for an empty relation or set
	empty := d.NewRelation([]int{0}, []int{1})
	succ.Next(s, empty)
	assert.True(t, succ.IsEmpty())
	succ.Next(d.NewSet(), rel)
	assert.True(t, succ.IsEmpty())
}

func TestNextCopy(t *testing.T) {
	d := newDomain(t, 3)
	// reads position 0, writes 0 and 2; position 2 either keeps its value or
	// takes value 4
	rel := d.NewRelation([]int{0}, []int{0, 2})
	rel.AddCopy([]int{1}, []int{2, 0}, []bool{false, true})
	rel.Add([]int{1}, []int{3, 4})
	s := fromvecs(d, [][]int{{1, 0, 7}, {1, 1, 8}, {2, 0, 7}})
	succ := d.NewSet()
	succ.Next(s, rel)
	assert.Equal(t, [][]int{{2, 0, 7}, {2, 1, 8}, {3, 0, 4}, {3, 1, 4}}, elements(t, succ))

	pred := d.NewSet()
	univ := d.NewSet()
	univ.Universe(s)
	pred.Prev(succ, rel, univ)
	assert.Equal(t, [][]int{{1, 0, 7}, {1, 0, 8}, {1, 1, 7}, {1, 1, 8}}, elements(t, pred))

	// a copy flag on a position that is read is ignored
	rw := d.NewRelation([]int{0}, []int{0})
	rw.AddCopy([]int{1}, []int{2}, []bool{true})
	succ.Next(s, rw)
	assert.Equal(t, [][]int{{2, 0, 7}, {2, 1, 8}}, elements(t, succ))
}

func TestRelationErrors(t *testing.T) {
	d := newDomain(t, 3)
	rel := d.NewRelation([]int{0}, []int{1, 2})
	assert.ErrorIs(t, fatal(func() { rel.Add([]int{0, 1}, []int{1, 2}) }), ErrNonUniform)
	assert.ErrorIs(t, fatal(func() { rel.Add([]int{0}, []int{1}) }), ErrNonUniform)
	assert.ErrorIs(t, fatal(func() { rel.AddCopy([]int{0}, []int{1, 2}, []bool{true}) }), ErrNonUniform)
	assert.ErrorIs(t, fatal(func() { d.NewRelation([]int{0, 0}, nil) }), ErrProjection)
	assert.ErrorIs(t, fatal(func() { d.NewRelation(nil, []int{3}) }), ErrProjection)
	p := d.NewProjectedSet([]int{0})
	q := d.NewProjectedSet([]int{0})
	assert.ErrorIs(t, fatal(func() { q.Next(p, rel) }), ErrProjection)
	assert.Equal(t, []int{0}, rel.Read())
	assert.Equal(t, []int{1, 2}, rel.Write())
}

func TestRelationalProduct(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	const size, max = 4, 3
	d := newDomain(t, size, Nodestep(8))
	for i := 0; i < 40; i++ {
		read, write := randpos(rnd, size), randpos(rnd, size)
		rel := d.NewRelation(read, write)
		var pairs []pair
		for k := 0; k < 1+rnd.Intn(6); k++ {
			p := pair{
				src: randvecs(rnd, 1, len(read), max)[0],
				dst: randvecs(rnd, 1, len(write), max)[0],
				cpy: make([]bool, len(write)),
			}
			for j := range p.cpy {
				p.cpy[j] = rnd.Intn(3) == 0
			}
			rel.AddCopy(p.src, p.dst, p.cpy)
			pairs = append(pairs, p)
		}
		vecs := randvecs(rnd, 25, size, max)
		s := fromvecs(d, vecs)
		succ := d.NewSet()
		succ.Next(s, rel)
		require.Equal(t, bruteNext(sorted(vecs), pairs, read, write), elements(t, succ), "next with read %v and write %v", read, write)

		univ := fromvecs(d, randvecs(rnd, 40, size, max))
		pred := d.NewSet()
		pred.Prev(s, rel, univ)
		require.Equal(t, bruteprev(elements(t, univ), sorted(vecs), pairs, read, write), elements(t, pred), "prev with read %v and write %v", read, write)

		rel.Destroy()
		s.Destroy()
		succ.Destroy()
		univ.Destroy()
		pred.Destroy()
		if i%10 == 0 {
			d.GC()
		}
	}
}
