// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeastFixpointCounter(t *testing.T) {
	d := newDomain(t, 1)
	inc := d.NewRelation([]int{0}, []int{0})
	for x := 0; x < 3; x++ {
		inc.Add([]int{x}, []int{x + 1})
	}
	init := fromvecs(d, [][]int{{0}})
	reached := d.NewSet()
	reached.LeastFixpoint(init, inc)
	assert.Equal(t, [][]int{{0}, {1}, {2}, {3}}, elements(t, reached))

	// the result is a fixpoint
	succ := d.NewSet()
	succ.Next(reached, inc)
	succ.Union(reached)
	assert.True(t, succ.Equal(reached))

	// saturation from a fixpoint does not change anything
	again := d.NewSet()
	again.LeastFixpoint(reached, inc)
	assert.True(t, again.Equal(reached))

	// from an empty set or without relations
	again.LeastFixpoint(d.NewSet(), inc)
	assert.True(t, again.IsEmpty())
	again.LeastFixpoint(init)
	assert.True(t, again.Equal(init))
}

func TestLeastFixpointRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	const size, max = 4, 3
	for i := 0; i < 25; i++ {
		d := newDomain(t, size, Nodestep(8))
		var rels []*Relation
		for k := 0; k < 1+rnd.Intn(5); k++ {
			read, write := randpos(rnd, size), randpos(rnd, size)
			if len(read) == 0 && len(write) == 0 {
				continue
			}
			rel := d.NewRelation(read, write)
			for j := 0; j < 1+rnd.Intn(4); j++ {
				cpy := make([]bool, len(write))
				for c := range cpy {
					cpy[c] = rnd.Intn(4) == 0
				}
				rel.AddCopy(randvecs(rnd, 1, len(read), max)[0], randvecs(rnd, 1, len(write), max)[0], cpy)
			}
			rels = append(rels, rel)
		}
		init := fromvecs(d, randvecs(rnd, 3, size, max))
		reached := d.NewSet()
		reached.LeastFixpoint(init, rels...)
		expected := bfs(d, init, rels)
		require.True(t, reached.Equal(expected), "run %d: expected %v, actual %v", i, elements(t, expected), elements(t, reached))
	}
}

func TestLeastFixpointExpand(t *testing.T) {
	d := newDomain(t, 2, Nodestep(7))
	// (x, y) -> ((x + 1) % 3, (x + y) % 5), built on the fly
	step := func(x, y int) (int, int) { return (x + 1) % 3, (x + y) % 5 }
	rel := d.NewRelation([]int{0, 1}, []int{0, 1})
	calls := 0
	rel.SetExpand(func(r *Relation, states *Set) {
		calls++
		assert.Equal(t, []int{0, 1}, states.Projection())
		_ = states.Enumerate(func(vec []int) error {
			nx, ny := step(vec[0], vec[1])
			r.Add(vec, []int{nx, ny})
			return nil
		})
	})
	init := fromvecs(d, [][]int{{0, 0}})
	reached := d.NewSet()
	reached.LeastFixpoint(init, rel)
	assert.Greater(t, calls, 0)

	// the same relation built explicitly
	full := d.NewRelation([]int{0, 1}, []int{0, 1})
	for x := 0; x < 3; x++ {
		for y := 0; y < 5; y++ {
			nx, ny := step(x, y)
			full.Add([]int{x, y}, []int{nx, ny})
		}
	}
	expected := bfs(d, init, []*Relation{full})
	assert.True(t, reached.Equal(expected), "expected %v, actual %v", elements(t, expected), elements(t, reached))
	assert.False(t, rel.IsEmpty())
}

func TestLeastFixpointExpandDeep(t *testing.T) {
	d := newDomain(t, 3, Nodestep(8))
	// (y, z) -> ((y + 1) % 3, (y + z) % 4), built on the fly below position 0
	step := func(y, z int) (int, int) { return (y + 1) % 3, (y + z) % 4 }
	mv := d.NewRelation([]int{1, 2}, []int{1, 2})
	mv.SetExpand(func(r *Relation, states *Set) {
		assert.Equal(t, []int{1, 2}, states.Projection())
		_ = states.Enumerate(func(vec []int) error {
			ny, nz := step(vec[0], vec[1])
			r.Add(vec, []int{ny, nz})
			return nil
		})
	})
	inc := d.NewRelation([]int{0, 1}, []int{0, 1})
	for x := 0; x < 2; x++ {
		for y := 0; y < 3; y++ {
			inc.Add([]int{x, y}, []int{x + 1, 0})
		}
	}
	init := fromvecs(d, [][]int{{0, 1, 0}})
	reached := d.NewSet()
	reached.LeastFixpoint(init, inc, mv)

	full := d.NewRelation([]int{1, 2}, []int{1, 2})
	for y := 0; y < 3; y++ {
		for z := 0; z < 4; z++ {
			ny, nz := step(y, z)
			full.Add([]int{y, z}, []int{ny, nz})
		}
	}
	expected := bfs(d, init, []*Relation{inc, full})
	assert.True(t, reached.Equal(expected), "expected %v, actual %v", elements(t, expected), elements(t, reached))
}

func TestLeastFixpointExpandReadless(t *testing.T) {
	d := newDomain(t, 2)
	inc := d.NewRelation([]int{0}, []int{0})
	for x := 0; x < 3; x++ {
		inc.Add([]int{x}, []int{x + 1})
	}
	reset := d.NewRelation(nil, []int{1})
	reset.SetExpand(func(r *Relation, states *Set) {
		assert.Equal(t, 0, states.Len())
		assert.False(t, states.IsEmpty())
		r.Add([]int{}, []int{4})
	})
	// a relation without positions is only expanded on the final result
	ticks := 0
	tick := d.NewRelation(nil, nil)
	tick.SetExpand(func(r *Relation, states *Set) {
		ticks++
		assert.Equal(t, 0, states.Len())
		assert.False(t, states.IsEmpty())
	})
	init := fromvecs(d, [][]int{{0, 0}})
	reached := d.NewSet()
	reached.LeastFixpoint(init, inc, reset, tick)
	assert.Equal(t, 1, ticks)
	assert.False(t, reset.IsEmpty())

	explicit := d.NewRelation(nil, []int{1})
	explicit.Add([]int{}, []int{4})
	expected := bfs(d, init, []*Relation{inc, explicit})
	assert.Equal(t, 8, len(elements(t, expected)))
	assert.True(t, reached.Equal(expected), "expected %v, actual %v", elements(t, expected), elements(t, reached))
}

func TestLeastFixpointTwice(t *testing.T) {
	d := newDomain(t, 1)
	init := fromvecs(d, [][]int{{0}})
	grown := d.NewRelation([]int{0}, []int{0})
	grown.SetExpand(func(r *Relation, states *Set) {
		_ = states.Enumerate(func(vec []int) error {
			if vec[0] < 3 {
				r.Add(vec, []int{vec[0] + 1})
			}
			return nil
		})
	})
	reached := d.NewSet()
	reached.LeastFixpoint(init, grown)
	assert.Equal(t, [][]int{{0}, {1}, {2}, {3}}, elements(t, reached))

	// same positions and same diagram as grown before the first call
	empty := d.NewRelation([]int{0}, []int{0})
	reached.LeastFixpoint(init, empty)
	assert.Equal(t, [][]int{{0}}, elements(t, reached))

	reached.LeastFixpoint(init, grown)
	assert.Equal(t, [][]int{{0}, {1}, {2}, {3}}, elements(t, reached))
}

func TestLeastFixpointErrors(t *testing.T) {
	d := newDomain(t, 2)
	other := newDomain(t, 2)
	rel := other.NewRelation([]int{0}, []int{0})
	s := d.NewSet()
	assert.ErrorIs(t, fatal(func() { s.LeastFixpoint(d.NewSet(), rel) }), ErrProjection)
	p := d.NewProjectedSet([]int{0})
	assert.ErrorIs(t, fatal(func() { p.LeastFixpoint(d.NewProjectedSet([]int{0})) }), ErrProjection)
}
