// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// milnerSystem is an example of using MDD for state space computation,
// adapted from the examples in the BuDDy distribution. It builds a system
// composed of N cyclers, with an initial node table of size fib(step). Each
// cycler i uses three positions: c at 3i, t at 3i+1 and h at 3i+2. For this
// system, we have an analytical formula for the size of the state space: N *
// 2^(N+1).
func milnerSystem(t testing.TB, step, N int) (*Domain, *Set, []*Relation) {
	d, err := New(3*N, Nodestep(step), Bits(repeat(1, 3*N)...))
	require.NoError(t, err)

	c := func(i int) int { return 3 * (i % N) }
	tt := func(i int) int { return 3*i + 1 }
	h := func(i int) int { return 3*i + 2 }

	// initial state: c[0] is set, all the other positions are 0
	init := d.NewSet()
	vec := make([]int, 3*N)
	vec[c(0)] = 1
	init.Add(vec)

	var rels []*Relation
	for i := 0; i < N; i++ {
		// P1: c[i] && !t[i] -> c[i] := 0, t[i] := 1, h[i] := 1
		p1 := d.NewRelation([]int{c(i), tt(i)}, []int{c(i), tt(i), h(i)})
		p1.Add([]int{1, 0}, []int{0, 1, 1})
		// P2: h[i] -> h[i] := 0, c[i+1] := 1
		var p2 *Relation
		if c(i+1) < h(i) {
			p2 = d.NewRelation([]int{h(i)}, []int{c(i + 1), h(i)})
			p2.Add([]int{1}, []int{1, 0})
		} else {
			p2 = d.NewRelation([]int{h(i)}, []int{h(i), c(i + 1)})
			p2.Add([]int{1}, []int{0, 1})
		}
		// E: t[i] -> t[i] := 0
		e := d.NewRelation([]int{tt(i)}, []int{tt(i)})
		e.Add([]int{1}, []int{0})
		rels = append(rels, p1, p2, e)
	}
	return d, init, rels
}

func repeat(v, n int) []int {
	res := make([]int, n)
	for k := range res {
		res[k] = v
	}
	return res
}

func milnerExpected(N int) *big.Int {
	expected := big.NewInt(int64(N))
	return expected.Lsh(expected, uint(N+1))
}

// bfs computes the reachable states using a breadth-first exploration, with
// one call to Next for each relation.
func bfs(d *Domain, init *Set, rels []*Relation) *Set {
	reached := d.NewSet()
	reached.Copy(init)
	frontier := d.NewSet()
	frontier.Copy(init)
	succ := d.NewSet()
	defer frontier.Destroy()
	defer succ.Destroy()
	for !frontier.IsEmpty() {
		next := d.NewSet()
		for _, r := range rels {
			succ.Next(frontier, r)
			next.Union(succ)
		}
		next.Minus(reached)
		reached.Union(next)
		frontier.Copy(next)
		next.Destroy()
	}
	return reached
}

func TestMilnerBFS(t *testing.T) {
	for _, N := range []int{2, 3, 4, 5} {
		// we choose a small size to stress test garbage collection
		d, init, rels := milnerSystem(t, 8, N)
		reached := bfs(d, init, rels)
		assert.Equal(t, 0, milnerExpected(N).Cmp(reached.CountExact()), "Milner(%d): expected %s, actual %s", N, milnerExpected(N), reached.CountExact())
		assert.NotEmpty(t, d.history, "Milner(%d): no garbage collection", N)
	}
}

func TestMilnerSaturation(t *testing.T) {
	for _, N := range []int{2, 3, 4, 5, 8, 12} {
		d, init, rels := milnerSystem(t, 8, N)
		reached := d.NewSet()
		reached.LeastFixpoint(init, rels...)
		assert.Equal(t, 0, milnerExpected(N).Cmp(reached.CountExact()), "Milner(%d): expected %s, actual %s", N, milnerExpected(N), reached.CountExact())
		if N <= 5 {
			assert.True(t, reached.Equal(bfs(d, init, rels)), "Milner(%d): saturation and BFS differ", N)
		}
	}
}

func TestMilnerLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	N := 40
	d, init, rels := milnerSystem(t, 12, N)
	reached := d.NewSet()
	reached.LeastFixpoint(init, rels...)
	assert.Equal(t, 0, milnerExpected(N).Cmp(reached.CountExact()))
	_, count := reached.Count()
	expected, _ := new(big.Float).SetInt(milnerExpected(N)).Float64()
	assert.InEpsilon(t, expected, count, 1e-9)
}

func BenchmarkMilnerSaturation(b *testing.B) {
	for n := 0; n < b.N; n++ {
		d, init, rels := milnerSystem(b, 20, 60)
		reached := d.NewSet()
		reached.LeastFixpoint(init, rels...)
	}
}
