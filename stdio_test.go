// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadSet(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	d := newDomain(t, 4, Nodestep(8))
	other := newDomain(t, 4)
	var setTests = []struct {
		name string
		set  *Set
	}{
		{"empty", d.NewSet()},
		{"single", fromvecs(d, [][]int{{1, 2, 3, 4}})},
		{"random", fromvecs(d, randvecs(rnd, 50, 4, 8))},
		{"projected", func() *Set {
			p := d.NewProjectedSet([]int{1, 3})
			p.Project(fromvecs(d, randvecs(rnd, 20, 4, 8)))
			return p
		}()},
		{"epsilon", func() *Set {
			p := d.NewProjectedSet([]int{})
			p.Add([]int{})
			return p
		}()},
	}
	for _, tt := range setTests {
		var buf bytes.Buffer
		require.NoError(t, tt.set.Save(&buf), tt.name)
		data := buf.Bytes()
		s, err := d.LoadSet(bytes.NewReader(data))
		require.NoError(t, err, tt.name)
		assert.True(t, s.Equal(tt.set), tt.name)
		// loading in another domain gives the same vectors
		s, err = other.LoadSet(bytes.NewReader(data))
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.set.Projection(), s.Projection(), tt.name)
		assert.Equal(t, elements(t, tt.set), elements(t, s), tt.name)
	}
	assert.Empty(t, d.loadroots)
}

func TestSaveLoadRelation(t *testing.T) {
	d := newDomain(t, 3)
	rel := d.NewRelation([]int{0}, []int{1, 2})
	rel.AddCopy([]int{1}, []int{2, 0}, []bool{false, true})
	rel.Add([]int{2}, []int{3, 4})
	var buf bytes.Buffer
	require.NoError(t, rel.Save(&buf))

	other := newDomain(t, 3)
	loaded, err := other.LoadRelation(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, loaded.Read())
	assert.Equal(t, []int{1, 2}, loaded.Write())
	s1 := fromvecs(d, [][]int{{1, 0, 7}, {2, 5, 5}})
	s2 := fromvecs(other, [][]int{{1, 0, 7}, {2, 5, 5}})
	succ1, succ2 := d.NewSet(), other.NewSet()
	succ1.Next(s1, rel)
	succ2.Next(s2, loaded)
	assert.Equal(t, [][]int{{1, 2, 7}, {2, 3, 4}}, elements(t, succ2))
	assert.Equal(t, elements(t, succ1), elements(t, succ2))
}

func TestLoadErrors(t *testing.T) {
	d := newDomain(t, 3)
	s := fromvecs(d, [][]int{{1, 2, 3}, {1, 4, 3}})
	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))
	data := buf.Bytes()

	// truncated input
	_, err := d.LoadSet(bytes.NewReader(data[:len(data)-3]))
	assert.Error(t, err)

	// vectors of the wrong length
	small := newDomain(t, 2)
	_, err = small.LoadSet(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrFormat)

	// bad projection
	bad := new(bytes.Buffer)
	require.NoError(t, binary.Write(bad, binary.BigEndian, []int32{2, 1, 0}))
	_, err = d.LoadSet(bad)
	assert.ErrorIs(t, err, ErrFormat)

	// a node referring to a node that comes after
	bad = new(bytes.Buffer)
	require.NoError(t, binary.Write(bad, binary.BigEndian, int32(-1)))
	require.NoError(t, binary.Write(bad, binary.BigEndian, uint64(3)))
	require.NoError(t, binary.Write(bad, binary.BigEndian, &noderecord{ID: 2, Val: 1, Down: 4}))
	_, err = d.LoadSet(bad)
	assert.ErrorIs(t, err, ErrFormat)

	// paths of different lengths below the root
	bad = new(bytes.Buffer)
	require.NoError(t, binary.Write(bad, binary.BigEndian, int32(-1)))
	require.NoError(t, binary.Write(bad, binary.BigEndian, uint64(5)))
	require.NoError(t, binary.Write(bad, binary.BigEndian, &noderecord{ID: 2, Val: 0, Down: 1}))
	require.NoError(t, binary.Write(bad, binary.BigEndian, &noderecord{ID: 3, Val: 1, Down: 1}))
	require.NoError(t, binary.Write(bad, binary.BigEndian, &noderecord{ID: 4, Val: 0, Down: 2, Right: 3}))
	_, err = small.LoadSet(bytes.NewReader(bad.Bytes()))
	assert.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, 0, small.Statistics().Sets)

	// a node without children
	bad = new(bytes.Buffer)
	require.NoError(t, binary.Write(bad, binary.BigEndian, int32(-1)))
	require.NoError(t, binary.Write(bad, binary.BigEndian, uint64(3)))
	require.NoError(t, binary.Write(bad, binary.BigEndian, &noderecord{ID: 2, Val: 1}))
	_, err = d.LoadSet(bad)
	assert.ErrorIs(t, err, ErrFormat)

	// a relation needs its projections
	bad = new(bytes.Buffer)
	require.NoError(t, binary.Write(bad, binary.BigEndian, []int32{-1, -1}))
	_, err = d.LoadRelation(bad)
	assert.ErrorIs(t, err, ErrFormat)

	assert.Equal(t, 1, d.Statistics().Sets)
	assert.Empty(t, d.loadroots)
}

func TestSaveFormat(t *testing.T) {
	d := newDomain(t, 1)
	s := fromvecs(d, [][]int{{5}})
	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))
	expected := new(bytes.Buffer)
	require.NoError(t, binary.Write(expected, binary.BigEndian, int32(-1)))
	require.NoError(t, binary.Write(expected, binary.BigEndian, uint64(3)))
	// id, value, copy mode, down and right
	require.NoError(t, binary.Write(expected, binary.BigEndian, uint64(2)))
	require.NoError(t, binary.Write(expected, binary.BigEndian, uint32(5)))
	require.NoError(t, binary.Write(expected, binary.BigEndian, uint32(copyDontCare)))
	require.NoError(t, binary.Write(expected, binary.BigEndian, uint64(1)))
	require.NoError(t, binary.Write(expected, binary.BigEndian, uint64(0)))
	assert.Equal(t, expected.Bytes(), buf.Bytes())
}

func TestDot(t *testing.T) {
	d := newDomain(t, 2)
	s := fromvecs(d, [][]int{{1, 2}, {1, 3}, {4, 3}})
	var buf bytes.Buffer
	require.NoError(t, s.Dot(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph G {"))
	assert.Contains(t, out, "-> n1")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))

	rel := d.NewRelation(nil, []int{1})
	rel.AddCopy(nil, []int{0}, []bool{true})
	buf.Reset()
	require.NoError(t, rel.Dot(&buf))
	assert.Contains(t, buf.String(), "> c\"")
}
