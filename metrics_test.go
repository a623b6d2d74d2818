// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	d := newDomain(t, 3, Nodestep(6))
	s := fromvecs(d, randvecs(rand.New(rand.NewSource(10)), 40, 3, 10))
	d.NewRelation([]int{0}, []int{1})
	c := NewCollector(d, prometheus.Labels{"model": "test"})

	// 10 descriptors, with 13 metrics because of the labels
	assert.Equal(t, 13, testutil.CollectAndCount(c))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "mdd_gc_total"))

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	expected := `
# HELP mdd_roots Registered sets and relations.
# TYPE mdd_roots gauge
mdd_roots{kind="relation",model="test"} 1
mdd_roots{kind="set",model="test"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mdd_roots"))

	stats := d.Statistics()
	assert.Greater(t, stats.GC, 0)
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "mdd_gc_total" {
			assert.Equal(t, float64(stats.GC), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	s.Destroy()
	assert.Equal(t, 0, d.Statistics().Sets)
}

