// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Statistics is a snapshot of the counters of a Domain.
type Statistics struct {
	Nodes        int // size of the node table
	Free         int // number of free nodes
	Produced     int // number of nodes created since the creation of the domain
	Live         int // number of live nodes found by the last collection
	GC           int // number of collections
	Resizes      int // number of times the tables grew
	CacheSize    int // number of entries in the operation cache
	CacheHits    int
	CacheMisses  int
	UniqueHits   int
	UniqueMisses int
	Sets         int // number of registered sets
	Relations    int // number of registered relations
}

// Statistics returns the current value of the counters of d.
func (d *Domain) Statistics() Statistics {
	return Statistics{
		Nodes:        len(d.nodes),
		Free:         d.freenum,
		Produced:     d.produced,
		Live:         d.used,
		GC:           len(d.history),
		Resizes:      d.resizes,
		CacheSize:    len(d.cache.table),
		CacheHits:    d.opHit,
		CacheMisses:  d.opMiss,
		UniqueHits:   d.uniqueHit,
		UniqueMisses: d.uniqueMiss,
		Sets:         len(d.sets),
		Relations:    len(d.rels),
	}
}

// ************************************************************

// Collector exports the statistics of a Domain as Prometheus metrics. Since a
// Domain is not safe for concurrent use, the registry must only be gathered
// when the domain is idle.
type Collector struct {
	d      *Domain
	nodes  *prometheus.Desc
	free   *prometheus.Desc
	prod   *prometheus.Desc
	live   *prometheus.Desc
	gc     *prometheus.Desc
	resize *prometheus.Desc
	cache  *prometheus.Desc
	ops    *prometheus.Desc
	unique *prometheus.Desc
	roots  *prometheus.Desc
}

// NewCollector returns a collector for d. Label values in constLabels are
// added to every metric, which is useful to tell several domains apart.
func NewCollector(d *Domain, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("mdd", "", name), help, labels, constLabels)
	}
	return &Collector{
		d:      d,
		nodes:  desc("nodes", "Size of the node table."),
		free:   desc("free_nodes", "Number of free nodes in the node table."),
		prod:   desc("produced_nodes_total", "Number of nodes created."),
		live:   desc("live_nodes", "Number of live nodes found by the last garbage collection."),
		gc:     desc("gc_total", "Number of garbage collections."),
		resize: desc("resize_total", "Number of times the tables grew."),
		cache:  desc("cache_entries", "Size of the operation cache."),
		ops:    desc("cache_lookups_total", "Lookups in the operation cache.", "result"),
		unique: desc("unique_lookups_total", "Lookups in the unique table.", "result"),
		roots:  desc("roots", "Registered sets and relations.", "kind"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.nodes, c.free, c.prod, c.live, c.gc, c.resize, c.cache, c.ops, c.unique, c.roots} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.d.Statistics()
	gauge := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	counter := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge(c.nodes, s.Nodes)
	gauge(c.free, s.Free)
	counter(c.prod, s.Produced)
	gauge(c.live, s.Live)
	counter(c.gc, s.GC)
	counter(c.resize, s.Resizes)
	gauge(c.cache, s.CacheSize)
	counter(c.ops, s.CacheHits, "hit")
	counter(c.ops, s.CacheMisses, "miss")
	counter(c.unique, s.UniqueHits, "hit")
	counter(c.unique, s.UniqueMisses, "miss")
	gauge(c.roots, s.Sets, "set")
	gauge(c.roots, s.Relations, "relation")
}
