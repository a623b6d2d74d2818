// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"context"
	"time"

	"github.com/dalzilio/mdd"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
)

// strategy computes the states reachable from init and returns the number
// of iterations it took.
type strategy func(ctx context.Context, reached, init *mdd.Set, rels []*mdd.Relation, iter prometheus.Observer) int

var strategies = map[string]strategy{
	"bfs":   breadthFirst,
	"chain": chaining,
	"sat":   saturation,
}

// breadthFirst adds the successors of the newly found states, for all the
// relations at once, until no new state is found.
func breadthFirst(ctx context.Context, reached, init *mdd.Set, rels []*mdd.Relation, iter prometheus.Observer) int {
	d := reached.Domain()
	reached.Copy(init)
	frontier, next, succ := d.NewSet(), d.NewSet(), d.NewSet()
	defer frontier.Destroy()
	defer next.Destroy()
	defer succ.Destroy()
	frontier.Copy(init)
	k := 0
	for ; !frontier.IsEmpty(); k++ {
		start := time.Now()
		next.Clear()
		for _, r := range rels {
			succ.Next(frontier, r)
			next.Union(succ)
		}
		next.Minus(reached)
		reached.Union(next)
		frontier.Copy(next)
		iter.Observe(time.Since(start).Seconds())
	}
	return k
}

// chaining applies the relations one after the other, each one on the
// result of the previous one, until the set is stable.
func chaining(ctx context.Context, reached, init *mdd.Set, rels []*mdd.Relation, iter prometheus.Observer) int {
	d := reached.Domain()
	reached.Copy(init)
	old, succ := d.NewSet(), d.NewSet()
	defer old.Destroy()
	defer succ.Destroy()
	k := 0
	for ; k == 0 || !old.Equal(reached); k++ {
		start := time.Now()
		old.Copy(reached)
		for _, r := range rels {
			succ.Next(reached, r)
			reached.Union(succ)
		}
		iter.Observe(time.Since(start).Seconds())
	}
	return k
}

func saturation(ctx context.Context, reached, init *mdd.Set, rels []*mdd.Relation, iter prometheus.Observer) int {
	start := time.Now()
	reached.LeastFixpoint(init, rels...)
	iter.Observe(time.Since(start).Seconds())
	return 1
}

// reach runs strategy name on the model in domain d.
func reach(ctx context.Context, d *mdd.Domain, m *Model, name string, iter prometheus.Observer) (reached *mdd.Set, k int, err error) {
	f, ok := strategies[name]
	if !ok {
		return nil, 0, errors.Errorf("unknown strategy %q", name)
	}
	_, span := tracer.Start(ctx, "build")
	init, rels, err := m.build(d)
	span.SetAttributes(attribute.Int("relations", len(rels)))
	span.End()
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		init.Destroy()
		for _, r := range rels {
			r.Destroy()
		}
	}()

	ctx, span = tracer.Start(ctx, "reachability")
	defer span.End()
	defer recoverError(&err)
	reached = d.NewSet()
	k = f(ctx, reached, init, rels, iter)
	nodes, count := reached.Count()
	span.SetAttributes(
		attribute.String("strategy", name),
		attribute.Int("iterations", k),
		attribute.Int("nodes", nodes),
		attribute.Float64("states", count),
	)
	return reached, k, nil
}
