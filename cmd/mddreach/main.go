// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Command mddreach computes the reachable states of a finite system
// described in a YAML file, using multi-valued decision diagrams.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dalzilio/mdd"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

type runOptions struct {
	strategy string
	nodestep int
	save     string
	dot      string
	metrics  bool
	trace    bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mddreach",
		Short: "Symbolic state space exploration with MDD",
		Long: `mddreach computes the set of reachable states of a system given as a
list of initial states and groups of transitions.

Examples:
  mddreach run milner.yaml --strategy sat
  mddreach run milner.yaml --save states.mdd
  mddreach count --size 30 states.mdd`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newCountCmd())
	return root
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run MODEL",
		Short: "Compute the reachable states of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.strategy, "strategy", "sat", "exploration strategy: bfs, chain or sat")
	cmd.Flags().IntVar(&opts.nodestep, "nodestep", 20, "initial size of the node table, as a Fibonacci index")
	cmd.Flags().StringVar(&opts.save, "save", "", "save the reachable states in this file")
	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the diagram of the reachable states in DOT format")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics at the end")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "print OpenTelemetry spans on stderr")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log garbage collections")
	return cmd
}

func newCountCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "count FILE",
		Short: "Print the number of states in a saved set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return count(cmd.OutOrStdout(), args[0], size)
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "length of the state vectors")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func run(ctx context.Context, out, errout io.Writer, path string, opts *runOptions) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.trace {
		shutdown, terr := initTracer(errout)
		if terr != nil {
			return terr
		}
		defer func() {
			if serr := shutdown(context.Background()); serr != nil && err == nil {
				err = serr
			}
		}()
	}
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errout, &slog.HandlerOptions{Level: level}))

	ctx, span := tracer.Start(ctx, "run")
	defer span.End()

	m, err := loadModel(path)
	if err != nil {
		return err
	}
	d, err := mdd.New(m.Size, mdd.Nodestep(opts.nodestep), mdd.Logger(logger), mdd.Bits(m.Bits...))
	if err != nil {
		return errors.Wrapf(err, "model %s", m.Name)
	}

	// the histogram is not registered when metrics are off
	var reg *prometheus.Registry
	var registerer prometheus.Registerer
	if opts.metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(mdd.NewCollector(d, prometheus.Labels{"model": m.Name}))
		registerer = reg
	}
	iter := promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
		Namespace: "mddreach",
		Name:      "iteration_seconds",
		Help:      "Duration of the iterations of the exploration.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	reached, k, err := reach(ctx, d, m, opts.strategy, iter)
	if err != nil {
		return errors.Wrapf(err, "model %s", m.Name)
	}
	err = report(out, m.Name, reached, k, opts)
	// released before the metrics are gathered
	reached.Destroy()
	if err != nil {
		return err
	}
	if reg != nil {
		families, err := reg.Gather()
		if err != nil {
			return errors.Wrap(err, "gathering metrics")
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

// report prints the number of states in reached and saves them.
func report(out io.Writer, name string, reached *mdd.Set, k int, opts *runOptions) error {
	nodes, _ := reached.Count()
	fmt.Fprintf(out, "%s: %s states, %d nodes (%s, %d iterations)\n", name, reached.CountExact(), nodes, opts.strategy, k)
	if opts.save != "" {
		if err := writeFile(opts.save, reached.Save); err != nil {
			return err
		}
	}
	if opts.dot != "" {
		if err := writeFile(opts.dot, reached.Dot); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, f func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func count(out io.Writer, path string, size int) error {
	d, err := mdd.New(size)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	s, err := d.LoadSet(file)
	if err != nil {
		return errors.Wrap(err, path)
	}
	nodes, _ := s.Count()
	fmt.Fprintf(out, "%s: %s states, %d nodes\n", path, s.CountExact(), nodes)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
