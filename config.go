// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"log/slog"

	"github.com/pkg/errors"
)

// configs is used to store the values of different parameters of the Domain
type configs struct {
	size      int          // length of the vectors
	bits      []int        // number of bits used by the values at each position (0 if unbounded)
	nodestep  int          // initial node table size is fib(nodestep)
	cachestep int          // cache size is fib(nodestep + cachestep)
	maxstep   int          // maximal node table size is fib(maxstep)
	stackstep int          // initial capacity of the refstack is fib(stackstep)
	maxstack  int          // maximal height of the refstack
	logger    *slog.Logger // destination of the debug logs
}

func makeconfigs(size int) *configs {
	return &configs{
		size:      size,
		nodestep:  _DEFAULTNODESTEP,
		cachestep: _DEFAULTCACHESTEP,
		maxstep:   _MAXNODESTEP,
		stackstep: _DEFAULTSTACKSTEP,
		maxstack:  _MAXSTACK,
		logger:    slog.Default(),
	}
}

func (c *configs) validate() error {
	if c.size < 0 {
		return errors.Errorf("bad vector length %d", c.size)
	}
	if c.bits != nil && len(c.bits) != c.size {
		return errors.Errorf("bits given for %d positions, expected %d", len(c.bits), c.size)
	}
	for k, v := range c.bits {
		if v < 0 || v > _MAXBITS {
			return errors.Errorf("bad number of bits (%d) at position %d", v, k)
		}
	}
	if c.nodestep < _MINNODESTEP || c.nodestep > _MAXNODESTEP {
		return errors.Errorf("node step %d not in [%d..%d]", c.nodestep, _MINNODESTEP, _MAXNODESTEP)
	}
	if c.maxstep < c.nodestep || c.maxstep > _MAXNODESTEP {
		return errors.Errorf("maximal node step %d not in [%d..%d]", c.maxstep, c.nodestep, _MAXNODESTEP)
	}
	if c.stackstep < 0 || c.stackstep > _MAXSTACKSTEP {
		return errors.Errorf("stack step %d not in [0..%d]", c.stackstep, _MAXSTACKSTEP)
	}
	if c.maxstack < 1 {
		return errors.Errorf("bad maximal stack height %d", c.maxstack)
	}
	return nil
}

// Nodestep is a configuration option (function). Used as a parameter in New it
// sets the initial size of the node table to fib(step), the step-th Fibonacci
// number. Each time a collection finds more than fib(step-1) live nodes, the
// step is increased by one. The default value is 24, that is 46368 nodes.
// Small values, such as 8, are useful for testing the garbage collector.
func Nodestep(step int) func(*configs) {
	return func(c *configs) {
		c.nodestep = step
	}
}

// Maxstep is a configuration option (function). Used as a parameter in New it
// sets a limit on the size of the node table, that can never hold more than
// fib(step) nodes. Running out of nodes at this size aborts the computation.
// The default (and maximal) value is 46.
func Maxstep(step int) func(*configs) {
	return func(c *configs) {
		c.maxstep = step
	}
}

// Cachestep is a configuration option (function). Used as a parameter in New
// it sets the size of the operation cache relative to the node table. With a
// value of d, the cache has fib(step+d) entries when the node table has
// fib(step) nodes. The value can be negative. The default value is 1.
func Cachestep(diff int) func(*configs) {
	return func(c *configs) {
		c.cachestep = diff
	}
}

// Stackstep is a configuration option (function). It sets the initial capacity
// of the stack used to protect intermediate results, fib(step), with step in
// [0..40]. The stack grows when needed, up to the limit set with Maxstack.
func Stackstep(step int) func(*configs) {
	return func(c *configs) {
		c.stackstep = step
	}
}

// Maxstack is a configuration option (function). It sets the maximal height of
// the stack used to protect intermediate results. Going over this limit
// aborts the computation with ErrStackOverflow.
func Maxstack(height int) func(*configs) {
	return func(c *configs) {
		c.maxstack = height
	}
}

// Bits is a configuration option (function). It gives the number of bits used
// to encode the values at each position of the vectors, in which case adding
// a vector with an out of range value aborts with ErrValue. A value of 0 means
// that any 32 bits value is allowed, which is also the default.
func Bits(bits ...int) func(*configs) {
	return func(c *configs) {
		c.bits = append([]int(nil), bits...)
	}
}

// Logger is a configuration option (function). It sets the logger used to
// report garbage collections and table resizing (at debug level) and fatal
// errors. The default is slog.Default().
func Logger(logger *slog.Logger) func(*configs) {
	return func(c *configs) {
		if logger != nil {
			c.logger = logger
		}
	}
}
