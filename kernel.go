// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import "github.com/pkg/errors"

const (
	_DEFAULTNODESTEP  = 24 // fib(24) = 46368 nodes
	_DEFAULTCACHESTEP = 1  // cache size is fib(nodestep + 1)
	_DEFAULTSTACKSTEP = 22 // initial capacity of the refstack
	_MINNODESTEP      = 6  // smallest table that always leaves a free node after a sweep
	_MAXNODESTEP      = 46 // fib(46) is the largest Fibonacci number below 2^31
	_MAXSTACKSTEP     = 40 // fib(40) is below _MAXSTACK
	_MAXSTACK         = 1 << 28
	_MAXBITS          = 32
)

// Sentinel errors. Fatal conditions are reported by a panic whose value wraps
// one of these errors (use errors.Is to test for them); I/O problems are
// returned as regular errors.
var (
	ErrTableFull     = errors.New("node table full at maximum size")
	ErrOrder         = errors.New("bad order")
	ErrNonUniform    = errors.New("non-uniform vector length")
	ErrMissingCase   = errors.New("missing case")
	ErrStackOverflow = errors.New("stack overflow")
	ErrProjection    = errors.New("incompatible projections")
	ErrValue         = errors.New("value out of range")
	ErrFormat        = errors.New("bad stream format")
)
