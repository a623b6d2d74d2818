// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"github.com/pkg/errors"
)

// fatalf aborts the current operation. The engine never tries to recover from
// an invariant violation or from resource exhaustion: the error is logged and
// raised as a panic wrapping the sentinel err.
func (b *tables) fatalf(err error, format string, a ...interface{}) {
	err = errors.Wrapf(err, format, a...)
	b.log.Error("mdd: fatal", "err", err)
	panic(err)
}

// checkf is used to validate arguments given by callers of the public API.
// Violations are fatal, like in the kernel.
func (b *tables) checkf(cond bool, err error, format string, a ...interface{}) {
	if !cond {
		b.fatalf(err, format, a...)
	}
}
