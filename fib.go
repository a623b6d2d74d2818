// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

// Table sizes follow the Fibonacci sequence. Growing from fib(n) to fib(n+1)
// gives a ratio close to the golden ratio and avoids the clustering we get
// with power-of-two sizes and a modulo hash.

var fibtable = func() [_MAXNODESTEP + 8]int {
	var t [_MAXNODESTEP + 8]int
	t[0], t[1] = 0, 1
	for i := 2; i < len(t); i++ {
		t[i] = t[i-1] + t[i-2]
	}
	return t
}()

// fib returns the n-th Fibonacci number with fib(0) = 0 and fib(1) = 1. Out
// of range arguments are clamped.
func fib(n int) int {
	if n < 1 {
		return 1
	}
	if n >= len(fibtable) {
		n = len(fibtable) - 1
	}
	return fibtable[n]
}
