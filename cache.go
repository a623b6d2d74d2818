// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package mdd

import (
	"fmt"
)

// ************************************************************
// cache is a direct-mapped table used for memoizing the results of the
// kernels. A collision simply evicts the previous entry; a miss only costs a
// recomputation.
type cache struct {
	table []cacheData
}

// cacheStat stores status information about cache usage
type cacheStat struct {
	uniqueAccess int // accesses to the unique node table
	uniqueChain  int // iterations through the chains in the unique node table
	uniqueHit    int // entries actually found in the the unique node table
	uniqueMiss   int // entries not found in the the unique node table
	opHit        int // entries found in the operation cache
	opMiss       int // entries not found in the operation cache
}

// cacheData is a unit of information stored in the operation cache. The
// arguments a to d are node ids except for user fold operations, where only a
// is used. The result is in res, count or payload depending on the opcode.
type cacheData struct {
	op      opcode
	a       NodeID
	b       NodeID
	c       NodeID
	d       NodeID
	res     NodeID
	count   float64
	payload interface{}
}

// ************************************************************

func (bc *cache) cacheinit(size int) {
	bc.table = make([]cacheData, size)
}

// cacheclear drops all the entries for operation op.
func (bc *cache) cacheclear(op opcode) {
	for k := range bc.table {
		if bc.table[k].op == op {
			bc.table[k] = cacheData{}
		}
	}
}

// ************************************************************

// alive is true for nodes that survive the current collection.
func (b *tables) alive(n NodeID) bool {
	return n < 2 || b.ismarked(n)
}

func (b *tables) entryalive(e *cacheData) bool {
	if e.op == opUnused || !b.alive(e.a) {
		return false
	}
	if !e.op.usesNodes() {
		return true
	}
	return b.alive(e.b) && b.alive(e.c) && b.alive(e.d) && b.alive(e.res)
}

// cachegc is called during a collection, after the marking phase. Entries
// referring to a dead node are dropped. When size differs from the current
// size of the cache, survivors are rehashed in a new table.
func (b *tables) cachegc(size int) int {
	kept := 0
	if size == len(b.cache.table) {
		for k := range b.cache.table {
			if b.entryalive(&b.cache.table[k]) {
				kept++
				continue
			}
			b.cache.table[k] = cacheData{}
		}
		return kept
	}
	table := make([]cacheData, size)
	for k := range b.cache.table {
		e := &b.cache.table[k]
		if !b.entryalive(e) {
			continue
		}
		kept++
		table[cachehash(e.op, e.a, e.b, e.c, e.d, size)] = *e
	}
	b.cache.table = table
	return kept
}

// ************************************************************

func (c cacheStat) String() string {
	res := fmt.Sprintf("Unique Access:  %d\n", c.uniqueAccess)
	res += fmt.Sprintf("Unique Chain:   %d\n", c.uniqueChain)
	res += fmt.Sprintf("Unique Hit:     %d\n", c.uniqueHit)
	res += fmt.Sprintf("Unique Miss:    %d\n", c.uniqueMiss)
	res += fmt.Sprintf("Op Hit:         %d (%.1f %%)\n", c.opHit, percent(c.opHit, c.opHit+c.opMiss))
	res += fmt.Sprintf("Op Miss:        %d", c.opMiss)
	return res
}

func percent(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return (float64(a) * 100) / float64(b)
}
