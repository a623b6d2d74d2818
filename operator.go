// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import "fmt"

// opcode identifies the operation that produced an entry in the operation
// cache. The zero value marks an unused entry.
type opcode uint32

const (
	opUnused opcode = iota
	opCount
	opUnion
	opMinus
	opIntersect
	opProject
	opNext
	opPrev
	opPrevCopy
	opCopyMatch
	opSat
	opRelProd
	opFold // first opcode handed out by NewCacheOp
)

var opnames = [opFold]string{
	opUnused:    "unused",
	opCount:     "count",
	opUnion:     "union",
	opMinus:     "minus",
	opIntersect: "intersect",
	opProject:   "project",
	opNext:      "next",
	opPrev:      "prev",
	opPrevCopy:  "prev_copy",
	opCopyMatch: "copy_match",
	opSat:       "sat",
	opRelProd:   "relprod",
}

func (op opcode) String() string {
	if op < opFold {
		return opnames[op]
	}
	return fmt.Sprintf("fold#%d", op-opFold)
}

// usesNodes reports whether the b, c, d and res fields of a cache entry with
// this opcode hold node ids that must be live for the entry to stay valid.
func (op opcode) usesNodes() bool {
	return op != opCount && op < opFold
}
