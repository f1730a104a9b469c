// Package mast implements the Merkelized Abstract Syntax Tree: the
// immutable, content-addressed DAG of program nodes described in
// spec.md §3.2. Nodes reference each other by NodeID only (never by
// pointer), per DESIGN NOTES §9, so the forest can be represented as a
// flat, id-indexed table in the style of the teacher's Program/
// EncodedInstruction list and TableID registry.
package mast

import (
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

// NodeID indexes a node within a Forest.
type NodeID uint32

// Digest is a node's content-addressed identity.
type Digest = field.Word

// Kind discriminates the MAST node variants of spec.md §3.2.
type Kind int

const (
	KindBlock Kind = iota
	KindJoin
	KindSplit
	KindLoop
	KindCall
	KindSysCall
	KindDyn
	KindDyncall
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "Block"
	case KindJoin:
		return "Join"
	case KindSplit:
		return "Split"
	case KindLoop:
		return "Loop"
	case KindCall:
		return "Call"
	case KindSysCall:
		return "SysCall"
	case KindDyn:
		return "Dyn"
	case KindDyncall:
		return "Dyncall"
	case KindExternal:
		return "External"
	default:
		return "Unknown"
	}
}

// Group is a batch group: up to 9 operations, or a single operation that
// carries an immediate occupying the whole group (spec.md §3.2).
type Group struct {
	Ops []EncodedOp
}

// EncodedOp is one operation within a block, together with its immediate
// operand if the op class requires one.
type EncodedOp struct {
	Op        ops.Op
	Immediate field.F // only meaningful when Op.HasImmediate()
}

// Batch is an ordered list of up to 8 groups.
type Batch struct {
	Groups []Group
}

// Node is a single MAST DAG node. Exactly one of the payload fields is
// meaningful, selected by Kind — a tagged union expressed the idiomatic Go
// way (a discriminant plus per-variant fields) rather than an interface
// hierarchy, since every node must still be stored by value in a flat,
// id-indexed table.
type Node struct {
	Kind Kind

	// KindBlock
	Batches []Batch

	// KindJoin, KindSplit, KindLoop (body only uses Children[0])
	Children [2]NodeID

	// KindCall, KindSysCall
	Callee NodeID

	// KindExternal
	ExternalDigest Digest

	// digest is memoized on first computation; NewForest computes it once
	// and the forest is immutable once built, so it is never invalidated.
	digest    Digest
	hasDigest bool
}

// OpCount returns the number of operations a block node carries across
// all of its batches — used for decorator-position bookkeeping.
func (n Node) OpCount() int {
	count := 0
	for _, b := range n.Batches {
		for _, g := range b.Groups {
			count += len(g.Ops)
		}
	}
	return count
}
