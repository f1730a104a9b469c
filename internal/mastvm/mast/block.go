package mast

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

const (
	maxGroupsPerBatch = 8
	maxOpsPerGroup    = 9
)

// BlockBuilder packs a flat sequence of operations into the batch/group
// layout spec.md §3.2 requires: up to 8 groups per batch, up to 9
// operations per group, and an operation carrying an immediate consumes
// an entire group by itself.
type BlockBuilder struct {
	batches   []Batch
	curGroups []Group
	curOps    []EncodedOp
}

// NewBlockBuilder starts an empty block.
func NewBlockBuilder() *BlockBuilder { return &BlockBuilder{} }

// Push appends one operation, opening new groups/batches as the 9-op and
// 8-group limits require.
func (b *BlockBuilder) Push(op ops.Op, immediate ...field.F) *BlockBuilder {
	var imm field.F
	if len(immediate) > 0 {
		imm = immediate[0]
	}
	enc := EncodedOp{Op: op, Immediate: imm}

	if op.HasImmediate() {
		b.flushGroup()
		b.curGroups = append(b.curGroups, Group{Ops: []EncodedOp{enc}})
		b.flushGroup()
		return b
	}

	if len(b.curOps) >= maxOpsPerGroup {
		b.flushGroup()
	}
	b.curOps = append(b.curOps, enc)
	return b
}

func (b *BlockBuilder) flushGroup() {
	if len(b.curOps) > 0 {
		b.curGroups = append(b.curGroups, Group{Ops: b.curOps})
		b.curOps = nil
	}
	if len(b.curGroups) >= maxGroupsPerBatch {
		b.flushBatch()
	}
}

func (b *BlockBuilder) flushBatch() {
	if len(b.curGroups) > 0 {
		b.batches = append(b.batches, Batch{Groups: b.curGroups})
		b.curGroups = nil
	}
}

// Build finalizes the block node. Returns an error if the block is empty
// (a Block must contain at least one operation).
func (b *BlockBuilder) Build() (Node, error) {
	b.flushGroup()
	b.flushBatch()
	if len(b.batches) == 0 {
		return Node{}, fmt.Errorf("mast: block must contain at least one operation")
	}
	return Node{Kind: KindBlock, Batches: b.batches}, nil
}
