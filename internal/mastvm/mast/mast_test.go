package mast

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

func buildSimpleForest(t *testing.T) (*Forest, NodeID, NodeID) {
	t.Helper()
	b := NewBuilder()

	blockA, err := NewBlockBuilder().Push(ops.OpPush, field.New(1)).Build()
	if err != nil {
		t.Fatalf("build blockA: %v", err)
	}
	idA := b.AddNode(blockA)

	blockB, err := NewBlockBuilder().Push(ops.OpPush, field.New(2)).Build()
	if err != nil {
		t.Fatalf("build blockB: %v", err)
	}
	idB := b.AddNode(blockB)

	idJoin := b.AddNode(Join(idA, idB))

	h := chiplets.NewHasher()
	f, err := b.Build(h)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	return f, idA, idJoin
}

func TestDigestPurity(t *testing.T) {
	f, _, _ := buildSimpleForest(t)
	h := chiplets.NewHasher()
	if err := f.VerifyDigests(h); err != nil {
		t.Fatalf("digest purity check failed: %v", err)
	}
}

func TestDigestDeterministicAndDistinct(t *testing.T) {
	f1, idA1, idJoin1 := buildSimpleForest(t)
	f2, _, _ := buildSimpleForest(t)

	dA1, _ := f1.Digest(idA1)
	dA2, _ := f2.Digest(idA1)
	if dA1 != dA2 {
		t.Fatalf("expected identical forests to produce identical digests")
	}

	dJoin, _ := f1.Digest(idJoin1)
	if dJoin == dA1 {
		t.Fatalf("Join digest collided with a child block digest")
	}
}

func TestByDigestLookup(t *testing.T) {
	f, idA, _ := buildSimpleForest(t)
	d, err := f.Digest(idA)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	found, ok := f.ByDigest(d)
	if !ok || found != idA {
		t.Fatalf("ByDigest lookup failed: found=%d ok=%v", found, ok)
	}
}

func TestForwardReferenceRejected(t *testing.T) {
	nodes := []Node{
		Join(1, 0), // node 0 references node 1, which doesn't exist yet
	}
	h := chiplets.NewHasher()
	if _, err := NewForest(nodes, nil, h); err == nil {
		t.Fatalf("expected forward-reference error")
	}
}

func TestOutOfRangeChildRejected(t *testing.T) {
	blockA, _ := NewBlockBuilder().Push(ops.OpPush, field.New(1)).Build()
	nodes := []Node{
		blockA,
		Join(0, 5), // child 5 doesn't exist
	}
	h := chiplets.NewHasher()
	if _, err := NewForest(nodes, nil, h); err == nil {
		t.Fatalf("expected out-of-range child error")
	}
}

func TestDecoratorTableCSRInvariants(t *testing.T) {
	db := NewDecoratorBuilder(3)
	db.AddRow()
	db.AddRow(Decorator{Kind: DecoratorBeforeEnter, Text: "enter"})
	db.AddRow(Decorator{Kind: DecoratorAfterExit, Text: "a"}, Decorator{Kind: DecoratorAfterExit, Text: "b"})

	table, err := db.Build()
	if err != nil {
		t.Fatalf("build decorator table: %v", err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(table.For(0)) != 0 {
		t.Fatalf("expected node 0 to have no decorators")
	}
	if len(table.For(2)) != 2 {
		t.Fatalf("expected node 2 to have 2 decorators, got %d", len(table.For(2)))
	}
}

func TestEmptyBlockRejected(t *testing.T) {
	if _, err := NewBlockBuilder().Build(); err == nil {
		t.Fatalf("expected error building an empty block")
	}
}

func TestBlockBatchingLimits(t *testing.T) {
	bb := NewBlockBuilder()
	for i := 0; i < maxOpsPerGroup+1; i++ {
		bb.Push(ops.OpAdd)
	}
	n, err := bb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(n.Batches) != 1 || len(n.Batches[0].Groups) != 2 {
		t.Fatalf("expected overflow into a second group, got %+v", n.Batches)
	}
}

func TestImmediateOpGetsOwnGroup(t *testing.T) {
	bb := NewBlockBuilder()
	bb.Push(ops.OpAdd)
	bb.Push(ops.OpPush, field.New(7))
	bb.Push(ops.OpAdd)
	n, err := bb.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(n.Batches[0].Groups) != 3 {
		t.Fatalf("expected 3 groups (op, imm-op, op), got %d", len(n.Batches[0].Groups))
	}
}
