package exec

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/config"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/host"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

func buildAddOneForest(t *testing.T) (*mast.Forest, mast.NodeID) {
	t.Helper()
	b := mast.NewBuilder()
	bb := mast.NewBlockBuilder()
	bb.Push(ops.OpAdd)
	n, err := bb.Build()
	if err != nil {
		t.Fatalf("build block: %v", err)
	}
	root := b.AddNode(n)
	h := chiplets.NewHasher()
	f, err := b.Build(h)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	return f, root
}

func TestRunAddsPublicInputs(t *testing.T) {
	f, root := buildAddOneForest(t)
	res, err := Run(f, root, config.Default(), host.NoopHost{}, []field.F{field.New(2), field.New(3)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StackTop[0].Value() != 5 {
		t.Fatalf("expected top of stack 5, got %v", res.StackTop[0])
	}
}

func TestRunIsDeterministic(t *testing.T) {
	f, root := buildAddOneForest(t)
	r1, err := Run(f, root, config.Default(), host.NoopHost{}, []field.F{field.New(7), field.New(8)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := Run(f, root, config.Default(), host.NoopHost{}, []field.F{field.New(7), field.New(8)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.StackTop != r2.StackTop || r1.TranscriptDigest != r2.TranscriptDigest {
		t.Fatalf("expected deterministic results across runs")
	}
}
