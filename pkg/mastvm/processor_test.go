package mastvm

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// buildAddProgram builds Join(Block[add], Block[incr]) so Execute exercises
// a DAG with more than one node, not just a single Block.
func buildAddProgram(t *testing.T) *Processor {
	t.Helper()
	pb := NewProgramBuilder()

	addBlock := NewBlockBuilder().Push(OpAdd)
	addNode, err := pb.AddBlock(addBlock)
	if err != nil {
		t.Fatalf("add block: %v", err)
	}

	incrBlock := NewBlockBuilder().Push(OpIncr)
	incrNode, err := pb.AddBlock(incrBlock)
	if err != nil {
		t.Fatalf("incr block: %v", err)
	}

	root := pb.AddJoin(addNode, incrNode)

	p, err := pb.Build(root, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("build processor: %v", err)
	}
	return p
}

func TestProcessorExecute(t *testing.T) {
	p := buildAddProgram(t)
	out, err := p.Execute(Inputs{PublicStack: []field.F{field.New(2), field.New(3)}})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// Join runs add first (2+3=5), then incr (5+1=6).
	if out.Stack[0].Value() != 6 {
		t.Fatalf("expected 6, got %v", out.Stack[0])
	}
}

func TestProcessorExecuteWithTrace(t *testing.T) {
	p := buildAddProgram(t)
	out, rows, err := p.ExecuteWithTrace(Inputs{PublicStack: []field.F{field.New(2), field.New(3)}})
	if err != nil {
		t.Fatalf("execute with trace: %v", err)
	}
	if len(rows) == 0 {
		t.Fatalf("expected recorded rows")
	}
	if out.Stack[0].Value() != 6 {
		t.Fatalf("expected 6, got %v", out.Stack[0])
	}
}

func TestProcessorExecuteAndTraceAgree(t *testing.T) {
	fast := buildAddProgram(t)
	traced := buildAddProgram(t)

	in := Inputs{PublicStack: []field.F{field.New(10), field.New(20)}}
	fastOut, err := fast.Execute(in)
	if err != nil {
		t.Fatalf("fast execute: %v", err)
	}
	tracedOut, _, err := traced.ExecuteWithTrace(in)
	if err != nil {
		t.Fatalf("traced execute: %v", err)
	}
	if fastOut.Stack[0].Value() != tracedOut.Stack[0].Value() {
		t.Fatalf("fast and traced executors disagree: %v vs %v", fastOut.Stack[0], tracedOut.Stack[0])
	}
}

func TestProcessorRootDigestStable(t *testing.T) {
	p := buildAddProgram(t)
	d1, err := p.RootDigest()
	if err != nil {
		t.Fatalf("root digest: %v", err)
	}
	d2, err := p.RootDigest()
	if err != nil {
		t.Fatalf("root digest: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("expected stable root digest across calls")
	}
}

func TestProcessorInvalidConfigRejected(t *testing.T) {
	p := buildAddProgram(t)
	p.cfg.CycleCap = 0
	_, err := p.Execute(Inputs{PublicStack: []field.F{field.New(1), field.New(2)}})
	if err == nil {
		t.Fatalf("expected error for invalid config")
	}
	vmErr, ok := err.(*VMError)
	if !ok {
		t.Fatalf("expected *VMError, got %T", err)
	}
	if vmErr.Code != ErrInvalidProgram {
		t.Fatalf("expected ErrInvalidProgram, got %v", vmErr.Code)
	}
}
