package stack

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

func newTestEngine() *Engine {
	return NewEngine(chiplets.NewHasher(), chiplets.NewBitwise(), chiplets.NewRangeChecker(), chiplets.NewACE())
}

func TestEngineAddMul(t *testing.T) {
	e := newTestEngine()
	must(t, e.Step(ops.OpPush, field.New(2)))
	must(t, e.Step(ops.OpPush, field.New(3)))
	must(t, e.Step(ops.OpAdd, field.F{}))
	if v := e.Stack.Pop(); v.Value() != 5 {
		t.Fatalf("expected 5, got %v", v)
	}

	must(t, e.Step(ops.OpPush, field.New(4)))
	must(t, e.Step(ops.OpPush, field.New(5)))
	must(t, e.Step(ops.OpMul, field.F{}))
	if v := e.Stack.Pop(); v.Value() != 20 {
		t.Fatalf("expected 20, got %v", v)
	}
}

func TestEngineAssertFailure(t *testing.T) {
	e := newTestEngine()
	must(t, e.Step(ops.OpPush, field.Zero))
	if err := e.Step(ops.OpAssert, field.New(1)); err == nil {
		t.Fatalf("expected assert failure on zero")
	}
}

func TestEngineBooleanOps(t *testing.T) {
	e := newTestEngine()
	must(t, e.Step(ops.OpPush, field.One))
	must(t, e.Step(ops.OpPush, field.Zero))
	must(t, e.Step(ops.OpAnd, field.F{}))
	if v := e.Stack.Pop(); !v.IsZero() {
		t.Fatalf("expected false, got %v", v)
	}
}

func TestEngineNonBooleanRejected(t *testing.T) {
	e := newTestEngine()
	must(t, e.Step(ops.OpPush, field.New(2)))
	must(t, e.Step(ops.OpPush, field.One))
	if err := e.Step(ops.OpAnd, field.F{}); err == nil {
		t.Fatalf("expected error for non-boolean AND operand")
	}
}

func TestEngineMemoryRoundTrip(t *testing.T) {
	e := newTestEngine()
	must(t, e.Step(ops.OpPush, field.New(42)))
	must(t, e.Step(ops.OpPush, field.New(8)))
	must(t, e.Step(ops.OpMStore, field.F{}))
	e.Stack.Drop()

	must(t, e.Step(ops.OpPush, field.New(8)))
	must(t, e.Step(ops.OpMLoad, field.F{}))
	if v := e.Stack.Pop(); v.Value() != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestEngineHPermRoundsOnStack(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 12; i++ {
		must(t, e.Step(ops.OpPush, field.New(uint64(i))))
	}
	if err := e.Step(ops.OpHPerm, field.F{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.Hasher.Trace().Instances) != 1 {
		t.Fatalf("expected 1 hasher instance logged")
	}
}

func TestEngineU32AddOverflowRejected(t *testing.T) {
	e := newTestEngine()
	must(t, e.Step(ops.OpPush, field.New(1<<32)))
	must(t, e.Step(ops.OpPush, field.New(1)))
	if err := e.Step(ops.OpU32Add, field.F{}); err == nil {
		t.Fatalf("expected error for out-of-range u32add operand")
	}
}

func TestEngineAdvicePop(t *testing.T) {
	e := newTestEngine()
	e.Advice.PushStack(field.New(77))
	must(t, e.Step(ops.OpAdvPop, field.F{}))
	if v := e.Stack.Pop(); v.Value() != 77 {
		t.Fatalf("expected 77, got %v", v)
	}
}

func TestEngineEvalCircuitZero(t *testing.T) {
	e := newTestEngine()
	// wires: [2, -2] -> gate add(0,1) -> result wire == 0
	neg := field.New(2).Neg()
	gateWord := field.New(1 << 30) // lhs=0 rhs=1 op=add(even)

	// Pop order inside OpEvalCircuit is: numWires, numGates, then each
	// wire's (a1,a0) from the last wire down to the first, then each
	// gate word in ascending order. Pushes below are the exact reverse.
	must(t, e.Step(ops.OpPush, gateWord))    // gate[0]
	must(t, e.Step(ops.OpPush, field.New(2))) // wire[0].a0
	must(t, e.Step(ops.OpPush, field.Zero))   // wire[0].a1
	must(t, e.Step(ops.OpPush, neg))          // wire[1].a0
	must(t, e.Step(ops.OpPush, field.Zero))   // wire[1].a1
	must(t, e.Step(ops.OpPush, field.New(1))) // numGates
	must(t, e.Step(ops.OpPush, field.New(2))) // numWires
	if err := e.Step(ops.OpEvalCircuit, field.F{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
