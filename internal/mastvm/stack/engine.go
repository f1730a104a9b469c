package stack

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/advice"
	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/host"
	"github.com/vybium/mast-vm/internal/mastvm/memory"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

// Engine is the stack-engine half of the processor: the operand stack
// plus the handful of control registers (free memory pointer, clock,
// caller context) and the co-processor handles every operation class
// needs. Operations are handled as cases of Step's switch rather than
// through a per-instruction map of closures, since spec.md's operation
// set is fixed and enumerable.
type Engine struct {
	Stack   *Stack
	Memory  *memory.Memory
	Advice  *advice.Provider
	Hasher  *chiplets.Hasher
	Bitwise *chiplets.Bitwise
	Range   *chiplets.RangeChecker
	ACE     *chiplets.ACE

	Context memory.ContextID
	Caller  field.Word
	FMP     field.F
	Clock   uint64

	// Host and Transcript are optional: nil disables emit/log_precompile
	// side effects (used by tests that only care about stack/memory
	// state; exec.Run sets both).
	Host       host.Host
	Transcript *host.Transcript
}

// NewEngine wires a fresh stack engine around the given co-processor
// chiplets (shared across the whole run so their instance traces and
// buses accumulate correctly).
func NewEngine(h *chiplets.Hasher, bw *chiplets.Bitwise, rc *chiplets.RangeChecker, ace *chiplets.ACE) *Engine {
	return &Engine{
		Stack:   New(),
		Memory:  memory.New(),
		Advice:  advice.NewProvider(),
		Hasher:  h,
		Bitwise: bw,
		Range:   rc,
		ACE:     ace,
	}
}

// Step executes one operation with the given immediate (zero if the
// operation takes none), advancing the logical clock by one.
func (e *Engine) Step(op ops.Op, imm field.F) error {
	e.Clock++
	e.Memory.Tick()

	switch op {
	case ops.OpPush:
		e.Stack.Push(imm)
	case ops.OpPad:
		e.Stack.Push(field.Zero)

	case ops.OpDup:
		v, err := e.Stack.Peek(int(imm.Value()))
		if err != nil {
			return err
		}
		e.Stack.Push(v)

	case ops.OpSwap:
		if err := e.Stack.Swap(0, int(imm.Value())); err != nil {
			return err
		}
	case ops.OpSwapW:
		n := int(imm.Value())
		if err := e.swapWords(0, n); err != nil {
			return err
		}
	case ops.OpSwapW2:
		if err := e.swapWords(0, 2); err != nil {
			return err
		}
	case ops.OpSwapW3:
		if err := e.swapWords(0, 3); err != nil {
			return err
		}
	case ops.OpSwapDW:
		if err := e.swapWords(0, 4); err != nil {
			return err
		}

	case ops.OpMovUp:
		if err := e.Stack.MovUp(int(imm.Value())); err != nil {
			return err
		}
	case ops.OpMovDn:
		if err := e.Stack.MovDn(int(imm.Value())); err != nil {
			return err
		}

	case ops.OpCSwap:
		cond := e.Stack.Pop()
		if err := requireBool(cond); err != nil {
			return err
		}
		if !cond.IsZero() {
			if err := e.Stack.Swap(0, 1); err != nil {
				return err
			}
		}
	case ops.OpCSwapW:
		cond := e.Stack.Pop()
		if err := requireBool(cond); err != nil {
			return err
		}
		if !cond.IsZero() {
			if err := e.swapWords(0, 1); err != nil {
				return err
			}
		}

	case ops.OpDrop:
		e.Stack.Drop()

	case ops.OpAdd:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		e.Stack.Push(a.Add(b))
	case ops.OpMul:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		e.Stack.Push(a.Mul(b))
	case ops.OpNeg:
		e.Stack.Push(e.Stack.Pop().Neg())
	case ops.OpInv:
		v, err := e.Stack.Pop().Inv()
		if err != nil {
			return fmt.Errorf("stack: inv of zero: %w", err)
		}
		e.Stack.Push(v)
	case ops.OpIncr:
		e.Stack.Push(e.Stack.Pop().Add(field.One))
	case ops.OpAnd:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := requireBool(a); err != nil {
			return err
		}
		if err := requireBool(b); err != nil {
			return err
		}
		e.Stack.Push(boolField(!a.IsZero() && !b.IsZero()))
	case ops.OpOr:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := requireBool(a); err != nil {
			return err
		}
		if err := requireBool(b); err != nil {
			return err
		}
		e.Stack.Push(boolField(!a.IsZero() || !b.IsZero()))
	case ops.OpNot:
		a := e.Stack.Pop()
		if err := requireBool(a); err != nil {
			return err
		}
		e.Stack.Push(boolField(a.IsZero()))
	case ops.OpEq:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		e.Stack.Push(boolField(a.Equal(b)))
	case ops.OpEqz:
		e.Stack.Push(boolField(e.Stack.Pop().IsZero()))
	case ops.OpExpAcc:
		exp, base := e.Stack.Pop(), e.Stack.Pop()
		e.Stack.Push(base.Exp(exp.Value()))
	case ops.OpExt2Mul:
		b1, b0, a1, a0 := e.Stack.Pop(), e.Stack.Pop(), e.Stack.Pop(), e.Stack.Pop()
		res := field.NewE(a0, a1).Mul(field.NewE(b0, b1))
		e.Stack.Push(res.A0)
		e.Stack.Push(res.A1)

	case ops.OpU32Split:
		v := e.Stack.Pop()
		hi := v.Value() >> 32
		lo := v.Value() & 0xFFFFFFFF
		e.Stack.Push(field.New(hi))
		e.Stack.Push(field.New(lo))
	case ops.OpU32Add:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := e.checkU32(a); err != nil {
			return err
		}
		if err := e.checkU32(b); err != nil {
			return err
		}
		sum := a.Value() + b.Value()
		e.Stack.Push(field.New(sum >> 32))
		e.Stack.Push(field.New(sum & 0xFFFFFFFF))
	case ops.OpU32Add3:
		c, b, a := e.Stack.Pop(), e.Stack.Pop(), e.Stack.Pop()
		for _, v := range []field.F{a, b, c} {
			if err := e.checkU32(v); err != nil {
				return err
			}
		}
		sum := a.Value() + b.Value() + c.Value()
		e.Stack.Push(field.New(sum >> 32))
		e.Stack.Push(field.New(sum & 0xFFFFFFFF))
	case ops.OpU32Sub:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := e.checkU32(a); err != nil {
			return err
		}
		if err := e.checkU32(b); err != nil {
			return err
		}
		if b.Value() > a.Value() {
			return fmt.Errorf("stack: u32sub underflow")
		}
		e.Stack.Push(field.New(a.Value() - b.Value()))
	case ops.OpU32Mul:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := e.checkU32(a); err != nil {
			return err
		}
		if err := e.checkU32(b); err != nil {
			return err
		}
		prod := a.Value() * b.Value()
		e.Stack.Push(field.New(prod >> 32))
		e.Stack.Push(field.New(prod & 0xFFFFFFFF))
	case ops.OpU32Madd:
		c, b, a := e.Stack.Pop(), e.Stack.Pop(), e.Stack.Pop()
		for _, v := range []field.F{a, b, c} {
			if err := e.checkU32(v); err != nil {
				return err
			}
		}
		prod := a.Value()*b.Value() + c.Value()
		e.Stack.Push(field.New(prod >> 32))
		e.Stack.Push(field.New(prod & 0xFFFFFFFF))
	case ops.OpU32Div:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := e.checkU32(a); err != nil {
			return err
		}
		if err := e.checkU32(b); err != nil {
			return err
		}
		if b.IsZero() {
			return fmt.Errorf("stack: u32div by zero")
		}
		e.Stack.Push(field.New(a.Value() / b.Value()))
		e.Stack.Push(field.New(a.Value() % b.Value()))
	case ops.OpU32And:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		out, err := e.Bitwise.Eval(chiplets.BitwiseAnd, a, b)
		if err != nil {
			return err
		}
		e.Stack.Push(out)
	case ops.OpU32Xor:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		out, err := e.Bitwise.Eval(chiplets.BitwiseXor, a, b)
		if err != nil {
			return err
		}
		e.Stack.Push(out)
	case ops.OpU32Assert2:
		b, a := e.Stack.Pop(), e.Stack.Pop()
		if err := e.checkU32(a); err != nil {
			return err
		}
		if err := e.checkU32(b); err != nil {
			return err
		}
		e.Stack.Push(a)
		e.Stack.Push(b)

	case ops.OpAdvPop:
		v, err := e.Advice.PopStack()
		if err != nil {
			return err
		}
		e.Stack.Push(v)
	case ops.OpAdvPopW:
		w, err := e.Advice.PopStackWord()
		if err != nil {
			return err
		}
		e.Stack.PushWord(w)

	case ops.OpMLoad:
		addr := e.Stack.Pop().Value()
		e.Stack.Push(e.Memory.ReadElement(e.Context, addr))
	case ops.OpMLoadW:
		addr := e.Stack.Pop().Value()
		w, err := e.Memory.ReadWord(e.Context, addr)
		if err != nil {
			return err
		}
		e.Stack.PushWord(w)
	case ops.OpMStore:
		addr := e.Stack.Pop().Value()
		v := e.Stack.Pop()
		e.Memory.WriteElement(e.Context, addr, v)
		e.Stack.Push(v)
	case ops.OpMStoreW:
		addr := e.Stack.Pop().Value()
		w := e.Stack.PopWord()
		if err := e.Memory.WriteWord(e.Context, addr, w); err != nil {
			return err
		}
		e.Stack.PushWord(w)
	case ops.OpMStream:
		addr := e.Stack.Pop().Value()
		w1, err := e.Memory.ReadWord(e.Context, addr)
		if err != nil {
			return err
		}
		w2, err := e.Memory.ReadWord(e.Context, addr+4)
		if err != nil {
			return err
		}
		e.Stack.PushWord(w1)
		e.Stack.PushWord(w2)
	case ops.OpPipe:
		addr := e.Stack.Pop().Value()
		w, err := e.Advice.PopStackWord()
		if err != nil {
			return err
		}
		if err := e.Memory.WriteWord(e.Context, addr, w); err != nil {
			return err
		}
		e.Stack.PushWord(w)

	case ops.OpHPerm:
		var state [12]field.F
		for i := 0; i < 12; i++ {
			state[11-i] = e.Stack.Pop()
		}
		out := e.Hasher.Permute(state)
		for i := 11; i >= 0; i-- {
			e.Stack.Push(out[i])
		}
	case ops.OpMpVerify:
		idx := e.Stack.Pop().Value()
		leaf := e.Stack.PopWord()
		root := e.Stack.PopWord()
		depth := int(imm.Value())
		path := make(chiplets.MerklePath, depth)
		for i := 0; i < depth; i++ {
			path[i] = e.Stack.PopWord()
		}
		if _, err := e.Hasher.VerifyMerklePath(root, leaf, path, idx); err != nil {
			return fmt.Errorf("stack: mpverify failed: %w", err)
		}
		e.Stack.PushWord(root)
		e.Stack.PushWord(leaf)
		e.Stack.Push(field.New(idx))
	case ops.OpMrUpdate:
		idx := e.Stack.Pop().Value()
		newLeaf := e.Stack.PopWord()
		oldLeaf := e.Stack.PopWord()
		oldRoot := e.Stack.PopWord()
		depthV := e.Stack.Pop().Value()
		path := make(chiplets.MerklePath, depthV)
		for i := range path {
			path[i] = e.Stack.PopWord()
		}
		newRoot, err := e.Hasher.UpdateMerkleRoot(oldRoot, oldLeaf, newLeaf, path, idx)
		if err != nil {
			return fmt.Errorf("stack: mrupdate failed: %w", err)
		}
		e.Stack.PushWord(newRoot)
		e.Stack.PushWord(newLeaf)
		e.Stack.Push(field.New(idx))
	case ops.OpFriE2F4, ops.OpHornerBase, ops.OpHornerExt:
		if err := e.cryptoHelper(op); err != nil {
			return err
		}
	case ops.OpEvalCircuit:
		numWires := int(e.Stack.Pop().Value())
		numGates := int(e.Stack.Pop().Value())
		wires := make([]field.E, numWires)
		for i := numWires - 1; i >= 0; i-- {
			a1, a0 := e.Stack.Pop(), e.Stack.Pop()
			wires[i] = field.NewE(a0, a1)
		}
		gates := make([]chiplets.Gate, numGates)
		for i := 0; i < numGates; i++ {
			gates[i] = chiplets.DecodeGate(e.Stack.Pop())
		}
		out, err := e.ACE.Eval(wires, gates)
		if err != nil {
			return err
		}
		if err := e.ACE.CheckZero(out); err != nil {
			return fmt.Errorf("stack: eval_circuit failed: %w", err)
		}
	case ops.OpLogPrecompile:
		commitment := e.Stack.PopWord()
		tag := e.Stack.Pop()
		if e.Transcript != nil {
			e.Transcript.Absorb(tag, commitment)
		}
		e.Stack.PushWord(commitment)

	case ops.OpEmit:
		if e.Host != nil {
			e.Host.OnEvent(uint32(imm.Value()))
		}
	case ops.OpAssert:
		cond := e.Stack.Pop()
		if cond.IsZero() {
			return fmt.Errorf("stack: assert failed (code %d)", imm.Value())
		}
	case ops.OpFmpAdd:
		e.FMP = e.FMP.Add(e.Stack.Pop())
	case ops.OpFmpUpdate:
		delta := e.Stack.Pop()
		next := e.FMP.Add(delta)
		e.FMP = next
	case ops.OpSDepth:
		e.Stack.Push(field.New(uint64(e.Stack.Depth())))
	case ops.OpClk:
		e.Stack.Push(field.New(e.Clock))
	case ops.OpCaller:
		e.Stack.PushWord(e.Caller)

	default:
		return fmt.Errorf("stack: unhandled operation %s", op)
	}
	return nil
}

func (e *Engine) swapWords(i, wordsApart int) error {
	base := i * 4
	other := base + wordsApart*4
	for k := 0; k < 4; k++ {
		if err := e.Stack.Swap(base+k, other+k); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkU32(v field.F) error {
	if e.Range != nil {
		if v.Value() >= (1 << 32) {
			return fmt.Errorf("stack: value %d exceeds u32 range", v.Value())
		}
	}
	return nil
}

func requireBool(v field.F) error {
	if !v.IsBool() {
		return fmt.Errorf("stack: expected boolean value, got %v", v)
	}
	return nil
}

func boolField(b bool) field.F {
	if b {
		return field.One
	}
	return field.Zero
}
