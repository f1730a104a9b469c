// Package ops defines the stack-engine instruction set: the operation
// codes a MAST Block node carries, and the static metadata (name, class,
// whether an immediate operand is required, whether it can fail) the decoder and
// stack engine both need to validate and dispatch them.
//
// The layout mirrors the teacher's AllInstructions table-driven metadata
// map, generalized from a single flat instruction stream to operations
// that live inside MAST Block batches/groups.
package ops

import "fmt"

// Op identifies a single stack-engine operation.
type Op uint16

const (
	// Constants
	OpPush Op = iota
	OpPad

	// Dup (n in {0..7,9,11,13,15}; encoded directly as the immediate)
	OpDup

	// Swap family
	OpSwap
	OpSwapW
	OpSwapW2
	OpSwapW3
	OpSwapDW

	// Movement
	OpMovUp
	OpMovDn

	// Conditional
	OpCSwap
	OpCSwapW

	// Drop
	OpDrop

	// Field arithmetic
	OpAdd
	OpMul
	OpNeg
	OpInv
	OpIncr
	OpAnd
	OpOr
	OpNot
	OpEq
	OpEqz
	OpExpAcc
	OpExt2Mul

	// U32 arithmetic
	OpU32Split
	OpU32Add
	OpU32Add3
	OpU32Sub
	OpU32Mul
	OpU32Madd
	OpU32Div
	OpU32And
	OpU32Xor
	OpU32Assert2

	// Advice / IO stack
	OpAdvPop
	OpAdvPopW

	// IO memory
	OpMLoad
	OpMLoadW
	OpMStore
	OpMStoreW
	OpMStream
	OpPipe

	// Crypto / chiplet dispatch
	OpHPerm
	OpMpVerify
	OpMrUpdate
	OpFriE2F4
	OpHornerBase
	OpHornerExt
	OpEvalCircuit
	OpLogPrecompile

	// Control / system
	OpEmit
	OpAssert
	OpFmpAdd
	OpFmpUpdate
	OpSDepth
	OpClk
	OpCaller

	opCount
)

// Class groups operations by the table in spec.md §4.1.
type Class int

const (
	ClassConstants Class = iota
	ClassDup
	ClassSwap
	ClassMovement
	ClassCond
	ClassDrop
	ClassFieldArith
	ClassU32Arith
	ClassIOStack
	ClassIOMemory
	ClassCrypto
	ClassControl
)

// Info carries the static metadata the decoder/stack engine need without
// executing the operation: whether it takes an immediate operand (which,
// per spec.md §3.2, consumes a whole group within a block batch), its
// class, and a human name for diagnostics.
type Info struct {
	Name     string
	Class    Class
	HasImm   bool
	Fallible bool // true if the operation can raise an OperationError/ControlFlowError
}

// table is the single source of truth for operation metadata, in the
// style of the teacher's AllInstructions map.
var table = map[Op]Info{
	OpPush: {"push", ClassConstants, true, false},
	OpPad:  {"pad", ClassConstants, false, false},

	OpDup: {"dup", ClassDup, true, false},

	OpSwap:   {"swap", ClassSwap, true, false},
	OpSwapW:  {"swapw", ClassSwap, true, false},
	OpSwapW2: {"swapw2", ClassSwap, false, false},
	OpSwapW3: {"swapw3", ClassSwap, false, false},
	OpSwapDW: {"swapdw", ClassSwap, false, false},

	OpMovUp: {"movup", ClassMovement, true, false},
	OpMovDn: {"movdn", ClassMovement, true, false},

	OpCSwap:  {"cswap", ClassCond, false, true},
	OpCSwapW: {"cswapw", ClassCond, false, true},

	OpDrop: {"drop", ClassDrop, false, false},

	OpAdd:     {"add", ClassFieldArith, false, false},
	OpMul:     {"mul", ClassFieldArith, false, false},
	OpNeg:     {"neg", ClassFieldArith, false, false},
	OpInv:     {"inv", ClassFieldArith, false, true},
	OpIncr:    {"incr", ClassFieldArith, false, false},
	OpAnd:     {"and", ClassFieldArith, false, true},
	OpOr:      {"or", ClassFieldArith, false, true},
	OpNot:     {"not", ClassFieldArith, false, true},
	OpEq:      {"eq", ClassFieldArith, false, false},
	OpEqz:     {"eqz", ClassFieldArith, false, false},
	OpExpAcc:  {"expacc", ClassFieldArith, false, false},
	OpExt2Mul: {"ext2mul", ClassFieldArith, false, false},

	OpU32Split:   {"u32split", ClassU32Arith, false, false},
	OpU32Add:     {"u32add", ClassU32Arith, false, true},
	OpU32Add3:    {"u32add3", ClassU32Arith, false, true},
	OpU32Sub:     {"u32sub", ClassU32Arith, false, true},
	OpU32Mul:     {"u32mul", ClassU32Arith, false, true},
	OpU32Madd:    {"u32madd", ClassU32Arith, false, true},
	OpU32Div:     {"u32div", ClassU32Arith, false, true},
	OpU32And:     {"u32and", ClassU32Arith, false, true},
	OpU32Xor:     {"u32xor", ClassU32Arith, false, true},
	OpU32Assert2: {"u32assert2", ClassU32Arith, true, true},

	OpAdvPop:  {"advpop", ClassIOStack, false, true},
	OpAdvPopW: {"advpopw", ClassIOStack, false, true},

	OpMLoad:   {"mload", ClassIOMemory, false, true},
	OpMLoadW:  {"mloadw", ClassIOMemory, false, true},
	OpMStore:  {"mstore", ClassIOMemory, false, true},
	OpMStoreW: {"mstorew", ClassIOMemory, false, true},
	OpMStream: {"mstream", ClassIOMemory, false, true},
	OpPipe:    {"pipe", ClassIOMemory, false, true},

	OpHPerm:         {"hperm", ClassCrypto, false, false},
	OpMpVerify:      {"mpverify", ClassCrypto, true, true},
	OpMrUpdate:      {"mrupdate", ClassCrypto, false, true},
	OpFriE2F4:       {"frie2f4", ClassCrypto, false, false},
	OpHornerBase:    {"hornerbase", ClassCrypto, false, false},
	OpHornerExt:     {"hornerext", ClassCrypto, false, false},
	OpEvalCircuit:   {"eval_circuit", ClassCrypto, false, true},
	OpLogPrecompile: {"log_precompile", ClassCrypto, false, false},

	OpEmit:      {"emit", ClassControl, true, false},
	OpAssert:    {"assert", ClassControl, true, true},
	OpFmpAdd:    {"fmpadd", ClassControl, false, false},
	OpFmpUpdate: {"fmpupdate", ClassControl, false, true},
	OpSDepth:    {"sdepth", ClassControl, false, false},
	OpClk:       {"clk", ClassControl, false, false},
	OpCaller:    {"caller", ClassControl, false, true},
}

// Info looks up the static metadata for an operation.
func (o Op) Info() (Info, error) {
	info, ok := table[o]
	if !ok {
		return Info{}, fmt.Errorf("ops: unknown operation %d", o)
	}
	return info, nil
}

// String returns the operation's mnemonic, or a placeholder for unknown
// values (never expected on a validated MAST forest).
func (o Op) String() string {
	if info, ok := table[o]; ok {
		return info.Name
	}
	return fmt.Sprintf("unknown(%d)", o)
}

// HasImmediate reports whether the operation carries an immediate operand
// that consumes a full group within its Block batch (spec.md §3.2).
func (o Op) HasImmediate() bool {
	info, err := o.Info()
	return err == nil && info.HasImm
}

var byName = func() map[string]Op {
	m := make(map[string]Op, len(table))
	for op, info := range table {
		m[info.Name] = op
	}
	return m
}()

// ParseName resolves a mnemonic (as reported by Op.String) back to its Op
// constant, for program loaders that read instructions as text rather
// than as pre-encoded opcodes.
func ParseName(name string) (Op, bool) {
	op, ok := byName[name]
	return op, ok
}
