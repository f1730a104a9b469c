package mastvm

import (
	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

// Op re-exports the stack-engine operation code type so callers never
// need to import internal/mastvm/ops directly.
type Op = ops.Op

// Re-export every operation constant under the public package so a
// caller writes mastvm.OpAdd instead of reaching into internal/.
const (
	OpPush     = ops.OpPush
	OpPad      = ops.OpPad
	OpDup      = ops.OpDup
	OpSwap     = ops.OpSwap
	OpSwapW    = ops.OpSwapW
	OpSwapW2   = ops.OpSwapW2
	OpSwapW3   = ops.OpSwapW3
	OpSwapDW   = ops.OpSwapDW
	OpMovUp    = ops.OpMovUp
	OpMovDn    = ops.OpMovDn
	OpCSwap    = ops.OpCSwap
	OpCSwapW   = ops.OpCSwapW
	OpDrop     = ops.OpDrop
	OpAdd      = ops.OpAdd
	OpMul      = ops.OpMul
	OpNeg      = ops.OpNeg
	OpInv      = ops.OpInv
	OpIncr     = ops.OpIncr
	OpAnd      = ops.OpAnd
	OpOr       = ops.OpOr
	OpNot      = ops.OpNot
	OpEq       = ops.OpEq
	OpEqz      = ops.OpEqz
	OpExpAcc   = ops.OpExpAcc
	OpExt2Mul  = ops.OpExt2Mul
	OpU32Split = ops.OpU32Split
	OpU32Add   = ops.OpU32Add
	OpU32Add3  = ops.OpU32Add3
	OpU32Sub   = ops.OpU32Sub
	OpU32Mul   = ops.OpU32Mul
	OpU32Madd  = ops.OpU32Madd
	OpU32Div   = ops.OpU32Div
	OpU32And        = ops.OpU32And
	OpU32Xor        = ops.OpU32Xor
	OpU32Assert2    = ops.OpU32Assert2
	OpAdvPop        = ops.OpAdvPop
	OpAdvPopW       = ops.OpAdvPopW
	OpMLoad         = ops.OpMLoad
	OpMLoadW        = ops.OpMLoadW
	OpMStore        = ops.OpMStore
	OpMStoreW       = ops.OpMStoreW
	OpMStream       = ops.OpMStream
	OpPipe          = ops.OpPipe
	OpHPerm         = ops.OpHPerm
	OpMpVerify      = ops.OpMpVerify
	OpMrUpdate      = ops.OpMrUpdate
	OpFriE2F4       = ops.OpFriE2F4
	OpHornerBase    = ops.OpHornerBase
	OpHornerExt     = ops.OpHornerExt
	OpEvalCircuit   = ops.OpEvalCircuit
	OpLogPrecompile = ops.OpLogPrecompile
	OpEmit          = ops.OpEmit
	OpAssert        = ops.OpAssert
	OpFmpAdd        = ops.OpFmpAdd
	OpFmpUpdate     = ops.OpFmpUpdate
	OpSDepth        = ops.OpSDepth
	OpClk           = ops.OpClk
	OpCaller        = ops.OpCaller
)

// ParseOp resolves an operation's mnemonic (the same names ops.Info.Name
// reports, e.g. "add", "mpverify") to its Op constant, for CLI/program
// loaders that read instructions as text.
func ParseOp(name string) (Op, bool) { return ops.ParseName(name) }

// BlockBuilder assembles a flat operation sequence into a single MAST
// Block node.
type BlockBuilder struct{ inner *mast.BlockBuilder }

// NewBlockBuilder starts an empty block.
func NewBlockBuilder() *BlockBuilder { return &BlockBuilder{inner: mast.NewBlockBuilder()} }

// Push appends an operation, with an optional immediate operand.
func (b *BlockBuilder) Push(op Op, immediate ...field.F) *BlockBuilder {
	b.inner.Push(op, immediate...)
	return b
}

// ProgramBuilder assembles a MAST forest, mirroring mast.Builder's
// append-and-index style one level up, so callers never construct
// mast.Node values directly.
type ProgramBuilder struct{ inner *mast.Builder }

// NewProgramBuilder starts an empty forest builder.
func NewProgramBuilder() *ProgramBuilder { return &ProgramBuilder{inner: mast.NewBuilder()} }

// AddBlock finalizes a BlockBuilder into a node and adds it.
func (p *ProgramBuilder) AddBlock(b *BlockBuilder) (NodeID, error) {
	n, err := b.inner.Build()
	if err != nil {
		return 0, wrap(ErrInvalidProgram, "building block", err)
	}
	return p.inner.AddNode(n), nil
}

// AddJoin adds a Join(a,b) node.
func (p *ProgramBuilder) AddJoin(a, b NodeID) NodeID { return p.inner.AddNode(mast.Join(a, b)) }

// AddSplit adds a Split(a,b) node.
func (p *ProgramBuilder) AddSplit(a, b NodeID) NodeID { return p.inner.AddNode(mast.Split(a, b)) }

// AddLoop adds a Loop(body) node.
func (p *ProgramBuilder) AddLoop(body NodeID) NodeID { return p.inner.AddNode(mast.Loop(body)) }

// AddCall adds a Call(callee) node.
func (p *ProgramBuilder) AddCall(callee NodeID) NodeID { return p.inner.AddNode(mast.Call(callee)) }

// AddSysCall adds a SysCall(callee) node.
func (p *ProgramBuilder) AddSysCall(callee NodeID) NodeID {
	return p.inner.AddNode(mast.SysCall(callee))
}

// AddDyn adds a Dyn node.
func (p *ProgramBuilder) AddDyn() NodeID { return p.inner.AddNode(mast.Dyn()) }

// AddDyncall adds a Dyncall node.
func (p *ProgramBuilder) AddDyncall() NodeID { return p.inner.AddNode(mast.Dyncall()) }

// AddExternal adds a placeholder node resolved at run time via Host.
func (p *ProgramBuilder) AddExternal(digest Digest) NodeID {
	return p.inner.AddNode(mast.External(digest))
}

// Build finalizes the forest and returns a Processor rooted at root.
func (p *ProgramBuilder) Build(root NodeID, cfg Config, h Host) (*Processor, error) {
	forest, err := p.inner.Build(chiplets.NewHasher())
	if err != nil {
		return nil, wrap(ErrInvalidProgram, "building forest", err)
	}
	return NewProcessor(forest, root, cfg, h), nil
}
