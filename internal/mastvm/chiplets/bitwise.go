package chiplets

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// limbWidth is the chiplet's reconstruction granularity: operands are
// decomposed into 4-bit limbs and the AND/XOR table is indexed by limb
// pairs, matching spec.md §4.4's "bitwise chiplet operates over 4-bit
// limbs" (narrower than the teacher's 8-bit lookup in
// vm/u32_lookup_tables.go, since the spec's bitwise ops are bounded to
// 32-bit operands decomposed 8-ways rather than 4-ways).
const (
	limbWidth = 4
	limbCount = 32 / limbWidth
	limbMask  = (1 << limbWidth) - 1
)

// BitwiseOp selects AND or XOR.
type BitwiseOp int

const (
	BitwiseAnd BitwiseOp = iota
	BitwiseXor
)

// BitwiseRow is one row of the per-call sub-trace: one limb pair and its
// running reconstruction accumulators, mirroring
// vm/u32_lookup_tables.go's limb-by-limb accumulator-column shape.
type BitwiseRow struct {
	LimbA, LimbB, LimbOut uint8
	AccA, AccB, AccOut    uint64
}

// Bitwise implements 32-bit AND/XOR by reconstructing the result 4 bits
// at a time, logging one 8-row instance (limbCount rows) per call.
type Bitwise struct {
	trace []BitwiseRow
}

// NewBitwise creates a bitwise chiplet with an empty instance trace.
func NewBitwise() *Bitwise { return &Bitwise{} }

// Trace returns the accumulated limb-reconstruction rows.
func (b *Bitwise) Trace() []BitwiseRow { return b.trace }

// Eval computes op(a, b) over 32-bit operands, appending limbCount rows
// to the instance trace. Returns an error if either operand does not fit
// in 32 bits (spec.md §4.4's domain restriction).
func (bw *Bitwise) Eval(op BitwiseOp, a, b field.F) (field.F, error) {
	av, bv := a.Value(), b.Value()
	if av > 0xFFFFFFFF || bv > 0xFFFFFFFF {
		return field.F{}, fmt.Errorf("chiplets: bitwise operand out of u32 range")
	}
	var accA, accB, accOut uint64
	var out uint64
	for i := 0; i < limbCount; i++ {
		shift := uint(i * limbWidth)
		la := uint8((av >> shift) & limbMask)
		lb := uint8((bv >> shift) & limbMask)
		var lo uint8
		switch op {
		case BitwiseAnd:
			lo = la & lb
		case BitwiseXor:
			lo = la ^ lb
		}
		accA |= uint64(la) << shift
		accB |= uint64(lb) << shift
		accOut |= uint64(lo) << shift
		out = accOut
		bw.trace = append(bw.trace, BitwiseRow{
			LimbA: la, LimbB: lb, LimbOut: lo,
			AccA: accA, AccB: accB, AccOut: accOut,
		})
	}
	return field.New(out), nil
}
