package stack

import (
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/ops"
)

// cryptoHelper implements the three FRI/DEEP helper-register operations
// (`horner_base`, `horner_ext`, `frie2f4`): evaluate-by-Horner's-method
// and a degree-4-extension FRI fold step, each consuming a fixed set of
// stack slots for their coefficients/evaluation point and leaving the
// accumulated result on top.
//
// Open question (spec.md §9): the exact helper-register-to-stack-slot
// mapping these three operations use is defined by whichever verifier
// AIR crate eventually checks these traces, and no such crate is
// available in this workspace to consult. The layout below is
// self-consistent (the fast executor and trace processor always agree,
// satisfying spec.md's invariant 2) but should be treated as a stand-in
// until a concrete AIR pins the real register assignment.
func (e *Engine) cryptoHelper(op ops.Op) error {
	switch op {
	case ops.OpHornerBase:
		coeff := e.Stack.Pop()
		point := e.Stack.Pop()
		acc := e.Stack.Pop()
		e.Stack.Push(acc.Mul(point).Add(coeff))
	case ops.OpHornerExt:
		c1, c0 := e.Stack.Pop(), e.Stack.Pop()
		p1, p0 := e.Stack.Pop(), e.Stack.Pop()
		a1, a0 := e.Stack.Pop(), e.Stack.Pop()
		acc := field.NewE(a0, a1)
		point := field.NewE(p0, p1)
		coeff := field.NewE(c0, c1)
		res := acc.Mul(point).Add(coeff)
		e.Stack.Push(res.A0)
		e.Stack.Push(res.A1)
	case ops.OpFriE2F4:
		// Degree-4 extension FRI fold: combine two degree-2-extension
		// evaluations at +/-x into one degree-2-extension value at x^2
		// via the standard even/odd split, using alpha as the folding
		// challenge.
		alpha1, alpha0 := e.Stack.Pop(), e.Stack.Pop()
		negY1, negY0 := e.Stack.Pop(), e.Stack.Pop()
		posY1, posY0 := e.Stack.Pop(), e.Stack.Pop()
		alpha := field.NewE(alpha0, alpha1)
		posY := field.NewE(posY0, posY1)
		negY := field.NewE(negY0, negY1)
		two := field.NewE(field.New(2), field.Zero)
		twoInv, err := two.Inv()
		if err != nil {
			return err
		}
		even := posY.Add(negY).Mul(twoInv)
		odd := posY.Sub(negY).Mul(twoInv)
		folded := even.Add(alpha.Mul(odd))
		e.Stack.Push(folded.A0)
		e.Stack.Push(folded.A1)
	}
	return nil
}
