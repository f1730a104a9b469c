package chiplets

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// GateOp selects the arithmetic circuit evaluator's per-gate operation.
type GateOp int

const (
	GateAdd GateOp = iota
	GateMul
)

// wireIndexBits/wireIndexMask mirror spec.md §4.6's packed gate
// word layout: lhs in the low 30 bits, rhs in the next 30 bits, the
// opcode in the top 4 bits — `lhs + (rhs<<30) + (op<<60)`.
const (
	wireIndexBits = 30
	wireIndexMask = (1 << wireIndexBits) - 1
)

// Gate is one decoded row of the circuit: out = lhs OP rhs, where lhs/rhs
// are indices into the wire table.
type Gate struct {
	Op       GateOp
	LHS, RHS uint64
}

// DecodeGate unpacks a single gate word per spec.md §4.6.
func DecodeGate(word field.F) Gate {
	raw := word.Value()
	lhs := raw & wireIndexMask
	rhs := (raw >> wireIndexBits) & wireIndexMask
	op := raw >> (2 * wireIndexBits)
	gateOp := GateAdd
	if op&1 == 1 {
		gateOp = GateMul
	}
	return Gate{Op: gateOp, LHS: lhs, RHS: rhs}
}

// ACE (arithmetic circuit evaluator) implements spec.md's `eval_circuit`:
// it walks a list of gates, evaluating each sequentially over the wire
// table in the quadratic extension field E, appending each gate's output
// as a new wire, and the caller checks the final wire is zero.
//
// Grounded on the gate-by-gate sequential constraint-evaluation loop in
// the teacher's R1CS protocol file (the only teacher-corpus evaluator
// that walks a flat gate list against a wire table) — reused here purely
// for its evaluation-loop shape, not its R1CS semantics, since eval_circuit
// is a generic arithmetic circuit, not an R1CS instance.
type ACE struct {
	trace []ACERow
}

// ACERow is one instance of the ACE sub-trace: a gate plus its two input
// values and its computed output, the unit the trace processor
// materializes per spec.md §4.6.
type ACERow struct {
	Gate   Gate
	LHSVal field.E
	RHSVal field.E
	Out    field.E
}

// NewACE creates an arithmetic circuit evaluator with an empty trace.
func NewACE() *ACE { return &ACE{} }

// Trace returns the accumulated per-gate evaluation rows.
func (a *ACE) Trace() []ACERow { return a.trace }

// Eval evaluates gates sequentially against wires (read-only inputs plus
// appended gate outputs) and returns the final wire's value. It returns
// an error if a gate references a wire index that is not yet populated
// (circuits must be in topological order: every gate's inputs must
// already exist, either as an initial wire or as an earlier gate's
// output).
func (a *ACE) Eval(wires []field.E, gates []Gate) (field.E, error) {
	work := make([]field.E, len(wires))
	copy(work, wires)

	for _, g := range gates {
		if g.LHS >= uint64(len(work)) || g.RHS >= uint64(len(work)) {
			return field.E{}, fmt.Errorf("ace: gate references undefined wire (lhs=%d rhs=%d, have %d wires)", g.LHS, g.RHS, len(work))
		}
		lhsVal := work[g.LHS]
		rhsVal := work[g.RHS]
		var out field.E
		switch g.Op {
		case GateAdd:
			out = lhsVal.Add(rhsVal)
		case GateMul:
			out = lhsVal.Mul(rhsVal)
		default:
			return field.E{}, fmt.Errorf("ace: unknown gate op %d", g.Op)
		}
		a.trace = append(a.trace, ACERow{Gate: g, LHSVal: lhsVal, RHSVal: rhsVal, Out: out})
		work = append(work, out)
	}

	if len(work) == 0 {
		return field.E{}, fmt.Errorf("ace: empty circuit has no output wire")
	}
	return work[len(work)-1], nil
}

// CheckZero verifies the circuit's output wire is zero, the pass/fail
// condition spec.md attaches to `eval_circuit`.
func (a *ACE) CheckZero(out field.E) error {
	if !out.IsZero() {
		return fmt.Errorf("ace: circuit output is non-zero")
	}
	return nil
}
