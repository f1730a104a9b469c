package chiplets

import (
	"errors"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

var errMerkleMismatch = errors.New("chiplets: merkle path does not fold to the claimed root")

// Instance is one permutation call's before/after state, the unit the
// hasher chiplet logs so the trace processor can materialize it as an
// 8-row sub-trace (spec.md §4.3). Instances are not matched against
// `hperm`/`mpverify`/`mrupdate` requests on any bus.
type Instance struct {
	Input  [StateWidth]field.F
	Output [StateWidth]field.F
}

// Trace accumulates one Instance per Permute call, in call order. A fresh
// Trace is created per program run (mirrors vm/hash_table.go's per-run
// sub-trace accumulation).
type Trace struct {
	Instances []Instance
}

func (t *Trace) appendInstance(in, out [StateWidth]field.F) {
	t.Instances = append(t.Instances, Instance{Input: in, Output: out})
}

// RowCount returns the number of trace rows this chiplet contributes:
// 8 rows per permutation call (spec.md §4.3).
func (t *Trace) RowCount() int { return len(t.Instances) * 8 }
