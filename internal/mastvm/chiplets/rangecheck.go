package chiplets

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// rangeBits is the checked range's width: 0..2^16-1, per spec.md §4.5's
// 16-bit range-check chiplet.
const rangeBits = 16

// RangeChecker proves every checked value lies in [0, 2^16) by logging
// it against a bus that a verifying AIR would compare to a fixed table
// of all 2^16 values with per-value multiplicities (grounded on
// vm/lookup_8bit_table.go's multiplicity-column pattern, widened from 8
// to 16 bits, and vm/cross_table_arguments.go's bus accumulator reused
// here directly as chiplets.Bus).
type RangeChecker struct {
	bus *Bus
}

// NewRangeChecker creates a range-check chiplet with a fresh bus.
func NewRangeChecker() *RangeChecker {
	return &RangeChecker{bus: NewBus()}
}

// Bus exposes the accumulated supply/demand multiset for trace-time
// balance checking.
func (r *RangeChecker) Bus() *Bus { return r.bus }

// Check verifies v fits in rangeBits bits, logging both a demand and a
// matching supply for it on the bus.
func (r *RangeChecker) Check(v field.F) error {
	raw := v.Value()
	if raw >= (1 << rangeBits) {
		return fmt.Errorf("chiplets: value %d exceeds %d-bit range", raw, rangeBits)
	}
	r.bus.Demand(key(raw))
	r.bus.Supply(key(raw))
	return nil
}

func key(v uint64) string {
	return fmt.Sprintf("%d", v)
}
