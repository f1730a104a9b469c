// Package memory implements per-context word-addressable memory, grounded
// on vm/ram_table.go's column set (clk, instructionType, ramPointer,
// ramValue) and vm_state.go's RAMRead/RAMWrite logging pair, generalized
// from one global address space to the spec's per-context isolation
// (spec.md §4.2: Call/SysCall each run in a fresh memory context).
package memory

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// ContextID identifies an isolated memory context, created fresh on
// every Call/SysCall per spec.md §4.7.
type ContextID uint32

// AccessKind distinguishes element- and word-granularity accesses for
// the access log the trace processor later materializes as RAM table
// rows.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
)

// AccessLogEntry is one memory operation, the unit vm/ram_table.go calls
// a RAM table row.
type AccessLogEntry struct {
	Clock   uint64
	Context ContextID
	Addr    uint64
	Kind    AccessKind
	Value   field.F
}

// Memory holds one word-addressable address space per context. Within a
// context, addresses are element-granular; `mloadw`/`mstorew` require
// 4-alignment (spec.md §4.2's "word accesses require the address be a
// multiple of 4").
type Memory struct {
	data  map[ContextID]map[uint64]field.F
	log   []AccessLogEntry
	clock uint64
}

// New creates an empty multi-context memory.
func New() *Memory {
	return &Memory{data: make(map[ContextID]map[uint64]field.F)}
}

// Tick advances the logical clock, called once per executed operation
// (stack.Engine.Step) so the
// access log carries the same `clk` column vm/ram_table.go keys rows by.
func (m *Memory) Tick() { m.clock++ }

func (m *Memory) ctx(c ContextID) map[uint64]field.F {
	if m.data[c] == nil {
		m.data[c] = make(map[uint64]field.F)
	}
	return m.data[c]
}

// ReadElement reads a single field element at addr in context c. Reading
// an address never written returns zero (RAM is zero-initialized, same
// convention as vm_state.go's RAM map default).
func (m *Memory) ReadElement(c ContextID, addr uint64) field.F {
	v := m.ctx(c)[addr]
	m.log = append(m.log, AccessLogEntry{Clock: m.clock, Context: c, Addr: addr, Kind: AccessRead, Value: v})
	return v
}

// WriteElement writes a single field element at addr in context c.
func (m *Memory) WriteElement(c ContextID, addr uint64, v field.F) {
	m.ctx(c)[addr] = v
	m.log = append(m.log, AccessLogEntry{Clock: m.clock, Context: c, Addr: addr, Kind: AccessWrite, Value: v})
}

// ReadWord reads 4 consecutive elements starting at addr, which must be
// a multiple of 4.
func (m *Memory) ReadWord(c ContextID, addr uint64) (field.Word, error) {
	if addr%4 != 0 {
		return field.Word{}, fmt.Errorf("memory: word access at %d is not 4-aligned", addr)
	}
	var w field.Word
	for i := uint64(0); i < 4; i++ {
		w[i] = m.ReadElement(c, addr+i)
	}
	return w, nil
}

// WriteWord writes 4 consecutive elements starting at addr, which must
// be a multiple of 4.
func (m *Memory) WriteWord(c ContextID, addr uint64, w field.Word) error {
	if addr%4 != 0 {
		return fmt.Errorf("memory: word access at %d is not 4-aligned", addr)
	}
	for i := uint64(0); i < 4; i++ {
		m.WriteElement(c, addr+i, w[i])
	}
	return nil
}

// Log returns the accumulated access log, in chronological order.
func (m *Memory) Log() []AccessLogEntry { return m.log }

// Snapshot returns a copy of every element stored in context c, keyed by
// address, without recording an access.
func (m *Memory) Snapshot(c ContextID) map[uint64]field.F {
	out := make(map[uint64]field.F, len(m.data[c]))
	for addr, v := range m.data[c] {
		out[addr] = v
	}
	return out
}
