// Package stack implements the operand stack and its 58 operation codes,
// grounded on vm/instruction.go's AllInstructions table-driven metadata
// and vm/vm_instructions.go's one-handler-per-op dispatch style
// (execPop, execPush, ... invoked from vm_state.go's ExecuteInstruction
// switch). Overflow-to-RAM behavior generalizes vm_state.go's
// StackPush/StackPop (which spill past index 16 into the RAM map) into a
// dedicated overflow table, per vm/opstack_table.go's OpStackTableImpl
// column set (ib1ShrinkStack, stackPointer, firstUnderflowElement).
package stack

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// MinDepth is the stack's always-addressable depth: positions 0..15 are
// always valid even when logically empty (read as zero), matching
// spec.md §4.1's "the stack never underflows below 16 elements; reads
// past the logical top within this window return zero".
const MinDepth = 16

// OverflowEntry is one element that has spilled past MinDepth, the same
// three-field shape vm/opstack_table.go's OpStackTableImpl tracks
// (shrink flag, stack pointer, first-underflow value) reduced to what a
// LIFO overflow table actually needs to store.
type OverflowEntry struct {
	StackPointer uint64
	Value        field.F
}

// Stack is the processor's operand stack: a fixed MinDepth window backed
// by an overflow LIFO for anything pushed beyond it.
type Stack struct {
	top      [MinDepth]field.F
	depth    int // logical depth, can exceed MinDepth
	overflow []OverflowEntry
}

// New creates an empty stack (all MinDepth slots read as zero).
func New() *Stack {
	return &Stack{depth: MinDepth}
}

// Depth returns the current logical stack depth.
func (s *Stack) Depth() int { return s.depth }

// Peek returns the value at position i from the top (0 = top element)
// without removing it. Positions within MinDepth are always valid.
func (s *Stack) Peek(i int) (field.F, error) {
	if i < 0 {
		return field.F{}, fmt.Errorf("stack: negative index %d", i)
	}
	if i < MinDepth {
		return s.top[i], nil
	}
	idx := len(s.overflow) - 1 - (i - MinDepth)
	if idx < 0 {
		return field.F{}, fmt.Errorf("stack: index %d exceeds depth %d", i, s.depth)
	}
	return s.overflow[idx].Value, nil
}

// Push shifts every element down by one and places v on top.
func (s *Stack) Push(v field.F) {
	if s.depth >= MinDepth {
		spill := s.top[MinDepth-1]
		s.overflow = append(s.overflow, OverflowEntry{StackPointer: uint64(s.depth), Value: spill})
	}
	for i := MinDepth - 1; i > 0; i-- {
		s.top[i] = s.top[i-1]
	}
	s.top[0] = v
	s.depth++
}

// Pop removes and returns the top element. Popping below MinDepth
// elements returns zero rather than erroring (spec.md §4.1's fixed
// 16-element floor).
func (s *Stack) Pop() field.F {
	v := s.top[0]
	for i := 0; i < MinDepth-1; i++ {
		s.top[i] = s.top[i+1]
	}
	if n := len(s.overflow); n > 0 {
		s.top[MinDepth-1] = s.overflow[n-1].Value
		s.overflow = s.overflow[:n-1]
	} else {
		s.top[MinDepth-1] = field.Zero
	}
	if s.depth > MinDepth {
		s.depth--
	}
	return v
}

// PopWord pops 4 elements in LIFO order (the first popped becomes word[0]).
func (s *Stack) PopWord() field.Word {
	var w field.Word
	for i := 0; i < 4; i++ {
		w[i] = s.Pop()
	}
	return w
}

// PushWord pushes a word's elements so the first index ends up on top
// (mirrors PopWord's inverse).
func (s *Stack) PushWord(w field.Word) {
	for i := 3; i >= 0; i-- {
		s.Push(w[i])
	}
}

// Swap exchanges the elements at positions i and j from the top.
func (s *Stack) Swap(i, j int) error {
	vi, err := s.Peek(i)
	if err != nil {
		return err
	}
	vj, err := s.Peek(j)
	if err != nil {
		return err
	}
	if err := s.set(i, vj); err != nil {
		return err
	}
	return s.set(j, vi)
}

func (s *Stack) set(i int, v field.F) error {
	if i < 0 {
		return fmt.Errorf("stack: negative index %d", i)
	}
	if i < MinDepth {
		s.top[i] = v
		return nil
	}
	idx := len(s.overflow) - 1 - (i - MinDepth)
	if idx < 0 {
		return fmt.Errorf("stack: index %d exceeds depth %d", i, s.depth)
	}
	s.overflow[idx].Value = v
	return nil
}

// MovUp moves the element at position n to the top, shifting the
// elements in between down by one.
func (s *Stack) MovUp(n int) error {
	v, err := s.Peek(n)
	if err != nil {
		return err
	}
	for i := n; i > 0; i-- {
		prev, err := s.Peek(i - 1)
		if err != nil {
			return err
		}
		if err := s.set(i, prev); err != nil {
			return err
		}
	}
	return s.set(0, v)
}

// MovDn moves the top element to position n, shifting the elements in
// between up by one.
func (s *Stack) MovDn(n int) error {
	v, err := s.Peek(0)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		next, err := s.Peek(i + 1)
		if err != nil {
			return err
		}
		if err := s.set(i, next); err != nil {
			return err
		}
	}
	return s.set(n, v)
}

// Drop discards the top element.
func (s *Stack) Drop() { s.Pop() }
