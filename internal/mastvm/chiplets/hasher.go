// Package chiplets implements the processor's co-processor subsystem:
// hasher, bitwise, range-check, and arithmetic-circuit-evaluator (ACE)
// chiplets, plus the LogUp-style bus the range checker logs its checked
// values on (spec.md §3.7, §4.3-§4.6). The hasher, bitwise and ACE
// chiplets keep plain instance logs and have no bus.
package chiplets

import (
	"golang.org/x/crypto/sha3"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// StateWidth is the permutation's state width (spec.md §3.6's sponge is
// built on the same 12-element state the hasher permutes).
const StateWidth = 12

// Hasher implements the contract of spec.md §4.3: a black-box 12-element
// permutation, plus Merkle path verify/update built on top of it.
//
// The permutation itself is treated as a black box by the spec ("concrete
// hash constructions... treated as black-box permutations" — spec.md §1);
// this type gives the fast/trace processors a concrete, deterministic
// function to call, backed by golang.org/x/crypto/sha3's extendable-output
// function the same way utils/channel.go backs its Fiat-Shamir transcript
// with sha3 — not a production-grade algebraic permutation, but black-box
// from every caller's point of view (callers only ever see
// Permute([12]F) [12]F).
type Hasher struct {
	trace *Trace
}

// NewHasher creates a hasher chiplet with an empty instance trace.
func NewHasher() *Hasher {
	return &Hasher{trace: &Trace{}}
}

// Trace returns the accumulated hasher sub-trace (8 rows per permutation
// call, spec.md §4.3).
func (h *Hasher) Trace() *Trace { return h.trace }

// Permute applies the permutation P to the given 12-element state and
// records an 8-row instance into the hasher sub-trace.
func (h *Hasher) Permute(state [StateWidth]field.F) [StateWidth]field.F {
	out := permute(state)
	h.trace.appendInstance(state, out)
	return out
}

// permute is the concrete black-box permutation backing. It absorbs the
// input state's byte encoding into a SHAKE256 XOF and squeezes enough
// output bytes to reconstitute 12 field elements, each reduced modulo p —
// deterministic, collision-resistant-in-practice, and good enough to
// exercise every caller of Permute identically between the fast and trace
// processors (spec.md invariant 2).
func permute(state [StateWidth]field.F) [StateWidth]field.F {
	var buf []byte
	for _, e := range state {
		b := e.Bytes()
		buf = append(buf, b[:]...)
	}
	xof := sha3.NewShake256()
	xof.Write(buf)
	out := make([]byte, StateWidth*8)
	xof.Read(out)

	var result [StateWidth]field.F
	for i := 0; i < StateWidth; i++ {
		var v uint64
		for j := 0; j < 8; j++ {
			v |= uint64(out[i*8+j]) << (8 * j)
		}
		result[i] = field.New(v)
	}
	return result
}

// MerklePath is an authentication path: one sibling digest per tree
// level, ordered leaf-to-root.
type MerklePath []field.Word

// VerifyMerklePath verifies that leaf, following path according to index's
// bits (0 = leaf is left child, 1 = right), folds to root. Returns the
// index it was given (spec.md §4.3's "verifies by folded permutation;
// fails on mismatch").
func (h *Hasher) VerifyMerklePath(root, leaf field.Word, path MerklePath, index uint64) (uint64, error) {
	cur := leaf
	idx := index
	for _, sibling := range path {
		if idx&1 == 0 {
			cur = h.HashPair(cur, sibling)
		} else {
			cur = h.HashPair(sibling, cur)
		}
		idx >>= 1
	}
	if !cur.Equal(root) {
		return 0, errMerkleMismatch
	}
	return index, nil
}

// UpdateMerkleRoot verifies oldLeaf against oldRoot along path, then
// recomputes the root with newLeaf in its place (spec.md §4.3).
func (h *Hasher) UpdateMerkleRoot(oldRoot, oldLeaf, newLeaf field.Word, path MerklePath, index uint64) (field.Word, error) {
	if _, err := h.VerifyMerklePath(oldRoot, oldLeaf, path, index); err != nil {
		return field.Word{}, err
	}
	cur := newLeaf
	idx := index
	for _, sibling := range path {
		if idx&1 == 0 {
			cur = h.HashPair(cur, sibling)
		} else {
			cur = h.HashPair(sibling, cur)
		}
		idx >>= 1
	}
	return cur, nil
}

// HashPair folds two digests into one via the permutation, rate-squeezing
// the first 4 output elements — the same absorb/squeeze convention used
// for MAST node digests (internal/mastvm/mast/digest.go).
func (h *Hasher) HashPair(left, right field.Word) field.Word {
	var state [StateWidth]field.F
	copy(state[4:8], left[:])
	copy(state[8:12], right[:])
	out := h.Permute(state)
	return field.Word{out[0], out[1], out[2], out[3]}
}
