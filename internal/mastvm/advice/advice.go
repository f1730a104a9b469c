// Package advice implements the non-deterministic advice provider:
// the prover-supplied data a program can read via advpop/advpopw/mstream
// but which is not itself part of the public inputs/outputs (spec.md
// §4.2). Grounded on vm/vm_state.go's SecretInput/SecretDigests tape
// pair, generalized from one flat tape to the spec's three-part
// provider (element stack, key-value map, Merkle store).
package advice

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// Provider holds everything a running program may consume
// non-deterministically: an element stack (a tape consumed front-to-back
// in the order PushStack filled it), a word-keyed map of
// element slices, and a Merkle store of trees the program can open paths
// into or update roots of via the hasher chiplet.
type Provider struct {
	stack []field.F
	kv    map[field.Word][]field.F
	trees map[field.Word]*MerkleTree
}

// NewProvider creates an empty advice provider.
func NewProvider() *Provider {
	return &Provider{
		kv:    make(map[field.Word][]field.F),
		trees: make(map[field.Word]*MerkleTree),
	}
}

// PushStack appends values to the advice stack's bottom, so that
// PopStack returns them in the order they are passed here
// (matches the teacher's SecretInput/SecretPointer forward-cursor
// convention: the advice tape is authored front-to-back, consumed
// front-to-back).
func (p *Provider) PushStack(values ...field.F) {
	p.stack = append(p.stack, values...)
}

// PopStack consumes and returns the next element from the advice stack
// (spec.md's `advpop`), erroring if the tape is exhausted.
func (p *Provider) PopStack() (field.F, error) {
	if len(p.stack) == 0 {
		return field.F{}, fmt.Errorf("advice: stack exhausted")
	}
	v := p.stack[0]
	p.stack = p.stack[1:]
	return v, nil
}

// PopStackWord consumes 4 elements (spec.md's `advpopw`).
func (p *Provider) PopStackWord() (field.Word, error) {
	if len(p.stack) < 4 {
		return field.Word{}, fmt.Errorf("advice: stack has fewer than 4 elements remaining")
	}
	w := field.Word{p.stack[0], p.stack[1], p.stack[2], p.stack[3]}
	p.stack = p.stack[4:]
	return w, nil
}

// InsertMap associates key with values, for later retrieval (e.g. by
// `mstream`-driven bulk loads keyed by a commitment word).
func (p *Provider) InsertMap(key field.Word, values []field.F) {
	cp := make([]field.F, len(values))
	copy(cp, values)
	p.kv[key] = cp
}

// Map retrieves the values associated with key.
func (p *Provider) Map(key field.Word) ([]field.F, error) {
	v, ok := p.kv[key]
	if !ok {
		return nil, fmt.Errorf("advice: no map entry for key %v", key)
	}
	return v, nil
}

// MerkleTree is an advice-provided Merkle tree the program can verify
// paths into or request root updates for, grounded on core/merkle.go's
// MerkleTree/Proof shape (sibling list keyed by leaf index).
type MerkleTree struct {
	Root     field.Word
	Leaves   []field.Word
	Depth    int
	siblings map[uint64]chiplets.MerklePath
}

// InsertTree registers a tree (already built off-line by the prover) so
// the program can later request authentication paths for its leaves.
func (p *Provider) InsertTree(root field.Word, leaves []field.Word, depth int, siblings map[uint64]chiplets.MerklePath) {
	p.trees[root] = &MerkleTree{Root: root, Leaves: leaves, Depth: depth, siblings: siblings}
}

// OpenPath returns the authentication path for the leaf at index in the
// tree rooted at root, used to satisfy `mpverify`/`mrupdate` without
// needing the whole tree materialized on the stack.
func (p *Provider) OpenPath(root field.Word, index uint64) (chiplets.MerklePath, field.Word, error) {
	t, ok := p.trees[root]
	if !ok {
		return nil, field.Word{}, fmt.Errorf("advice: no tree registered for root %v", root)
	}
	path, ok := t.siblings[index]
	if !ok {
		return nil, field.Word{}, fmt.Errorf("advice: no authentication path for index %d", index)
	}
	if index >= uint64(len(t.Leaves)) {
		return nil, field.Word{}, fmt.Errorf("advice: leaf index %d out of range", index)
	}
	return path, t.Leaves[index], nil
}

// UpdateRoot records that root has been replaced by newRoot after a
// successful mrupdate, so subsequent OpenPath calls against the new root
// resolve correctly.
func (p *Provider) UpdateRoot(oldRoot, newRoot field.Word, index uint64, newLeaf field.Word) error {
	t, ok := p.trees[oldRoot]
	if !ok {
		return fmt.Errorf("advice: no tree registered for root %v", oldRoot)
	}
	if index >= uint64(len(t.Leaves)) {
		return fmt.Errorf("advice: leaf index %d out of range", index)
	}
	updated := &MerkleTree{Root: newRoot, Leaves: append([]field.Word(nil), t.Leaves...), Depth: t.Depth, siblings: t.siblings}
	updated.Leaves[index] = newLeaf
	p.trees[newRoot] = updated
	return nil
}
