package mast

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
)

// Forest is a MAST forest: a flat, id-indexed table of nodes plus a set
// of designated roots, following DESIGN NOTES §9 ("represent nodes as
// indexed entries... do not use owning references between nodes").
type Forest struct {
	nodes      []Node
	decorators *DecoratorTable
	roots      map[string]NodeID // digest bytes -> id, for root lookup by digest
}

// NewForest wraps a validated node slice (built by Builder) into a Forest
// and computes every node's digest bottom-up. Nodes must be topologically
// ordered so that every child id is less than its parent's id — the same
// ordering constraint the teacher's flat Program imposes on instruction
// offsets, generalized from "linear" to "DAG, children first".
func NewForest(nodes []Node, decorators *DecoratorTable, h *chiplets.Hasher) (*Forest, error) {
	f := &Forest{nodes: nodes, decorators: decorators, roots: make(map[string]NodeID)}
	for id := range nodes {
		if err := f.validateChildren(NodeID(id)); err != nil {
			return nil, err
		}
	}
	for id := range nodes {
		if err := f.computeDigestFor(NodeID(id), h); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Forest) validateChildren(id NodeID) error {
	n := f.nodes[id]
	check := func(child NodeID) error {
		if int(child) >= len(f.nodes) {
			return fmt.Errorf("mast: node %d references out-of-range child %d", id, child)
		}
		if child >= id {
			return fmt.Errorf("mast: node %d references non-prior child %d (forest must be topologically ordered)", id, child)
		}
		return nil
	}
	switch n.Kind {
	case KindJoin, KindSplit:
		if err := check(n.Children[0]); err != nil {
			return err
		}
		return check(n.Children[1])
	case KindLoop:
		return check(n.Children[0])
	case KindCall, KindSysCall:
		return check(n.Callee)
	}
	return nil
}

func (f *Forest) computeDigestFor(id NodeID, h *chiplets.Hasher) error {
	n := &f.nodes[id]
	var children [2]Digest
	switch n.Kind {
	case KindJoin, KindSplit:
		children[0] = f.nodes[n.Children[0]].digest
		children[1] = f.nodes[n.Children[1]].digest
	case KindLoop:
		children[0] = f.nodes[n.Children[0]].digest
	case KindCall, KindSysCall:
		children[0] = f.nodes[n.Callee].digest
	}
	n.digest = computeDigest(h, *n, children)
	n.hasDigest = true
	f.roots[string(digestKey(n.digest))] = id
	return nil
}

func digestKey(d Digest) []byte {
	key := make([]byte, 0, 32)
	for _, e := range d {
		b := e.Bytes()
		key = append(key, b[:]...)
	}
	return key
}

// Node returns the node stored at id.
func (f *Forest) Node(id NodeID) (Node, error) {
	if int(id) >= len(f.nodes) {
		return Node{}, fmt.Errorf("mast: node id %d out of range", id)
	}
	return f.nodes[id], nil
}

// Digest returns the content-addressed digest of node id.
func (f *Forest) Digest(id NodeID) (Digest, error) {
	n, err := f.Node(id)
	if err != nil {
		return Digest{}, err
	}
	return n.digest, nil
}

// ByDigest looks up a node id by its digest, used by Dyn/Dyncall/External
// resolution (spec.md §4.7) before falling back to the host.
func (f *Forest) ByDigest(d Digest) (NodeID, bool) {
	id, ok := f.roots[string(digestKey(d))]
	return id, ok
}

// Decorators returns the decorators attached to node id.
func (f *Forest) Decorators(id NodeID) []Decorator {
	if f.decorators == nil {
		return nil
	}
	return f.decorators.For(id)
}

// VerifyDigests recomputes every node's digest from its (already computed
// and trusted) children and checks it against the stored value — spec.md
// §8 property 8, "MAST digest purity".
func (f *Forest) VerifyDigests(h *chiplets.Hasher) error {
	for id := range f.nodes {
		n := f.nodes[id]
		var children [2]Digest
		switch n.Kind {
		case KindJoin, KindSplit:
			children[0] = f.nodes[n.Children[0]].digest
			children[1] = f.nodes[n.Children[1]].digest
		case KindLoop:
			children[0] = f.nodes[n.Children[0]].digest
		case KindCall, KindSysCall:
			children[0] = f.nodes[n.Callee].digest
		}
		recomputed := computeDigest(h, n, children)
		if !recomputed.Equal(n.digest) {
			return fmt.Errorf("mast: digest purity violated at node %d", id)
		}
	}
	return nil
}

// Builder assembles nodes into a Forest in topological (children-first)
// order, the same append-and-index style as the teacher's
// Program.AddInstruction.
type Builder struct {
	nodes       []Node
	decorators  *DecoratorBuilder
	pendingDecs map[NodeID][]Decorator
}

// NewBuilder starts an empty forest builder.
func NewBuilder() *Builder {
	return &Builder{pendingDecs: make(map[NodeID][]Decorator)}
}

// AddNode appends a node and returns its freshly assigned id. Children
// must already have been added (lower ids).
func (b *Builder) AddNode(n Node) NodeID {
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

// Decorate attaches decorators to a previously added node.
func (b *Builder) Decorate(id NodeID, decorators ...Decorator) {
	b.pendingDecs[id] = append(b.pendingDecs[id], decorators...)
}

// Build finalizes the decorator CSR table and the Forest, computing every
// node's digest via h.
func (b *Builder) Build(h *chiplets.Hasher) (*Forest, error) {
	db := NewDecoratorBuilder(len(b.nodes))
	for id := 0; id < len(b.nodes); id++ {
		db.AddRow(b.pendingDecs[NodeID(id)]...)
	}
	table, err := db.Build()
	if err != nil {
		return nil, err
	}
	return NewForest(b.nodes, table, h)
}
