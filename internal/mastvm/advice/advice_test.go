package advice

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
)

func TestStackPopOrderAndExhaustion(t *testing.T) {
	p := NewProvider()
	p.PushStack(field.New(1), field.New(2), field.New(3))

	v, err := p.PopStack()
	if err != nil || v.Value() != 1 {
		t.Fatalf("expected 1, got %v err=%v", v, err)
	}
	v, _ = p.PopStack()
	if v.Value() != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
	v, _ = p.PopStack()
	if v.Value() != 3 {
		t.Fatalf("expected 3, got %v", v)
	}
	if _, err := p.PopStack(); err == nil {
		t.Fatalf("expected exhaustion error")
	}
}

func TestPopStackWord(t *testing.T) {
	p := NewProvider()
	p.PushStack(field.New(1), field.New(2), field.New(3))
	if _, err := p.PopStackWord(); err == nil {
		t.Fatalf("expected error popping a word with only 3 elements")
	}
	p.PushStack(field.New(4))
	w, err := p.PopStackWord()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w[0].Value() != 1 || w[3].Value() != 4 {
		t.Fatalf("unexpected word: %v", w)
	}
}

func TestMapInsertAndLookup(t *testing.T) {
	p := NewProvider()
	key := field.Word{field.New(1), field.New(2), field.New(3), field.New(4)}
	p.InsertMap(key, []field.F{field.New(10), field.New(20)})

	got, err := p.Map(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Value() != 10 {
		t.Fatalf("unexpected map values: %v", got)
	}

	missing := field.Word{field.New(9), field.New(9), field.New(9), field.New(9)}
	if _, err := p.Map(missing); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestTreeOpenAndUpdate(t *testing.T) {
	p := NewProvider()
	h := chiplets.NewHasher()

	leaf0 := field.Word{field.New(1), field.New(2), field.New(3), field.New(4)}
	leaf1 := field.Word{field.New(5), field.New(6), field.New(7), field.New(8)}
	root := h.HashPair(leaf0, leaf1)

	siblings := map[uint64]chiplets.MerklePath{
		0: {leaf1},
		1: {leaf0},
	}
	p.InsertTree(root, []field.Word{leaf0, leaf1}, 1, siblings)

	path, leaf, err := p.OpenPath(root, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leaf != leaf0 || len(path) != 1 {
		t.Fatalf("unexpected open path result")
	}

	newLeaf := field.Word{field.New(99), field.New(2), field.New(3), field.New(4)}
	newRoot := h.HashPair(newLeaf, leaf1)
	if err := p.UpdateRoot(root, newRoot, 0, newLeaf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, leaf, err = p.OpenPath(newRoot, 0)
	if err != nil {
		t.Fatalf("unexpected error after update: %v", err)
	}
	if leaf != newLeaf {
		t.Fatalf("expected updated leaf, got %v", leaf)
	}
}
