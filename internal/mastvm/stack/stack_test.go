package stack

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

func TestPushPopOrder(t *testing.T) {
	s := New()
	s.Push(field.New(1))
	s.Push(field.New(2))
	if v := s.Pop(); v.Value() != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
	if v := s.Pop(); v.Value() != 1 {
		t.Fatalf("expected 1, got %v", v)
	}
}

func TestMinDepthFloor(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		v := s.Pop()
		if !v.IsZero() {
			t.Fatalf("expected zero on empty stack, got %v", v)
		}
	}
}

func TestOverflowRoundTrip(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		s.Push(field.New(uint64(i)))
	}
	for i := 19; i >= 0; i-- {
		v := s.Pop()
		if v.Value() != uint64(i) {
			t.Fatalf("expected %d, got %v", i, v)
		}
	}
}

func TestSwap(t *testing.T) {
	s := New()
	s.Push(field.New(1))
	s.Push(field.New(2))
	if err := s.Swap(0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := s.Pop(); v.Value() != 1 {
		t.Fatalf("expected 1 after swap, got %v", v)
	}
}

func TestMovUpMovDn(t *testing.T) {
	s := New()
	s.Push(field.New(3))
	s.Push(field.New(2))
	s.Push(field.New(1))
	if err := s.MovUp(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := s.Pop(); v.Value() != 3 {
		t.Fatalf("expected 3 on top after movup, got %v", v)
	}
	if err := s.MovDn(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWordPushPop(t *testing.T) {
	s := New()
	w := field.Word{field.New(1), field.New(2), field.New(3), field.New(4)}
	s.PushWord(w)
	got := s.PopWord()
	if got != w {
		t.Fatalf("expected %v, got %v", w, got)
	}
}
