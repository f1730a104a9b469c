package memory

import (
	"testing"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

func TestReadDefaultsToZero(t *testing.T) {
	m := New()
	if v := m.ReadElement(0, 42); !v.IsZero() {
		t.Fatalf("expected zero-initialized memory, got %v", v)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := New()
	m.WriteElement(0, 8, field.New(99))
	if v := m.ReadElement(0, 8); v.Value() != 99 {
		t.Fatalf("expected 99, got %v", v)
	}
}

func TestContextIsolation(t *testing.T) {
	m := New()
	m.WriteElement(0, 8, field.New(1))
	m.WriteElement(1, 8, field.New(2))
	if v := m.ReadElement(0, 8); v.Value() != 1 {
		t.Fatalf("context 0 polluted: got %v", v)
	}
	if v := m.ReadElement(1, 8); v.Value() != 2 {
		t.Fatalf("context 1 polluted: got %v", v)
	}
}

func TestWordAlignment(t *testing.T) {
	m := New()
	if err := m.WriteWord(0, 5, field.Word{}); err == nil {
		t.Fatalf("expected alignment error")
	}
	w := field.Word{field.New(1), field.New(2), field.New(3), field.New(4)}
	if err := m.WriteWord(0, 4, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := m.ReadWord(0, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != w {
		t.Fatalf("expected %v, got %v", w, got)
	}
}

func TestAccessLog(t *testing.T) {
	m := New()
	m.Tick()
	m.WriteElement(0, 0, field.New(1))
	m.Tick()
	m.ReadElement(0, 0)
	log := m.Log()
	if len(log) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(log))
	}
	if log[0].Kind != AccessWrite || log[1].Kind != AccessRead {
		t.Fatalf("unexpected log kinds: %+v", log)
	}
	if log[0].Clock != 1 || log[1].Clock != 2 {
		t.Fatalf("unexpected log clocks: %+v", log)
	}
}
