// Package host defines the boundary between a running program and its
// embedder: event/debug callbacks and external-node resolution, grounded
// on pkg/vybium-starks-vm/vm.go's small-interface-plus-one-impl style.
package host

import (
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
)

// DebugOptions is the options argument passed to Host.OnDebug, per
// SPEC_FULL.md §12's supplemented debug-snapshot feature.
type DebugOptions struct {
	StackDepth    int
	MemoryContext *uint64
}

// Host is the interface a program's embedder implements to observe
// execution and resolve dynamic targets. Mirrors
// pkg/vybium-starks-vm/vm.go's VM interface in shape: a handful of small
// methods, one concrete no-op default implementation below.
type Host interface {
	// OnEvent is invoked on `emit`, carrying the immediate event id.
	OnEvent(eventID uint32)

	// OnDebug receives a formatted debug snapshot per opts (spec.md §3.3's
	// decorator kinds). The decoder does not execute decorators, so no
	// part of this module calls OnDebug.
	OnDebug(text string, opts DebugOptions)

	// OnTrace receives a free-form diagnostic string with no
	// execution-semantic effect. The decoder does not execute decorators,
	// so no part of this module calls OnTrace.
	OnTrace(text string)

	// ResolveMast resolves an External node's digest to a concrete node
	// id supplied out-of-band (spec.md §3.2's External variant), or a
	// Dyn/Dyncall digest not found in the current forest.
	ResolveMast(digest field.Word) (mast.NodeID, bool)
}

// NoopHost implements Host with no side effects beyond digest
// resolution, useful for the fast executor and for tests that don't
// care about diagnostics.
type NoopHost struct {
	Resolver func(field.Word) (mast.NodeID, bool)
}

func (NoopHost) OnEvent(uint32)               {}
func (NoopHost) OnDebug(string, DebugOptions) {}
func (NoopHost) OnTrace(string)               {}

func (h NoopHost) ResolveMast(digest field.Word) (mast.NodeID, bool) {
	if h.Resolver == nil {
		return 0, false
	}
	return h.Resolver(digest)
}
