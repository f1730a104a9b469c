// Package exec implements the fast executor: the decoder's continuation
// engine driven to completion with no row emission, used both as the
// cheap default execution path and as the oracle the trace processor's
// output is checked against in differential tests (spec.md's invariant
// that both paths agree bit-for-bit).
//
// Grounded on vm/vm_state.go's Execute() (the no-trace variant,
// contrasted with ExecuteAndTrace()) — this implementation shares
// decoder's continuation engine the same way, by simply never invoking
// a row sink.
package exec

import (
	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/config"
	"github.com/vybium/mast-vm/internal/mastvm/decoder"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/host"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
	"github.com/vybium/mast-vm/internal/mastvm/stack"
)

// Result holds everything a caller needs after a program runs: the
// final stack contents (top MinDepth elements) and the public
// precompile-transcript digest.
type Result struct {
	StackTop         [stack.MinDepth]field.F
	TranscriptDigest field.Word
	Cycles           uint64
}

// Run executes root to completion in forest using a fresh engine seeded
// with the given public/secret inputs, returning the final stack state.
func Run(f *mast.Forest, root mast.NodeID, cfg config.Config, h host.Host, publicInputs []field.F, advicePush []field.F) (Result, error) {
	hasher := chiplets.NewHasher()
	engine := stack.NewEngine(hasher, chiplets.NewBitwise(), chiplets.NewRangeChecker(), chiplets.NewACE())
	engine.Host = h
	transcript := host.NewTranscript(hasher)
	engine.Transcript = transcript

	for i := len(publicInputs) - 1; i >= 0; i-- {
		engine.Stack.Push(publicInputs[i])
	}
	engine.Advice.PushStack(advicePush...)

	d := decoder.New(f, engine, h, &cfg, root)
	if err := d.Run(); err != nil {
		return Result{}, err
	}

	var out [stack.MinDepth]field.F
	for i := 0; i < stack.MinDepth; i++ {
		v, err := engine.Stack.Peek(i)
		if err != nil {
			break
		}
		out[i] = v
	}
	return Result{StackTop: out, TranscriptDigest: transcript.Digest(), Cycles: engine.Clock}, nil
}
