// Package mastvm is the public API of the MAST-based execution core: a
// Processor wraps forest construction, the fast executor, and the trace
// processor behind a small surface, the way pkg/vybium-starks-vm/vm.go's
// vmImpl wraps vm.VMState behind the VM interface.
package mastvm

import (
	"strings"

	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/config"
	"github.com/vybium/mast-vm/internal/mastvm/exec"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/host"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
	"github.com/vybium/mast-vm/internal/mastvm/stack"
	"github.com/vybium/mast-vm/internal/mastvm/trace"
)

// Config is the public execution configuration, re-exported so callers
// never need to import the internal package directly.
type Config = config.Config

// DefaultConfig returns Config's conservative defaults.
func DefaultConfig() Config { return config.Default() }

// Host is the public embedder interface (event/debug/trace callbacks,
// External/Dyn resolution).
type Host = host.Host

// NoopHost is a Host with no side effects beyond optional digest
// resolution.
type NoopHost = host.NoopHost

// Processor builds a MAST forest from a ProgramBuilder and runs it via
// either the fast executor or the trace processor.
type Processor struct {
	forest *mast.Forest
	root   NodeID
	cfg    Config
	h      Host
}

// NewProcessor wraps an already-built forest and entry-point root.
func NewProcessor(forest *mast.Forest, root NodeID, cfg Config, h Host) *Processor {
	if h == nil {
		h = NoopHost{}
	}
	return &Processor{forest: forest, root: root, cfg: cfg, h: h}
}

// Execute runs the program via the fast executor and returns its final
// outputs.
func (p *Processor) Execute(in Inputs) (Outputs, error) {
	if err := p.cfg.Validate(); err != nil {
		return Outputs{}, wrap(ErrInvalidProgram, "invalid configuration", err)
	}
	res, err := exec.Run(p.forest, p.root, p.cfg, p.h, in.PublicStack, in.Advice)
	if err != nil {
		return Outputs{}, wrap(classifyRunError(err), "execution failed", err)
	}
	return Outputs{
		Stack:            res.StackTop[:],
		TranscriptDigest: res.TranscriptDigest,
		Cycles:           res.Cycles,
	}, nil
}

// ExecuteWithTrace runs the program via the trace processor, returning
// the outputs plus the main-trace rows and chiplet sub-traces for
// downstream proving.
func (p *Processor) ExecuteWithTrace(in Inputs) (Outputs, []trace.Row, error) {
	if err := p.cfg.Validate(); err != nil {
		return Outputs{}, nil, wrap(ErrInvalidProgram, "invalid configuration", err)
	}
	tp := trace.NewProcessor(p.forest, p.root, p.cfg, p.h)
	for i := len(in.PublicStack) - 1; i >= 0; i-- {
		tp.Engine.Stack.Push(in.PublicStack[i])
	}
	tp.Engine.Advice.PushStack(in.Advice...)

	if err := tp.Run(); err != nil {
		return Outputs{}, nil, wrap(classifyRunError(err), "traced execution failed", err)
	}

	var top [stack.MinDepth]field.F
	for i := 0; i < stack.MinDepth; i++ {
		v, err := tp.Engine.Stack.Peek(i)
		if err != nil {
			break
		}
		top[i] = v
	}
	out := Outputs{
		Stack:            top[:],
		TranscriptDigest: tp.Engine.Transcript.Digest(),
		Cycles:           tp.Engine.Clock,
	}
	return out, tp.Rows(), nil
}

// RootDigest returns the MAST digest of the processor's entry point,
// the program-attestation digest a verifier binds its public inputs to
// (SPEC_FULL.md §12's supplemented program-attestation feature).
func (p *Processor) RootDigest() (Digest, error) {
	return p.forest.Digest(p.root)
}

func classifyRunError(err error) ErrorCode {
	// The internal packages return plain fmt.Errorf errors rather than a
	// typed hierarchy (matching vm_instructions.go's own style); the
	// public API classifies by message substring so callers still get a
	// stable ErrorCode without every internal package depending on this
	// one.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "exceeded cycle cap"):
		return ErrCycleCapExceeded
	case strings.Contains(msg, "not 4-aligned"):
		return ErrMemoryMisaligned
	case strings.Contains(msg, "assert failed"):
		return ErrAssertionFailed
	case strings.Contains(msg, "no node found for digest"):
		return ErrUnresolvedDigest
	case strings.Contains(msg, "advice"):
		return ErrAdviceExhausted
	case strings.Contains(msg, "kernel root"):
		return ErrKernelViolation
	default:
		return ErrUnknown
	}
}

// co-processor chiplets are re-exported only where a caller legitimately
// needs to inspect a sub-trace shape without reaching into internal/.
type (
	HasherTrace = chiplets.Trace
	BitwiseRow  = chiplets.BitwiseRow
	ACERow      = chiplets.ACERow
)
