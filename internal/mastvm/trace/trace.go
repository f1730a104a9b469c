// Package trace implements the trace processor: the decoder driven to
// completion while emitting one main-trace row per Step plus the
// per-chiplet sub-traces accumulated along the way, with a fragment API
// for splitting a run into disjoint cycle ranges for parallel
// generation.
//
// Grounded on vm/aet.go's AET struct (one field per table, padded to the
// next power of two) and vm/trace_recorder.go's record-then-generate
// two-phase recorder; fragmenting is new relative to the teacher (which
// only ever produces one linear trace). Rows are appended one per Step
// in row-major order; there is no pre-sized row matrix and no
// column-major transpose.
package trace

import (
	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/config"
	"github.com/vybium/mast-vm/internal/mastvm/decoder"
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/host"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
	"github.com/vybium/mast-vm/internal/mastvm/stack"
)

// Row is one main-trace row: the decoder action that produced it, the
// clock it occurred at, and a snapshot of the MinDepth stack window
// (enough for an AIR to constrain stack-shape transitions between
// consecutive rows).
type Row struct {
	Clock    uint64
	Action   decoder.Action
	StackTop [stack.MinDepth]field.F
	Context  uint32
}

// Processor runs a program while recording a full execution trace.
type Processor struct {
	Forest *mast.Forest
	Engine *stack.Engine
	Host   host.Host
	Config config.Config

	decoder *decoder.Decoder
	rows    []Row
}

// NewProcessor creates a trace processor rooted at root, wiring a fresh
// engine and chiplet set (so sub-traces start empty for this run).
func NewProcessor(f *mast.Forest, root mast.NodeID, cfg config.Config, h host.Host) *Processor {
	hasher := chiplets.NewHasher()
	engine := stack.NewEngine(hasher, chiplets.NewBitwise(), chiplets.NewRangeChecker(), chiplets.NewACE())
	engine.Host = h
	engine.Transcript = host.NewTranscript(hasher)

	p := &Processor{Forest: f, Engine: engine, Host: h, Config: cfg}
	p.decoder = decoder.New(f, engine, h, &cfg, root)
	return p
}

// Run drives the processor to completion, appending one Row per decoder
// step.
func (p *Processor) Run() error {
	for !p.decoder.Done() {
		action, err := p.decoder.Step()
		if err != nil {
			return err
		}
		p.rows = append(p.rows, p.snapshot(action))
	}
	return nil
}

func (p *Processor) snapshot(action decoder.Action) Row {
	var top [stack.MinDepth]field.F
	for i := 0; i < stack.MinDepth; i++ {
		v, err := p.Engine.Stack.Peek(i)
		if err != nil {
			break
		}
		top[i] = v
	}
	return Row{
		Clock:    p.Engine.Clock,
		Action:   action,
		StackTop: top,
		Context:  uint32(p.Engine.Context),
	}
}

// Rows returns the recorded main trace.
func (p *Processor) Rows() []Row { return p.rows }

// HasherTrace returns the hasher chiplet's accumulated sub-trace.
func (p *Processor) HasherTrace() *chiplets.Trace { return p.Engine.Hasher.Trace() }

// BitwiseTrace returns the bitwise chiplet's accumulated sub-trace.
func (p *Processor) BitwiseTrace() []chiplets.BitwiseRow { return p.Engine.Bitwise.Trace() }

// ACETrace returns the arithmetic-circuit-evaluator's accumulated
// sub-trace.
func (p *Processor) ACETrace() []chiplets.ACERow { return p.Engine.ACE.Trace() }

// PaddedLength returns n rounded up to the next power of two, the same
// padding convention vm/aet.go's Pad() applies before a table is handed
// to the AIR.
func PaddedLength(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
