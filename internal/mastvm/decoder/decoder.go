// Package decoder implements the continuation-stack walk over a MAST
// forest, driving the stack engine node by node. Grounded on
// vm/vm_state.go's Step/ExecuteInstruction fetch-dispatch-advance loop,
// generalized from "linear IP increment" to "pop-and-push explicit
// continuations" per DESIGN NOTES §9's guidance to avoid recursive DAG
// walks so a trace fragment can resume at any row boundary.
package decoder

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/config"
	"github.com/vybium/mast-vm/internal/mastvm/host"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
	"github.com/vybium/mast-vm/internal/mastvm/memory"
	"github.com/vybium/mast-vm/internal/mastvm/stack"
)

// Action reports what kind of step Decoder.Step just performed, the
// four-way classification spec.md §4.7 names: StartNode (a node was
// popped off the continuation stack and dispatched), ResumeBasicBlock
// (one operation inside a Block ran), Respan (a Loop's re-entry
// condition was evaluated), FinishNode (a node's continuation frame was
// fully retired).
type Action int

const (
	ActionStartNode Action = iota
	ActionResumeBasicBlock
	ActionRespan
	ActionFinishNode
	ActionDone
)

func (a Action) String() string {
	switch a {
	case ActionStartNode:
		return "StartNode"
	case ActionResumeBasicBlock:
		return "ResumeBasicBlock"
	case ActionRespan:
		return "Respan"
	case ActionFinishNode:
		return "FinishNode"
	case ActionDone:
		return "Done"
	default:
		return "Unknown"
	}
}

type frameKind int

const (
	frameExec frameKind = iota
	frameBlockResume
	frameLoopCheck
	framePopContext
)

type frame struct {
	kind   frameKind
	node   mast.NodeID
	opIdx  int
	ctxSav memory.ContextID
	calSav mast.Digest
}

// Decoder walks a MAST forest using an explicit continuation stack
// instead of native recursion, driving a stack.Engine for every Block
// node it enters.
type Decoder struct {
	Forest *mast.Forest
	Engine *stack.Engine
	Host   host.Host
	Config *config.Config // nil disables SysCall kernel-root checking

	frames    []frame
	nextCtx   memory.ContextID
	cycles    uint64
	cycleCap  uint64
}

// New creates a decoder ready to start at root.
func New(f *mast.Forest, e *stack.Engine, h host.Host, cfg *config.Config, root mast.NodeID) *Decoder {
	cycleCap := uint64(0)
	if cfg != nil {
		cycleCap = cfg.CycleCap
	}
	d := &Decoder{Forest: f, Engine: e, Host: h, Config: cfg, cycleCap: cycleCap}
	d.frames = append(d.frames, frame{kind: frameExec, node: root})
	return d
}

// Done reports whether the continuation stack is empty.
func (d *Decoder) Done() bool { return len(d.frames) == 0 }

// Run drives the decoder to completion, ignoring the per-step Action
// (used by the fast executor, which only cares about the final state
// and any error).
func (d *Decoder) Run() error {
	for !d.Done() {
		if _, err := d.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step performs exactly one unit of work and reports which kind it was,
// so the trace processor can emit the matching row shape.
func (d *Decoder) Step() (Action, error) {
	if len(d.frames) == 0 {
		return ActionDone, nil
	}
	if d.cycleCap != 0 {
		d.cycles++
		if d.cycles > d.cycleCap {
			return ActionDone, fmt.Errorf("decoder: exceeded cycle cap %d", d.cycleCap)
		}
	}

	top := &d.frames[len(d.frames)-1]
	switch top.kind {
	case frameExec:
		return d.stepExec(*top)
	case frameBlockResume:
		return d.stepBlockResume(top)
	case frameLoopCheck:
		return d.stepLoopCheck(*top)
	case framePopContext:
		d.Engine.Context = top.ctxSav
		d.Engine.Caller = top.calSav
		d.frames = d.frames[:len(d.frames)-1]
		return ActionFinishNode, nil
	}
	return ActionDone, fmt.Errorf("decoder: unknown frame kind %d", top.kind)
}

func (d *Decoder) popFrame() {
	d.frames = d.frames[:len(d.frames)-1]
}

func (d *Decoder) pushExec(id mast.NodeID) {
	d.frames = append(d.frames, frame{kind: frameExec, node: id})
}

func (d *Decoder) stepExec(top frame) (Action, error) {
	d.popFrame()
	n, err := d.Forest.Node(top.node)
	if err != nil {
		return ActionDone, err
	}

	switch n.Kind {
	case mast.KindBlock:
		d.frames = append(d.frames, frame{kind: frameBlockResume, node: top.node, opIdx: 0})

	case mast.KindJoin:
		d.pushExec(n.Children[1])
		d.pushExec(n.Children[0])

	case mast.KindSplit:
		cond := d.Engine.Stack.Pop()
		if !cond.IsBool() {
			return ActionDone, fmt.Errorf("decoder: Split condition is not boolean")
		}
		if !cond.IsZero() {
			d.pushExec(n.Children[0])
		} else {
			d.pushExec(n.Children[1])
		}

	case mast.KindLoop:
		cond := d.Engine.Stack.Pop()
		if !cond.IsBool() {
			return ActionDone, fmt.Errorf("decoder: Loop condition is not boolean")
		}
		if !cond.IsZero() {
			d.frames = append(d.frames, frame{kind: frameLoopCheck, node: top.node})
			d.pushExec(n.Children[0])
		}

	case mast.KindCall, mast.KindSysCall:
		if n.Kind == mast.KindSysCall && d.Config != nil {
			calleeDigest, err := d.Forest.Digest(n.Callee)
			if err != nil {
				return ActionDone, err
			}
			if !d.Config.IsKernelRoot(calleeDigest) {
				return ActionDone, fmt.Errorf("decoder: SysCall target is not a trusted kernel root")
			}
		}
		d.enterContext(top.node)
		d.pushExec(n.Callee)

	case mast.KindDyn, mast.KindDyncall:
		digestWord := d.Engine.Stack.PopWord()
		target, err := d.resolve(digestWord)
		if err != nil {
			return ActionDone, err
		}
		if n.Kind == mast.KindDyncall {
			d.enterContextWithCaller(digestWord)
		}
		d.pushExec(target)

	case mast.KindExternal:
		target, err := d.resolve(n.ExternalDigest)
		if err != nil {
			return ActionDone, err
		}
		d.pushExec(target)

	default:
		return ActionDone, fmt.Errorf("decoder: unknown node kind %d", n.Kind)
	}
	return ActionStartNode, nil
}

func (d *Decoder) enterContext(callSite mast.NodeID) {
	digest, _ := d.Forest.Digest(callSite)
	d.enterContextWithCaller(digest)
}

func (d *Decoder) enterContextWithCaller(caller mast.Digest) {
	d.frames = append(d.frames, frame{
		kind:   framePopContext,
		ctxSav: d.Engine.Context,
		calSav: caller,
	})
	d.nextCtx++
	d.Engine.Context = d.nextCtx
	d.Engine.Caller = caller
}

func (d *Decoder) resolve(digest mast.Digest) (mast.NodeID, error) {
	if id, ok := d.Forest.ByDigest(digest); ok {
		return id, nil
	}
	if d.Host != nil {
		if id, ok := d.Host.ResolveMast(digest); ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("decoder: no node found for digest %v", digest)
}

func (d *Decoder) stepBlockResume(top *frame) (Action, error) {
	n, err := d.Forest.Node(top.node)
	if err != nil {
		return ActionDone, err
	}
	op, ok := flatOp(n, top.opIdx)
	if !ok {
		d.popFrame()
		return ActionFinishNode, nil
	}
	if err := d.Engine.Step(op.Op, op.Immediate); err != nil {
		return ActionDone, err
	}
	top.opIdx++
	return ActionResumeBasicBlock, nil
}

func (d *Decoder) stepLoopCheck(top frame) (Action, error) {
	d.popFrame()
	cond := d.Engine.Stack.Pop()
	if !cond.IsBool() {
		return ActionDone, fmt.Errorf("decoder: Loop re-entry condition is not boolean")
	}
	n, err := d.Forest.Node(top.node)
	if err != nil {
		return ActionDone, err
	}
	if !cond.IsZero() {
		d.frames = append(d.frames, frame{kind: frameLoopCheck, node: top.node})
		d.pushExec(n.Children[0])
	}
	return ActionRespan, nil
}

// flatOp returns the idx-th operation of n's batches/groups in program
// order, or ok=false if idx is past the end.
func flatOp(n mast.Node, idx int) (mast.EncodedOp, bool) {
	i := 0
	for _, batch := range n.Batches {
		for _, group := range batch.Groups {
			for _, op := range group.Ops {
				if i == idx {
					return op, true
				}
				i++
			}
		}
	}
	return mast.EncodedOp{}, false
}
