// Command mastvm-run loads a MAST program description and its inputs as
// JSON lines from stdin, executes it, and writes the resulting stack and
// transcript digest to stdout as JSON — the same line-oriented JSON-in,
// JSON-out shape as the teacher's prover entry point, generalized from a
// flat instruction list to a MAST node table.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/pkg/mastvm"
)

// nodeInput is one entry of the "nodes" array. Kind selects which of the
// remaining fields apply; unused fields are left zero.
type nodeInput struct {
	Kind           string    `json:"kind"`
	Ops            []opInput `json:"ops,omitempty"`
	A              int       `json:"a,omitempty"`
	B              int       `json:"b,omitempty"`
	Body           int       `json:"body,omitempty"`
	Callee         int       `json:"callee,omitempty"`
	ExternalDigest [4]uint64 `json:"external_digest,omitempty"`
}

type opInput struct {
	Op        string `json:"op"`
	Immediate uint64 `json:"imm,omitempty"`
}

// programInput is line 1: the MAST node table plus the entry-point root.
type programInput struct {
	Nodes []nodeInput `json:"nodes"`
	Root  int         `json:"root"`
}

// runInput is line 2: the public operand stack and the advice tape.
type runInput struct {
	PublicStack []uint64 `json:"public_stack"`
	Advice      []uint64 `json:"advice"`
}

// configInput is an optional line 3 overriding mastvm.DefaultConfig.
type configInput struct {
	CycleCap    uint64      `json:"cycle_cap,omitempty"`
	KernelRoots [][4]uint64 `json:"kernel_roots,omitempty"`
}

type runOutput struct {
	Stack            []uint64  `json:"stack"`
	TranscriptDigest [4]uint64 `json:"transcript_digest"`
	Cycles           uint64    `json:"cycles"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		fatal("failed to read program")
	}
	var prog programInput
	if err := json.Unmarshal(scanner.Bytes(), &prog); err != nil {
		fatal(fmt.Sprintf("failed to parse program: %v", err))
	}

	if !scanner.Scan() {
		fatal("failed to read run inputs")
	}
	var run runInput
	if err := json.Unmarshal(scanner.Bytes(), &run); err != nil {
		fatal(fmt.Sprintf("failed to parse run inputs: %v", err))
	}

	cfg := mastvm.DefaultConfig()
	if scanner.Scan() && len(scanner.Bytes()) > 0 {
		var cfgIn configInput
		if err := json.Unmarshal(scanner.Bytes(), &cfgIn); err != nil {
			fatal(fmt.Sprintf("failed to parse config: %v", err))
		}
		if cfgIn.CycleCap != 0 {
			cfg.CycleCap = cfgIn.CycleCap
		}
		for _, kr := range cfgIn.KernelRoots {
			cfg.KernelRoots = append(cfg.KernelRoots, digestFromLanes(kr))
		}
	}

	logStderr("building MAST forest...")
	proc, err := buildProcessor(prog, cfg)
	if err != nil {
		fatal(fmt.Sprintf("failed to build program: %v", err))
	}

	root, err := proc.RootDigest()
	if err != nil {
		fatal(fmt.Sprintf("failed to compute root digest: %v", err))
	}
	logStderr(fmt.Sprintf("root digest: %v", root))

	logStderr("executing...")
	out, err := proc.Execute(mastvm.Inputs{
		PublicStack: fieldsFromUint64(run.PublicStack),
		Advice:      fieldsFromUint64(run.Advice),
	})
	if err != nil {
		fatal(fmt.Sprintf("execution failed: %v", err))
	}
	logStderr(fmt.Sprintf("execution completed in %d cycles", out.Cycles))

	result := runOutput{
		Stack:            uint64sFromFields(out.Stack),
		TranscriptDigest: lanesFromDigest(out.TranscriptDigest),
		Cycles:           out.Cycles,
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize result: %v", err))
	}
	os.Stdout.Write(encoded)
	os.Stdout.Write([]byte("\n"))
}

// buildProcessor translates the JSON node table into a mastvm.Processor,
// one ProgramBuilder call per node, in the order they appear (which must
// already be topologically sorted: every node's children must come
// first).
func buildProcessor(prog programInput, cfg mastvm.Config) (*mastvm.Processor, error) {
	pb := mastvm.NewProgramBuilder()
	ids := make([]mastvm.NodeID, len(prog.Nodes))

	for i, n := range prog.Nodes {
		switch n.Kind {
		case "block":
			bb := mastvm.NewBlockBuilder()
			for _, o := range n.Ops {
				op, ok := mastvm.ParseOp(o.Op)
				if !ok {
					return nil, fmt.Errorf("node %d: unknown operation %q", i, o.Op)
				}
				bb.Push(op, fieldFromUint64(o.Immediate))
			}
			id, err := pb.AddBlock(bb)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			ids[i] = id
		case "join":
			ids[i] = pb.AddJoin(ids[n.A], ids[n.B])
		case "split":
			ids[i] = pb.AddSplit(ids[n.A], ids[n.B])
		case "loop":
			ids[i] = pb.AddLoop(ids[n.Body])
		case "call":
			ids[i] = pb.AddCall(ids[n.Callee])
		case "syscall":
			ids[i] = pb.AddSysCall(ids[n.Callee])
		case "dyn":
			ids[i] = pb.AddDyn()
		case "dyncall":
			ids[i] = pb.AddDyncall()
		case "external":
			ids[i] = pb.AddExternal(digestFromLanes(n.ExternalDigest))
		default:
			return nil, fmt.Errorf("node %d: unknown kind %q", i, n.Kind)
		}
	}

	if prog.Root < 0 || prog.Root >= len(ids) {
		return nil, fmt.Errorf("root index %d out of range", prog.Root)
	}
	return pb.Build(ids[prog.Root], cfg, nil)
}

func fieldFromUint64(v uint64) field.F { return field.New(v) }

func fieldsFromUint64(vs []uint64) []field.F {
	out := make([]field.F, len(vs))
	for i, v := range vs {
		out[i] = field.New(v)
	}
	return out
}

func uint64sFromFields(fs []field.F) []uint64 {
	out := make([]uint64, len(fs))
	for i, f := range fs {
		out[i] = f.Value()
	}
	return out
}

func digestFromLanes(lanes [4]uint64) mastvm.Digest {
	var d mastvm.Digest
	for i, v := range lanes {
		d[i] = field.New(v)
	}
	return d
}

func lanesFromDigest(d mastvm.Digest) [4]uint64 {
	var lanes [4]uint64
	for i, f := range d {
		lanes[i] = f.Value()
	}
	return lanes
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "mastvm-run: "+msg)
	os.Exit(1)
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "mastvm-run: "+msg)
}
