package mastvm

import (
	"github.com/vybium/mast-vm/internal/mastvm/field"
	"github.com/vybium/mast-vm/internal/mastvm/mast"
)

// Digest is a content-addressed MAST node digest, exposed publicly so
// embedders can name External/kernel-root targets without reaching into
// internal packages.
type Digest = field.Word

// NodeID is a MAST forest's internal node identifier.
type NodeID = mast.NodeID

// Inputs bundles everything a run needs beyond the program itself: the
// public operand-stack seed and the advice provider's non-deterministic
// tape, mirroring pkg/vybium-starks-vm/types.go's input-bundle shape.
type Inputs struct {
	PublicStack []field.F
	Advice      []field.F
}

// Outputs bundles everything a run produces for the caller to inspect:
// the final stack window and the precompile transcript's public digest.
type Outputs struct {
	Stack            []field.F
	TranscriptDigest Digest
	Cycles           uint64
}
