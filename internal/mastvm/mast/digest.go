package mast

import (
	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// domain tags separate the sponge absorption for each node kind so that,
// e.g., a Join(a,b) and a Split(a,b) with the same children never collide
// on the same digest (spec.md §3.2's "domain-separated sponge"). Declared
// as plain ints and converted at each use site since field.F is a struct
// and cannot itself be a Go constant.
const (
	domainBlockTag int = iota
	domainJoinTag
	domainSplitTag
	domainLoopTag
	domainCallTag
	domainSysCallTag
	domainDynTag
	domainDyncallTag
	domainExternalTag
)

var (
	domainBlock    = field.New(uint64(domainBlockTag))
	domainJoin     = field.New(uint64(domainJoinTag))
	domainSplit    = field.New(uint64(domainSplitTag))
	domainLoop     = field.New(uint64(domainLoopTag))
	domainCall     = field.New(uint64(domainCallTag))
	domainSysCall  = field.New(uint64(domainSysCallTag))
	domainDyn      = field.New(uint64(domainDynTag))
	domainDyncall  = field.New(uint64(domainDyncallTag))
	domainExternal = field.New(uint64(domainExternalTag))
)

// computeDigest derives a node's content-addressed digest from its shape
// and its children's (already-computed) digests, by absorbing a domain
// tag and the relevant digests/operations into the hasher chiplet's
// black-box permutation. The result is a pure function of inputs (spec.md
// §3.2 invariant; tested as property 8 in spec.md §8).
func computeDigest(h *chiplets.Hasher, n Node, childDigests [2]Digest) Digest {
	switch n.Kind {
	case KindBlock:
		return digestBlock(h, n)
	case KindJoin:
		return absorbTagged(h, domainJoin, childDigests[0], childDigests[1])
	case KindSplit:
		return absorbTagged(h, domainSplit, childDigests[0], childDigests[1])
	case KindLoop:
		return absorbTagged(h, domainLoop, childDigests[0], field.ZeroWord)
	case KindCall:
		return absorbTagged(h, domainCall, childDigests[0], field.ZeroWord)
	case KindSysCall:
		return absorbTagged(h, domainSysCall, childDigests[0], field.ZeroWord)
	case KindDyn:
		return absorbTagged(h, domainDyn, field.ZeroWord, field.ZeroWord)
	case KindDyncall:
		return absorbTagged(h, domainDyncall, field.ZeroWord, field.ZeroWord)
	case KindExternal:
		return absorbTagged(h, domainExternal, n.ExternalDigest, field.ZeroWord)
	default:
		return field.ZeroWord
	}
}

// absorbTagged permutes [tag, 0, 0, 0, left..., right...] (padded/truncated
// to the permutation's 12-element width) and returns the first 4 output
// elements as the digest, the same rate-squeeze convention the hasher
// chiplet uses for `hperm`.
func absorbTagged(h *chiplets.Hasher, tag field.F, left, right Digest) Digest {
	var state [12]field.F
	state[0] = tag
	copy(state[4:8], left[:])
	copy(state[8:12], right[:])
	out := h.Permute(state)
	return field.Word{out[0], out[1], out[2], out[3]}
}

// digestBlock folds every operation in program order through the
// permutation, matching spec.md §4.7's block-sponge contract: "for each
// operation, update the sponge with a domain-separated absorption; after
// the last operation, the sponge output must equal the node digest."
func digestBlock(h *chiplets.Hasher, n Node) Digest {
	var state [12]field.F
	state[0] = domainBlock
	for _, batch := range n.Batches {
		for _, group := range batch.Groups {
			for _, op := range group.Ops {
				state[4] = field.New(uint64(op.Op))
				state[5] = op.Immediate
				state = h.Permute(state)
			}
		}
	}
	return field.Word{state[0], state[1], state[2], state[3]}
}
