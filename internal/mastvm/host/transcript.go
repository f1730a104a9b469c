package host

import (
	"github.com/vybium/mast-vm/internal/mastvm/chiplets"
	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// Transcript is the precompile event log's capacity-only sponge: it
// absorbs (eventIDTag, commitmentWord) pairs as the program calls
// `log_precompile`, and exposes a single public digest at the end of
// execution. Grounded on utils/channel.go's Channel.Send/hash
// chained-absorb pattern, reused here for event commitments instead of
// Fiat-Shamir challenges.
type Transcript struct {
	hasher *chiplets.Hasher
	state  field.Word
}

// NewTranscript creates an empty transcript seeded to the zero word.
func NewTranscript(h *chiplets.Hasher) *Transcript {
	return &Transcript{hasher: h}
}

// Absorb folds one (eventIDTag, commitment) pair into the running
// transcript state with a single [capacity, tag, commitment]
// permutation, keeping the first four output elements as the new state.
func (tr *Transcript) Absorb(eventIDTag field.F, commitment field.Word) {
	var state [chiplets.StateWidth]field.F
	copy(state[0:4], tr.state[:])
	state[4] = eventIDTag
	copy(state[8:12], commitment[:])
	out := tr.hasher.Permute(state)
	tr.state = field.Word{out[0], out[1], out[2], out[3]}
}

// Digest returns the transcript's current public digest.
func (tr *Transcript) Digest() field.Word { return tr.state }
