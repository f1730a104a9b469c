// Package config holds execution-time parameters for a MAST program run,
// repurposed from the teacher's proof-parameter Config
// (utils/config.go) to execution parameters: how many cycles a run may
// take before being aborted, which MAST digests are trusted SysCall
// entry points, and a sizing hint for trace-buffer preallocation.
package config

import (
	"fmt"

	"github.com/vybium/mast-vm/internal/mastvm/field"
)

// Config bounds and parameterizes one program execution.
type Config struct {
	// CycleCap is the maximum number of decoder steps a run may take
	// before returning a resource-exhaustion error (spec.md §4.7's
	// non-termination guard).
	CycleCap uint64

	// KernelRoots is the finite set of MAST digests SysCall is allowed
	// to target (spec.md §9's Open Question, resolved per DESIGN.md:
	// membership checked by digest equality against this fixed set).
	KernelRoots []field.Word

	// TraceWidthHint sizes the trace processor's initial row-matrix
	// allocation; it is advisory only — actual width is determined by
	// the program and is never truncated to this hint.
	TraceWidthHint int
}

// Default returns a Config with conservative, deterministic defaults:
// a one-million-cycle cap, no trusted kernel roots, and no trace sizing
// hint.
func Default() Config {
	return Config{CycleCap: 1_000_000}
}

// Validate checks the configuration is internally consistent, in the
// same bound-checking style as utils/config.go's Validate.
func (c Config) Validate() error {
	if c.CycleCap == 0 {
		return fmt.Errorf("config: CycleCap must be positive")
	}
	if c.TraceWidthHint < 0 {
		return fmt.Errorf("config: TraceWidthHint must not be negative")
	}
	seen := make(map[field.Word]struct{}, len(c.KernelRoots))
	for _, root := range c.KernelRoots {
		if _, dup := seen[root]; dup {
			return fmt.Errorf("config: duplicate kernel root %v", root)
		}
		seen[root] = struct{}{}
	}
	return nil
}

// IsKernelRoot reports whether digest is one of the configured trusted
// SysCall entry points.
func (c Config) IsKernelRoot(digest field.Word) bool {
	for _, root := range c.KernelRoots {
		if root == digest {
			return true
		}
	}
	return false
}
