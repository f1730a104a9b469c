// Package field implements the base prime field F and its quadratic
// extension E used throughout the processor core.
package field

import (
	"fmt"
	"math/bits"
)

// Modulus is the Goldilocks-class prime p = 2^64 - 2^32 + 1.
const Modulus uint64 = 0xFFFFFFFF00000001

// F is an element of the base field, always kept in canonical form
// (0 <= value < Modulus).
type F struct {
	value uint64
}

// Zero is the additive identity.
var Zero = F{0}

// One is the multiplicative identity.
var One = F{1}

// New reduces v modulo p and returns the corresponding element.
func New(v uint64) F {
	if v >= Modulus {
		return F{v - Modulus}
	}
	return F{v}
}

// NewFromInt64 reduces a signed value modulo p.
func NewFromInt64(v int64) F {
	if v >= 0 {
		return New(uint64(v))
	}
	n := New(uint64(-v))
	return n.Neg()
}

// Value returns the canonical uint64 representation.
func (a F) Value() uint64 { return a.value }

// Add computes a+b mod p.
func (a F) Add(b F) F {
	sum, carry := bits.Add64(a.value, b.value, 0)
	// sum can overflow 64 bits only by the carry bit, and the result before
	// reduction is at most 2p-2, so a single conditional subtraction suffices.
	if carry != 0 || sum >= Modulus {
		sum -= Modulus
	}
	return F{sum}
}

// Sub computes a-b mod p.
func (a F) Sub(b F) F {
	diff, borrow := bits.Sub64(a.value, b.value, 0)
	if borrow != 0 {
		diff += Modulus
	}
	return F{diff}
}

// Neg computes -a mod p.
func (a F) Neg() F {
	if a.value == 0 {
		return a
	}
	return F{Modulus - a.value}
}

// Mul computes a*b mod p using a 128-bit product and Goldilocks-specific
// reduction: p = 2^64 - 2^32 + 1, so for hi:lo = a*b,
// hi:lo mod p = lo - hi_hi + hi_lo*2^32 - hi_lo, folded with the usual
// carry-propagating additions/subtractions.
func (a F) Mul(b F) F {
	hi, lo := bits.Mul64(a.value, b.value)
	return reduce128(hi, lo)
}

// reduce128 reduces a 128-bit value (hi:lo) modulo the Goldilocks prime.
func reduce128(hi, lo uint64) F {
	// Split hi into its low and high 32-bit halves.
	hiLo := hi & 0xFFFFFFFF
	hiHi := hi >> 32

	// lo - hiHi, with a wraparound correction by adding back p.
	t, borrow := bits.Sub64(lo, hiHi, 0)
	if borrow != 0 {
		t += Modulus
	}

	// t + hiLo*2^32 - hiLo = t + hiLo*(2^32 - 1).
	shifted := hiLo << 32
	sum, carry := bits.Add64(t, shifted, 0)
	if carry != 0 {
		sum -= Modulus
	}
	res, borrow2 := bits.Sub64(sum, hiLo, 0)
	if borrow2 != 0 {
		res += Modulus
	}
	if res >= Modulus {
		res -= Modulus
	}
	return F{res}
}

// Square computes a*a mod p.
func (a F) Square() F { return a.Mul(a) }

// Exp computes a^e mod p via binary exponentiation.
func (a F) Exp(e uint64) F {
	result := One
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Inv computes the multiplicative inverse of a using Fermat's little
// theorem (a^(p-2)); fails on zero.
func (a F) Inv() (F, error) {
	if a.IsZero() {
		return Zero, fmt.Errorf("field: cannot invert zero")
	}
	return a.Exp(Modulus - 2), nil
}

// Div computes a/b; fails if b is zero.
func (a F) Div(b F) (F, error) {
	inv, err := b.Inv()
	if err != nil {
		return Zero, fmt.Errorf("field: division failed: %w", err)
	}
	return a.Mul(inv), nil
}

// Equal reports whether a and b are the same element.
func (a F) Equal(b F) bool { return a.value == b.value }

// IsZero reports whether a is the additive identity.
func (a F) IsZero() bool { return a.value == 0 }

// IsOne reports whether a is the multiplicative identity.
func (a F) IsOne() bool { return a.value == 1 }

// IsBool reports whether a is 0 or 1, the condition required by every
// boolean-checked operation (split/loop conditions, cswap selectors, ...).
func (a F) IsBool() bool { return a.value == 0 || a.value == 1 }

// String renders the canonical decimal value.
func (a F) String() string { return fmt.Sprintf("%d", a.value) }

// Bytes returns the little-endian 8-byte representation.
func (a F) Bytes() [8]byte {
	var out [8]byte
	v := a.value
	for i := 0; i < 8; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
