package field

import "fmt"

// E is an element of the quadratic extension E = F[x]/(x^2 - x + 1), used
// for randomness challenges, bus accumulators, and ACE circuit wire
// values. An element a + b*x is stored as the pair (a, b).
type E struct {
	A0, A1 F
}

// ZeroE is the additive identity of E.
var ZeroE = E{Zero, Zero}

// OneE is the multiplicative identity of E.
var OneE = E{One, Zero}

// NewE builds an extension element from its two base-field coordinates.
func NewE(a0, a1 F) E { return E{a0, a1} }

// FromBase lifts a base-field element into E.
func FromBase(a F) E { return E{a, Zero} }

// Add computes componentwise addition.
func (e E) Add(o E) E { return E{e.A0.Add(o.A0), e.A1.Add(o.A1)} }

// Sub computes componentwise subtraction.
func (e E) Sub(o E) E { return E{e.A0.Sub(o.A0), e.A1.Sub(o.A1)} }

// Neg negates both coordinates.
func (e E) Neg() E { return E{e.A0.Neg(), e.A1.Neg()} }

// Mul multiplies two extension elements modulo x^2 - x + 1, i.e. x^2 = x - 1:
//
//	(a0 + a1 x)(b0 + b1 x) = a0 b0 + (a0 b1 + a1 b0) x + a1 b1 x^2
//	                       = (a0 b0 - a1 b1) + (a0 b1 + a1 b0 + a1 b1) x
func (e E) Mul(o E) E {
	a0b0 := e.A0.Mul(o.A0)
	a1b1 := e.A1.Mul(o.A1)
	a0b1 := e.A0.Mul(o.A1)
	a1b0 := e.A1.Mul(o.A0)
	return E{
		A0: a0b0.Sub(a1b1),
		A1: a0b1.Add(a1b0).Add(a1b1),
	}
}

// MulBase scales an extension element by a base-field element.
func (e E) MulBase(c F) E { return E{e.A0.Mul(c), e.A1.Mul(c)} }

// Square computes e*e.
func (e E) Square() E { return e.Mul(e) }

// Inv computes the multiplicative inverse via the field norm
// N(a0+a1 x) = a0^2 + a0 a1 + a1^2 (the resultant of x^2-x+1 against
// a1 x - (-a0)), since the conjugate of a0+a1 x under x -> 1-x is
// a0+a1-a1 x and (a0+a1 x)(a0+a1-a1 x) = a0^2+a0 a1+a1^2.
func (e E) Inv() (E, error) {
	if e.IsZero() {
		return ZeroE, fmt.Errorf("field: cannot invert zero extension element")
	}
	conj := E{e.A0.Add(e.A1), e.A1.Neg()}
	norm := e.Mul(conj).A0 // conj cancels the x term by construction
	normInv, err := norm.Inv()
	if err != nil {
		return ZeroE, err
	}
	return conj.MulBase(normInv), nil
}

// Div computes e/o.
func (e E) Div(o E) (E, error) {
	inv, err := o.Inv()
	if err != nil {
		return ZeroE, fmt.Errorf("field: division failed: %w", err)
	}
	return e.Mul(inv), nil
}

// Equal reports whether e and o are the same element.
func (e E) Equal(o E) bool { return e.A0.Equal(o.A0) && e.A1.Equal(o.A1) }

// IsZero reports whether e is the additive identity.
func (e E) IsZero() bool { return e.A0.IsZero() && e.A1.IsZero() }

// String renders "a0+a1x".
func (e E) String() string { return fmt.Sprintf("%s+%sx", e.A0, e.A1) }
