package bitlib

import "github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"

// Equal returns a single wire true iff a == b: per-bit XOR, OR-reduce,
// invert. Used by BEQ/BNE, IsZero, the signed divider's overflow check
// and the authenticated memory tier's root comparison.
func Equal(c *circuit.Circuit, a, b Word) circuit.Wire {
	anyDiff := circuit.False
	for i := range a {
		d := c.Emit(a[i], b[i], circuit.XOR)
		anyDiff = c.Or(anyDiff, d)
	}
	return c.Not(anyDiff)
}

// IsZero returns a single wire true iff a is the all-zero word.
func IsZero(c *circuit.Circuit, a Word) circuit.Wire {
	zero := make(Word, len(a))
	for i := range zero {
		zero[i] = circuit.False
	}
	return Equal(c, a, zero)
}

// LessThanUnsigned returns a<b (unsigned magnitude compare) via the
// subtractor's borrow-out.
func LessThanUnsigned(c *circuit.Circuit, policy AdderPolicy, a, b Word) circuit.Wire {
	_, borrowOut := Sub(c, policy, a, b)
	return borrowOut
}

// LessThanSigned returns a<b as two's-complement 32-bit words. When
// the sign bits agree, unsigned magnitude order and signed order
// coincide, so the unsigned compare is reused directly; when they
// disagree, the negative operand (sign bit set) is smaller regardless
// of magnitude. Both cases are exactly the truth table selected by
// `MUX(signA xor signB, lt_unsigned, signA)`.
func LessThanSigned(c *circuit.Circuit, policy AdderPolicy, a, b Word) circuit.Wire {
	n := len(a)
	ltUnsigned := LessThanUnsigned(c, policy, a, b)
	signA, signB := a[n-1], b[n-1]
	signsDiffer := c.Emit(signA, signB, circuit.XOR)
	return c.Mux(signsDiffer, ltUnsigned, signA)
}
