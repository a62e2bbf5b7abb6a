// Package bitlib bit-blasts word-level arithmetic and logic into
// AND/XOR gate networks over a pkg/circuit.Circuit: adders,
// subtractor, comparators, equality, a barrel shifter, a
// Booth-Wallace multiplier, and a restoring divider.
package bitlib

import "github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"

// Word is a little-endian 32-bit wire bundle: Word[i] holds bit i.
type Word = []circuit.Wire

// AdderPolicy selects which 32-bit adder implementation an emitter uses.
type AdderPolicy int

const (
	// RippleCarry is the 160-gate (5 per bit) adder whose carry chain
	// is two gates deep per bit.
	RippleCarry AdderPolicy = iota
	// KoggeStone is the dense parallel-prefix adder: about 780 gates
	// for 32 bits, about 20 gate levels deep.
	KoggeStone
)

// fullAdder returns (sum, carryOut) for one bit position: 5 gates.
func fullAdder(c *circuit.Circuit, a, b, carryIn circuit.Wire) (sum, carryOut circuit.Wire) {
	axb := c.Emit(a, b, circuit.XOR)
	sum = c.Emit(axb, carryIn, circuit.XOR)
	aANDb := c.Emit(a, b, circuit.AND)
	axbANDcin := c.Emit(axb, carryIn, circuit.AND)
	carryOut = c.Emit(aANDb, axbANDcin, circuit.XOR)
	return sum, carryOut
}

// AddRippleCarry adds two n-bit words plus an incoming carry, returning
// the n-bit sum and the final carry-out. 5 gates per bit.
func AddRippleCarry(c *circuit.Circuit, a, b Word, carryIn circuit.Wire) (sum Word, carryOut circuit.Wire) {
	n := len(a)
	sum = make(Word, n)
	carry := carryIn
	for i := 0; i < n; i++ {
		sum[i], carry = fullAdder(c, a[i], b[i], carry)
	}
	return sum, carry
}

// AddKoggeStone adds two n-bit words (n a power of two) plus an
// incoming carry using a Kogge-Stone parallel-prefix network that
// computes the carry into every bit position; it is the dense form,
// not the sparse variant that keeps only every k-th carry. It has
// ceil(log2 n) prefix levels, each three gates deep, at roughly five
// times the gate count of the ripple-carry adder.
func AddKoggeStone(c *circuit.Circuit, a, b Word, carryIn circuit.Wire) (sum Word, carryOut circuit.Wire) {
	n := len(a)

	// Bit-level generate/propagate: g_i = a_i & b_i, p_i = a_i ^ b_i.
	g := make(Word, n)
	p := make(Word, n)
	for i := 0; i < n; i++ {
		g[i] = c.Emit(a[i], b[i], circuit.AND)
		p[i] = c.Emit(a[i], b[i], circuit.XOR)
	}
	// Fold the incoming carry into position 0: g_0' = g_0 | (p_0 & cin).
	g[0] = c.Or(g[0], c.Emit(p[0], carryIn, circuit.AND))

	// Parallel-prefix combine: (g,p) at distance 2^k.
	for shift := 1; shift < n; shift <<= 1 {
		newG := make(Word, n)
		newP := make(Word, n)
		copy(newG, g)
		copy(newP, p)
		for i := shift; i < n; i++ {
			// (g_i, p_i) o (g_{i-shift}, p_{i-shift}) = (g_i | (p_i & g_{i-shift}), p_i & p_{i-shift})
			newG[i] = c.Or(g[i], c.Emit(p[i], g[i-shift], circuit.AND))
			newP[i] = c.Emit(p[i], p[i-shift], circuit.AND)
		}
		g, p = newG, newP
	}

	// Carry into bit i (i>0) is g_{i-1} (cumulative generate up to i-1,
	// already folded with carryIn above); carry into bit 0 is carryIn.
	sum = make(Word, n)
	for i := 0; i < n; i++ {
		var carryInto circuit.Wire
		if i == 0 {
			carryInto = carryIn
		} else {
			carryInto = g[i-1]
		}
		// propagate bit i (pre-fold, a_i ^ b_i) xor carry-into-i
		bitP := c.Emit(a[i], b[i], circuit.XOR)
		sum[i] = c.Emit(bitP, carryInto, circuit.XOR)
	}
	carryOut = g[n-1]
	return sum, carryOut
}

// Add dispatches to the adder selected by policy.
func Add(c *circuit.Circuit, policy AdderPolicy, a, b Word, carryIn circuit.Wire) (sum Word, carryOut circuit.Wire) {
	if policy == KoggeStone {
		return AddKoggeStone(c, a, b, carryIn)
	}
	return AddRippleCarry(c, a, b, carryIn)
}

// Not32 bitwise-inverts an n-bit word, 1 gate per bit.
func Not32(c *circuit.Circuit, a Word) Word {
	out := make(Word, len(a))
	for i, w := range a {
		out[i] = c.Not(w)
	}
	return out
}

// Sub computes a-b as a + NOT(b) + 1 using the selected adder; the
// adder's carry-out doubles as the unsigned "no borrow occurred" flag
// (borrowOut = NOT carryOut).
func Sub(c *circuit.Circuit, policy AdderPolicy, a, b Word) (diff Word, borrowOut circuit.Wire) {
	notB := Not32(c, b)
	diff, carryOut := Add(c, policy, a, notB, circuit.True)
	return diff, c.Not(carryOut)
}
