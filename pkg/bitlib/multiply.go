package bitlib

import "github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"

// multWidth is the internal accumulator width used while reducing
// Booth partial products. 33-bit sign/zero-extended operands shifted
// by up to 32 bits need at most 65-66 bits of headroom; 68 leaves
// margin so no partial product's shifted value is ever truncated
// before the final 64-bit product is read off the low bits.
const multWidth = 68

// Extend widens w to width bits, zero- or sign-extending (per signed)
// from its current top bit. Zero gates: the new high bits are either
// the constant-false wire or relabelings of w's existing sign bit.
func Extend(c *circuit.Circuit, w Word, width int, signed bool) Word {
	out := make(Word, width)
	copy(out, w)
	fill := circuit.False
	if signed {
		fill = w[len(w)-1]
	}
	for i := len(w); i < width; i++ {
		out[i] = fill
	}
	return out
}

func negateWord(c *circuit.Circuit, w Word) Word {
	inv := Not32(c, w)
	one := make(Word, len(w))
	one[0] = circuit.True
	for i := 1; i < len(one); i++ {
		one[i] = circuit.False
	}
	sum, _ := AddRippleCarry(c, inv, one, circuit.False)
	return sum
}

// boothDigit returns, for one radix-4 Booth triple (b1=bit 2i+1,
// b0=bit 2i, bm1=bit 2i-1), the (isZero, isTwo, negate) control wires
// per the standard 5-entry encoding table (000/111 -> 0, 001/010 ->
// +1, 011 -> +2, 100 -> -2, 101/110 -> -1).
func boothDigit(c *circuit.Circuit, b1, b0, bm1 circuit.Wire) (isZero, isTwo, negate circuit.Wire) {
	b1AndB0 := c.Emit(b1, b0, circuit.AND)
	notB1 := c.Not(b1)
	notB0 := c.Not(b0)
	notBm1 := c.Not(bm1)

	allZero := c.Emit(c.Emit(notB1, notB0, circuit.AND), notBm1, circuit.AND)
	allOne := c.Emit(b1AndB0, bm1, circuit.AND)
	isZero = c.Or(allZero, allOne)

	// two = (b1 & ~b0 & ~bm1) | (~b1 & b0 & bm1)
	case100 := c.Emit(c.Emit(b1, notB0, circuit.AND), notBm1, circuit.AND)
	case011 := c.Emit(c.Emit(notB1, b0, circuit.AND), bm1, circuit.AND)
	isTwo = c.Or(case100, case011)

	// negate = b1 & ~(b0 & bm1)
	negate = c.Emit(b1, c.Not(c.Emit(b0, bm1, circuit.AND)), circuit.AND)
	return isZero, isTwo, negate
}

// boothPartialProduct builds one 68-bit signed partial-product value
// (not yet shifted into position) for multiplicand m (already
// extended to multWidth bits) and one Booth triple.
func boothPartialProduct(c *circuit.Circuit, m Word, b1, b0, bm1 circuit.Wire) Word {
	isZero, isTwo, negate := boothDigit(c, b1, b0, bm1)

	doubled := ShiftConstant(c, ShiftLeft, m, 1)
	selected := make(Word, len(m))
	for i := range m {
		selected[i] = c.Mux(isTwo, m[i], doubled[i])
	}
	negated := negateWord(c, selected)
	signed := make(Word, len(m))
	for i := range m {
		signed[i] = c.Mux(negate, selected[i], negated[i])
	}
	out := make(Word, len(m))
	for i := range m {
		out[i] = c.Mux(isZero, signed[i], circuit.False)
	}
	return out
}

func addWord(c *circuit.Circuit, a, b Word) Word {
	sum, _ := AddRippleCarry(c, a, b, circuit.False)
	return sum
}

// treeSum reduces a list of same-width words to one via a balanced
// pairwise-addition tree (a simplification of a classical 3:2/2:2
// compressor Wallace tree: both reduce an operand list to one sum in
// O(log n) adder depth rather than n sequential additions, but this
// form spends more gates, since every node is a full-width adder).
func treeSum(c *circuit.Circuit, words []Word) Word {
	for len(words) > 1 {
		var next []Word
		for i := 0; i+1 < len(words); i += 2 {
			next = append(next, addWord(c, words[i], words[i+1]))
		}
		if len(words)%2 == 1 {
			next = append(next, words[len(words)-1])
		}
		words = next
	}
	return words[0]
}

// Multiply radix-4 Booth-encodes b (after sign/zero extension per
// signedB) against multiplicand a (per signedA), producing a 64-bit
// two's-complement (or unsigned, per the operand interpretation) product.
// 17 partial products, reduced by treeSum; shared by MUL/MULH/MULHU/MULHSU.
func Multiply(c *circuit.Circuit, a, b Word, signedA, signedB bool) Word {
	m := Extend(c, a, multWidth, signedA)
	bext := Extend(c, b, 34, signedB) // need bits -1..33; store bit i at bext[i+1]

	// bext[0] represents b_{-1} (always 0, the implicit bottom guard bit).
	guardedB := make(Word, 35)
	guardedB[0] = circuit.False
	copy(guardedB[1:], bext)

	var partials []Word
	for i := 0; i <= 16; i++ {
		bm1 := guardedB[2*i]
		b0 := guardedB[2*i+1]
		b1 := guardedB[2*i+2]
		pp := boothPartialProduct(c, m, b1, b0, bm1)
		shifted := ShiftConstant(c, ShiftLeft, pp, uint(2*i))
		partials = append(partials, shifted)
	}

	sum := treeSum(c, partials)
	return sum[:64]
}

// MultiplyLow32 returns the low 32 bits of a*b (the MUL result); the
// low word is identical whether the multiplication is interpreted as
// signed or unsigned, so signedA/signedB do not affect it, but are
// threaded through to reuse the same Booth core.
func MultiplyLow32(c *circuit.Circuit, a, b Word) Word {
	return Multiply(c, a, b, true, true)[:32]
}

// MultiplyHigh returns the high 32 bits of the 64-bit product of a
// and b under the requested sign interpretation of each operand
// (MULH: signed,signed; MULHU: unsigned,unsigned; MULHSU: signed,unsigned).
func MultiplyHigh(c *circuit.Circuit, a, b Word, signedA, signedB bool) Word {
	return Multiply(c, a, b, signedA, signedB)[32:64]
}
