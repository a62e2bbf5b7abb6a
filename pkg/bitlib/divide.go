package bitlib

import "github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"

// divideUnsigned32 performs 32-step restoring division of magnitude
// dividend by magnitude divisor (both already made non-negative by the
// caller), returning (quotient, remainder). Division by zero is the
// caller's responsibility to special-case; this always produces some
// (possibly meaningless, guarded out by the caller) result.
func divideUnsigned32(c *circuit.Circuit, dividend, divisor Word) (quotient, remainder Word) {
	n := len(dividend)
	rem := make(Word, n)
	for i := range rem {
		rem[i] = circuit.False
	}
	quotient = make(Word, n)

	for step := n - 1; step >= 0; step-- {
		// Shift remainder left by 1, bring in dividend bit `step`.
		shifted := make(Word, n)
		shifted[0] = dividend[step]
		copy(shifted[1:], rem[:n-1])

		trialDiff, borrow := Sub(c, RippleCarry, shifted, divisor)
		fits := c.Not(borrow) // no borrow means divisor <= shifted

		newRem := make(Word, n)
		for i := 0; i < n; i++ {
			newRem[i] = c.Mux(fits, shifted[i], trialDiff[i])
		}
		rem = newRem
		quotient[step] = fits
	}
	return quotient, rem
}

// DivideUnsigned bit-blasts 32-step restoring unsigned division with
// the RISC-V-mandated divide-by-zero rule: a divide by zero returns
// an all-ones quotient and the dividend as remainder.
func DivideUnsigned(c *circuit.Circuit, dividend, divisor Word) (quotient, remainder Word) {
	q, r := divideUnsigned32(c, dividend, divisor)
	divisorIsZero := IsZero(c, divisor)

	allOnes := make(Word, len(dividend))
	for i := range allOnes {
		allOnes[i] = circuit.True
	}

	quotient = make(Word, len(dividend))
	remainder = make(Word, len(dividend))
	for i := range dividend {
		quotient[i] = c.Mux(divisorIsZero, q[i], allOnes[i])
		remainder[i] = c.Mux(divisorIsZero, r[i], dividend[i])
	}
	return quotient, remainder
}

// DivideSigned bit-blasts signed division by taking absolute values,
// running the unsigned divider, then correcting the sign of quotient
// and remainder, with the RISC-V special cases: divide-by-zero
// (quotient all-ones, remainder = dividend) and the INT_MIN/-1
// overflow case (quotient = INT_MIN, remainder = 0).
func DivideSigned(c *circuit.Circuit, dividend, divisor Word) (quotient, remainder Word) {
	n := len(dividend)
	signDividend := dividend[n-1]
	signDivisor := divisor[n-1]

	absDividend := make(Word, n)
	negDividend := negateWord(c, dividend)
	for i := range absDividend {
		absDividend[i] = c.Mux(signDividend, dividend[i], negDividend[i])
	}
	absDivisor := make(Word, n)
	negDivisor := negateWord(c, divisor)
	for i := range absDivisor {
		absDivisor[i] = c.Mux(signDivisor, divisor[i], negDivisor[i])
	}

	uq, ur := DivideUnsigned(c, absDividend, absDivisor)

	quotientSignDiffers := c.Emit(signDividend, signDivisor, circuit.XOR)
	negUQ := negateWord(c, uq)
	negUR := negateWord(c, ur)

	signedQ := make(Word, n)
	signedR := make(Word, n)
	for i := 0; i < n; i++ {
		signedQ[i] = c.Mux(quotientSignDiffers, uq[i], negUQ[i])
		// Remainder takes the dividend's sign (RISC-V: rem has same sign as dividend, or zero).
		signedR[i] = c.Mux(signDividend, ur[i], negUR[i])
	}

	divisorIsZero := IsZero(c, divisor)
	allOnes := make(Word, n)
	for i := range allOnes {
		allOnes[i] = circuit.True
	}

	intMin := make(Word, n)
	intMin[n-1] = circuit.True

	negativeOne := make(Word, n)
	for i := range negativeOne {
		negativeOne[i] = circuit.True
	}
	isIntMin := Equal(c, dividend, intMin)
	isNegOne := Equal(c, divisor, negativeOne)
	isOverflow := c.Emit(isIntMin, isNegOne, circuit.AND)

	quotient = make(Word, n)
	remainder = make(Word, n)
	zero := make(Word, n)
	for i := 0; i < n; i++ {
		q := c.Mux(divisorIsZero, signedQ[i], allOnes[i])
		r := c.Mux(divisorIsZero, signedR[i], dividend[i])
		q = c.Mux(isOverflow, q, intMin[i])
		r = c.Mux(isOverflow, r, zero[i])
		quotient[i] = q
		remainder[i] = r
	}
	return quotient, remainder
}
