package bitlib

import "github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"

// ShiftDir selects shift direction/semantics.
type ShiftDir int

const (
	ShiftLeft ShiftDir = iota
	ShiftLogicalRight
	ShiftArithmeticRight
)

// Shift realizes a logarithmic barrel shifter: for each bit k of the
// (low 5 bits of the) shift amount, conditionally shifts the running
// value by 2^k via a row of n 3-gate muxes. 5 rows for a 32-bit word.
// Left-drop positions are filled with False (left/logical-right) or
// the sign bit (arithmetic-right).
func Shift(c *circuit.Circuit, dir ShiftDir, value Word, amount Word) Word {
	n := len(value)
	fill := circuit.False
	if dir == ShiftArithmeticRight {
		fill = value[n-1]
	}

	cur := make(Word, n)
	copy(cur, value)

	for k := 0; k < 5; k++ { // amount only uses its low 5 bits (RV32)
		sel := amount[k]
		dist := 1 << k
		next := make(Word, n)
		for i := 0; i < n; i++ {
			var src circuit.Wire
			switch dir {
			case ShiftLeft:
				if i-dist >= 0 {
					src = cur[i-dist]
				} else {
					src = fill
				}
			default: // right (logical or arithmetic)
				if i+dist < n {
					src = cur[i+dist]
				} else {
					src = fill
				}
			}
			next[i] = c.Mux(sel, cur[i], src)
		}
		cur = next
	}
	return cur
}

// ShiftConstant realizes a shift by a compile-time-known amount as
// pure rewiring: zero gates, since the result wires are simply the
// operand's existing wires (or the fill constant) relabeled. The
// amount is not reduced modulo 32 (callers implementing RV32 shifts
// mask it themselves), so wider words can be shifted by 32 or more.
func ShiftConstant(c *circuit.Circuit, dir ShiftDir, value Word, amount uint) Word {
	n := len(value)
	fill := circuit.False
	if dir == ShiftArithmeticRight {
		fill = value[n-1]
	}
	out := make(Word, n)
	for i := 0; i < n; i++ {
		switch dir {
		case ShiftLeft:
			if i-int(amount) >= 0 {
				out[i] = value[i-int(amount)]
			} else {
				out[i] = fill
			}
		default:
			if i+int(amount) < n {
				out[i] = value[i+int(amount)]
			} else {
				out[i] = fill
			}
		}
	}
	return out
}
