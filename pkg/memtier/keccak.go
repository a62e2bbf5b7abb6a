package memtier

import "github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"

// lane is one 64-bit Keccak lane, little-endian bit order.
type lane = []circuit.Wire

// keccakState is the 5x5 lane array, indexed state[x][y].
type keccakState [5][5]lane

// rhoOffsets is the standard Keccak rotation-offset table r[x][y].
var rhoOffsets = [5][5]uint{
	{0, 36, 3, 41, 18},
	{1, 44, 10, 45, 2},
	{62, 6, 43, 15, 61},
	{28, 55, 25, 21, 56},
	{27, 20, 39, 8, 14},
}

// roundConstants are the 24 standard Keccak-f[1600] round constants.
var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088, 0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

func rotlLane(l lane, n uint) lane {
	n %= 64
	if n == 0 {
		return l
	}
	out := make(lane, 64)
	for i := 0; i < 64; i++ {
		out[i] = l[(i+64-int(n))%64]
	}
	return out
}

func xorLane(c *circuit.Circuit, a, b lane) lane {
	out := make(lane, 64)
	for i := range out {
		out[i] = c.Emit(a[i], b[i], circuit.XOR)
	}
	return out
}

// theta applies the θ diffusion step: each lane is XORed with the
// parity of the two neighboring columns (one rotated by 1).
func theta(c *circuit.Circuit, s keccakState) keccakState {
	var col [5]lane
	for x := 0; x < 5; x++ {
		acc := s[x][0]
		for y := 1; y < 5; y++ {
			acc = xorLane(c, acc, s[x][y])
		}
		col[x] = acc
	}
	var d [5]lane
	for x := 0; x < 5; x++ {
		left := col[(x+4)%5]
		right := rotlLane(col[(x+1)%5], 1)
		d[x] = xorLane(c, left, right)
	}
	var out keccakState
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			out[x][y] = xorLane(c, s[x][y], d[x])
		}
	}
	return out
}

// rhoPi applies ρ (per-lane rotation) and π (lane transposition) in
// one pass; both are pure wire rewiring, costing zero gates.
func rhoPi(s keccakState) keccakState {
	var out keccakState
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			rotated := rotlLane(s[x][y], rhoOffsets[x][y])
			nx, ny := y, (2*x+3*y)%5
			out[nx][ny] = rotated
		}
	}
	return out
}

// chi is the only nonlinear step: the sole source of AND gates in the
// permutation (a degree-2 Boolean function of each output bit).
func chi(c *circuit.Circuit, s keccakState) keccakState {
	var out keccakState
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			a := s[x][y]
			b := s[(x+1)%5][y]
			d := s[(x+2)%5][y]
			lane := make(lane, 64)
			for i := 0; i < 64; i++ {
				notB := c.Not(b[i])
				t := c.Emit(notB, d[i], circuit.AND)
				lane[i] = c.Emit(a[i], t, circuit.XOR)
			}
			out[x][y] = lane
		}
	}
	return out
}

// iota xors the round constant into lane (0,0); zero gates for bits
// the constant leaves unchanged.
func iota_(c *circuit.Circuit, s keccakState, round int) keccakState {
	rc := roundConstants[round]
	l := make(lane, 64)
	copy(l, s[0][0])
	for i := 0; i < 64; i++ {
		if (rc>>uint(i))&1 == 1 {
			l[i] = c.Not(l[i])
		}
	}
	out := s
	out[0][0] = l
	return out
}

// KeccakF1600 applies the 24-round Keccak-f[1600] permutation.
func KeccakF1600(c *circuit.Circuit, s keccakState) keccakState {
	for round := 0; round < 24; round++ {
		s = theta(c, s)
		s = rhoPi(s)
		s = chi(c, s)
		s = iota_(c, s, round)
	}
	return s
}

// Sha3_256OfConcat absorbs a single 512-bit message block (the Merkle
// node's left||right child labels, each 256 bits) into an all-zero
// initial state with SHA3-256 single-block padding, permutes, and
// squeezes the 256-bit digest from the resulting rate portion
// (SHA3-256's rate is 1088 bits = 17 lanes, comfortably covering the
// 512-bit message and its domain-separated padding within one block).
func Sha3_256OfConcat(c *circuit.Circuit, message256L, message256R []circuit.Wire) []circuit.Wire {
	var s keccakState
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			l := make(lane, 64)
			for i := range l {
				l[i] = circuit.False
			}
			s[x][y] = l
		}
	}

	message := append(append([]circuit.Wire{}, message256L...), message256R...) // 512 bits
	const rateBits = 1088
	const rateLanes = rateBits / 64 // 17

	absorb := make([]circuit.Wire, rateBits)
	for i := range absorb {
		absorb[i] = circuit.False
	}
	copy(absorb, message) // bits 0..511 = the message
	// SHA3 domain-separated padding byte 0x06 (bits 513,514 set, LSB
	// first) immediately after the message, and the final pad bit
	// 0x80 as the top bit of the rate block (bit 1087).
	absorb[513] = circuit.True
	absorb[514] = circuit.True
	absorb[rateBits-1] = circuit.True

	for lIdx := 0; lIdx < rateLanes; lIdx++ {
		x, y := lIdx%5, lIdx/5
		bit0 := lIdx * 64
		for i := 0; i < 64; i++ {
			s[x][y][i] = c.Emit(s[x][y][i], absorb[bit0+i], circuit.XOR)
		}
	}

	s = KeccakF1600(c, s)

	out := make([]circuit.Wire, 256)
	for lIdx := 0; lIdx < 4; lIdx++ {
		x, y := lIdx%5, lIdx/5
		copy(out[lIdx*64:lIdx*64+64], s[x][y])
	}
	return out
}
