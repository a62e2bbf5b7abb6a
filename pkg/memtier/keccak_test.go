package memtier

import (
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/sha3"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
)

func bytesToBits(b []byte) []bool {
	out := make([]bool, len(b)*8)
	for i, byt := range b {
		for bit := 0; bit < 8; bit++ {
			out[i*8+bit] = (byt>>uint(bit))&1 == 1
		}
	}
	return out
}

func bitsToBytes(bs []bool) []byte {
	out := make([]byte, len(bs)/8)
	for i := range out {
		var v byte
		for bit := 0; bit < 8; bit++ {
			if bs[i*8+bit] {
				v |= 1 << uint(bit)
			}
		}
		out[i] = v
	}
	return out
}

// Checks the bit-blasted Keccak-f[1600]/SHA3-256 absorb-permute-squeeze
// against golang.org/x/crypto/sha3's reference implementation across
// random 512-bit blocks, the differential-testing role markkurossi-mpc
// and getamis-alice play for their own golang.org/x/crypto-backed
// circuit primitives.
func TestSha3_256OfConcatMatchesReference(t *testing.T) {
	const (
		leftOffset  = 2
		rightOffset = leftOffset + 256
		totalBits   = rightOffset + 256
	)
	c := circuit.New(totalBits, 0)
	left := wireRange(leftOffset, 256)
	right := wireRange(rightOffset, 256)
	digest := Sha3_256OfConcat(c, left, right)
	c.Finalize(digest)

	for trial := 0; trial < 4; trial++ {
		buf := make([]byte, 64)
		if _, err := rand.Read(buf); err != nil {
			t.Fatal(err)
		}

		want := sha3.Sum256(buf)

		inputs := append([]bool{false, true}, bytesToBits(buf)...)
		out := c.Eval(inputs)
		got := bitsToBytes(out)

		if len(got) != 32 {
			t.Fatalf("digest length = %d, want 32", len(got))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("trial %d: digest mismatch at byte %d: got %#x want %#x (full got=%x want=%x)",
					trial, i, got[i], want[i], got, want)
			}
		}
	}
}
