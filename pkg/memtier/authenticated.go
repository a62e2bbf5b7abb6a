package memtier

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
)

// MerkleDepth is the tree depth for the 2^20-leaf authenticated tier.
const MerkleDepth = 20

// LabelBits is the width of one Merkle node label (a SHA3-256 digest).
const LabelBits = 256

// WitnessBitsPerAccess is how many input-vector bits one authenticated
// access consumes: a 32-bit leaf word plus MerkleDepth 256-bit sibling
// labels. pkg/compiler sizes the circuit's input-bit count to include
// WitnessBitsPerAccess * (number of authenticated accesses in the
// program) before any emission begins, since — like every other input
// — this witness data must be part of the fixed input vector rather
// than wires an emitter could allocate mid-circuit.
const WitnessBitsPerAccess = 32 + MerkleDepth*LabelBits

// WitnessPool hands out leaf and sibling-path witness wires from a
// contiguous block of pre-reserved input wires, one access's worth at
// a time, in program order.
type WitnessPool struct {
	wires  []circuit.Wire
	cursor int
}

// NewWitnessPool wraps a pre-allocated block of input wires sized for
// numAccesses authenticated accesses.
func NewWitnessPool(wires []circuit.Wire) *WitnessPool {
	return &WitnessPool{wires: wires}
}

func (p *WitnessPool) take(n int) []circuit.Wire {
	out := p.wires[p.cursor : p.cursor+n]
	p.cursor += n
	return out
}

func (p *WitnessPool) nextAccess() (leaf bitlib.Word, siblings [MerkleDepth]bitlib.Word) {
	leaf = p.take(32)
	for level := 0; level < MerkleDepth; level++ {
		siblings[level] = p.take(LabelBits)
	}
	return leaf, siblings
}

// AuthenticatedMemory is the 2^20-leaf SHA3-256 Merkle-authenticated
// tier. The current root is process-wide state in the compiler
// context; each write advances it.
type AuthenticatedMemory struct {
	root    bitlib.Word // 256 wires
	witness *WitnessPool

	// Valid accumulates, as a conjunction, every access's
	// root-equality check; pkg/compiler appends it to the circuit's
	// output vector as a bit of its own so the downstream proof system can constrain it
	// to true, proving every authenticated access in the program was
	// against a leaf actually in the tree.
	Valid circuit.Wire
}

// NewAuthenticatedMemory seeds the tier from the 256-bit initial root
// wires and a witness pool sized for the program's authenticated
// access count.
func NewAuthenticatedMemory(initialRoot bitlib.Word, witness *WitnessPool) *AuthenticatedMemory {
	return &AuthenticatedMemory{root: initialRoot, witness: witness, Valid: circuit.True}
}

func zeroExtendTo256(c *circuit.Circuit, leaf bitlib.Word) bitlib.Word {
	out := make(bitlib.Word, LabelBits)
	copy(out, leaf)
	for i := len(leaf); i < LabelBits; i++ {
		out[i] = circuit.False
	}
	return out
}

func muxWord(c *circuit.Circuit, sel circuit.Wire, a, b []circuit.Wire) []circuit.Wire {
	out := make([]circuit.Wire, len(a))
	for i := range a {
		out[i] = c.Mux(sel, a[i], b[i])
	}
	return out
}

// recomputeRoot walks the 20-level path from a (possibly replaced)
// leaf label up to a root label, using address's low 20 bits to pick
// the left/right orientation at each level.
func recomputeRoot(c *circuit.Circuit, leafLabel bitlib.Word, siblings [MerkleDepth]bitlib.Word, address bitlib.Word) bitlib.Word {
	cur := leafLabel
	for level := 0; level < MerkleDepth; level++ {
		dir := address[level] // false: cur is the left child; true: cur is the right child
		sibling := siblings[level]
		left := muxWord(c, dir, cur, sibling)
		right := muxWord(c, dir, sibling, cur)
		cur = Sha3_256OfConcat(c, left, right)
	}
	return cur
}

// Access implements the common Tier signature: the 20 sibling labels
// and the claimed current leaf word are pulled internally from the
// witness pool rather than taken as explicit parameters, so every
// tier's Access keeps the identical (address, writeData, writeEnable)
// -> readData shape spec.md §3's invariant 4 requires.
func (m *AuthenticatedMemory) Access(c *circuit.Circuit, address, writeData bitlib.Word, writeEnable circuit.Wire) bitlib.Word {
	leaf, siblings := m.witness.nextAccess()
	leafLabel := zeroExtendTo256(c, leaf)

	recomputedRoot := recomputeRoot(c, leafLabel, siblings, address)
	rootMatches := bitlib.Equal(c, recomputedRoot, m.root)
	m.Valid = c.Emit(m.Valid, rootMatches, circuit.AND)

	writeLabel := zeroExtendTo256(c, writeData)
	newRoot := recomputeRoot(c, writeLabel, siblings, address)
	m.root = muxWord(c, writeEnable, m.root, newRoot)

	return leaf
}

// OutputWires returns the tree's current 256-bit root. The Valid
// conjunction wire is carried separately (via the Valid field) rather
// than appended here, since it is not part of the fixed memory-region
// layout spec.md §3 defines — pkg/compiler folds it into the output
// vector as an extra trailing bit of its own choosing.
func (m *AuthenticatedMemory) OutputWires() []circuit.Wire {
	return append([]circuit.Wire{}, m.root...)
}
