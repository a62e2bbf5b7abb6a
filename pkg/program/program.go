// Package program holds the compiler's input: a flat table of 32-bit
// instruction words, an entry PC, and optional initial memory bytes,
// per spec.md §6's "Program input" surface. How the caller obtained
// these (ELF, raw assembly, hex dump) is out of scope here.
package program

import (
	"encoding/binary"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
)

// Program is one compilation unit: the instruction stream, the PC the
// first instruction executes at, and the memory region's declared
// initial contents (word-aligned, little-endian).
//
// Memory is never baked into the compiled circuit's gate structure:
// spec.md §3 places the memory region inside the fixed *input* bit
// vector, so its content is witness data supplied when the circuit is
// evaluated, not something the compiler may treat as a constant —
// doing so would tie one compiled circuit to one fixed initial memory
// state. pkg/compiler.decodeAndSize validates Memory's length against
// the configured tier's byte capacity (spec.md §7's "oversize initial
// data" precondition) but does not otherwise read its bytes.
type Program struct {
	Text    []uint32
	EntryPC uint32
	Memory  []byte
}

// LoadText builds a Program directly from a slice of already-decoded
// instruction words, entry PC, and initial memory bytes.
func LoadText(words []uint32, entryPC uint32, memory []byte) (Program, error) {
	if len(words) == 0 {
		return Program{}, cerr.Precondition("program has no instructions")
	}
	if entryPC%4 != 0 {
		return Program{}, cerr.Precondition("entry PC %#x is not 4-byte aligned", entryPC)
	}
	return Program{Text: words, EntryPC: entryPC, Memory: memory}, nil
}

// LoadBinary decodes a flat little-endian byte stream of 32-bit
// instruction words (no container format — the caller has already
// stripped any ELF/object-file framing) into a Program.
func LoadBinary(raw []byte, entryPC uint32, memory []byte) (Program, error) {
	if len(raw)%4 != 0 {
		return Program{}, cerr.Precondition("instruction byte stream length %d is not a multiple of 4", len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[4*i : 4*i+4])
	}
	return LoadText(words, entryPC, memory)
}
