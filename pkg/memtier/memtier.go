// Package memtier implements the three memory tiers (Ultra, Simple,
// Authenticated) behind the single `access(address, write_data,
// write_enable) -> read_data` operation spec.md §4.5 requires every
// tier to expose identically.
package memtier

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
)

// Tier is the common interface every memory model satisfies.
type Tier interface {
	// Access returns the addressed word's value before the access; if
	// writeEnable is true the addressed word becomes writeData
	// afterwards. Unaligned decomposition is the caller's (pkg/emit's)
	// responsibility.
	Access(c *circuit.Circuit, address, writeData bitlib.Word, writeEnable circuit.Wire) bitlib.Word

	// OutputWires returns the tier's live memory state, flattened into
	// one wire slice, in the same order pkg/compiler used to seed it
	// from the input vector — so it can copy them into the matching
	// slots of the output vector via Circuit.Finalize.
	OutputWires() []circuit.Wire
}

// indexEqualsConst returns a wire true iff the low len(bits) bits of
// address equal value.
func indexEqualsConst(c *circuit.Circuit, bits bitlib.Word, value uint) circuit.Wire {
	eq := circuit.True
	for i, w := range bits {
		var target circuit.Wire
		if (value>>uint(i))&1 == 1 {
			target = circuit.True
		} else {
			target = circuit.False
		}
		bitEq := c.Not(c.Emit(w, target, circuit.XOR))
		eq = c.Emit(eq, bitEq, circuit.AND)
	}
	return eq
}

// accessWordArray implements Access for a flat array of n words via a
// priority chain of selector-guarded muxes: since exactly one selector
// is ever true (address equality against its own index), any
// traversal order yields the addressed word.
func accessWordArray(c *circuit.Circuit, words []bitlib.Word, addrBits int, address, writeData bitlib.Word, writeEnable circuit.Wire) bitlib.Word {
	n := len(words)
	lowAddr := address[:addrBits]

	read := make(bitlib.Word, 32)
	copy(read, words[0])
	for idx := 1; idx < n; idx++ {
		sel := indexEqualsConst(c, lowAddr, uint(idx))
		for bit := 0; bit < 32; bit++ {
			read[bit] = c.Mux(sel, read[bit], words[idx][bit])
		}
	}

	for idx := 0; idx < n; idx++ {
		sel := indexEqualsConst(c, lowAddr, uint(idx))
		guard := c.Emit(sel, writeEnable, circuit.AND)
		newWord := make(bitlib.Word, 32)
		for bit := 0; bit < 32; bit++ {
			newWord[bit] = c.Mux(guard, words[idx][bit], writeData[bit])
		}
		words[idx] = newWord
	}

	return read
}

// UltraMemory holds 8 words directly as wires. Upper address bits
// beyond the low 3 are ignored.
type UltraMemory struct {
	words [8]bitlib.Word
}

// NewUltraMemory seeds the tier from the 8*32=256 input-vector wires
// that follow the register block.
func NewUltraMemory(initial [8]bitlib.Word) *UltraMemory {
	return &UltraMemory{words: initial}
}

func (m *UltraMemory) Access(c *circuit.Circuit, address, writeData bitlib.Word, writeEnable circuit.Wire) bitlib.Word {
	return accessWordArray(c, m.words[:], 3, address, writeData, writeEnable)
}

func (m *UltraMemory) OutputWires() []circuit.Wire {
	return flattenWords(m.words[:])
}

// SimpleMemory holds 256 words directly as wires.
type SimpleMemory struct {
	words [256]bitlib.Word
}

// NewSimpleMemory seeds the tier from the 256*32 input-vector wires
// that follow the register block.
func NewSimpleMemory(initial [256]bitlib.Word) *SimpleMemory {
	return &SimpleMemory{words: initial}
}

func (m *SimpleMemory) Access(c *circuit.Circuit, address, writeData bitlib.Word, writeEnable circuit.Wire) bitlib.Word {
	return accessWordArray(c, m.words[:], 8, address, writeData, writeEnable)
}

func (m *SimpleMemory) OutputWires() []circuit.Wire {
	return flattenWords(m.words[:])
}

func flattenWords(words []bitlib.Word) []circuit.Wire {
	out := make([]circuit.Wire, 0, len(words)*32)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}
