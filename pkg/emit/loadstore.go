package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// effectiveAddress and wordAddress together implement the "emitter is
// responsible for address decomposition" rule in spec.md §4.5: the
// memory tiers only ever see a word-granular address (byte address
// with its low 2 bits shifted off, a zero-gate rewiring since 2 is a
// compile-time constant); the low bits stay with the emitter to pick
// out and splice sub-words.
func effectiveAddress(cx *Context, ins rv32.Instruction) bitlib.Word {
	sum, _ := bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadReg(ins.Rs1), constWord(ins.Imm), circuit.False)
	return sum
}

func wordAddress(cx *Context, addr bitlib.Word) bitlib.Word {
	return bitlib.ShiftConstant(cx.C, bitlib.ShiftLogicalRight, addr, 2)
}

// laneEquals mirrors pkg/memtier's index-equality helper at gate
// level: true iff the low len(bits) bits of a lane-select value equal
// value.
func laneEquals(c *circuit.Circuit, bits bitlib.Word, value uint) circuit.Wire {
	eq := circuit.True
	for i, w := range bits {
		target := circuit.False
		if (value>>uint(i))&1 == 1 {
			target = circuit.True
		}
		bitEq := c.Not(c.Emit(w, target, circuit.XOR))
		eq = c.Emit(eq, bitEq, circuit.AND)
	}
	return eq
}

// selectSubword picks the subBits-wide lane of word addressed by
// offsetBits (a priority chain of lane-equality-guarded muxes, same
// shape as pkg/memtier.accessWordArray's read path).
func selectSubword(c *circuit.Circuit, word bitlib.Word, subBits int, offsetBits bitlib.Word) bitlib.Word {
	lanes := 32 / subBits
	out := make(bitlib.Word, subBits)
	copy(out, word[:subBits])
	for lane := 1; lane < lanes; lane++ {
		sel := laneEquals(c, offsetBits, uint(lane))
		for bit := 0; bit < subBits; bit++ {
			out[bit] = c.Mux(sel, out[bit], word[lane*subBits+bit])
		}
	}
	return out
}

// mergeSubword splices data's low subBits bits into old at the lane
// addressed by offsetBits, leaving every other lane untouched.
func mergeSubword(c *circuit.Circuit, old, data bitlib.Word, subBits int, offsetBits bitlib.Word) bitlib.Word {
	lanes := 32 / subBits
	out := make(bitlib.Word, 32)
	copy(out, old)
	for lane := 0; lane < lanes; lane++ {
		sel := laneEquals(c, offsetBits, uint(lane))
		for bit := 0; bit < subBits; bit++ {
			pos := lane*subBits + bit
			out[pos] = c.Mux(sel, out[pos], data[bit])
		}
	}
	return out
}

// EmitLoad handles LB, LBU, LH, LHU, LW.
func EmitLoad(cx *Context, ins rv32.Instruction) error {
	addr := effectiveAddress(cx, ins)
	wordAddr := wordAddress(cx, addr)
	zero := constWord(0)
	word := cx.Mem.Access(cx.C, wordAddr, zero, circuit.False)

	var result bitlib.Word
	switch ins.Op {
	case rv32.OpLW:
		result = word
	case rv32.OpLB:
		result = bitlib.Extend(cx.C, selectSubword(cx.C, word, 8, addr[0:2]), 32, true)
	case rv32.OpLBU:
		result = bitlib.Extend(cx.C, selectSubword(cx.C, word, 8, addr[0:2]), 32, false)
	case rv32.OpLH:
		result = bitlib.Extend(cx.C, selectSubword(cx.C, word, 16, addr[1:2]), 32, true)
	case rv32.OpLHU:
		result = bitlib.Extend(cx.C, selectSubword(cx.C, word, 16, addr[1:2]), 32, false)
	}

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}

// EmitStore handles SB, SH, SW. Stores are read-modify-write: the
// tier's Access has no partial-word write mode, so the emitter reads
// the addressed word first (write_enable held false, no mutation),
// splices in the new byte/halfword, then issues the real write.
func EmitStore(cx *Context, ins rv32.Instruction) error {
	addr := effectiveAddress(cx, ins)
	wordAddr := wordAddress(cx, addr)
	storeData := cx.Regs.ReadReg(ins.Rs2)

	var merged bitlib.Word
	switch ins.Op {
	case rv32.OpSW:
		merged = storeData
	case rv32.OpSB:
		old := cx.Mem.Access(cx.C, wordAddr, constWord(0), circuit.False)
		merged = mergeSubword(cx.C, old, storeData, 8, addr[0:2])
	case rv32.OpSH:
		old := cx.Mem.Access(cx.C, wordAddr, constWord(0), circuit.False)
		merged = mergeSubword(cx.C, old, storeData, 16, addr[1:2])
	}

	cx.Mem.Access(cx.C, wordAddr, merged, circuit.True)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}
