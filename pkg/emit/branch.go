package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// branchPredicate computes the taken/not-taken wire for one branch
// opcode via the equality/comparator primitives.
func branchPredicate(cx *Context, ins rv32.Instruction, a, b bitlib.Word) circuit.Wire {
	switch ins.Op {
	case rv32.OpBEQ:
		return bitlib.Equal(cx.C, a, b)
	case rv32.OpBNE:
		return cx.C.Not(bitlib.Equal(cx.C, a, b))
	case rv32.OpBLT:
		return bitlib.LessThanSigned(cx.C, cx.AdderPolicy, a, b)
	case rv32.OpBGE:
		return cx.C.Not(bitlib.LessThanSigned(cx.C, cx.AdderPolicy, a, b))
	case rv32.OpBLTU:
		return bitlib.LessThanUnsigned(cx.C, cx.AdderPolicy, a, b)
	case rv32.OpBGEU:
		return cx.C.Not(bitlib.LessThanUnsigned(cx.C, cx.AdderPolicy, a, b))
	}
	return circuit.False
}

// EmitBranch handles BEQ, BNE, BLT, BGE, BLTU, BGEU. PC_next is
// MUX(predicate, PC+4, PC+imm); no register write.
func EmitBranch(cx *Context, ins rv32.Instruction) error {
	a := cx.Regs.ReadReg(ins.Rs1)
	b := cx.Regs.ReadReg(ins.Rs2)
	pred := branchPredicate(cx, ins, a, b)

	fallthroughPC := pcPlus4(cx)
	takenPC, _ := bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadPC(), constWord(ins.Imm), circuit.False)

	next := make(bitlib.Word, 32)
	for i := range next {
		next[i] = cx.C.Mux(pred, fallthroughPC[i], takenPC[i])
	}
	cx.Regs.WritePC(next)
	return nil
}
