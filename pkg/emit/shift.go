package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

func shiftDirFor(op rv32.Op) bitlib.ShiftDir {
	switch op {
	case rv32.OpSLL, rv32.OpSLLI:
		return bitlib.ShiftLeft
	case rv32.OpSRA, rv32.OpSRAI:
		return bitlib.ShiftArithmeticRight
	default: // SRL, SRLI
		return bitlib.ShiftLogicalRight
	}
}

// EmitRTypeShift handles SLL, SRL, SRA. Shift amount is only the low
// 5 bits of rs2, per the RV32 tie-break rule.
func EmitRTypeShift(cx *Context, ins rv32.Instruction) error {
	value := cx.Regs.ReadReg(ins.Rs1)
	amount := cx.Regs.ReadReg(ins.Rs2)[:5]
	result := bitlib.Shift(cx.C, shiftDirFor(ins.Op), value, amount)

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}

// EmitITypeShift handles SLLI, SRLI, SRAI. The shift amount is a
// compile-time constant (decoded into ins.Imm), so this collapses to
// the zero-gate ShiftConstant rewiring path.
func EmitITypeShift(cx *Context, ins rv32.Instruction) error {
	value := cx.Regs.ReadReg(ins.Rs1)
	result := bitlib.ShiftConstant(cx.C, shiftDirFor(ins.Op), value, uint(ins.Imm)&0x1f)

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}
