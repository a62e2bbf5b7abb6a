package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// EmitJump handles JAL and JALR: the link register (if not x0) gets
// PC+4, and PC_next is PC+imm (JAL) or rs1+imm with bit 0 forced to
// zero (JALR).
func EmitJump(cx *Context, ins rv32.Instruction) error {
	link := pcPlus4(cx)

	var target bitlib.Word
	switch ins.Op {
	case rv32.OpJAL:
		target, _ = bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadPC(), constWord(ins.Imm), circuit.False)
	case rv32.OpJALR:
		sum, _ := bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadReg(ins.Rs1), constWord(ins.Imm), circuit.False)
		target = make(bitlib.Word, 32)
		copy(target, sum)
		target[0] = circuit.False // JALR masks bit 0 of the target to zero
	}

	cx.Regs.WriteReg(ins.Rd, link)
	cx.Regs.WritePC(target)
	return nil
}
