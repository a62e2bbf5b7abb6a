package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// EmitUpperImmediate handles LUI and AUIPC. LUI is pure rewiring: the
// already-shifted 32-bit immediate (pkg/rv32.Decode left-shifts it by
// 12 at decode time) is wired straight to the destination, no gates.
// AUIPC is one adder on PC + immediate.
func EmitUpperImmediate(cx *Context, ins rv32.Instruction) error {
	imm := constWord(ins.Imm)

	var result bitlib.Word
	switch ins.Op {
	case rv32.OpLUI:
		result = imm
	case rv32.OpAUIPC:
		result, _ = bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadPC(), imm, circuit.False)
	}

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}
