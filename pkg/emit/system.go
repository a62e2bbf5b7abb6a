package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// EmitSystem handles ECALL, EBREAK, FENCE. ECALL/EBREAK OR their
// occurrence into cx.Trap; FENCE is a no-op circuit, since ordering
// within this compiler is already total (gate append order).
func EmitSystem(cx *Context, ins rv32.Instruction) error {
	switch ins.Op {
	case rv32.OpECALL, rv32.OpEBREAK:
		cx.Trap = circuit.True
	case rv32.OpFENCE:
		// no-op
	}
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}
