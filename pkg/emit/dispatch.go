package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// Emit dispatches one decoded instruction to its class emitter. Every
// emitter is responsible for advancing PC itself (PC+4 by default,
// overridden for branches/jumps), matching the per-emitter contract
// in spec.md §4.4.
func Emit(cx *Context, ins rv32.Instruction) error {
	switch ins.Op {
	case rv32.OpADD, rv32.OpSUB, rv32.OpAND, rv32.OpOR, rv32.OpXOR, rv32.OpSLT, rv32.OpSLTU:
		return EmitRTypeALU(cx, ins)
	case rv32.OpSLL, rv32.OpSRL, rv32.OpSRA:
		return EmitRTypeShift(cx, ins)
	case rv32.OpADDI, rv32.OpANDI, rv32.OpORI, rv32.OpXORI, rv32.OpSLTI, rv32.OpSLTIU:
		return EmitITypeALU(cx, ins)
	case rv32.OpSLLI, rv32.OpSRLI, rv32.OpSRAI:
		return EmitITypeShift(cx, ins)
	case rv32.OpLUI, rv32.OpAUIPC:
		return EmitUpperImmediate(cx, ins)
	case rv32.OpBEQ, rv32.OpBNE, rv32.OpBLT, rv32.OpBGE, rv32.OpBLTU, rv32.OpBGEU:
		return EmitBranch(cx, ins)
	case rv32.OpJAL, rv32.OpJALR:
		return EmitJump(cx, ins)
	case rv32.OpLB, rv32.OpLBU, rv32.OpLH, rv32.OpLHU, rv32.OpLW:
		return EmitLoad(cx, ins)
	case rv32.OpSB, rv32.OpSH, rv32.OpSW:
		return EmitStore(cx, ins)
	case rv32.OpMUL, rv32.OpMULH, rv32.OpMULHU, rv32.OpMULHSU:
		return EmitMultiply(cx, ins)
	case rv32.OpDIV, rv32.OpDIVU, rv32.OpREM, rv32.OpREMU:
		return EmitDivide(cx, ins)
	case rv32.OpECALL, rv32.OpEBREAK, rv32.OpFENCE:
		return EmitSystem(cx, ins)
	}
	return cerr.Unsupported("no emitter registered for decoded op %d", ins.Op)
}
