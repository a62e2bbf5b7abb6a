package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// EmitMultiply handles MUL, MULH, MULHU, MULHSU: all four share one
// Booth-Wallace core (bitlib.Multiply); the variant only selects
// which half of the 64-bit product and which sign interpretation of
// the operands is used.
func EmitMultiply(cx *Context, ins rv32.Instruction) error {
	a := cx.Regs.ReadReg(ins.Rs1)
	b := cx.Regs.ReadReg(ins.Rs2)

	var result bitlib.Word
	switch ins.Op {
	case rv32.OpMUL:
		result = bitlib.MultiplyLow32(cx.C, a, b)
	case rv32.OpMULH:
		result = bitlib.MultiplyHigh(cx.C, a, b, true, true)
	case rv32.OpMULHU:
		result = bitlib.MultiplyHigh(cx.C, a, b, false, false)
	case rv32.OpMULHSU:
		result = bitlib.MultiplyHigh(cx.C, a, b, true, false)
	}

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}

// EmitDivide handles DIV, DIVU, REM, REMU: all four share one
// restoring divider; the signed variants additionally implement the
// divide-by-zero and INT_MIN/-1 overflow rules in bitlib.DivideSigned.
func EmitDivide(cx *Context, ins rv32.Instruction) error {
	a := cx.Regs.ReadReg(ins.Rs1)
	b := cx.Regs.ReadReg(ins.Rs2)

	var result bitlib.Word
	switch ins.Op {
	case rv32.OpDIV:
		q, _ := bitlib.DivideSigned(cx.C, a, b)
		result = q
	case rv32.OpREM:
		_, r := bitlib.DivideSigned(cx.C, a, b)
		result = r
	case rv32.OpDIVU:
		q, _ := bitlib.DivideUnsigned(cx.C, a, b)
		result = q
	case rv32.OpREMU:
		_, r := bitlib.DivideUnsigned(cx.C, a, b)
		result = r
	}

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}
