package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
)

// bitwiseWord applies a gate kind bit-by-bit: direct 32-gate
// emissions for AND/XOR, matching spec.md §4.4's ALU contract
// verbatim. OR reuses Circuit.Or's 3-gate XOR/AND identity rather
// than a dedicated OR gate kind, since the fabric's basis is AND/XOR
// only.
func bitwiseWord(c *circuit.Circuit, a, b bitlib.Word, kind circuit.GateKind) bitlib.Word {
	out := make(bitlib.Word, len(a))
	for i := range a {
		switch kind {
		case circuit.AND, circuit.XOR:
			out[i] = c.Emit(a[i], b[i], kind)
		}
	}
	return out
}

func orWord(c *circuit.Circuit, a, b bitlib.Word) bitlib.Word {
	out := make(bitlib.Word, len(a))
	for i := range a {
		out[i] = c.Or(a[i], b[i])
	}
	return out
}

// compareResult packages a single predicate wire into a 32-bit word
// with the predicate in bit 0 and wire 0 (constant false) filling the
// upper 31 bits, per the SLT/SLTU contract.
func compareResult(pred circuit.Wire) bitlib.Word {
	out := make(bitlib.Word, 32)
	out[0] = pred
	for i := 1; i < 32; i++ {
		out[i] = circuit.False
	}
	return out
}

// EmitRTypeALU handles ADD, SUB, AND, OR, XOR, SLT, SLTU.
func EmitRTypeALU(cx *Context, ins rv32.Instruction) error {
	a := cx.Regs.ReadReg(ins.Rs1)
	b := cx.Regs.ReadReg(ins.Rs2)

	var result bitlib.Word
	switch ins.Op {
	case rv32.OpADD:
		result, _ = bitlib.Add(cx.C, cx.AdderPolicy, a, b, circuit.False)
	case rv32.OpSUB:
		result, _ = bitlib.Sub(cx.C, cx.AdderPolicy, a, b)
	case rv32.OpAND:
		result = bitwiseWord(cx.C, a, b, circuit.AND)
	case rv32.OpOR:
		result = orWord(cx.C, a, b)
	case rv32.OpXOR:
		result = bitwiseWord(cx.C, a, b, circuit.XOR)
	case rv32.OpSLT:
		result = compareResult(bitlib.LessThanSigned(cx.C, cx.AdderPolicy, a, b))
	case rv32.OpSLTU:
		result = compareResult(bitlib.LessThanUnsigned(cx.C, cx.AdderPolicy, a, b))
	}

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}

// EmitITypeALU handles ADDI, ANDI, ORI, XORI, SLTI, SLTIU. The
// immediate is sign-extended at decode time (pkg/rv32.Decode) and
// wired here as a zero-gate constant word.
func EmitITypeALU(cx *Context, ins rv32.Instruction) error {
	a := cx.Regs.ReadReg(ins.Rs1)
	imm := constWord(ins.Imm)

	var result bitlib.Word
	switch ins.Op {
	case rv32.OpADDI:
		result, _ = bitlib.Add(cx.C, cx.AdderPolicy, a, imm, circuit.False)
	case rv32.OpANDI:
		result = bitwiseWord(cx.C, a, imm, circuit.AND)
	case rv32.OpORI:
		result = orWord(cx.C, a, imm)
	case rv32.OpXORI:
		result = bitwiseWord(cx.C, a, imm, circuit.XOR)
	case rv32.OpSLTI:
		result = compareResult(bitlib.LessThanSigned(cx.C, cx.AdderPolicy, a, imm))
	case rv32.OpSLTIU:
		result = compareResult(bitlib.LessThanUnsigned(cx.C, cx.AdderPolicy, a, imm))
	}

	cx.Regs.WriteReg(ins.Rd, result)
	cx.Regs.WritePC(pcPlus4(cx))
	return nil
}
