// Package rv32 decodes RV32I+M instruction words into a tagged
// Instruction value. Decoding is constant-folded at emission time: it
// is ordinary Go bit-twiddling, never turned into circuit gates.
package rv32

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
)

// Op tags the decoded instruction, mirroring the teacher's
// inst.OpCode enum-via-iota idiom generalized from Z80 mnemonics to
// RV32I+M mnemonics.
type Op int

const (
	OpInvalid Op = iota

	// R-type ALU / shift
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpSLT
	OpSLTU
	OpSLL
	OpSRL
	OpSRA

	// I-type ALU / shift
	OpADDI
	OpANDI
	OpORI
	OpXORI
	OpSLTI
	OpSLTIU
	OpSLLI
	OpSRLI
	OpSRAI

	// Upper immediate
	OpLUI
	OpAUIPC

	// Branches
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// Jumps
	OpJAL
	OpJALR

	// Loads
	OpLB
	OpLBU
	OpLH
	OpLHU
	OpLW

	// Stores
	OpSB
	OpSH
	OpSW

	// Multiply / divide (RV32M)
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// System
	OpECALL
	OpEBREAK
	OpFENCE

	opCount
)

// Instruction is one decoded RV32I+M instruction.
type Instruction struct {
	Op       Op
	Rd       int
	Rs1      int
	Rs2      int
	Imm      int32
	Raw      uint32
}

func bits(word uint32, hi, lo uint) uint32 {
	mask := uint32(1)<<(hi-lo+1) - 1
	return (word >> lo) & mask
}

func signExtend(value uint32, width uint) int32 {
	shift := 32 - width
	return int32(value<<shift) >> shift
}

// Decode unpacks one 32-bit instruction word. Unrecognized opcodes
// return cerr.ErrUnsupportedOpcode.
func Decode(word uint32) (Instruction, error) {
	opcode := bits(word, 6, 0)
	rd := int(bits(word, 11, 7))
	funct3 := bits(word, 14, 12)
	rs1 := int(bits(word, 19, 15))
	rs2 := int(bits(word, 24, 20))
	funct7 := bits(word, 31, 25)

	ins := Instruction{Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}

	switch opcode {
	case 0b0110011: // R-type
		ins.Op, ins.Imm = decodeRType(funct3, funct7)
	case 0b0010011: // I-type ALU
		ins.Op = decodeIAluOp(funct3, funct7)
		if ins.Op == OpSLLI || ins.Op == OpSRLI || ins.Op == OpSRAI {
			ins.Imm = int32(bits(word, 24, 20))
		} else {
			ins.Imm = signExtend(bits(word, 31, 20), 12)
		}
	case 0b0110111:
		ins.Op = OpLUI
		ins.Imm = int32(bits(word, 31, 12)) << 12
	case 0b0010111:
		ins.Op = OpAUIPC
		ins.Imm = int32(bits(word, 31, 12)) << 12
	case 0b1100011: // branches
		ins.Op = decodeBranchOp(funct3)
		ins.Imm = decodeBImm(word)
	case 0b1101111:
		ins.Op = OpJAL
		ins.Imm = decodeJImm(word)
	case 0b1100111:
		ins.Op = OpJALR
		ins.Imm = signExtend(bits(word, 31, 20), 12)
	case 0b0000011: // loads
		ins.Op = decodeLoadOp(funct3)
		ins.Imm = signExtend(bits(word, 31, 20), 12)
	case 0b0100011: // stores
		ins.Op = decodeStoreOp(funct3)
		ins.Imm = decodeSImm(word)
	case 0b0001111:
		ins.Op = OpFENCE
	case 0b1110011:
		if word == 0x00000073 {
			ins.Op = OpECALL
		} else if word == 0x00100073 {
			ins.Op = OpEBREAK
		} else {
			return Instruction{}, cerr.Unsupported("unrecognized SYSTEM word %#08x", word)
		}
	default:
		return Instruction{}, cerr.Unsupported("unrecognized opcode %#07b (word %#08x)", opcode, word)
	}

	if ins.Op == OpInvalid {
		return Instruction{}, cerr.Unsupported("unrecognized funct3/funct7 combination (word %#08x)", word)
	}
	return ins, nil
}

func decodeRType(funct3, funct7 uint32) (Op, int32) {
	switch funct3 {
	case 0b000:
		if funct7 == 0b0100000 {
			return OpSUB, 0
		}
		if funct7 == 0b0000001 {
			return OpMUL, 0
		}
		return OpADD, 0
	case 0b001:
		if funct7 == 0b0000001 {
			return OpMULH, 0
		}
		return OpSLL, 0
	case 0b010:
		if funct7 == 0b0000001 {
			return OpMULHSU, 0
		}
		return OpSLT, 0
	case 0b011:
		if funct7 == 0b0000001 {
			return OpMULHU, 0
		}
		return OpSLTU, 0
	case 0b100:
		if funct7 == 0b0000001 {
			return OpDIV, 0
		}
		return OpXOR, 0
	case 0b101:
		if funct7 == 0b0100000 {
			return OpSRA, 0
		}
		if funct7 == 0b0000001 {
			return OpDIVU, 0
		}
		return OpSRL, 0
	case 0b110:
		if funct7 == 0b0000001 {
			return OpREM, 0
		}
		return OpOR, 0
	case 0b111:
		if funct7 == 0b0000001 {
			return OpREMU, 0
		}
		return OpAND, 0
	}
	return OpInvalid, 0
}

func decodeIAluOp(funct3, funct7 uint32) Op {
	switch funct3 {
	case 0b000:
		return OpADDI
	case 0b010:
		return OpSLTI
	case 0b011:
		return OpSLTIU
	case 0b100:
		return OpXORI
	case 0b110:
		return OpORI
	case 0b111:
		return OpANDI
	case 0b001:
		return OpSLLI
	case 0b101:
		if funct7 == 0b0100000 {
			return OpSRAI
		}
		return OpSRLI
	}
	return OpInvalid
}

func decodeBranchOp(funct3 uint32) Op {
	switch funct3 {
	case 0b000:
		return OpBEQ
	case 0b001:
		return OpBNE
	case 0b100:
		return OpBLT
	case 0b101:
		return OpBGE
	case 0b110:
		return OpBLTU
	case 0b111:
		return OpBGEU
	}
	return OpInvalid
}

func decodeLoadOp(funct3 uint32) Op {
	switch funct3 {
	case 0b000:
		return OpLB
	case 0b001:
		return OpLH
	case 0b010:
		return OpLW
	case 0b100:
		return OpLBU
	case 0b101:
		return OpLHU
	}
	return OpInvalid
}

func decodeStoreOp(funct3 uint32) Op {
	switch funct3 {
	case 0b000:
		return OpSB
	case 0b001:
		return OpSH
	case 0b010:
		return OpSW
	}
	return OpInvalid
}

func decodeBImm(word uint32) int32 {
	b12 := bits(word, 31, 31)
	b11 := bits(word, 7, 7)
	b10_5 := bits(word, 30, 25)
	b4_1 := bits(word, 11, 8)
	v := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
	return signExtend(v, 13)
}

func decodeJImm(word uint32) int32 {
	b20 := bits(word, 31, 31)
	b19_12 := bits(word, 19, 12)
	b11 := bits(word, 20, 20)
	b10_1 := bits(word, 30, 21)
	v := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
	return signExtend(v, 21)
}

func decodeSImm(word uint32) int32 {
	hi := bits(word, 31, 25)
	lo := bits(word, 11, 7)
	v := (hi << 5) | lo
	return signExtend(v, 12)
}
