package rv32

import "testing"

// encodeR builds an R-type word: funct7 rs2 rs1 funct3 rd opcode.
func encodeR(funct7, rs2, rs1, funct3, rd uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | 0b0110011
}

func encodeI(imm12 uint32, rs1, funct3, rd uint32) uint32 {
	return imm12<<20 | rs1<<15 | funct3<<12 | rd<<7 | 0b0010011
}

func TestDecodeRType(t *testing.T) {
	cases := []struct {
		word uint32
		want Op
	}{
		{encodeR(0, 2, 1, 0b000, 3), OpADD},
		{encodeR(0b0100000, 2, 1, 0b000, 3), OpSUB},
		{encodeR(0b0000001, 2, 1, 0b000, 3), OpMUL},
		{encodeR(0b0000001, 2, 1, 0b100, 3), OpDIV},
		{encodeR(0, 2, 1, 0b110, 3), OpOR},
	}
	for _, tc := range cases {
		ins, err := Decode(tc.word)
		if err != nil {
			t.Fatalf("Decode(%#08x): %v", tc.word, err)
		}
		if ins.Op != tc.want {
			t.Errorf("Decode(%#08x) = %v, want %v", tc.word, ins.Op, tc.want)
		}
		if ins.Rd != 3 || ins.Rs1 != 1 || ins.Rs2 != 2 {
			t.Errorf("Decode(%#08x) fields = rd=%d rs1=%d rs2=%d, want 3,1,2", tc.word, ins.Rd, ins.Rs1, ins.Rs2)
		}
	}
}

func TestDecodeIType(t *testing.T) {
	imm := int32(-1)
	ins, err := Decode(encodeI(uint32(imm)&0xFFF, 1, 0b000, 3))
	if err != nil {
		t.Fatal(err)
	}
	if ins.Op != OpADDI || ins.Imm != -1 {
		t.Errorf("ADDI x3, x1, -1: got op=%v imm=%d", ins.Op, ins.Imm)
	}
}

func TestDecodeLUI(t *testing.T) {
	word := uint32(0x12345) <<12 | 5<<7 | 0b0110111
	ins, err := Decode(word)
	if err != nil {
		t.Fatal(err)
	}
	if ins.Op != OpLUI || ins.Imm != 0x12345000 {
		t.Errorf("LUI: got op=%v imm=%#x, want %#x", ins.Op, ins.Imm, 0x12345000)
	}
}

func TestDecodeBranchImmSignExtends(t *testing.T) {
	// BEQ x1, x2, -4: imm bits must reconstruct to -4.
	// Offset -4 = 0b1...11111111100, low bit of imm always 0.
	imm := int32(-4)
	u := uint32(imm)
	b12 := (u >> 12) & 1
	b11 := (u >> 11) & 1
	b10_5 := (u >> 5) & 0x3F
	b4_1 := (u >> 1) & 0xF
	word := b12<<31 | b10_5<<25 | 2<<20 | 1<<15 | 0b000<<12 | b4_1<<8 | b11<<7 | 0b1100011
	ins, err := Decode(word)
	if err != nil {
		t.Fatal(err)
	}
	if ins.Op != OpBEQ || ins.Imm != -4 {
		t.Errorf("BEQ: got op=%v imm=%d, want BEQ -4", ins.Op, ins.Imm)
	}
}

func TestDecodeUnsupportedOpcode(t *testing.T) {
	_, err := Decode(0b1111111) // low 7 bits all set, not a valid RV32I+M opcode
	if err == nil {
		t.Fatal("expected error for unsupported opcode")
	}
}
