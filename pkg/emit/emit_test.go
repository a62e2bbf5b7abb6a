package emit

import (
	"testing"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/memtier"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/state"
)

func u32Bits(v uint32) []bool {
	out := make([]bool, 32)
	for i := range out {
		out[i] = (v>>uint(i))&1 == 1
	}
	return out
}

func bitsToU32(bs []bool) uint32 {
	var v uint32
	for i, b := range bs {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

// buildInputs lays out the fixed input vector: constants, PC, x0..x31,
// then (if memWords is non-nil) one 32-bit word per memory slot.
func buildInputs(pc uint32, regs map[int]uint32, memWords []uint32) []bool {
	inputs := []bool{false, true}
	inputs = append(inputs, u32Bits(pc)...)
	for r := 0; r < state.NumRegs; r++ {
		inputs = append(inputs, u32Bits(regs[r])...)
	}
	for _, w := range memWords {
		inputs = append(inputs, u32Bits(w)...)
	}
	return inputs
}

type endState struct {
	pc   uint32
	regs [32]uint32
}

func readEndState(out []bool) endState {
	var es endState
	es.pc = bitsToU32(out[state.PCOffset : state.PCOffset+32])
	for r := 0; r < state.NumRegs; r++ {
		off := state.RegsOffset + 32*r
		es.regs[r] = bitsToU32(out[off : off+32])
	}
	return es
}

func decodeOrFatal(t *testing.T, word uint32) rv32.Instruction {
	t.Helper()
	ins, err := rv32.Decode(word)
	if err != nil {
		t.Fatalf("decode %#08x: %v", word, err)
	}
	return ins
}

func TestSimpleAdd(t *testing.T) {
	c := circuit.New(state.InputVectorMinBits, 0)
	cx := NewContext(c, nil, bitlib.RippleCarry)
	ins := decodeOrFatal(t, 0x002081B3) // ADD x3, x1, x2

	if err := Emit(cx, ins); err != nil {
		t.Fatal(err)
	}
	c.Finalize(cx.Regs.OutputBindings())

	inputs := buildInputs(0, map[int]uint32{1: 0x12345678, 2: 0x87654321}, nil)
	es := readEndState(c.Eval(inputs))

	if es.regs[3] != 0x99999999 {
		t.Fatalf("x3 = %#x, want 0x99999999", es.regs[3])
	}
	if es.pc != 4 {
		t.Fatalf("pc = %d, want 4", es.pc)
	}
}

func TestSubtractToZero(t *testing.T) {
	c := circuit.New(state.InputVectorMinBits, 0)
	cx := NewContext(c, nil, bitlib.RippleCarry)
	ins := decodeOrFatal(t, 0x40208133) // SUB x2, x1, x2

	if err := Emit(cx, ins); err != nil {
		t.Fatal(err)
	}
	c.Finalize(cx.Regs.OutputBindings())

	inputs := buildInputs(0, map[int]uint32{1: 0x42, 2: 0x42}, nil)
	es := readEndState(c.Eval(inputs))

	if es.regs[2] != 0 {
		t.Fatalf("x2 = %#x, want 0", es.regs[2])
	}
	if es.pc != 4 {
		t.Fatalf("pc = %d, want 4", es.pc)
	}
}

func TestBranchNotTaken(t *testing.T) {
	c := circuit.New(state.InputVectorMinBits, 0)
	cx := NewContext(c, nil, bitlib.RippleCarry)
	ins := decodeOrFatal(t, 0x00208463) // BEQ x1, x2, +8

	if err := Emit(cx, ins); err != nil {
		t.Fatal(err)
	}
	c.Finalize(cx.Regs.OutputBindings())

	inputs := buildInputs(0, map[int]uint32{1: 1, 2: 2}, nil)
	es := readEndState(c.Eval(inputs))

	if es.pc != 4 {
		t.Fatalf("pc = %d, want 4 (not taken)", es.pc)
	}
}

func TestBranchTaken(t *testing.T) {
	c := circuit.New(state.InputVectorMinBits, 0)
	cx := NewContext(c, nil, bitlib.RippleCarry)
	ins := decodeOrFatal(t, 0x00208463) // BEQ x1, x2, +8

	if err := Emit(cx, ins); err != nil {
		t.Fatal(err)
	}
	c.Finalize(cx.Regs.OutputBindings())

	inputs := buildInputs(0, map[int]uint32{1: 0, 2: 0}, nil)
	es := readEndState(c.Eval(inputs))

	if es.pc != 8 {
		t.Fatalf("pc = %d, want 8 (taken)", es.pc)
	}
}

func TestFibonacci(t *testing.T) {
	c := circuit.New(state.InputVectorMinBits, 0)
	cx := NewContext(c, nil, bitlib.RippleCarry)

	program := []uint32{
		0x00100093, // ADDI x1, x0, 1
		0x00100113, // ADDI x2, x0, 1
		0x002081B3, // ADD  x3, x1, x2
		0x00310233, // ADD  x4, x2, x3
		0x004182B3, // ADD  x5, x3, x4
		0x00520333, // ADD  x6, x4, x5
	}
	for _, word := range program {
		ins := decodeOrFatal(t, word)
		if err := Emit(cx, ins); err != nil {
			t.Fatalf("emit %#08x: %v", word, err)
		}
	}
	c.Finalize(cx.Regs.OutputBindings())

	inputs := buildInputs(0, nil, nil)
	es := readEndState(c.Eval(inputs))

	want := [6]uint32{1, 1, 2, 3, 5, 8}
	for i, w := range want {
		if got := es.regs[i+1]; got != w {
			t.Fatalf("x%d = %d, want %d", i+1, got, w)
		}
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	const numWords = 256
	inputBits := state.InputVectorMinBits + numWords*32
	c := circuit.New(inputBits, 0)

	// The memory words are the input wires right after the register
	// block; Eval only assigns values to input wires.
	var words [numWords]bitlib.Word
	for i := range words {
		words[i] = make(bitlib.Word, 32)
		for b := range words[i] {
			words[i][b] = circuit.Wire(state.InputVectorMinBits + 32*i + b)
		}
	}
	mem := memtier.NewSimpleMemory(words)
	cx := NewContext(c, mem, bitlib.RippleCarry)

	// x1 = base register holding address 0 (rs1), imm picks the word.
	// SW x2, 12(x1): store x2 at byte address 12 (word index 3).
	sw := decodeOrFatal(t, 0x0020A623) // S-type: imm=12, rs1=1(addr base=0), rs2=2(data), funct3=010(SW)
	if err := Emit(cx, sw); err != nil {
		t.Fatalf("emit store: %v", err)
	}
	// LW x3, 12(x1): load word index 3 into x3.
	lw := decodeOrFatal(t, 0x00C0A183) // I-type load: imm=12, rs1=1, funct3=010(LW), rd=3
	if err := Emit(cx, lw); err != nil {
		t.Fatalf("emit load same word: %v", err)
	}
	// LW x4, 16(x1): load word index 4 (untouched) into x4.
	lwOther := decodeOrFatal(t, 0x0100A203) // imm=16, rs1=1, funct3=010, rd=4
	if err := Emit(cx, lwOther); err != nil {
		t.Fatalf("emit load other word: %v", err)
	}

	c.Finalize(cx.Regs.OutputBindings())

	regs := map[int]uint32{1: 0, 2: 0xDEADBEEF}
	memWords := make([]uint32, numWords)
	memWords[4] = 0x11223344 // initial value at the untouched word

	inputs := buildInputs(0, regs, memWords)
	es := readEndState(c.Eval(inputs))

	if es.regs[3] != 0xDEADBEEF {
		t.Fatalf("x3 (load-back) = %#x, want 0xDEADBEEF", es.regs[3])
	}
	if es.regs[4] != 0x11223344 {
		t.Fatalf("x4 (other word) = %#x, want unchanged 0x11223344", es.regs[4])
	}
}
