package state

import (
	"testing"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
)

func TestX0AlwaysZero(t *testing.T) {
	b := NewFromInputVector()
	zero := b.ReadReg(0)
	for i, w := range zero {
		if w != circuit.False {
			t.Fatalf("x0 bit %d bound to wire %d, want the constant-false wire", i, w)
		}
	}
}

func TestWriteX0IsNoop(t *testing.T) {
	b := NewFromInputVector()
	before := b.ReadReg(0)
	b.WriteReg(0, make(Word, RegBits))
	after := b.ReadReg(0)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("write to x0 changed its binding at bit %d", i)
		}
	}
}

func TestRegisterLayoutMatchesOffsets(t *testing.T) {
	b := NewFromInputVector()
	r5 := b.ReadReg(5)
	want := circuit.Wire(RegsOffset + 32*5)
	if r5[0] != want {
		t.Fatalf("x5 bit 0 bound to wire %d, want %d", r5[0], want)
	}
	pc := b.ReadPC()
	if pc[0] != circuit.Wire(PCOffset) {
		t.Fatalf("PC bit 0 bound to wire %d, want %d", pc[0], PCOffset)
	}
}

func TestOutputBindingsOrder(t *testing.T) {
	b := NewFromInputVector()
	out := b.OutputBindings()
	if out[0] != circuit.False || out[1] != circuit.True {
		t.Fatalf("output bits 0,1 = %v,%v, want false,true constants", out[0], out[1])
	}
	if len(out) != MemoryOffset {
		t.Fatalf("OutputBindings length = %d, want %d (memory offset)", len(out), MemoryOffset)
	}
}
