package circfile

import (
	"bytes"
	"testing"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
)

func TestWriteReadRoundTrip(t *testing.T) {
	c := circuit.New(4, 0)
	a, b := circuit.Wire(2), circuit.Wire(3)
	and := c.Emit(a, b, circuit.AND)
	xor := c.Emit(a, b, circuit.XOR)
	c.Finalize([]circuit.Wire{and, xor})

	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		t.Fatal(err)
	}

	h, gates, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if h.InputBits != 4 || h.OutputBits != 2 {
		t.Fatalf("header = %+v, want InputBits=4 OutputBits=2", h)
	}
	if h.GateCount != len(c.Gates()) {
		t.Fatalf("GateCount = %d, want %d", h.GateCount, len(c.Gates()))
	}
	if len(gates) != len(c.Gates()) {
		t.Fatalf("decoded %d gates, want %d", len(gates), len(c.Gates()))
	}
	for i, g := range c.Gates() {
		if gates[i] != g {
			t.Fatalf("gate %d = %+v, want %+v", i, gates[i], g)
		}
	}
	if h.NumWires != c.NumWires() {
		t.Fatalf("NumWires = %d, want %d", h.NumWires, c.NumWires())
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 20))
	if _, _, err := Read(buf); err == nil {
		t.Fatal("expected an error for a zeroed (bad-magic) header")
	}
}
