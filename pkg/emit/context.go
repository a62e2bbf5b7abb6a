// Package emit holds one file per RV32I+M opcode class from the
// dispatch table in spec.md §4.4. Each emitter has the contract:
// given the current register bindings, update the bindings for the
// destination register and for PC, emitting only gates that keep the
// fabric's append-only/acyclic invariants.
//
// This generalizes the teacher's pkg/cpu/exec.go giant per-opcode
// switch from "mutate a concrete State" to "emit gates and update a
// wire-binding table" — the switch shape survives, the body of every
// case does not.
package emit

import (
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/memtier"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/state"
)

// Context bundles everything one instruction's emitter needs: the
// circuit being built, the live register/PC bindings, the memory
// tier backing loads and stores, and the adder policy to bit-blast
// with. pkg/compiler owns the Context's lifetime across a whole
// program; pkg/emit only ever mutates one that's handed to it.
type Context struct {
	C           *circuit.Circuit
	Regs        *state.Bindings
	Mem         memtier.Tier
	AdderPolicy bitlib.AdderPolicy

	// Trap accumulates, as a disjunction, every ECALL/EBREAK this
	// program executes; pkg/compiler can fold it into the output
	// vector the same way memtier.AuthenticatedMemory.Valid is.
	Trap circuit.Wire
}

// NewContext builds an emission context over a freshly-seeded
// register file and a chosen memory tier.
func NewContext(c *circuit.Circuit, mem memtier.Tier, policy bitlib.AdderPolicy) *Context {
	return &Context{
		C:           c,
		Regs:        state.NewFromInputVector(),
		Mem:         mem,
		AdderPolicy: policy,
		Trap:        circuit.False,
	}
}

// constWord wires a 32-bit immediate directly to the 0/1 constant
// wires: zero gates, matching spec.md §4.4's "no gates for the
// immediate itself."
func constWord(imm int32) bitlib.Word {
	v := uint32(imm)
	w := make(bitlib.Word, 32)
	for i := range w {
		if (v>>uint(i))&1 == 1 {
			w[i] = circuit.True
		} else {
			w[i] = circuit.False
		}
	}
	return w
}

// constAmount wires a small unsigned constant (shift amounts, Booth
// indices) the same zero-gate way, at whatever width is requested.
func constAmount(v uint32, bitsWide int) bitlib.Word {
	w := make(bitlib.Word, bitsWide)
	for i := range w {
		if (v>>uint(i))&1 == 1 {
			w[i] = circuit.True
		} else {
			w[i] = circuit.False
		}
	}
	return w
}

// pcPlus4 adds the constant 4 to the current PC using the context's
// chosen adder policy.
func pcPlus4(cx *Context) bitlib.Word {
	sum, _ := bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadPC(), constWord(4), circuit.False)
	return sum
}
