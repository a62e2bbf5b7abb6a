// Package compiler orchestrates one compilation: sizing and creating
// the circuit, wiring up the chosen memory tier, dispatching every
// instruction in program order to pkg/emit, and finalizing the
// output vector. It plays the role the teacher's pkg/search.Run
// top-level driver plays for a search run, generalized from "drive a
// worker pool over a candidate space" to "drive one emission pass
// over a fixed program."
package compiler

import (
	"github.com/sirupsen/logrus"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/config"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/emit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/memtier"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/program"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/state"
)

// Result is the outcome of a successful compilation.
type Result struct {
	Circuit      *circuit.Circuit
	GatesEmitted int
	Trap         circuit.Wire // the accumulated ECALL/EBREAK signal
}

func isMemoryOp(op rv32.Op) bool {
	switch op {
	case rv32.OpLB, rv32.OpLBU, rv32.OpLH, rv32.OpLHU, rv32.OpLW,
		rv32.OpSB, rv32.OpSH, rv32.OpSW:
		return true
	}
	return false
}

// memoryInputBits returns how many input-vector bits the chosen tier
// needs beyond the fixed register block, for numAccesses authenticated
// accesses (ignored by the other two tiers).
func memoryInputBits(tier config.MemoryTier, numAccesses int) int {
	switch tier {
	case config.Ultra:
		return 8 * 32
	case config.Simple:
		return 256 * 32
	case config.Authenticated:
		return memtier.LabelBits + numAccesses*memtier.WitnessBitsPerAccess
	}
	return 0
}

// wordsAt builds n little-endian 32-bit words directly from input
// wire ids starting at offset.
func wordsAt(offset, n int) []bitlib.Word {
	out := make([]bitlib.Word, n)
	for i := range out {
		out[i] = inputWireRange(offset+32*i, 32)
	}
	return out
}

// memoryCapacityBytes is how many bytes of p.Memory a tier's initial
// state can represent: 8 and 256 words respectively for Ultra and
// Simple. Authenticated has no flat-byte seeding path at all (its
// initial state is a Merkle root plus per-access witnesses, not a
// byte array), so any non-empty Memory is rejected outright.
func memoryCapacityBytes(tier config.MemoryTier) int {
	switch tier {
	case config.Ultra:
		return 8 * 4
	case config.Simple:
		return 256 * 4
	}
	return 0
}

// decodeAndSize decodes every instruction in p and counts how many
// authenticated-memory accesses it contains, the one piece of
// per-program information the input-vector size depends on. It also
// enforces spec.md §7's "oversize initial data" precondition, which
// can only be checked once the memory tier (and so its byte capacity)
// is known — program.LoadText/LoadBinary accept any Memory length
// since they are tier-agnostic.
func decodeAndSize(p program.Program, opts config.Options) ([]rv32.Instruction, int, error) {
	log := opts.Logger

	if capacity := memoryCapacityBytes(opts.MemoryTier); len(p.Memory) > capacity {
		return nil, 0, cerr.Precondition("initial memory is %d bytes, exceeds %s tier capacity of %d bytes", len(p.Memory), opts.MemoryTier, capacity)
	}

	decoded := make([]rv32.Instruction, len(p.Text))
	numAccesses := 0
	for i, word := range p.Text {
		ins, err := rv32.Decode(word)
		if err != nil {
			log.WithError(err).WithField("index", i).Warn("decode failed")
			return nil, 0, err
		}
		decoded[i] = ins
		if opts.MemoryTier == config.Authenticated && isMemoryOp(ins.Op) {
			numAccesses++
		}
	}
	return decoded, numAccesses, nil
}

// newCircuitAndMem sizes and allocates the input vector, then wires up
// the chosen memory tier against it. inputBits must already include
// memoryInputBits(opts.MemoryTier, numAccesses).
func newCircuitAndMem(opts config.Options, inputBits, numAccesses int) (*circuit.Circuit, memtier.Tier, *memtier.AuthenticatedMemory) {
	var circOpts []circuit.Option
	if opts.Dedup {
		circOpts = append(circOpts, circuit.WithDedup())
	}
	c := circuit.New(inputBits, 0, circOpts...)

	memStart := state.InputVectorMinBits

	var mem memtier.Tier
	var authMem *memtier.AuthenticatedMemory
	switch opts.MemoryTier {
	case config.Ultra:
		var initial [8]bitlib.Word
		copy(initial[:], wordsAt(memStart, 8))
		mem = memtier.NewUltraMemory(initial)
	case config.Simple:
		var initial [256]bitlib.Word
		copy(initial[:], wordsAt(memStart, 256))
		mem = memtier.NewSimpleMemory(initial)
	case config.Authenticated:
		rootWires := inputWireRange(memStart, memtier.LabelBits)
		witnessWires := inputWireRange(memStart+memtier.LabelBits, numAccesses*memtier.WitnessBitsPerAccess)
		pool := memtier.NewWitnessPool(witnessWires)
		authMem = memtier.NewAuthenticatedMemory(rootWires, pool)
		mem = authMem
	}
	return c, mem, authMem
}

// finalizeCircuit assembles the output vector from the final register
// bindings and the memory tier's live state, checks it against the
// output budget, and finalizes the circuit.
func finalizeCircuit(c *circuit.Circuit, cx *emit.Context, mem memtier.Tier, authMem *memtier.AuthenticatedMemory, opts config.Options) (*Result, error) {
	log := opts.Logger
	outputs := cx.Regs.OutputBindings()
	outputs = append(outputs, mem.OutputWires()...)
	if authMem != nil {
		outputs = append(outputs, authMem.Valid)
	}
	// The trap wire is exposed as a trailing output bit rather than
	// consumed internally: spec.md §9 leaves what a downstream
	// verifier does with an ECALL/EBREAK occurrence as policy for
	// external collaborators, not this compiler's concern.
	outputs = append(outputs, cx.Trap)

	outputBytes := (len(outputs) + 7) / 8
	if outputBytes > opts.MaxOutputBytes {
		return nil, cerr.BudgetExceeded("output vector is %d bytes, exceeds max_output_bytes %d", outputBytes, opts.MaxOutputBytes)
	}
	if outputBytes > opts.MaxOutputBytes*8/10 {
		log.WithFields(logrus.Fields{"output_bytes": outputBytes, "max_output_bytes": opts.MaxOutputBytes}).
			Warn("output vector is approaching max_output_bytes")
	}

	c.Finalize(outputs)

	log.WithFields(logrus.Fields{
		"gates": len(c.Gates()),
		"wires": c.NumWires(),
	}).Info("compilation complete")

	return &Result{
		Circuit:      c,
		GatesEmitted: len(c.Gates()),
		Trap:         cx.Trap,
	}, nil
}

// Compile decodes every instruction in p, emits its circuit against
// the configured memory tier and adder policy, and finalizes the
// output vector (PC/registers, then the tier's live memory state,
// then — for the authenticated tier only — the Valid bit, and last
// the trap bit).
func Compile(p program.Program, opts config.Options) (*Result, error) {
	log := opts.Logger
	log.WithFields(logrus.Fields{
		"instructions": len(p.Text),
		"memory_tier":  opts.MemoryTier,
		"adder":        opts.Adder,
		"dedup":        opts.Dedup,
		"fuse":         opts.Fuse,
	}).Info("compiling program")

	decoded, numAccesses, err := decodeAndSize(p, opts)
	if err != nil {
		return nil, err
	}

	inputBits := state.InputVectorMinBits + memoryInputBits(opts.MemoryTier, numAccesses)
	inputBytes := inputBits / 8
	if inputBytes > opts.MaxInputBytes {
		return nil, cerr.BudgetExceeded("input vector is %d bytes, exceeds max_input_bytes %d", inputBytes, opts.MaxInputBytes)
	}
	if inputBytes > opts.MaxInputBytes*8/10 {
		log.WithFields(logrus.Fields{"input_bytes": inputBytes, "max_input_bytes": opts.MaxInputBytes}).
			Warn("input vector is approaching max_input_bytes")
	}

	c, mem, authMem := newCircuitAndMem(opts, inputBits, numAccesses)
	cx := emit.NewContext(c, mem, opts.Adder)

	for i := 0; i < len(decoded); i++ {
		ins := decoded[i]
		if opts.Fuse && i+1 < len(decoded) && emit.CanFuse(ins, decoded[i+1]) {
			log.WithField("index", i).Debug("emitting fused pair")
			if err := emit.EmitFused(cx, ins, decoded[i+1]); err != nil {
				return nil, err
			}
			i++
			continue
		}
		log.WithFields(logrus.Fields{"index": i, "op": ins.Op}).Debug("emitting instruction")
		if err := emit.Emit(cx, ins); err != nil {
			log.WithError(err).WithField("index", i).Warn("emit failed")
			return nil, err
		}
	}

	return finalizeCircuit(c, cx, mem, authMem, opts)
}

// inputWireRange returns the n input wires starting at offset, as a
// contiguous circuit.Wire slice — input wires are simply wire ids
// 0..inputBits-1, never allocated through AllocWire.
func inputWireRange(offset, n int) []circuit.Wire {
	out := make([]circuit.Wire, n)
	for i := range out {
		out[i] = circuit.Wire(offset + i)
	}
	return out
}
