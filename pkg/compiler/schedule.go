// Optional parallel front end: batches consecutive straight-line
// instructions with no register dependency between them and emits
// each batch member's gates on a private scratch circuit concurrently,
// splicing the results back into the shared circuit once every
// goroutine in the batch has finished. This generalizes the teacher's
// pkg/search/worker.go WaitGroup-over-a-goroutine-pool shape from
// "fan out candidate sequences to verify" to "fan out independent
// instructions to emit."
package compiler

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/config"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/emit"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/program"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/rv32"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/state"
)

// maxBatchSize bounds how many instructions CompileScheduled will ever
// fan out at once, so a long straight-line run doesn't spawn an
// unbounded number of scratch circuits.
const maxBatchSize = 8

// isSchedulable reports whether op can run as part of a parallel
// batch: it must be straight-line (no branch/jump/system op touches
// PC except by the uniform +4 every batch absorbs at once), it must
// never touch memory, and it must never read PC as an operand. AUIPC
// is the only straight-line op that fails that last test, since it
// adds its immediate to the instruction's own live PC.
func isSchedulable(op rv32.Op) bool {
	switch op {
	case rv32.OpADD, rv32.OpSUB, rv32.OpAND, rv32.OpOR, rv32.OpXOR, rv32.OpSLT, rv32.OpSLTU,
		rv32.OpSLL, rv32.OpSRL, rv32.OpSRA,
		rv32.OpADDI, rv32.OpANDI, rv32.OpORI, rv32.OpXORI, rv32.OpSLTI, rv32.OpSLTIU,
		rv32.OpSLLI, rv32.OpSRLI, rv32.OpSRAI,
		rv32.OpLUI,
		rv32.OpMUL, rv32.OpMULH, rv32.OpMULHSU, rv32.OpMULHU,
		rv32.OpDIV, rv32.OpDIVU, rv32.OpREM, rv32.OpREMU:
		return true
	}
	return false
}

// regReads returns the registers op actually reads, so a batch never
// breaks on an operand slot an instruction doesn't use (LUI reads
// none; the I-type/shift-immediate classes read only Rs1).
func regReads(ins rv32.Instruction) []int {
	switch ins.Op {
	case rv32.OpLUI:
		return nil
	case rv32.OpADDI, rv32.OpANDI, rv32.OpORI, rv32.OpXORI, rv32.OpSLTI, rv32.OpSLTIU,
		rv32.OpSLLI, rv32.OpSRLI, rv32.OpSRAI:
		return []int{ins.Rs1}
	default:
		return []int{ins.Rs1, ins.Rs2}
	}
}

// conflictsWithBatch reports whether ins has a RAW or WAW hazard
// against any earlier member of the batch being built. WAR is not a
// hazard here: every batch member reads its operands from the same
// pre-batch snapshot, so a later write never needs an earlier
// member's read to have already happened. written is a 32-bit set,
// one bit per integer register.
func conflictsWithBatch(ins rv32.Instruction, written *bitset.BitSet) bool {
	for _, r := range regReads(ins) {
		if written.Test(uint(r)) {
			return true
		}
	}
	return ins.Rd != 0 && written.Test(uint(ins.Rd))
}

// extendBatch greedily grows a batch of schedulable, mutually
// independent instructions starting at start, stopping at the first
// unschedulable op, the first hazard, or maxBatchSize.
func extendBatch(decoded []rv32.Instruction, start int) []int {
	written := bitset.New(state.NumRegs)
	var batch []int
	for i := start; i < len(decoded) && len(batch) < maxBatchSize; i++ {
		ins := decoded[i]
		if !isSchedulable(ins.Op) {
			break
		}
		if conflictsWithBatch(ins, written) {
			break
		}
		batch = append(batch, i)
		if ins.Rd != 0 {
			written.Set(uint(ins.Rd))
		}
	}
	return batch
}

// batchWork is one goroutine's output: the scratch circuit it built
// its instruction's gates on, and the Rd word (in scratch-circuit wire
// ids) holding the result. A Rd of 0 means the instruction is a no-op
// write (x0) and produced no useful result wires.
type batchWork struct {
	ins     rv32.Instruction
	scratch *circuit.Circuit
	rdWord  state.Word
	err     error
}

// runBatchMember emits one instruction against a private scratch
// circuit whose input vector is exactly the real circuit's current
// wire range — so every wire the instruction's operands reference is
// already a valid "input" to the scratch circuit, and only the gates
// the instruction itself adds need remapping back into the shared
// circuit. Mem is nil: isSchedulable excludes every memory op, so no
// emitter reached by this path ever dereferences it.
func runBatchMember(base uint32, pc state.Word, regs [state.NumRegs]state.Word, policy bitlib.AdderPolicy, ins rv32.Instruction) batchWork {
	scratch := circuit.New(int(base), 0)
	scratchRegs := state.NewBindings(pc, regs)
	scratchCx := &emit.Context{C: scratch, Regs: scratchRegs, Mem: nil, AdderPolicy: policy}

	if err := emit.Emit(scratchCx, ins); err != nil {
		return batchWork{ins: ins, err: err}
	}
	var rdWord state.Word
	if ins.Rd != 0 {
		rdWord = scratchCx.Regs.ReadReg(ins.Rd)
	}
	return batchWork{ins: ins, scratch: scratch, rdWord: rdWord}
}

// spliceResult replays only the gates backward-reachable from w.rdWord
// into the real circuit, via a remap table seeded by the identity
// mapping on every wire below scratchInputBits (those are the real
// circuit's own pre-batch wires, already defined there). It returns
// w.rdWord translated into real-circuit wire ids.
func spliceResult(c *circuit.Circuit, scratchInputBits int, w batchWork) state.Word {
	if w.rdWord == nil {
		return nil
	}

	gateByOut := make(map[circuit.Wire]circuit.Gate, len(w.scratch.Gates()))
	for _, g := range w.scratch.Gates() {
		gateByOut[g.Out] = g
	}

	needed := make(map[circuit.Wire]bool)
	var mark func(circuit.Wire)
	mark = func(wire circuit.Wire) {
		if int(wire) < scratchInputBits || needed[wire] {
			return
		}
		needed[wire] = true
		g := gateByOut[wire]
		mark(g.Left)
		mark(g.Right)
	}
	for _, wire := range w.rdWord {
		mark(wire)
	}

	remap := make(map[circuit.Wire]circuit.Wire, len(needed))
	remapWire := func(wire circuit.Wire) circuit.Wire {
		if int(wire) < scratchInputBits {
			return wire
		}
		return remap[wire]
	}
	for _, g := range w.scratch.Gates() {
		if !needed[g.Out] {
			continue
		}
		remap[g.Out] = c.Emit(remapWire(g.Left), remapWire(g.Right), g.Kind)
	}

	out := make(state.Word, len(w.rdWord))
	for i, wire := range w.rdWord {
		out[i] = remapWire(wire)
	}
	return out
}

// constWordN wires an arbitrary little-endian n-bit constant directly
// to the 0/1 constant wires, the same zero-gate trick pkg/emit's
// constWord uses for 32-bit immediates.
func constWordN(v uint32, n int) state.Word {
	w := make(state.Word, n)
	for i := range w {
		if (v>>uint(i))&1 == 1 {
			w[i] = circuit.True
		} else {
			w[i] = circuit.False
		}
	}
	return w
}

// emitBatch runs every member of batch concurrently against its own
// scratch circuit seeded from cx's pre-batch snapshot, splices each
// worker's reachable gates back into cx.C in program order, rebinds
// every non-x0 destination register to its spliced result, and
// advances PC once for the whole batch — PC_start + 4*len(batch) in a
// single addition, rather than len(batch) separately (and, for every
// worker but the first, wrongly) computed +4 steps.
func emitBatch(cx *emit.Context, decoded []rv32.Instruction, batch []int, log *logrus.Entry) error {
	pc, regs := cx.Regs.Snapshot()
	scratchInputBits := int(cx.C.NumWires())

	works := make([]batchWork, len(batch))
	var wg sync.WaitGroup
	for i, idx := range batch {
		i, ins := i, decoded[idx]
		wg.Add(1)
		go func() {
			defer wg.Done()
			works[i] = runBatchMember(uint32(scratchInputBits), pc, regs, cx.AdderPolicy, ins)
		}()
	}
	wg.Wait()

	for _, w := range works {
		if w.err != nil {
			return w.err
		}
	}

	for i, w := range works {
		realRd := spliceResult(cx.C, scratchInputBits, w)
		if w.ins.Rd != 0 {
			cx.Regs.WriteReg(w.ins.Rd, realRd)
		}
		log.WithField("index", batch[i]).Debug("spliced batched instruction")
	}

	sum, _ := bitlib.Add(cx.C, cx.AdderPolicy, cx.Regs.ReadPC(), constWordN(uint32(4*len(batch)), state.PCBits), circuit.False)
	cx.Regs.WritePC(sum)
	return nil
}

// CompileScheduled compiles p the same way Compile does, except that
// runs of independent straight-line instructions are batched and
// emitted concurrently before being spliced back into program order.
// It produces the same circuit semantics as Compile — same input/
// output layout, same final gate network up to the wire-numbering
// choices the batching/splicing order makes — never a different
// program.
func CompileScheduled(p program.Program, opts config.Options) (*Result, error) {
	log := opts.Logger
	log.WithFields(logrus.Fields{
		"instructions": len(p.Text),
		"memory_tier":  opts.MemoryTier,
		"adder":        opts.Adder,
		"dedup":        opts.Dedup,
		"fuse":         opts.Fuse,
		"scheduled":    true,
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

	c, mem, authMem := newCircuitAndMem(opts, inputBits, numAccesses)
	cx := emit.NewContext(c, mem, opts.Adder)

	entry := logrus.NewEntry(log)
	for i := 0; i < len(decoded); {
		ins := decoded[i]
		if opts.Fuse && i+1 < len(decoded) && emit.CanFuse(ins, decoded[i+1]) {
			log.WithField("index", i).Debug("emitting fused pair")
			if err := emit.EmitFused(cx, ins, decoded[i+1]); err != nil {
				return nil, err
			}
			i += 2
			continue
		}

		if !isSchedulable(ins.Op) {
			log.WithFields(logrus.Fields{"index": i, "op": ins.Op}).Debug("emitting instruction")
			if err := emit.Emit(cx, ins); err != nil {
				log.WithError(err).WithField("index", i).Warn("emit failed")
				return nil, err
			}
			i++
			continue
		}

		batch := extendBatch(decoded, i)
		if len(batch) < 2 {
			log.WithFields(logrus.Fields{"index": i, "op": ins.Op}).Debug("emitting instruction")
			if err := emit.Emit(cx, ins); err != nil {
				log.WithError(err).WithField("index", i).Warn("emit failed")
				return nil, err
			}
			i++
			continue
		}

		log.WithFields(logrus.Fields{"index": i, "batch_size": len(batch)}).Debug("emitting batch")
		if err := emitBatch(cx, decoded, batch, entry); err != nil {
			log.WithError(err).WithField("index", i).Warn("batch emit failed")
			return nil, err
		}
		i += len(batch)
	}

	return finalizeCircuit(c, cx, mem, authMem, opts)
}
