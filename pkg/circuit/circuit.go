// Package circuit implements the fabric layer: wire allocation, the two
// reserved constant wires, and the AND/XOR gate list that every higher
// layer of the compiler appends to.
package circuit

import "fmt"

// Wire is a dense identifier for one Boolean signal.
type Wire uint32

// Reserved constant wires. Wire 0 is hardwired false, wire 1 hardwired true.
const (
	False Wire = 0
	True  Wire = 1
)

// GateKind selects the two-operator basis.
type GateKind uint8

const (
	AND GateKind = iota
	XOR
)

func (k GateKind) String() string {
	if k == AND {
		return "AND"
	}
	return "XOR"
}

// Gate is one (left, right, out, kind) tuple. Left and right must be
// defined strictly before out in append order (acyclicity), and out
// must not be the output of any other gate (single-definition).
type Gate struct {
	Left, Right, Out Wire
	Kind             GateKind
}

type dedupKey struct {
	kind        GateKind
	left, right Wire
}

// Circuit is an ordered, append-only sequence of gates over a dense
// wire-id space. Wires 0..inputBits-1 are the input vector (with wires
// 0 and 1 doubling as the reserved constants per the fixed state
// layout); everything from inputBits upward is gate-produced.
type Circuit struct {
	gates     []Gate
	nextWire  Wire
	inputBits int
	outputs   []Wire // filled in by Finalize; len == outputBits once finalized

	dedup   map[dedupKey]Wire
	dedupOn bool
}

// Option configures a new Circuit.
type Option func(*Circuit)

// WithDedup enables gate deduplication: a new gate whose (kind, left,
// right) matches an existing gate reuses that gate's output wire
// instead of allocating a new one.
func WithDedup() Option {
	return func(c *Circuit) { c.dedupOn = true; c.dedup = make(map[dedupKey]Wire) }
}

// New creates a circuit whose input vector has inputBits wires
// (0 and 1 pre-tied to the false/true constants) and whose output
// vector will have outputBits wires once Finalize is called.
func New(inputBits, outputBits int, opts ...Option) *Circuit {
	if inputBits < 2 {
		panic("circuit: inputBits must be at least 2 (reserved constants)")
	}
	c := &Circuit{
		nextWire:  Wire(inputBits),
		inputBits: inputBits,
	}
	for _, opt := range opts {
		opt(c)
	}
	_ = outputBits // recorded via Finalize's len(bindings); kept for caller-side validation
	return c
}

// InputBits returns the size of the input bit vector.
func (c *Circuit) InputBits() int { return c.inputBits }

// OutputBits returns the size of the output bit vector (0 until Finalize).
func (c *Circuit) OutputBits() int { return len(c.outputs) }

// NumWires returns the current wire high-water mark (one past the
// highest allocated wire id).
func (c *Circuit) NumWires() uint32 { return uint32(c.nextWire) }

// Gates returns the emitted gate list in append order. Callers must
// not mutate the returned slice.
func (c *Circuit) Gates() []Gate { return c.gates }

// AllocWire returns a fresh wire id, not yet bound to any gate.
func (c *Circuit) AllocWire() Wire {
	w := c.nextWire
	c.nextWire++
	return w
}

// AllocWires returns n contiguous fresh wire ids. Callers that treat
// the block as a little-endian bit vector may rely on index i holding
// bit i.
func (c *Circuit) AllocWires(n int) []Wire {
	ws := make([]Wire, n)
	for i := range ws {
		ws[i] = c.AllocWire()
	}
	return ws
}

// Emit appends one gate and returns its output wire. In debug-checked
// circuits, left and right must already be defined (acyclicity) and a
// gate is never emitted for a wire that already has a producer
// (single-definition); violations panic, matching spec.md §7's
// "implementation bugs... abort the process."
func (c *Circuit) Emit(left, right Wire, kind GateKind) Wire {
	if c.dedupOn {
		key := dedupKey{kind: kind, left: left, right: right}
		if kind == XOR {
			// XOR is commutative; canonicalize operand order so a XOR b
			// and b XOR a dedup to the same gate.
			if left > right {
				key.left, key.right = right, left
			}
		}
		if w, ok := c.dedup[key]; ok {
			return w
		}
		out := c.allocAndEmit(left, right, kind)
		c.dedup[key] = out
		return out
	}
	return c.allocAndEmit(left, right, kind)
}

func (c *Circuit) allocAndEmit(left, right Wire, kind GateKind) Wire {
	if debugChecks {
		if left >= c.nextWire || right >= c.nextWire {
			panic(fmt.Sprintf("circuit: gate input not yet defined (left=%d right=%d next=%d)", left, right, c.nextWire))
		}
	}
	out := c.AllocWire()
	c.gates = append(c.gates, Gate{Left: left, Right: right, Out: out, Kind: kind})
	return out
}

// Not returns a wire equal to NOT x, costing one XOR gate.
func (c *Circuit) Not(x Wire) Wire {
	return c.Emit(x, True, XOR)
}

// Or returns a OR b via XOR(XOR(a,b), AND(a,b)), 3 gates.
func (c *Circuit) Or(a, b Wire) Wire {
	axb := c.Emit(a, b, XOR)
	aab := c.Emit(a, b, AND)
	return c.Emit(axb, aab, XOR)
}

// Mux returns a if s is false, b if s is true: XOR(a, AND(s, XOR(a,b))), 3 gates.
func (c *Circuit) Mux(s, a, b Wire) Wire {
	axb := c.Emit(a, b, XOR)
	sel := c.Emit(s, axb, AND)
	return c.Emit(a, sel, XOR)
}

// Copy materializes a fresh wire carrying the same value as w, via
// XOR(w, False). Used by Finalize to pin live register/PC/memory
// wires into the trailing output-wire range.
func (c *Circuit) Copy(w Wire) Wire {
	return c.Emit(w, False, XOR)
}

// Finalize records the output-bit-to-wire binding. bindings[i] is the
// wire that carries output bit i; Finalize copies each into a fresh
// wire so that, on return, the circuit's trailing len(bindings) wire
// ids are exactly the output vector in order — the convention
// pkg/circfile relies on to avoid persisting a separate output-wire
// index array.
func (c *Circuit) Finalize(bindings []Wire) {
	outs := make([]Wire, len(bindings))
	for i, w := range bindings {
		outs[i] = c.Copy(w)
	}
	c.outputs = outs
}

// Outputs returns the finalized output-wire bindings (nil until Finalize).
func (c *Circuit) Outputs() []Wire { return c.outputs }

// FromGates reconstructs an evaluable Circuit directly from a gate
// list and wire/bit counts already known to satisfy the fabric's
// invariants — a file just read back off disk, say — rather than
// re-deriving them by replaying every gate through Emit. The trailing
// outputBits wire ids are taken as the output vector, per Finalize's
// convention. The result supports Eval, Gates, InputBits, OutputBits,
// and NumWires; it is not a live builder and must never be passed to
// Emit/Mux/Or/Finalize.
func FromGates(inputBits, outputBits int, numWires uint32, gates []Gate) *Circuit {
	c := &Circuit{
		gates:     gates,
		nextWire:  Wire(numWires),
		inputBits: inputBits,
	}
	outs := make([]Wire, outputBits)
	for i := range outs {
		outs[i] = Wire(int(numWires) - outputBits + i)
	}
	c.outputs = outs
	return c
}

// Eval evaluates the circuit for a concrete assignment of the input
// vector, returning the concrete output vector. Used as the reference
// bit-blast executor by pkg/equiv's QuickCheck and by round-trip tests;
// never used inside an emitter itself (spec.md's Non-goals exclude
// "dynamic circuit evaluation at compile time").
func (c *Circuit) Eval(inputs []bool) []bool {
	if len(inputs) != c.inputBits {
		panic(fmt.Sprintf("circuit: Eval expected %d input bits, got %d", c.inputBits, len(inputs)))
	}
	values := make([]bool, c.nextWire)
	copy(values[:c.inputBits], inputs)
	values[False] = false
	values[True] = true

	for _, g := range c.gates {
		a, b := values[g.Left], values[g.Right]
		if g.Kind == AND {
			values[g.Out] = a && b
		} else {
			values[g.Out] = a != b
		}
	}

	out := make([]bool, len(c.outputs))
	for i, w := range c.outputs {
		out[i] = values[w]
	}
	return out
}
