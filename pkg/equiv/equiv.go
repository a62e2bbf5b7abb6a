// Package equiv proves or refutes Boolean-function equivalence between
// two circuits sharing the same input-bit-vector layout: a cheap
// QuickCheck over a handful of concrete input vectors (generalizing
// the teacher's search.QuickCheck/search.ExhaustiveCheck pair to
// circuit scale), and a Tseitin-CNF-backed SAT miter, solved by
// github.com/go-air/gini, for the cases QuickCheck cannot refute.
package equiv

import (
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/circuit"
)

// Result is the three-valued outcome of a Check call: a SAT timeout
// is visibly distinct from either proof, per spec.md §7's "unknown is
// not a failure of the core."
type Result int

const (
	Equivalent Result = iota
	NotEquivalent
	Unknown
)

func (r Result) String() string {
	switch r {
	case Equivalent:
		return "equivalent"
	case NotEquivalent:
		return "not-equivalent"
	default:
		return "unknown"
	}
}

// Counterexample is a falsifying input assignment returned alongside
// a NotEquivalent result.
type Counterexample struct {
	Inputs []bool
}

// QuickCheck evaluates both circuits directly (via circuit.Circuit.Eval,
// which doubles as the reference bit-blast executor) over a small set
// of concrete input vectors and reports the first mismatch found, if
// any. It never proves equivalence — only refutes it cheaply before
// paying for a SAT call.
func QuickCheck(a, b *circuit.Circuit, vectors [][]bool) (ok bool, counterexample []bool) {
	for _, v := range vectors {
		outA := a.Eval(v)
		outB := b.Eval(v)
		if !sameBits(outA, outB) {
			return false, v
		}
	}
	return true, nil
}

func sameBits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FixedVectors returns a small deterministic set of input vectors of
// the given width, covering the all-zero, all-one, and alternating-bit
// corners that QuickCheck's caller-supplied set should always include.
func FixedVectors(width int) [][]bool {
	zero := make([]bool, width)
	one := make([]bool, width)
	alt := make([]bool, width)
	for i := range one {
		one[i] = true
	}
	for i := range alt {
		alt[i] = i%2 == 0
	}
	if width >= 2 {
		zero[1] = true // wire 1 is always the true constant
		one[0] = false // wire 0 is always the false constant
		alt[0], alt[1] = false, true
	}
	return [][]bool{zero, one, alt}
}

// translation holds the logic.C literal for every wire of one circuit
// translated into a shared formula.
type translation struct {
	lits []z.Lit
}

// translate walks circ in append order, emitting one logic.C And/Xor
// node per gate (mirroring the vendored irifrance/gini/logic.C.ToCnf
// shape: one AND-shaped node per gate, XOR expanded to the
// De Morgan form logic.C.Xor already provides). sharedInputs supplies
// the literal to use for each input-vector position; passing the same
// slice into two translations of two different circuits is how Check
// forces both circuits to be evaluated against the identical input
// assignment without a separate equality constraint.
func translate(c *logic.C, circ *circuit.Circuit, sharedInputs []z.Lit) *translation {
	lits := make([]z.Lit, circ.NumWires())
	lits[circuit.False] = c.F
	lits[circuit.True] = c.T
	for i := 2; i < circ.InputBits(); i++ {
		lits[i] = sharedInputs[i]
	}
	for _, g := range circ.Gates() {
		a, b := lits[g.Left], lits[g.Right]
		if g.Kind == circuit.AND {
			lits[g.Out] = c.And(a, b)
		} else {
			lits[g.Out] = c.Xor(a, b)
		}
	}
	return &translation{lits: lits}
}

func (t *translation) outputs(circ *circuit.Circuit) []z.Lit {
	outs := make([]z.Lit, len(circ.Outputs()))
	for i, w := range circ.Outputs() {
		outs[i] = t.lits[w]
	}
	return outs
}

// Check builds a miter between a and b (which must share InputBits and
// OutputBits) and asks gini whether any input assignment makes them
// disagree. UNSAT is a proof of equivalence; SAT returns the
// falsifying input assignment; a solve that does not finish within
// budget returns Unknown rather than blocking forever.
func Check(a, b *circuit.Circuit, budget time.Duration) (Result, *Counterexample, error) {
	if a.InputBits() != b.InputBits() {
		return Unknown, nil, fmt.Errorf("equiv: input bit counts differ (%d vs %d)", a.InputBits(), b.InputBits())
	}
	if a.OutputBits() != b.OutputBits() {
		return Unknown, nil, fmt.Errorf("equiv: output bit counts differ (%d vs %d)", a.OutputBits(), b.OutputBits())
	}

	c := logic.NewC()
	sharedInputs := make([]z.Lit, a.InputBits())
	sharedInputs[0], sharedInputs[1] = c.F, c.T
	for i := 2; i < a.InputBits(); i++ {
		sharedInputs[i] = c.Lit()
	}

	ta := translate(c, a, sharedInputs)
	tb := translate(c, b, sharedInputs)

	outA := ta.outputs(a)
	outB := tb.outputs(b)

	var diffs []z.Lit
	for i := range outA {
		diffs = append(diffs, c.Xor(outA[i], outB[i]))
	}
	anyDiff := c.Ors(diffs...)

	g := gini.New()
	c.ToCnfFrom(g, anyDiff)
	g.Assume(anyDiff)

	switch g.Try(budget) {
	case 1: // sat: found an input making the circuits disagree
		inputs := make([]bool, a.InputBits())
		for i := 2; i < a.InputBits(); i++ {
			inputs[i] = g.Value(sharedInputs[i])
		}
		inputs[1] = true
		return NotEquivalent, &Counterexample{Inputs: inputs}, nil
	case -1: // unsat: no such input exists
		return Equivalent, nil, nil
	default:
		return Unknown, nil, nil
	}
}
