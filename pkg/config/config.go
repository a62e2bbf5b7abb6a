// Package config holds the compilation options spec.md §6 names:
// memory tier, adder primitive, I/O budgets, dedup, and fusion.
package config

import (
	"github.com/sirupsen/logrus"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/bitlib"
	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
)

// MemoryTier selects which memtier implementation backs the program.
type MemoryTier int

const (
	Ultra MemoryTier = iota
	Simple
	Authenticated
)

func (t MemoryTier) String() string {
	switch t {
	case Ultra:
		return "ultra"
	case Simple:
		return "simple"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// defaultMaxIOBytes is the default max_input_bytes/max_output_bytes
// budget: 10 MiB, per spec.md §6.
const defaultMaxIOBytes = 10 << 20

// Options is the full set of configuration the core recognizes,
// mirroring the table in spec.md §6 field for field. A zero Options
// is not valid; always build one through Default().
type Options struct {
	MemoryTier MemoryTier
	Adder      bitlib.AdderPolicy
	Dedup      bool
	Fuse       bool

	MaxInputBytes  int
	MaxOutputBytes int

	// Logger is threaded through the compiler context for the
	// duration of one compilation: Debug for per-instruction emission
	// tracing, Info for per-tier/per-run summaries, Warn when an I/O
	// budget is being approached. Never nil once built through
	// Default() — pkg/compiler never guards against a nil Logger.
	Logger *logrus.Logger
}

// Default returns the options a bare invocation of the compiler uses:
// the simple memory tier, the ripple-carry adder, dedup and fuse both
// on, the spec's default 10 MiB I/O budgets, and an Info-level logger.
func Default() Options {
	return Options{
		MemoryTier:     Simple,
		Adder:          bitlib.RippleCarry,
		Dedup:          true,
		Fuse:           true,
		MaxInputBytes:  defaultMaxIOBytes,
		MaxOutputBytes: defaultMaxIOBytes,
		Logger:         logrus.New(),
	}
}

// ParseMemoryTier maps the three recognized config strings to a
// MemoryTier, returning cerr.Precondition for anything else.
func ParseMemoryTier(s string) (MemoryTier, error) {
	switch s {
	case "ultra":
		return Ultra, nil
	case "simple":
		return Simple, nil
	case "authenticated":
		return Authenticated, nil
	}
	return 0, cerr.Precondition("unrecognized memory_tier %q (want ultra, simple, or authenticated)", s)
}

// ParseAdder maps the two recognized config strings to an
// bitlib.AdderPolicy, returning cerr.Precondition for anything else.
func ParseAdder(s string) (bitlib.AdderPolicy, error) {
	switch s {
	case "ripple":
		return bitlib.RippleCarry, nil
	case "kogge_stone":
		return bitlib.KoggeStone, nil
	}
	return 0, cerr.Precondition("unrecognized adder %q (want ripple or kogge_stone)", s)
}
