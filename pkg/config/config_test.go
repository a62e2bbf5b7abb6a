package config

import (
	"errors"
	"testing"

	"github.com/rhettcreighton/riscv-circuit-compiler/pkg/cerr"
)

func TestParseMemoryTier(t *testing.T) {
	cases := map[string]MemoryTier{"ultra": Ultra, "simple": Simple, "authenticated": Authenticated}
	for s, want := range cases {
		got, err := ParseMemoryTier(s)
		if err != nil {
			t.Fatalf("ParseMemoryTier(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseMemoryTier(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseMemoryTierRejectsUnknown(t *testing.T) {
	_, err := ParseMemoryTier("bogus")
	if !errors.Is(err, cerr.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestParseAdderRejectsUnknown(t *testing.T) {
	_, err := ParseAdder("bogus")
	if !errors.Is(err, cerr.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := Default()
	if o.MaxInputBytes != defaultMaxIOBytes || o.MaxOutputBytes != defaultMaxIOBytes {
		t.Fatalf("default IO budgets = %d/%d, want %d", o.MaxInputBytes, o.MaxOutputBytes, defaultMaxIOBytes)
	}
}
