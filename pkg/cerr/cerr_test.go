package cerr

import (
	"errors"
	"testing"
)

func TestErrorsIsMatchesSentinel(t *testing.T) {
	err := Unsupported("opcode %#x at pc %#x", 0x73, 0x1000)
	if !errors.Is(err, ErrUnsupportedOpcode) {
		t.Fatalf("errors.Is(%v, ErrUnsupportedOpcode) = false", err)
	}
	if errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("errors.Is(%v, ErrBudgetExceeded) = true, want false", err)
	}
}

func TestErrorMessageIncludesDetail(t *testing.T) {
	err := BudgetExceeded("gate count %d exceeds budget %d", 100, 50)
	want := "budget exceeded: gate count 100 exceeds budget 50"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
