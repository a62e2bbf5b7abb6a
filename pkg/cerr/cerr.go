// Package cerr defines the compiler's typed, non-recoverable error
// kinds. Each is a sentinel wrapped with context via fmt.Errorf and
// matched by callers with errors.Is, the pattern the teacher's
// cmd/z80opt/main.go uses for its own CLI-facing errors.
package cerr

import (
	"errors"
	"fmt"
)

// Sentinels for the three error kinds a caller can meaningfully branch
// on. Fabric invariant violations (acyclicity, single-definition) are
// not among these: those panic, per spec.md §7, and are only ever
// recovered at the cmd/rvcircuit top level into a non-zero exit code.
var (
	// ErrUnsupportedOpcode means the decoder or an emitter encountered
	// an instruction word outside the RV32I+M subset this compiler
	// implements.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrBudgetExceeded means a configured resource ceiling (gate
	// count, wire count, input/output bit count) was crossed.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrPrecondition means a caller violated an operation's stated
	// precondition (e.g. an unaligned memory access, a malformed
	// program).
	ErrPrecondition = errors.New("precondition violation")
)

// Unsupported wraps ErrUnsupportedOpcode with the offending context.
func Unsupported(format string, args ...any) error {
	return wrap(ErrUnsupportedOpcode, format, args...)
}

// BudgetExceeded wraps ErrBudgetExceeded with the offending context.
func BudgetExceeded(format string, args ...any) error {
	return wrap(ErrBudgetExceeded, format, args...)
}

// Precondition wraps ErrPrecondition with the offending context.
func Precondition(format string, args ...any) error {
	return wrap(ErrPrecondition, format, args...)
}

func wrap(sentinel error, format string, args ...any) error {
	return &sentinelError{sentinel: sentinel, detail: fmt.Sprintf(format, args...)}
}

type sentinelError struct {
	sentinel error
	detail   string
}

func (e *sentinelError) Error() string { return e.sentinel.Error() + ": " + e.detail }
func (e *sentinelError) Unwrap() error { return e.sentinel }
