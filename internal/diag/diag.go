// This file is part of pltvm.

// Package diag classifies the fatal errors the assembler and the VM can
// raise, per the three failure kinds of the PLT specification: malformed
// input, undefined operation, and stack/arity violation.
//
// Every exported error is a sentinel meant to be wrapped with
// github.com/pkg/errors so that callers can recover the category with
// errors.Cause or errors.Is while the CLI boundary still gets a rich %+v
// trace identifying the offending address or opcode.
package diag

import "github.com/pkg/errors"

// Sentinel categories. Callers wrap these with errors.Wrapf to attach the
// instruction address, opcode, or assembler position that triggered them.
var (
	// ErrMalformed flags input rejected at load time: bad magic, an
	// unresolved label, a malformed statement, an out-of-range skipto.
	ErrMalformed = errors.New("malformed input")

	// ErrUndefinedOp flags a run-time operation with no defined meaning:
	// an unknown opcode, division by zero, an unmapped or
	// permission-incompatible memory access.
	ErrUndefinedOp = errors.New("undefined operation")

	// ErrArity flags a run-time violation of the stack discipline: popping
	// below the argument barrier, entering a function short on arguments,
	// or a terminator whose successors fail the stack-delta equation.
	ErrArity = errors.New("stack/arity violation")
)

// Malformed builds an error wrapping ErrMalformed from a message,
// identifying the offending position.
func Malformed(pos string, msg string) error {
	return errors.Wrapf(ErrMalformed, "%s: %s", pos, msg)
}

// Undefined wraps an undefined-operation failure at the given address.
func Undefined(addr interface{}, msg string) error {
	return errors.Wrapf(ErrUndefinedOp, "at %v: %s", addr, msg)
}

// ArityViolation wraps a stack/arity failure at the given address.
func ArityViolation(addr interface{}, msg string) error {
	return errors.Wrapf(ErrArity, "at %v: %s", addr, msg)
}
