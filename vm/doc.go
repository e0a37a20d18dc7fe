// Package vm implements the PLT virtual machine: a 24-bit, word-addressed
// stack computer whose programs are collections of typed functions
// connected by explicit control transfers rather than a call stack.
//
// A function never returns to a caller. Instead it terminates by naming 0,
// 1, or 2 successor function pointers, which the Machine scheduler pushes
// onto a pending-function stack and runs next, sharing the value stack
// across the boundary. Executor implements the per-function interpreter;
// Machine implements the outer scheduling loop.
//
// Memory is a sequence of permissioned Blocks looked up first-match; Header
// decodes the fixed 64-word ROM header (magic, feature flags, mapping mode,
// reset vector, and title/developer/publisher strings).
package vm
