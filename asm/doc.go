// This file is part of pltvm.

// Package asm assembles PLT assembly source into a 24-bit-word binary ROM
// image. Parsing and encoding run in a single scan: words are appended to an
// output vector as they're read, and a label reference that hasn't been
// defined yet is patched in later by recording the output position and
// resolving it once every label definition has been seen.
//
// Source syntax:
//
//	func <argc> <retc> <body-instr>* <terminator>
//	skip <n>
//	skipto <addr>
//	word <address-or-number>
//	:label
//
// Where body-instr is any non-terminator opcode mnemonic (or "push <value>",
// or "peek <n>"), and terminator is one of ret, jmp, if, call. Labels are a
// run of ASCII letters and underscores, defined with a leading colon and
// referenced bare.
//
// Comments run from "#" to the end of the line.
package asm
