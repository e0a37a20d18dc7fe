// This file is part of pltvm.

package vm

import "fmt"

// Disassemble renders the instruction at pc as assembly text and returns the
// address of the next instruction. It is debug tooling only -- used by the
// -disasm flag of cmd/pltvm -- and does not affect machine semantics.
func Disassemble(mem []Word, pc Word) (next Word, text string) {
	w := mem[pc]
	if IsPeek(w) {
		return pc + 1, fmt.Sprintf("peek %d", PeekDepth(w))
	}
	op := Opcode(w)
	name, ok := mnemonics[op]
	if !ok {
		return pc + 1, fmt.Sprintf("??? 0x%06x", uint32(w))
	}
	if op == OpPush {
		if int(pc)+1 < len(mem) {
			return pc + 2, fmt.Sprintf("push %d", mem[pc+1])
		}
		return pc + 1, "push ???"
	}
	return pc + 1, name
}
