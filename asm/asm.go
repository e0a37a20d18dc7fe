// This file is part of pltvm.

package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pltlang/pltvm/internal/diag"
	"github.com/pltlang/pltvm/vm"
)

const maxErrors = 10

// Errors collects the parse/encode failures found in one assembly run;
// statement parsing stops once maxErrors of them have been collected. All
// reported failures are malformed-input (section 7 of the specification): an
// unresolved label, a malformed statement, or an out-of-range skipto.
type Errors []struct {
	Pos scanner.Position
	Msg string
}

func (e Errors) Error() string {
	l := make([]string, 0, len(e))
	for _, err := range e {
		l = append(l, fmt.Sprintf("%s: %s", err.Pos, err.Msg))
	}
	return strings.Join(l, "\n")
}

// Cause wraps e as diag.ErrMalformed, for callers that want to test the
// error category with errors.Cause or errors.Is.
func (e Errors) Cause() error {
	return diag.Malformed("assembly", e.Error())
}

// Unwrap exposes the same diag.ErrMalformed chain as Cause to errors.Is.
func (e Errors) Unwrap() error {
	return e.Cause()
}

// label tracks one label's resolved address (if any) and every output
// position that referenced it before, or without, a resolution.
type label struct {
	pos     scanner.Position
	address int
	defined bool
	patches []int
}

// assembler holds the state of one assembly pass: the growing output word
// vector, the current output position, and the label table.
type assembler struct {
	out    []vm.Word
	pc     int
	labels map[string]*label
	errs   Errors
	s      scanner.Scanner
}

func newAssembler() *assembler {
	return &assembler{labels: make(map[string]*label)}
}

func (a *assembler) error(pos scanner.Position, msg string) {
	a.errs = append(a.errs, struct {
		Pos scanner.Position
		Msg string
	}{pos, msg})
}

func (a *assembler) abort() bool { return len(a.errs) >= maxErrors }

// emit appends v at the current output position and advances it.
func (a *assembler) emit(v vm.Word) {
	for a.pc >= len(a.out) {
		a.out = append(a.out, make([]vm.Word, 1024)...)
	}
	a.out[a.pc] = v
	a.pc++
}

// labelRecord returns (creating if necessary) the label record for name.
func (a *assembler) labelRecord(name string) *label {
	l, ok := a.labels[name]
	if !ok {
		l = &label{address: -1}
		a.labels[name] = l
	}
	return l
}

// defineLabel binds name to the current output position. A redefinition is
// malformed input: the later definition still wins in the label table, and
// the recorded error makes Assemble return no ROM.
func (a *assembler) defineLabel(name string, pos scanner.Position) {
	l := a.labelRecord(name)
	if l.defined {
		a.error(pos, "label redefined: "+name+", previously defined at "+l.pos.String())
	}
	l.address = a.pc
	l.defined = true
	l.pos = pos
}

// refLabel emits a placeholder word for name at the current position,
// recording the position for later patching.
func (a *assembler) refLabel(name string) {
	l := a.labelRecord(name)
	l.patches = append(l.patches, a.pc)
	a.emit(0)
}

// patchLabels is the second pass: every recorded patch position gets the
// label's resolved address. A label with outstanding patches but no
// definition is malformed input.
func (a *assembler) patchLabels() {
	for name, l := range a.labels {
		if len(l.patches) == 0 {
			continue
		}
		if !l.defined {
			a.error(l.pos, "undefined label "+name)
			continue
		}
		for _, pos := range l.patches {
			a.out[pos] = vm.Word(l.address)
		}
	}
}

func isIdentRune(ch rune, i int) bool {
	if ch == ':' {
		return i == 0
	}
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// isTerminatorWord reports whether s names one of the four terminator
// mnemonics that end a function body.
func isTerminatorWord(s string) bool {
	switch s {
	case "ret", "jmp", "if", "call":
		return true
	}
	return false
}

// Assemble parses PLT assembly source read from r (named for diagnostics as
// name) and returns the encoded ROM body as a word slice, trimmed to the
// highest address written. It implements the two-pass resolution of section
// 4.3: label references are patched with placeholders during the single
// token scan, then backfilled once every definition has been seen.
func Assemble(name string, r io.Reader) ([]vm.Word, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// "#" starts a comment that runs to the end of its line. Cutting each
	// line at its "#" keeps the line and column of every remaining token.
	lines := strings.Split(string(src), "\n")
	for i, l := range lines {
		if j := strings.IndexByte(l, '#'); j >= 0 {
			lines[i] = l[:j]
		}
	}

	a := newAssembler()
	a.s.Init(strings.NewReader(strings.Join(lines, "\n")))
	a.s.Filename = name
	a.s.Mode = scanner.ScanIdents | scanner.ScanInts
	a.s.IsIdentRune = isIdentRune
	a.s.Error = func(s *scanner.Scanner, msg string) { a.error(s.Position, msg) }

	for tok := a.s.Scan(); !a.abort() && tok != scanner.EOF; tok = a.s.Scan() {
		a.statement(tok)
	}

	a.patchLabels()
	if len(a.errs) > 0 {
		return nil, a.errs
	}
	return a.out[:a.pc], nil
}

// statement dispatches on the leading token of a top-level statement: a
// label definition, or one of func/skip/skipto/word.
func (a *assembler) statement(tok rune) {
	pos := a.s.Position
	s := a.s.TokenText()

	if tok != scanner.Ident {
		a.error(pos, "unexpected token "+strconv.QuoteRune(tok))
		return
	}
	if s[0] == ':' {
		name := s[1:]
		if name == "" {
			a.error(pos, "empty label name")
			return
		}
		a.defineLabel(name, pos)
		return
	}

	switch s {
	case "func":
		a.parseFunc(pos)
	case "skip":
		a.parseSkip(pos)
	case "skipto":
		a.parseSkipto(pos)
	case "word":
		a.operand()
	default:
		a.error(pos, "unexpected statement: "+s)
	}
}

// expectInt scans the next token and requires it to be an integer literal,
// reporting a parse error naming what was expected if it isn't.
func (a *assembler) expectInt(what string) (int, bool) {
	tok := a.s.Scan()
	if tok != scanner.Int {
		a.error(a.s.Position, what+": expected integer, got "+a.s.TokenText())
		return 0, false
	}
	n, err := strconv.ParseInt(a.s.TokenText(), 0, 32)
	if err != nil {
		a.error(a.s.Position, what+": "+err.Error())
		return 0, false
	}
	return int(n), true
}

func (a *assembler) parseFunc(pos scanner.Position) {
	argc, ok1 := a.expectInt("func argc")
	retc, ok2 := a.expectInt("func retc")
	if !ok1 || !ok2 {
		return
	}
	a.emit(vm.PackSignature(vm.Word(argc), vm.Word(retc)))

	for {
		tok := a.s.Scan()
		if tok == scanner.EOF {
			a.error(pos, "func body truncated before a terminator")
			return
		}
		if a.abort() {
			return
		}
		if tok != scanner.Ident {
			a.error(a.s.Position, "unexpected token in function body: "+strconv.QuoteRune(tok))
			continue
		}
		word := a.s.TokenText()
		if word[0] == ':' {
			a.error(a.s.Position, "label definition inside a function body: "+word)
			continue
		}
		if a.bodyInstr(word) {
			return
		}
	}
}

// bodyInstr assembles one instruction of a function body. It reports true
// once a terminator has been emitted, ending the enclosing func statement.
func (a *assembler) bodyInstr(word string) bool {
	if word == "push" {
		a.emit(vm.Word(vm.OpPush))
		a.operand()
		return false
	}
	if word == "peek" {
		n, ok := a.expectInt("peek depth")
		if !ok {
			return false
		}
		if n < 0 || n > 0xFFF {
			a.error(a.s.Position, "peek depth out of range")
			return false
		}
		a.emit(vm.Word(n))
		return false
	}
	op, ok := vm.LookupMnemonic(word)
	if !ok {
		a.error(a.s.Position, "unknown instruction: "+word)
		return false
	}
	a.emit(vm.Word(op))
	return isTerminatorWord(word)
}

// operand consumes one value argument -- either a literal integer or a
// label reference -- used by both "push" and "word".
func (a *assembler) operand() {
	tok := a.s.Scan()
	switch tok {
	case scanner.Int:
		n, err := strconv.ParseInt(a.s.TokenText(), 0, 32)
		if err != nil {
			a.error(a.s.Position, "operand: "+err.Error())
			return
		}
		a.emit(vm.Word(n))
	case scanner.Ident:
		s := a.s.TokenText()
		if s[0] == ':' {
			a.error(a.s.Position, "expected value or label, got label definition: "+s)
			return
		}
		a.refLabel(s)
	default:
		a.error(a.s.Position, "expected integer or label")
	}
}

func (a *assembler) parseSkip(pos scanner.Position) {
	n, ok := a.expectInt("skip count")
	if !ok {
		return
	}
	if n < 0 {
		a.error(pos, "skip count must be non-negative")
		return
	}
	for i := 0; i < n; i++ {
		a.emit(0)
	}
}

func (a *assembler) parseSkipto(pos scanner.Position) {
	addr, ok := a.expectInt("skipto address")
	if !ok {
		return
	}
	if addr < a.pc {
		a.error(pos, fmt.Sprintf("skipto address 0x%06x is behind the current position 0x%06x", addr, a.pc))
		return
	}
	if addr-a.pc > 0xFFFFFF {
		a.error(pos, "skipto gap exceeds 0xFFFFFF")
		return
	}
	for a.pc < addr {
		a.emit(0)
	}
}
