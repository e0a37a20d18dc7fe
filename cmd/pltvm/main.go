// This file is part of pltvm.

// Command pltvm loads a PLT ROM image and runs it to completion, printing
// the header's Title/Developer/Publisher fields and any residual stack
// contents.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/pltlang/pltvm/internal/romio"
	"github.com/pltlang/pltvm/vm"
)

var debug bool

func atExit(m *vm.Machine, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	if m != nil {
		fmt.Fprintf(os.Stderr, "instructions executed: %d\n", m.InstructionCount())
	}
	os.Exit(1)
}

func loadROM(path string) ([]vm.Word, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading ROM")
	}
	raw, err := romio.DecodeWords(b)
	if err != nil {
		return nil, errors.Wrap(err, "decoding ROM")
	}
	words := make([]vm.Word, len(raw))
	for i, w := range raw {
		words[i] = vm.Word(w)
	}
	return words, nil
}

func main() {
	var err error
	var m *vm.Machine
	defer func() { atExit(m, err) }()

	flag.BoolVar(&debug, "debug", false, "enable verbose error tracing")
	disasm := flag.Bool("disasm", false, "disassemble the reset vector's function body before running")
	quiet := flag.Bool("q", false, "suppress the Title/Developer/Publisher banner")
	stats := flag.Bool("stats", false, "print instruction count and elapsed time upon exit")
	flag.Parse()

	if flag.NArg() != 1 {
		err = errors.New("usage: pltvm [-debug] [-disasm] [-q] rom.plt")
		return
	}

	image, err := loadROM(flag.Arg(0))
	if err != nil {
		return
	}

	header, err := vm.DecodeHeader(image)
	if err != nil {
		err = errors.Wrap(err, "invalid ROM header")
		return
	}

	if !*quiet {
		fmt.Printf("Title:     %s\n", header.Title)
		fmt.Printf("Developer: %s\n", header.Developer)
		fmt.Printf("Publisher: %s\n", header.Publisher)
	}

	if *disasm {
		printDisasm(image, header.Reset)
	}

	mem := vm.NewROMMemory(image)
	m = vm.NewMachine(mem, header.Reset)

	start := time.Now()
	stack, runErr := m.Run()
	elapsed := time.Since(start)
	if runErr != nil {
		err = errors.Wrap(runErr, "execution failed")
		return
	}

	if *stats {
		fmt.Fprintf(os.Stderr, "executed %d instructions in %v\n", m.InstructionCount(), elapsed)
	}

	if err = printStack(os.Stdout, stack); err != nil {
		err = errors.Wrap(err, "writing stack")
	}
}

// printDisasm walks one function body starting at fp, stopping at the first
// terminator instruction. It is debug-only output and doesn't affect
// execution.
func printDisasm(image []vm.Word, fp vm.Word) {
	fmt.Printf("function at 0x%06x:\n", uint32(fp))
	pc := fp + 1
	for int(pc) < len(image) {
		next, text := vm.Disassemble(image, pc)
		fmt.Printf("  0x%06x: %s\n", uint32(pc), text)
		op := vm.Opcode(image[pc])
		pc = next
		if vm.IsTerminator(op) {
			break
		}
	}
}

// printStack reports the values left on the stack top-first, matching the
// ordering of the scenario table in the specification.
func printStack(w io.Writer, stack []vm.Word) error {
	if len(stack) == 0 {
		_, err := fmt.Fprintln(w, "stack empty")
		return err
	}
	ew := romio.NewErrWriter(w)
	fmt.Fprintln(ew, "Values left on the stack:")
	for i := len(stack) - 1; i >= 0; i-- {
		fmt.Fprintf(ew, "  0x%06x\n", uint32(stack[i]))
	}
	return ew.Err
}
