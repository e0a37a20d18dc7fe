// This file is part of pltvm.

// Command pltasm assembles PLT assembly source (.s) into a binary ROM image
// (.plt).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/pltlang/pltvm/asm"
	"github.com/pltlang/pltvm/internal/romio"
	"github.com/pltlang/pltvm/vm"
)

var debug bool

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

// outputName derives the .plt path from the .s input path when -o is unset:
// the input path with its extension replaced.
func outputName(in string) string {
	if i := strings.LastIndexByte(in, '.'); i >= 0 {
		in = in[:i]
	}
	return in + ".plt"
}

func main() {
	var err error
	defer func() { atExit(err) }()

	outPath := flag.String("o", "", "output `path` for the assembled ROM (default: input path with .plt extension)")
	flag.BoolVar(&debug, "debug", false, "enable verbose error tracing")
	flag.Parse()

	if flag.NArg() != 1 {
		err = errors.New("usage: pltasm [-o output.plt] input.s")
		return
	}
	inPath := flag.Arg(0)

	in, err := os.Open(inPath)
	if err != nil {
		err = errors.Wrap(err, "opening source")
		return
	}
	defer in.Close()

	words, asmErr := asm.Assemble(inPath, in)
	if asmErr != nil {
		err = errors.Wrap(asmErr, "assembling")
		return
	}

	dst := *outPath
	if dst == "" {
		dst = outputName(inPath)
	}
	out, err := os.Create(dst)
	if err != nil {
		err = errors.Wrap(err, "creating output")
		return
	}
	defer out.Close()

	if _, err = out.Write(romio.EncodeWords(toUint32(words))); err != nil {
		err = errors.Wrap(err, "writing ROM")
		return
	}
}

func toUint32(words []vm.Word) []uint32 {
	out := make([]uint32, len(words))
	for i, w := range words {
		out[i] = uint32(w)
	}
	return out
}
