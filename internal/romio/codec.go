// This file is part of pltvm.

// Package romio provides the 24-bit-word <-> byte codec shared by the
// assembler and the VM loader, plus a small error-tracking io.Writer used
// when printing residual stack values at the CLI boundary.
package romio

import (
	"io"

	"github.com/pkg/errors"
)

// WordBytes is the number of bytes a single word occupies on the wire.
const WordBytes = 3

// EncodeWords packs words into a big-endian byte stream, three bytes per
// word, in program order.
func EncodeWords(words []uint32) []byte {
	out := make([]byte, 0, len(words)*WordBytes)
	for _, w := range words {
		out = append(out, byte(w>>16), byte(w>>8), byte(w))
	}
	return out
}

// DecodeWords unpacks a big-endian byte stream into 24-bit words. It is an
// error for the stream length to not be a multiple of WordBytes.
func DecodeWords(b []byte) ([]uint32, error) {
	if len(b)%WordBytes != 0 {
		return nil, errors.Errorf("romio: byte stream length %d is not a multiple of %d", len(b), WordBytes)
	}
	words := make([]uint32, len(b)/WordBytes)
	for i := range words {
		j := i * WordBytes
		words[i] = uint32(b[j])<<16 | uint32(b[j+1])<<8 | uint32(b[j+2])
	}
	return words, nil
}

// ErrWriter wraps an io.Writer and latches the first write error, so callers
// can chain a sequence of writes (e.g. printing each residual stack word)
// without checking the error after every call.
type ErrWriter struct {
	w   io.Writer
	Err error
}

// NewErrWriter returns a new ErrWriter wrapping w.
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{w: w}
}

func (w *ErrWriter) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}
