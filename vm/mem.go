// This file is part of pltvm.

package vm

import (
	"github.com/pkg/errors"
	"github.com/pltlang/pltvm/internal/diag"
)

// Block is a contiguous, permissioned region of the address space.
type Block struct {
	Offset   Word
	Contents []Word
	Readable bool
	Writable bool
}

// Contains reports whether address a falls within the block and the
// requested access kind is permitted.
//
// The address lower bound is inclusive (offset <= a), matching the spec's
// intended semantics. The original Rust implementation this machine is
// modeled on used a strict ">" here, which makes a block's own base address
// fail containment -- almost certainly a bug, not a feature, so this
// implementation does not carry it forward.
func (b *Block) Contains(a Word, write bool) bool {
	if a < b.Offset || a-b.Offset >= Word(len(b.Contents)) {
		return false
	}
	if write {
		return b.Writable
	}
	return b.Readable
}

func (b *Block) read(a Word) Word {
	return b.Contents[a-b.Offset]
}

func (b *Block) write(a, v Word) {
	b.Contents[a-b.Offset] = v.Mask()
}

// Memory is an ordered sequence of Blocks. Lookup is first-match: the first
// block in the list whose Contains reports true answers the access.
type Memory struct {
	blocks []*Block
}

// NewMemory builds a Memory map from the given blocks, in lookup order.
//
// The PLT ROM format only ever produces a single-block map (mapping mode 0,
// see DecodeHeader), but the multi-block constructor is kept general so that
// tests can exercise read/write RAM blocks alongside a ROM image without a
// second code path.
func NewMemory(blocks ...*Block) *Memory {
	return &Memory{blocks: blocks}
}

// NewROMMemory builds the single read-only block mandated by mapping mode 0:
// the whole image, readable, starting at offset 0.
func NewROMMemory(image []Word) *Memory {
	return NewMemory(&Block{Offset: 0, Contents: image, Readable: true, Writable: false})
}

func (m *Memory) find(a Word, write bool) *Block {
	for _, b := range m.blocks {
		if b.Contains(a, write) {
			return b
		}
	}
	return nil
}

// Read returns the word at address a. It fails if no readable block covers a.
func (m *Memory) Read(a Word) (Word, error) {
	b := m.find(a, false)
	if b == nil {
		return 0, diag.Undefined(a, errors.Errorf("no readable memory block covers address 0x%06x", uint32(a)).Error())
	}
	return b.read(a), nil
}

// Write stores the low 24 bits of v at address a. It fails if no writable
// block covers a.
func (m *Memory) Write(a, v Word) error {
	b := m.find(a, true)
	if b == nil {
		return diag.Undefined(a, errors.Errorf("no writable memory block covers address 0x%06x", uint32(a)).Error())
	}
	b.write(a, v)
	return nil
}

// Len returns the total number of addressable words across all blocks.
// Primarily useful in tests and diagnostics.
func (m *Memory) Len() int {
	n := 0
	for _, b := range m.blocks {
		n += len(b.Contents)
	}
	return n
}
