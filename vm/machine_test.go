package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pltlang/pltvm/vm"
)

// buildROM assembles a full ROM image (header + code) for the end-to-end
// scenarios of the specification. code is placed starting at codeBase; the
// reset vector is set to codeBase.
func buildROM(t *testing.T, codeBase vm.Word, code []vm.Word) []vm.Word {
	t.Helper()
	size := int(codeBase) + len(code)
	img := make([]vm.Word, size)
	vm.EncodeHeader(img, vm.Header{Reset: codeBase})
	copy(img[codeBase:], code)
	return img
}

func newROMMachine(t *testing.T, codeBase vm.Word, code []vm.Word) *vm.Machine {
	t.Helper()
	img := buildROM(t, codeBase, code)
	mem := vm.NewROMMemory(img)
	return vm.NewMachine(mem, codeBase)
}

// Scenario 1: smallest valid program.
func TestScenarioSmallestValidProgram(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{
		vm.PackSignature(0, 0),
		vm.Word(vm.OpRet),
	})
	stack, err := m.Run()
	require.NoError(t, err)
	require.Empty(t, stack)
}

// Scenario 2: arithmetic.
func TestScenarioArithmetic(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{
		vm.PackSignature(0, 1),
		vm.Word(vm.OpPush), 2,
		vm.Word(vm.OpPush), 3,
		vm.Word(vm.OpAdd),
		vm.Word(vm.OpRet),
	})
	stack, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, []vm.Word{5}, stack)
}

// Scenario 3: signed division. -1 / 2 truncated toward zero is 0.
func TestScenarioSignedDivision(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{
		vm.PackSignature(0, 1),
		vm.Word(vm.OpPush), 0xFFFFFF,
		vm.Word(vm.OpPush), 2,
		vm.Word(vm.OpSdiv),
		vm.Word(vm.OpRet),
	})
	stack, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, []vm.Word{0}, stack)
}

// Scenario 4: call composes a callee and a continuation through their
// declared signatures.
func TestScenarioCallAndContinuation(t *testing.T) {
	const main, callee, cont = 0x40, 0x50, 0x60
	img := make([]vm.Word, cont+3)
	vm.EncodeHeader(img, vm.Header{Reset: main})

	// main: (0,1) push 2; push cont; push callee; call
	copy(img[main:], []vm.Word{
		vm.PackSignature(0, 1),
		vm.Word(vm.OpPush), 2,
		vm.Word(vm.OpPush), cont,
		vm.Word(vm.OpPush), callee,
		vm.Word(vm.OpCall),
	})
	// callee: (1,1) push 1; add; ret
	copy(img[callee:], []vm.Word{
		vm.PackSignature(1, 1),
		vm.Word(vm.OpPush), 1,
		vm.Word(vm.OpAdd),
		vm.Word(vm.OpRet),
	})
	// cont: (1,1) ret -- identity continuation
	copy(img[cont:], []vm.Word{
		vm.PackSignature(1, 1),
		vm.Word(vm.OpRet),
	})

	mem := vm.NewROMMemory(img)
	stack, err := vm.NewMachine(mem, main).Run()
	require.NoError(t, err)
	require.Equal(t, []vm.Word{3}, stack)
}

// Scenario 5: conditional selects the true or false continuation.
//
// The "if" terminator pops f1, then f2, then t (section 4.4), so the
// operands must be pushed in the reverse order: t first, f2, then f1 on top.
func TestScenarioConditional(t *testing.T) {
	const main, trueCont, falseCont = 0x40, 0x50, 0x58

	run := func(cond vm.Word) []vm.Word {
		img := make([]vm.Word, falseCont+3)
		vm.EncodeHeader(img, vm.Header{Reset: main})
		copy(img[main:], []vm.Word{
			vm.PackSignature(0, 1),
			vm.Word(vm.OpPush), cond,
			vm.Word(vm.OpPush), falseCont,
			vm.Word(vm.OpPush), trueCont,
			vm.Word(vm.OpIf),
		})
		copy(img[trueCont:], []vm.Word{
			vm.PackSignature(0, 1),
			vm.Word(vm.OpPush), 7,
			vm.Word(vm.OpRet),
		})
		copy(img[falseCont:], []vm.Word{
			vm.PackSignature(0, 1),
			vm.Word(vm.OpPush), 9,
			vm.Word(vm.OpRet),
		})
		mem := vm.NewROMMemory(img)
		stack, err := vm.NewMachine(mem, main).Run()
		require.NoError(t, err)
		return stack
	}

	require.Equal(t, []vm.Word{7}, run(1))
	require.Equal(t, []vm.Word{9}, run(0))
}

// Scenario 6: arity violation -- a ret whose stack delta doesn't match the
// declared retc is fatal.
func TestScenarioArityViolation(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{
		vm.PackSignature(0, 0),
		vm.Word(vm.OpPush), 1,
		vm.Word(vm.OpRet),
	})
	_, err := m.Run()
	require.Error(t, err)
}

// A function declared func 0 0 containing only ret halts the machine cleanly
// when it is the reset vector.
func TestRetOnlyFunctionHaltsCleanly(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{vm.PackSignature(0, 0), vm.Word(vm.OpRet)})
	keepGoing, err := m.Tick() // pop reset vector, materialize executor
	require.NoError(t, err)
	require.True(t, keepGoing)
	keepGoing, err = m.Tick() // execute ret
	require.NoError(t, err)
	require.True(t, keepGoing)
	keepGoing, err = m.Tick() // no executor, empty pending stack
	require.NoError(t, err)
	require.False(t, keepGoing)
}

func TestBadMagicIsRejectedAtLoad(t *testing.T) {
	img := buildROM(t, 0x40, []vm.Word{vm.PackSignature(0, 0), vm.Word(vm.OpRet)})
	img[0] = 0
	_, err := vm.DecodeHeader(img)
	require.Error(t, err)
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{
		vm.PackSignature(0, 0),
		vm.Word(vm.OpPush), 1,
		vm.Word(vm.OpPush), 2,
		0x002099, // unassigned opcode in the arithmetic group
	})
	_, err := m.Run()
	require.Error(t, err)
}

func TestUnmappedReadIsFatal(t *testing.T) {
	m := newROMMachine(t, 0x40, []vm.Word{
		vm.PackSignature(0, 1),
		vm.Word(vm.OpPush), 0xFFFFFF,
		vm.Word(vm.OpLoad),
		vm.Word(vm.OpRet),
	})
	_, err := m.Run()
	require.Error(t, err)
}
