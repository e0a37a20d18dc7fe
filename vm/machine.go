// This file is part of pltvm.

package vm

import "github.com/pkg/errors"

// Machine is the outer function scheduler. It owns the memory, the shared
// value stack, the pending-function stack, and whichever Executor is
// currently active (if any).
type Machine struct {
	mem     *Memory
	pending []Word
	stack   []Word
	active  *Executor

	insCount int64
}

// NewMachine builds a Machine ready to run from the given reset vector. The
// pending-function stack starts with that single entry and the value stack
// starts empty, per spec section 4.5.
func NewMachine(mem *Memory, reset Word) *Machine {
	return &Machine{
		mem:     mem,
		pending: []Word{reset},
	}
}

// Stack returns the current contents of the shared value stack. Only
// meaningful to call between ticks (i.e. not while the caller itself holds a
// reference returned mid-flight), which is always the case for callers
// outside this package.
func (m *Machine) Stack() []Word {
	return m.stack
}

// InstructionCount returns the number of non-scheduling instructions
// executed so far (every successful Executor.Tick, terminators included).
func (m *Machine) InstructionCount() int64 {
	return m.insCount
}

// Tick drives the scheduler one step. It returns true if the machine should
// keep running, false once it has terminated (no active executor and an
// empty pending-function stack).
func (m *Machine) Tick() (bool, error) {
	if m.active == nil {
		if len(m.pending) == 0 {
			return false, nil
		}
		fp := m.pending[len(m.pending)-1]
		m.pending = m.pending[:len(m.pending)-1]

		exec, err := NewExecutor(m.mem, fp, &m.stack)
		if err != nil {
			return false, errors.Wrapf(err, "entering function at 0x%06x", uint32(fp))
		}
		m.active = exec
		return true, nil
	}

	running, err := m.active.Tick()
	if err != nil {
		return false, err
	}
	m.insCount++
	if running {
		return true, nil
	}

	succ := m.active.Dispose()
	m.pending = append(m.pending, succ...)
	m.active = nil
	return true, nil
}

// Run drives Tick until the machine halts or an error occurs, and returns
// the final contents of the value stack.
func (m *Machine) Run() ([]Word, error) {
	for {
		keepGoing, err := m.Tick()
		if err != nil {
			return m.stack, err
		}
		if !keepGoing {
			return m.stack, nil
		}
	}
}
