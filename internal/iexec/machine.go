// Package iexec fetches, decodes and executes one instruction at a time:
// the opcode-byte switch-to-family-helper shape is kept from the teacher's
// pkg/cpu/exec.go, generalized from a fixed 8-bit Z80 core to an IA-32
// subset whose instructions operate at byte, word or dword width. Flag
// formulas and instruction semantics are grounded on the arith/control/
// data-mov/logic/string templates under original_source/nemu/src/cpu/exec.
package iexec

import (
	"fmt"

	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/decode"
	"github.com/oisee/nemu32/internal/membus"
)

// Machine bundles the register file, memory bus and instruction-stream
// reader that one Step needs; it is the context object threaded through
// every instruction handler instead of any package-level state.
type Machine struct {
	State *cpu.State
	Bus   *membus.Bus
	R     decode.Reader

	// Halted stops the fetch/decode/execute loop; set by HLT. An
	// undefined opcode does not set it: Step returns an error instead.
	Halted bool

	// Retired counts instructions successfully executed.
	Retired uint64

	// operWidth is the operand width the current instruction's dword-sized
	// handlers should use: 4 normally, 2 once a 0x66 prefix has been
	// consumed by Step. Byte-sized opcode forms ignore it outright.
	operWidth int
}

// New builds a Machine whose EIP starts at entry and whose memory accesses
// all go through bus.
func New(entry uint32, bus *membus.Bus) *Machine {
	st := cpu.New(entry)
	m := &Machine{State: st, Bus: bus}
	m.R = decode.Reader{State: st, Bus: bus}
	return m
}

// Step executes exactly one instruction: scan leading prefix bytes, fetch
// the opcode byte (following the 0F escape if present), dispatch to its
// handler, and count it as retired. It returns an error for an opcode with
// no registered handler instead of panicking, so the monitor can report a
// clean "illegal instruction" rather than crashing the process.
func (m *Machine) Step() error {
	if m.Halted {
		return fmt.Errorf("iexec: machine halted")
	}
	startEIP := m.State.EIP

	width := 4
	op := m.R.FetchByte()
	for op == 0x66 || op == 0x67 {
		if op == 0x66 {
			width = 2
		}
		op = m.R.FetchByte()
	}
	m.operWidth = width

	var handler opHandler
	if op == 0x0F {
		ext := m.R.FetchByte()
		handler = extTable[ext]
	} else {
		handler = baseTable[op]
	}

	if handler == nil {
		return fmt.Errorf("iexec: illegal opcode 0x%02x at eip 0x%08x", op, startEIP)
	}

	handler(m)
	m.Retired++
	return nil
}

type opHandler func(*Machine)
